package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jacksonlee411/tree-menu/modules/menu/domain/ports"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/types"
	"github.com/jacksonlee411/tree-menu/pkg/httperr"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteMemoryPath opens a private in-memory database.
const SQLiteMemoryPath = ":memory:"

// OpenSQLite opens path with the modernc driver. Connections are capped at one:
// SQLite serializes writers anyway, and an in-memory database only exists on
// the connection that created it.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	if path != SQLiteMemoryPath {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL;", "PRAGMA synchronous=NORMAL;")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

type MenuSQLiteStore struct {
	db *sql.DB
}

func NewMenuSQLiteStore(db *sql.DB) *MenuSQLiteStore {
	return &MenuSQLiteStore{db: db}
}

var _ ports.MenuStore = (*MenuSQLiteStore)(nil)

const sqliteItemColumns = `
  i.id,
  i.menu_id,
  m.name,
  i.parent_id,
  i.title,
  i.named_url,
  i.url,
  i.sort_order
FROM menu_items i
JOIN menus m ON m.id = i.menu_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteItem(r rowScanner) (types.MenuItem, error) {
	var it types.MenuItem
	var parent sql.NullInt64
	if err := r.Scan(&it.ID, &it.MenuID, &it.MenuName, &parent, &it.Title, &it.NamedURL, &it.URL, &it.Order); err != nil {
		return types.MenuItem{}, err
	}
	if parent.Valid {
		p := parent.Int64
		it.ParentID = &p
	}
	return it, nil
}

// ListMenuItems is one query; NULL parents sort first in SQLite.
func (s *MenuSQLiteStore) ListMenuItems(ctx context.Context, menuName string) ([]types.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT`+sqliteItemColumns+`
WHERE m.name = ?
ORDER BY i.parent_id, i.sort_order, i.id`, menuName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.MenuItem, 0)
	for rows.Next() {
		it, err := scanSQLiteItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MenuSQLiteStore) ListMenus(ctx context.Context) ([]types.Menu, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, title FROM menus ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.Menu, 0)
	for rows.Next() {
		var m types.Menu
		if err := rows.Scan(&m.ID, &m.Name, &m.Title); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MenuSQLiteStore) GetMenu(ctx context.Context, name string) (types.Menu, error) {
	var m types.Menu
	err := s.db.QueryRowContext(ctx, `SELECT id, name, title FROM menus WHERE name = ?`, name).Scan(&m.ID, &m.Name, &m.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Menu{}, ports.ErrMenuNotFound
		}
		return types.Menu{}, err
	}
	return m, nil
}

func (s *MenuSQLiteStore) CreateMenu(ctx context.Context, name string, title string) (types.Menu, error) {
	m := types.Menu{Name: name, Title: title}
	err := s.db.QueryRowContext(ctx, `INSERT INTO menus (name, title) VALUES (?, ?) RETURNING id`, name, title).Scan(&m.ID)
	if err != nil {
		code := sqliteErrorCode(err)
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_CHECK:
			return types.Menu{}, httperr.NewFieldBadRequest("name", "invalid menu name or title")
		case isSQLiteConstraint(code):
			return types.Menu{}, ports.ErrMenuExists
		}
		return types.Menu{}, err
	}
	return m, nil
}

func (s *MenuSQLiteStore) GetMenuItem(ctx context.Context, id int64) (types.MenuItem, error) {
	it, err := scanSQLiteItem(s.db.QueryRowContext(ctx, `SELECT`+sqliteItemColumns+`WHERE i.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MenuItem{}, ports.ErrMenuItemNotFound
		}
		return types.MenuItem{}, err
	}
	return it, nil
}

func (s *MenuSQLiteStore) CreateMenuItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.MenuItem{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx, `SELECT name FROM menus WHERE id = ?`, item.MenuID).Scan(&item.MenuName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MenuItem{}, ports.ErrMenuNotFound
		}
		return types.MenuItem{}, err
	}
	if err := sqliteCheckParent(ctx, tx, item); err != nil {
		return types.MenuItem{}, err
	}

	err = tx.QueryRowContext(ctx, `
INSERT INTO menu_items (menu_id, parent_id, title, named_url, url, sort_order)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`, item.MenuID, nullableID(item.ParentID), item.Title, item.NamedURL, item.URL, item.Order).Scan(&item.ID)
	if err != nil {
		return types.MenuItem{}, mapSQLiteItemWriteError(err)
	}

	if err := tx.Commit(); err != nil {
		return types.MenuItem{}, err
	}
	return item, nil
}

func (s *MenuSQLiteStore) UpdateMenuItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.MenuItem{}, err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := scanSQLiteItem(tx.QueryRowContext(ctx, `SELECT`+sqliteItemColumns+`WHERE i.id = ?`, item.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MenuItem{}, ports.ErrMenuItemNotFound
		}
		return types.MenuItem{}, err
	}
	item.MenuID = existing.MenuID
	item.MenuName = existing.MenuName
	if err := sqliteCheckParent(ctx, tx, item); err != nil {
		return types.MenuItem{}, err
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE menu_items
SET parent_id = ?, title = ?, named_url = ?, url = ?, sort_order = ?
WHERE id = ?`, nullableID(item.ParentID), item.Title, item.NamedURL, item.URL, item.Order, item.ID); err != nil {
		return types.MenuItem{}, mapSQLiteItemWriteError(err)
	}

	if err := tx.Commit(); err != nil {
		return types.MenuItem{}, err
	}
	return item, nil
}

// DeleteMenuItem relies on ON DELETE CASCADE (foreign_keys must be on).
func (s *MenuSQLiteStore) DeleteMenuItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrMenuItemNotFound
	}
	return nil
}

func sqliteCheckParent(ctx context.Context, tx *sql.Tx, item types.MenuItem) error {
	if item.ParentID == nil {
		return nil
	}
	var menuID int64
	err := tx.QueryRowContext(ctx, `SELECT menu_id FROM menu_items WHERE id = ?`, *item.ParentID).Scan(&menuID)
	if errors.Is(err, sql.ErrNoRows) {
		return httperr.NewFieldBadRequest("parent_id", "parent item not found")
	}
	if err != nil {
		return err
	}
	if menuID != item.MenuID {
		return httperr.NewFieldBadRequest("parent_id", "parent item must belong to the same menu")
	}
	return nil
}

func nullableID(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func sqliteErrorCode(err error) int {
	if e, ok := errors.AsType[*sqlite.Error](err); ok && e != nil {
		return e.Code()
	}
	return 0
}

// isSQLiteConstraint matches both the primary and the extended constraint codes.
func isSQLiteConstraint(code int) bool {
	return code&0xff == sqlite3.SQLITE_CONSTRAINT
}

func mapSQLiteItemWriteError(err error) error {
	code := sqliteErrorCode(err)
	switch {
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return httperr.NewFieldBadRequest("parent_id", "parent item not found")
	case isSQLiteConstraint(code):
		return httperr.NewBadRequest("menu item violates a table constraint")
	default:
		return err
	}
}
