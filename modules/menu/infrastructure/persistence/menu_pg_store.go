package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/ports"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/types"
	"github.com/jacksonlee411/tree-menu/pkg/httperr"
)

// pgPool is the subset of *pgxpool.Pool the store needs. Reads go straight to
// the pool so a draw costs exactly one round-trip; writes run in a transaction.
type pgPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type MenuPGStore struct {
	pool pgPool
}

func NewMenuPGStore(pool pgPool) *MenuPGStore {
	return &MenuPGStore{pool: pool}
}

var _ ports.MenuStore = (*MenuPGStore)(nil)

const pgListMenuItemsSQL = `
SELECT
  i.id,
  i.menu_id,
  m.name,
  i.parent_id,
  i.title,
  i.named_url,
  i.url,
  i.sort_order
FROM menu.menu_items i
JOIN menu.menus m ON m.id = i.menu_id
WHERE m.name = $1
ORDER BY i.parent_id NULLS FIRST, i.sort_order, i.id
`

func (s *MenuPGStore) ListMenuItems(ctx context.Context, menuName string) ([]types.MenuItem, error) {
	rows, err := s.pool.Query(ctx, pgListMenuItemsSQL, menuName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.MenuItem, 0)
	for rows.Next() {
		var it types.MenuItem
		if err := rows.Scan(&it.ID, &it.MenuID, &it.MenuName, &it.ParentID, &it.Title, &it.NamedURL, &it.URL, &it.Order); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MenuPGStore) ListMenus(ctx context.Context) ([]types.Menu, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, name, title
FROM menu.menus
ORDER BY name
`)
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

func (s *MenuPGStore) GetMenu(ctx context.Context, name string) (types.Menu, error) {
	var m types.Menu
	err := s.pool.QueryRow(ctx, `
SELECT id, name, title
FROM menu.menus
WHERE name = $1
`, name).Scan(&m.ID, &m.Name, &m.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Menu{}, ports.ErrMenuNotFound
		}
		return types.Menu{}, err
	}
	return m, nil
}

func (s *MenuPGStore) CreateMenu(ctx context.Context, name string, title string) (types.Menu, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Menu{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	m := types.Menu{Name: name, Title: title}
	if err := tx.QueryRow(ctx, `
INSERT INTO menu.menus (name, title)
VALUES ($1, $2)
RETURNING id
`, name, title).Scan(&m.ID); err != nil {
		if isPgUniqueViolation(err) {
			return types.Menu{}, ports.ErrMenuExists
		}
		return types.Menu{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Menu{}, err
	}
	return m, nil
}

func (s *MenuPGStore) GetMenuItem(ctx context.Context, id int64) (types.MenuItem, error) {
	var it types.MenuItem
	err := s.pool.QueryRow(ctx, `
SELECT
  i.id,
  i.menu_id,
  m.name,
  i.parent_id,
  i.title,
  i.named_url,
  i.url,
  i.sort_order
FROM menu.menu_items i
JOIN menu.menus m ON m.id = i.menu_id
WHERE i.id = $1
`, id).Scan(&it.ID, &it.MenuID, &it.MenuName, &it.ParentID, &it.Title, &it.NamedURL, &it.URL, &it.Order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.MenuItem{}, ports.ErrMenuItemNotFound
		}
		return types.MenuItem{}, err
	}
	return it, nil
}

func (s *MenuPGStore) CreateMenuItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.MenuItem{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	err = tx.QueryRow(ctx, `
WITH ins AS (
  INSERT INTO menu.menu_items (menu_id, parent_id, title, named_url, url, sort_order)
  VALUES ($1, $2, $3, $4, $5, $6)
  RETURNING id, menu_id
)
SELECT ins.id, m.name
FROM ins
JOIN menu.menus m ON m.id = ins.menu_id
`, item.MenuID, item.ParentID, item.Title, item.NamedURL, item.URL, item.Order).Scan(&item.ID, &item.MenuName)
	if err != nil {
		return types.MenuItem{}, mapPgItemWriteError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return types.MenuItem{}, err
	}
	return item, nil
}

func (s *MenuPGStore) UpdateMenuItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.MenuItem{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var out types.MenuItem
	err = tx.QueryRow(ctx, `
UPDATE menu.menu_items i
SET parent_id = $2, title = $3, named_url = $4, url = $5, sort_order = $6
FROM menu.menus m
WHERE i.id = $1 AND m.id = i.menu_id
RETURNING i.id, i.menu_id, m.name, i.parent_id, i.title, i.named_url, i.url, i.sort_order
`, item.ID, item.ParentID, item.Title, item.NamedURL, item.URL, item.Order).Scan(
		&out.ID, &out.MenuID, &out.MenuName, &out.ParentID, &out.Title, &out.NamedURL, &out.URL, &out.Order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.MenuItem{}, ports.ErrMenuItemNotFound
		}
		return types.MenuItem{}, mapPgItemWriteError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return types.MenuItem{}, err
	}
	return out, nil
}

// DeleteMenuItem relies on ON DELETE CASCADE for descendants.
func (s *MenuPGStore) DeleteMenuItem(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `DELETE FROM menu.menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrMenuItemNotFound
	}
	return tx.Commit(ctx)
}

func mapPgItemWriteError(err error) error {
	switch {
	case isPgForeignKeyViolation(err):
		if pgConstraintName(err) == "menu_items_menu_id_fkey" {
			return ports.ErrMenuNotFound
		}
		return httperr.NewFieldBadRequest("parent_id", "parent item not found")
	case isPgCheckViolation(err):
		return httperr.NewBadRequest("menu item violates " + pgConstraintName(err))
	default:
		return err
	}
}
