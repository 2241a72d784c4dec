// Package menustore picks and opens the menu store backend from configuration.
package menustore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/ports"
	"github.com/jacksonlee411/tree-menu/modules/menu/infrastructure/migrations"
	"github.com/jacksonlee411/tree-menu/modules/menu/infrastructure/persistence"
	"github.com/jacksonlee411/tree-menu/pkg/logging"
)

type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendMemory   Backend = "memory"
)

type Config struct {
	Backend    Backend
	DSN        string
	SQLitePath string
	// Migrate applies pending migrations on open. SQLite in-memory databases
	// are always migrated since they start empty.
	Migrate bool
}

func ParseBackend(raw string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(raw))); b {
	case "":
		return BackendMemory, nil
	case BackendPostgres, BackendSQLite, BackendMemory:
		return b, nil
	default:
		return "", fmt.Errorf("menustore: invalid MENU_STORE %q (expected postgres|sqlite|memory)", raw)
	}
}

// ConfigFromEnv reads MENU_STORE, DATABASE_URL (or DB_*), SQLITE_PATH and
// MENU_AUTO_MIGRATE.
func ConfigFromEnv() (Config, error) {
	b, err := ParseBackend(getenvDefault("MENU_STORE", string(BackendMemory)))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Backend: b,
		Migrate: getenvDefault("MENU_AUTO_MIGRATE", "0") == "1",
	}
	switch b {
	case BackendPostgres:
		cfg.DSN = dbDSNFromEnv()
	case BackendSQLite:
		cfg.SQLitePath = getenvDefault("SQLITE_PATH", persistence.SQLiteMemoryPath)
	}
	return cfg, nil
}

// Opened is a ready store. DB is the database/sql handle used for
// migrations; it is nil for the memory backend.
type Opened struct {
	Backend Backend
	Store   ports.MenuStore
	DB      *sql.DB
	Dialect migrations.Dialect

	closers []func()
}

func (o *Opened) Close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		o.closers[i]()
	}
	o.closers = nil
}

// Migrate applies pending migrations; the memory backend has no schema.
func (o *Opened) Migrate(ctx context.Context, logger *slog.Logger) (int, error) {
	if o.DB == nil {
		return 0, nil
	}
	return migrations.Up(ctx, o.DB, o.Dialect, logger)
}

func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Opened, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	var o *Opened
	switch cfg.Backend {
	case BackendMemory, "":
		o = &Opened{Backend: BackendMemory, Store: persistence.NewMenuMemoryStore()}
	case BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("menustore: connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("menustore: ping postgres: %w", err)
		}
		db := stdlib.OpenDBFromPool(pool)
		o = &Opened{
			Backend: BackendPostgres,
			Store:   persistence.NewMenuPGStore(pool),
			DB:      db,
			Dialect: migrations.Postgres,
			closers: []func(){pool.Close, func() { _ = db.Close() }},
		}
	case BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = persistence.SQLiteMemoryPath
		}
		db, err := persistence.OpenSQLite(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("menustore: open sqlite %q: %w", path, err)
		}
		o = &Opened{
			Backend: BackendSQLite,
			Store:   persistence.NewMenuSQLiteStore(db),
			DB:      db,
			Dialect: migrations.SQLite,
			closers: []func(){func() { _ = db.Close() }},
		}
		if path == persistence.SQLiteMemoryPath {
			cfg.Migrate = true
		}
	default:
		return nil, fmt.Errorf("menustore: unknown backend %q", cfg.Backend)
	}

	if cfg.Migrate {
		if _, err := o.Migrate(ctx, logger); err != nil {
			o.Close()
			return nil, err
		}
	}
	logger.InfoContext(ctx, "menu store opened", slog.String("backend", string(o.Backend)))
	return o, nil
}
