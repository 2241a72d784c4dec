// Package migrations embeds the menu schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func newProvider(db *sql.DB, dialect Dialect) (*goose.Provider, error) {
	var gd goose.Dialect
	switch dialect {
	case Postgres:
		gd = goose.DialectPostgres
	case SQLite:
		gd = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	sub, err := fs.Sub(embedded, string(dialect))
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(gd, db, sub)
}

// Up applies every pending migration and returns how many ran.
func Up(ctx context.Context, db *sql.DB, dialect Dialect, logger *slog.Logger) (int, error) {
	p, err := newProvider(db, dialect)
	if err != nil {
		return 0, err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrations: up (%s): %w", dialect, err)
	}
	for _, r := range results {
		if logger != nil {
			logger.InfoContext(ctx, "migration applied",
				slog.String("dialect", string(dialect)),
				slog.Int64("version", r.Source.Version),
				slog.Duration("duration", r.Duration))
		}
	}
	return len(results), nil
}

// Version reports the current schema version (0 before the first migration).
func Version(ctx context.Context, db *sql.DB, dialect Dialect) (int64, error) {
	p, err := newProvider(db, dialect)
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}
