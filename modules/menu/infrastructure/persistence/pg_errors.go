package persistence

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgErrorCode(err error) string {
	if pgErr, ok := errors.AsType[*pgconn.PgError](err); ok && pgErr != nil {
		return strings.TrimSpace(pgErr.Code)
	}
	return ""
}

func pgConstraintName(err error) string {
	if pgErr, ok := errors.AsType[*pgconn.PgError](err); ok && pgErr != nil {
		return strings.TrimSpace(pgErr.ConstraintName)
	}
	return ""
}

func isPgUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func isPgForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

func isPgCheckViolation(err error) bool {
	return pgErrorCode(err) == pgCheckViolation
}
