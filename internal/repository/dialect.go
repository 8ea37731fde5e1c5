package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	go_ora "github.com/sijms/go-ora/v2"
)

// Dialect names the SQL backend behind the store.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
	DialectOracle   Dialect = "oracle"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err was raised by a unique constraint.
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	switch d {
	case DialectPostgres:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return pgErr.Code == pgUniqueViolation
		}
		return strings.Contains(err.Error(), "SQLSTATE "+pgUniqueViolation)
	case DialectSQLite:
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) {
			return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
		}
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	case DialectOracle:
		return strings.Contains(err.Error(), "ORA-00001")
	default:
		return false
	}
}

// textArg wraps long text for drivers that need an explicit LOB type.
func (d Dialect) textArg(s string) interface{} {
	if d == DialectOracle {
		return go_ora.Clob{String: s, Valid: true}
	}
	return s
}
