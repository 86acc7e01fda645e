package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// UpsertKind tags the outcome of an insert-or-update.
type UpsertKind int

const (
	UpsertOK UpsertKind = iota
	// UpsertConstraintViolation means the row was rejected by a column type, enum or
	// CHECK constraint. The existing row may be in a state the current schema rejects.
	UpsertConstraintViolation
	UpsertFailed
)

func (k UpsertKind) String() string {
	switch k {
	case UpsertOK:
		return "ok"
	case UpsertConstraintViolation:
		return "constraint_violation"
	default:
		return "failed"
	}
}

// UpsertResult is returned by repository writes that callers may need to recover from.
type UpsertResult struct {
	Kind UpsertKind
	Err  error
}

// OK reports whether the write succeeded.
func (r UpsertResult) OK() bool {
	return r.Kind == UpsertOK
}

// ResultOf classifies err into an UpsertResult.
func ResultOf(err error) UpsertResult {
	if err == nil {
		return UpsertResult{Kind: UpsertOK}
	}
	if IsConstraintViolation(err) {
		return UpsertResult{Kind: UpsertConstraintViolation, Err: err}
	}
	return UpsertResult{Kind: UpsertFailed, Err: err}
}

// Postgres SQLSTATE codes treated as value/constraint mismatches.
const (
	pgInvalidTextRepresentation = "22P02" // bad enum literal
	pgInvalidDatetimeFormat     = "22007"
	pgCheckViolation            = "23514"
	pgDatatypeMismatch          = "42804"
)

// IsConstraintViolation reports whether err is a value-level constraint failure
// (enum/type mismatch or CHECK violation) from either supported driver.
// Unique and foreign-key violations are not included.
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgInvalidTextRepresentation, pgInvalidDatetimeFormat, pgCheckViolation, pgDatatypeMismatch:
			return true
		}
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintCheck || sqliteErr.Code == sqlite3.ErrMismatch
	}

	return false
}
