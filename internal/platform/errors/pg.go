package errors

import (
	stderrs "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE classes we care about
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
)

// FromPG maps a pgx error into the project taxonomy.
// Unrecognized database errors become ErrorCodeDB
func FromPG(err error) error {
	if err == nil {
		return nil
	}
	if stderrs.Is(err, pgx.ErrNoRows) {
		return Wrap(err, ErrorCodeNotFound, "not found")
	}
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return Wrap(err, ErrorCodeDuplicateKey, "duplicate key")
		case pgForeignKeyViolation:
			return Wrap(err, ErrorCodeValidation, "referenced row does not exist")
		}
	}
	return Wrap(err, ErrorCodeDB, "database error")
}

// IsRetryable reports whether err is a transient database condition
// where retrying the transaction may succeed
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFail || pgErr.Code == pgDeadlockDetected
	}
	return false
}
