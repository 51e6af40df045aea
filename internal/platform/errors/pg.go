package errors

import (
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the mirror cares about
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlockDetected     = "40P01"
	pgErrLockNotAvailable     = "55P03"
	pgErrCannotConnectNow     = "57P03"
)

// PgError returns the postgres error anywhere in err's chain
func PgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// SQLState is the SQLSTATE of a wrapped postgres error
func SQLState(err error) (string, bool) {
	pgErr, ok := PgError(err)
	if !ok {
		return "", false
	}
	return pgErr.Code, true
}

// IsTransientPG reports whether retrying the same transaction may succeed
func IsTransientPG(err error) bool {
	switch s, _ := SQLState(err); s {
	case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable, pgErrCannotConnectNow:
		return true
	}
	return false
}
