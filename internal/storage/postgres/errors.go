package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	domainerrors "github.com/r3e-network/rwa-control-plane/internal/errors"
)

// uniqueViolation is the Postgres SQLSTATE for a UNIQUE constraint/index
// conflict.
const uniqueViolation = "23505"

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// wrapInsertErr translates a unique-constraint violation into a domain
// Conflict error so callers can distinguish a duplicate from a genuine
// internal failure; every other error is wrapped as CodeInternal as before.
func wrapInsertErr(resource, reason, message string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domainerrors.Conflict(reason, message).WithDetail("constraint", pqErr.Constraint)
	}
	return domainerrors.Wrap(domainerrors.CodeInternal, resource+"_INSERT_FAILED", "failed to insert "+message, err)
}
