// Package postgres implements storage.Store against PostgreSQL using sqlx.
// It follows the context-propagated-transaction pattern: Atomic opens a
// *sqlx.Tx, stashes it in the context, and every per-entity method pulls
// whichever of *sqlx.DB/*sqlx.Tx the context carries via querier(ctx) so the
// same method body works whether or not it runs inside a unit of work.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	domainerrors "github.com/r3e-network/rwa-control-plane/internal/errors"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
)

// Store implements storage.Store against a PostgreSQL database.
type Store struct {
	db *sqlx.DB
}

var _ storage.Store = (*Store)(nil)

// New wraps an open connection pool. Callers obtain db via
// internal/platform/database.Open and sqlx.NewDb(db, "postgres").
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type txKey struct{}

// querier is whichever of *sqlx.DB or *sqlx.Tx the context carries, letting
// every method below run standalone or inside Atomic without a branch.
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func (s *Store) querier(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return s.db
}

// Atomic runs fn with a context carrying a single transaction, committing on
// a nil return and rolling back otherwise. Nesting is flattened: an Atomic
// call inside another reuses the outer transaction rather than opening a
// second one, so engine code that composes helper methods built on Atomic
// does not deadlock or partially commit.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "BEGIN_TX_FAILED", "failed to begin transaction", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domainerrors.Wrap(domainerrors.CodeInternal, "ROLLBACK_FAILED", "failed to roll back transaction", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "COMMIT_FAILED", "failed to commit transaction", err)
	}
	return nil
}

// wrapQueryErr translates sql.ErrNoRows into a domain NotFound error and
// wraps every other failure as CollaboratorFailure-free internal error.
func wrapQueryErr(resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if isNoRows(err) {
		return domainerrors.NotFound(resource, id)
	}
	return domainerrors.Wrap(domainerrors.CodeInternal, fmt.Sprintf("%s_QUERY_FAILED", resource), "query failed", err)
}
