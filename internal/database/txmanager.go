// Package database provides connection setup and the transaction plumbing
// shared by the SQL repositories.
package database

import (
	"context"
	"database/sql"
	"errors"
)

type txKey struct{}

// Querier is the subset of *sql.DB and *sql.Tx that repositories execute
// statements through.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs a function inside a database transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager backed by db.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

// WithTx begins a transaction, stores it in the context passed to fn, and
// commits when fn returns nil. Repositories resolve the transaction through
// GetTx, so multi-statement operations stay atomic without signature changes.
// The transaction is rolled back when fn returns an error or panics.
func (m *sqlTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	done := false
	defer func() {
		if !done {
			// fn panicked; release the transaction before unwinding.
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		done = true
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	done = true
	return tx.Commit()
}

// GetTx returns the transaction stored in ctx, or db when ctx carries none.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
