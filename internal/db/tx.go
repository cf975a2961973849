package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is the query surface repositories depend on. Both *sql.DB and *sql.Tx
// provide it, so the same repository works inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// TxFunc is the body of a transaction. Repositories must be built from tx;
// the pool holds one connection, so touching the *sql.DB inside blocks.
type TxFunc func(ctx context.Context, tx DBTX) error

// UnitOfWork runs a TxFunc atomically.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// SQLiteUnitOfWork implements UnitOfWork on a database/sql pool.
type SQLiteUnitOfWork struct {
	db *sql.DB
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// WithinTx commits when fn succeeds. Any error or panic from fn rolls the
// transaction back; a panic is re-raised after the rollback.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn TxFunc) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	return Run(ctx, tx, fn)
}

// Run executes fn against an already open transaction and settles it.
func Run(ctx context.Context, tx *sql.Tx, fn TxFunc) (err error) {
	committed := false
	defer func() {
		if committed {
			return
		}
		rbErr := tx.Rollback()
		if err != nil && rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	committed = true
	return nil
}
