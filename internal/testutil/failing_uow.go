package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/JeevithaAnandhan/marksheetpro/internal/db"
)

// FailOnNthExecUoW is a UnitOfWork whose Nth matching ExecContext call, counted
// from 1, returns Err instead of running. Match limits counting to statements
// containing it; empty counts every write. Reads are never counted.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Match  string
	Err    error

	execs atomic.Int32
}

// Execs reports how many matching writes were attempted so far.
func (u *FailOnNthExecUoW) Execs() int {
	return int(u.execs.Load())
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn db.TxFunc) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	return db.Run(ctx, tx, func(ctx context.Context, conn db.DBTX) error {
		return fn(ctx, &faultyTx{DBTX: conn, uow: u})
	})
}

type faultyTx struct {
	db.DBTX
	uow *FailOnNthExecUoW
}

func (f *faultyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.Match == "" || strings.Contains(query, f.uow.Match) {
		if f.uow.execs.Add(1) == f.uow.FailOn {
			return nil, f.uow.Err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
