package testutil

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/alexanderramin/bedside/internal/db"
)

// FailingWriteUoW runs transactions through a real UnitOfWork but fails the
// FailOn-th write (1-based) with Err, so a use case that writes several rows
// can be checked for rollback. Queries are not counted.
type FailingWriteUoW struct {
	UoW    db.UnitOfWork
	FailOn int32
	Err    error
}

func (u *FailingWriteUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return u.UoW.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failingWrites{DBTX: tx, failOn: u.FailOn, err: u.Err})
	})
}

type failingWrites struct {
	db.DBTX
	writes atomic.Int32
	failOn int32
	err    error
}

func (f *failingWrites) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.writes.Add(1) == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
