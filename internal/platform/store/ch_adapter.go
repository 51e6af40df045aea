package store

import (
	"context"
	"time"

	perr "gaexport/internal/platform/errors"
	"gaexport/internal/platform/logger"
	"gaexport/internal/platform/store/ch"
)

// chConn is the subset of *ch.CH the adapter drives
type chConn interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (ch.Rows, error)
	Ping(ctx context.Context) error
	Close() error
}

// newCHAdapter wraps a clickhouse client as the store.Clickhouse seam
func newCHAdapter(c chConn) *clickhouseAdapter {
	return &clickhouseAdapter{inner: c}
}

// clickhouseAdapter adapts *ch.CH to the store.Clickhouse interface and
// optionally logs every statement
type clickhouseAdapter struct {
	inner chConn
	log   logger.Logger
	trace bool
}

var _ Clickhouse = (*clickhouseAdapter)(nil)

func (a *clickhouseAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	start := time.Now()
	err := a.inner.Exec(ctx, sql, args...)
	if a.trace {
		a.log.Debug().Str("sql", sql).Dur("elapsed", time.Since(start)).Err(err).Msg("ch exec")
	}
	return err
}

func (a *clickhouseAdapter) Insert(ctx context.Context, table string, rows [][]any) error {
	start := time.Now()
	err := a.inner.Insert(ctx, table, rows)
	if a.trace {
		a.log.Debug().Str("table", table).Int("rows", len(rows)).Dur("elapsed", time.Since(start)).Err(err).Msg("ch insert")
	}
	return err
}

func (a *clickhouseAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.inner.Query(ctx, sql, args...)
	if a.trace {
		a.log.Debug().Str("sql", sql).Err(err).Msg("ch query")
	}
	if err != nil {
		return nil, err
	}
	return &rowsAdapter{r: r}, nil
}

func (a *clickhouseAdapter) Close() error { return a.inner.Close() }

// Ping verifies connectivity with ClickHouse
func (a *clickhouseAdapter) Ping(ctx context.Context) error {
	if a == nil || a.inner == nil {
		return perr.New(perr.ErrorCodeDB, "store: nil clickhouse adapter")
	}
	return a.inner.Ping(ctx)
}

// rowsAdapter wraps ch.Rows as store.Rows
type rowsAdapter struct {
	r ch.Rows
}

func (r *rowsAdapter) Next() bool             { return r.r.Next() }
func (r *rowsAdapter) Scan(dest ...any) error { return r.r.Scan(dest...) }
func (r *rowsAdapter) Err() error             { return r.r.Err() }
func (r *rowsAdapter) Close()                 { _ = r.r.Close() }
func (r *rowsAdapter) Columns() []string      { return r.r.Columns() }
