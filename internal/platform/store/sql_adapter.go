package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	perr "gaexport/internal/platform/errors"
	"gaexport/internal/platform/store/pg"
)

// pgAdapter wraps pg.PG and implements RowQuerier + TxRunner
// every statement, inside a tx or not, goes through the same trace hook
type pgAdapter struct {
	p  *pg.PG
	tr traceHook
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{p: p, tr: traceHook{tracer: p.Tracer, slowUS: int64(p.SlowMs) * 1000}}
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil || a.p.Pool == nil {
		return perr.New(perr.ErrorCodeDB, "pg: nil adapter")
	}
	return a.p.Pool.Ping(ctx)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

func (a *pgAdapter) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return traceExec(ctx, a.tr, a.p.Pool.Exec, sql, args)
}

func (a *pgAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return traceQuery(ctx, a.tr, a.p.Pool.Query, sql, args)
}

func (a *pgAdapter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return traceRow(ctx, a.tr, a.p.Pool.QueryRow, sql, args)
}

// Tx commits when fn returns nil and rolls back otherwise
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(txQuerier{tx: tx, tr: a.tr}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// txQuerier uses pgx.Tx to satisfy RowQuerier inside a Tx
type txQuerier struct {
	tx pgx.Tx
	tr traceHook
}

func (t txQuerier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return traceExec(ctx, t.tr, t.tx.Exec, sql, args)
}

func (t txQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return traceQuery(ctx, t.tr, t.tx.Query, sql, args)
}

func (t txQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return traceRow(ctx, t.tr, t.tx.QueryRow, sql, args)
}

// traceHook forwards statement timings to an optional pg.QueryTracer
type traceHook struct {
	tracer pg.QueryTracer
	slowUS int64
}

func (h traceHook) emit(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if h.tracer == nil {
		return
	}
	elapsedUS := time.Since(start).Microseconds()
	h.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: elapsedUS,
		Err:       err,
		Slow:      h.slowUS > 0 && elapsedUS >= h.slowUS,
	})
}

func traceExec(
	ctx context.Context,
	h traceHook,
	exec func(context.Context, string, ...any) (pgconn.CommandTag, error),
	sql string,
	args []any,
) (CommandTag, error) {
	start := time.Now()
	ct, err := exec(ctx, sql, args...)
	h.emit(ctx, sql, args, start, err)
	return tag{ct}, err
}

func traceQuery(
	ctx context.Context,
	h traceHook,
	query func(context.Context, string, ...any) (pgx.Rows, error),
	sql string,
	args []any,
) (Rows, error) {
	start := time.Now()
	rs, err := query(ctx, sql, args...)
	h.emit(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rows{r: rs}, nil
}

// traceRow emits once Scan returns so the scan error is reported
func traceRow(
	ctx context.Context,
	h traceHook,
	queryRow func(context.Context, string, ...any) pgx.Row,
	sql string,
	args []any,
) Row {
	start := time.Now()
	r := queryRow(ctx, sql, args...)
	return row{r: r, after: func(err error) { h.emit(ctx, sql, args, start, err) }}
}

// adapters for pgx to our tiny Row/Rows/CommandTag

type row struct {
	r     pgx.Row
	after func(error)
}

func (x row) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	return err
}

type rows struct{ r pgx.Rows }

func (x rows) Next() bool            { return x.r.Next() }
func (x rows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x rows) Err() error            { return x.r.Err() }
func (x rows) Close()                { x.r.Close() }
func (x rows) Columns() []string {
	f := x.r.FieldDescriptions()
	out := make([]string, len(f))
	for i := range f {
		out[i] = f[i].Name
	}
	return out
}

// tag wraps pgconn.CommandTag to satisfy CommandTag
type tag struct{ t pgconn.CommandTag }

func (t tag) String() string      { return t.t.String() }
func (t tag) RowsAffected() int64 { return t.t.RowsAffected() }
