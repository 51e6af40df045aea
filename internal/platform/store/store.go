// Package store opens the optional mirror databases behind small seams
package store

import (
	"context"
	"errors"

	perr "gaexport/internal/platform/errors"
	"gaexport/internal/platform/logger"
)

// Store holds whichever mirror backends were enabled.
// The zero value has none and is safe to Guard and Close
type Store struct {
	// Log is handed to the pg tracer and ch adapter
	Log logger.Logger

	// PG is nil unless the postgres mirror is on
	PG TxRunner

	// CH is nil unless the clickhouse mirror is on
	CH Clickhouse

	backoff backoff
}

// Row is a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a write did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the sql surface mirror binders run statements on
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner runs fn in one transaction, committing when fn returns nil
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse covers DDL, batch inserts and reads against clickhouse
type Clickhouse interface {
	Exec(ctx context.Context, sql string, args ...any) error
	// Insert appends rows to table as one batch, columns in table order
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger is implemented by backends Guard can probe
type Pinger interface{ Ping(context.Context) error }

// Open connects the backends enabled in cfg; the others stay nil
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	s.Log = s.Log.With().Str("component", "store").Logger()

	if cfg.PG.Enabled {
		pgc, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = pgc
	}

	if cfg.CH.Enabled {
		chc, err := openCH(ctx, cfg, s)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.CH = chc
	}

	return s, nil
}

// Guard pings every configured seam and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return perr.New(perr.ErrorCodeDB, "nil store")
	}
	var errs []error
	if p, ok := s.PG.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, perr.Wrap(err, perr.ErrorCodeDB, "pg"))
		}
	}
	if p, ok := s.CH.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, perr.Wrap(err, perr.ErrorCodeDB, "ch"))
		}
	}
	return errors.Join(errs...)
}

// Close closes all initialized backends gracefully
// nil backends are ignored
func (s *Store) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error

	if s.CH != nil {
		if e := s.CH.Close(); e != nil {
			errs = append(errs, e)
		}
	}

	if c, ok := s.PG.(interface{ Close() error }); ok {
		if e := c.Close(); e != nil {
			errs = append(errs, e)
		}
	}

	return errors.Join(errs...)
}
