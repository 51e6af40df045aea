package store

import (
	"context"
	"time"

	perr "gaexport/internal/platform/errors"
	chx "gaexport/internal/platform/store/ch"
	"gaexport/internal/platform/store/pg"
)

const (
	defaultConnectRetries = 20
	defaultPingTimeout    = 3 * time.Second
	defaultBackoffStart   = 150 * time.Millisecond
	defaultBackoffCeiling = 2 * time.Second
)

type backoff struct{ start, ceiling time.Duration }

func (b backoff) orDefault() backoff {
	if b.start <= 0 {
		return backoff{start: defaultBackoffStart, ceiling: defaultBackoffCeiling}
	}
	return b
}

var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, tracer, nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "pg: open")
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = defaultConnectRetries
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	bo := s.backoff.orDefault()

	// ping the pool directly so boot does not produce trace lines
	var lastErr error
	delay := bo.start
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = p.Pool.Ping(toCtx)
		cancel()

		if lastErr == nil {
			s.Log.Debug().Int("attempt", i+1).Msg("pg ready")
			return newPGAdapter(p), nil
		}
		s.Log.Debug().Err(lastErr).Int("attempt", i+1).Dur("retry_in", delay).Msg("pg not ready")
		if err := sleep(ctx, delay); err != nil {
			p.Close()
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "pg: connect cancelled")
		}
		delay = min(delay*2, bo.ceiling)
	}

	p.Close()
	return nil, perr.Wrapf(lastErr, perr.ErrorCodeDB, "pg: ping failed after %d attempts", attempts)
}

func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, AppName: cfg.AppName})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "ch: open")
	}
	a := newCHAdapter(c)
	if cfg.CH.LogSQL {
		a.log = s.Log.With().Str("component", "ch").Logger()
		a.trace = true
	}
	return a, nil
}
