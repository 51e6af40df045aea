package pg

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTestDB opens a PG client for tests against dsn and runs fn
// The client is closed automatically on test cleanup
func WithTestDB(t *testing.T, dsn string, cfg Config, fn func(p *PG)) {
	t.Helper()
	cfg.URL = dsn
	client, err := Open(context.Background(), cfg, nil, func(pc *pgxpool.Config) { pc.MinConns = 1 })
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(client.Close)
	fn(client)
}

// AcquireConn returns one acquired connection and releases it on cleanup
func AcquireConn(t *testing.T, p *PG, ctx context.Context) *pgxpool.Conn {
	t.Helper()
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	t.Cleanup(conn.Release)
	return conn
}
