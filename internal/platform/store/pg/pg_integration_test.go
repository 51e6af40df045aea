//go:build integration_pg

package pg

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"gaexport/internal/platform/store/pg/pgtest"
)

func TestOpen_JSONBRoundTrip_Integration(t *testing.T) {
	dsn := pgtest.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	WithTestDB(t, dsn, Config{AppName: "gaexport-it"}, func(p *PG) {
		// temp tables live on one session
		conn := AcquireConn(t, p, ctx)

		if _, err := conn.Exec(ctx, `create temporary table v (k text primary key, browser jsonb not null)`); err != nil {
			t.Fatalf("create temp table: %v", err)
		}

		batch := &pgx.Batch{}
		batch.Queue(`insert into v (k, browser) values ($1, $2::jsonb)`, "1_100", `"Chrome"`)
		batch.Queue(`insert into v (k, browser) values ($1, $2::jsonb)`, "1_101", `{"name":"Firefox"}`)
		if err := conn.SendBatch(ctx, batch).Close(); err != nil {
			t.Fatalf("batch insert: %v", err)
		}

		type row struct {
			K       string
			Browser string
		}
		rs, err := conn.Query(ctx, `select k, browser::text from v order by k`)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		got, err := pgx.CollectRows(rs, pgx.RowToStructByPos[row])
		if err != nil {
			t.Fatalf("collect: %v", err)
		}
		if len(got) != 2 || got[0].Browser != `"Chrome"` || got[1].Browser != `{"name": "Firefox"}` {
			t.Fatalf("unexpected rows: %#v", got)
		}

		var app string
		if err := conn.QueryRow(ctx, `select current_setting('application_name')`).Scan(&app); err != nil {
			t.Fatalf("application_name: %v", err)
		}
		if app != "gaexport-it" {
			t.Fatalf("application_name = %q", app)
		}
	})
}
