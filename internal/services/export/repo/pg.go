package repo

import (
	"context"
	"fmt"
	"strings"

	"gaexport/internal/core/visit"
	"gaexport/internal/modkit/repokit"
	perr "gaexport/internal/platform/errors"
)

// pgSchema is applied by EnsureSchema; every statement is idempotent
var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS ga_visits (
		unique_visit_id  text        PRIMARY KEY,
		full_visitor_id  jsonb       NOT NULL,
		visit_id         jsonb       NOT NULL,
		visit_number     bigint      NOT NULL,
		visit_start_time text        NOT NULL,
		started_at       timestamptz NOT NULL,
		browser          jsonb       NOT NULL,
		country          jsonb       NOT NULL,
		loaded_at        timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS ga_hits (
		visit_id      text        NOT NULL,
		ordinal       integer     NOT NULL,
		hit_number    bigint      NOT NULL,
		hit_type      jsonb       NOT NULL,
		hit_timestamp text        NOT NULL,
		hit_at        timestamptz NOT NULL,
		page_path     jsonb       NOT NULL,
		page_title    jsonb       NOT NULL,
		hostname      jsonb       NOT NULL,
		PRIMARY KEY (visit_id, ordinal)
	)`,
	`CREATE INDEX IF NOT EXISTS ga_hits_hit_at_idx ON ga_hits (hit_at)`,
}

// hitCols is the number of bound parameters per hit row
const hitCols = 9

// hitsPerInsert keeps one statement well under the 65535 bind parameter limit
const hitsPerInsert = 1000

// Storage is the per-transaction view the PG mirror writes through
type Storage interface {
	UpsertVisit(ctx context.Context, v visit.Visit) error
	ReplaceHits(ctx context.Context, key string, hits []visit.Hit) error
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPGBinder binds Storage to a Queryer
func NewPGBinder() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// UpsertVisit implements Storage. A re-run of the same input, or a key
// collision, overwrites the earlier row
func (s *pg) UpsertVisit(ctx context.Context, v visit.Visit) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO ga_visits
			(unique_visit_id, full_visitor_id, visit_id, visit_number,
			visit_start_time, started_at, browser, country)
		VALUES ($1, $2::jsonb, $3::jsonb, $4, $5, $6, $7::jsonb, $8::jsonb)
		ON CONFLICT (unique_visit_id) DO UPDATE SET
			full_visitor_id  = EXCLUDED.full_visitor_id,
			visit_id         = EXCLUDED.visit_id,
			visit_number     = EXCLUDED.visit_number,
			visit_start_time = EXCLUDED.visit_start_time,
			started_at       = EXCLUDED.started_at,
			browser          = EXCLUDED.browser,
			country          = EXCLUDED.country,
			loaded_at        = now()`,
		v.UniqueVisitID, jsonText(v.FullVisitorID), jsonText(v.VisitID), v.VisitNumber,
		v.VisitStartTime, v.StartedAt, jsonText(v.Browser), jsonText(v.Country),
	)
	return err
}

// ReplaceHits implements Storage. Hits are keyed by position so repeated
// hit numbers survive
func (s *pg) ReplaceHits(ctx context.Context, key string, hits []visit.Hit) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM ga_hits WHERE visit_id = $1`, key); err != nil {
		return err
	}
	for lo := 0; lo < len(hits); lo += hitsPerInsert {
		hi := min(lo+hitsPerInsert, len(hits))
		if err := s.insertHits(ctx, hits[lo:hi], lo); err != nil {
			return err
		}
	}
	return nil
}

// insertHits writes one multi-row INSERT; first is the ordinal of hits[0]
func (s *pg) insertHits(ctx context.Context, hits []visit.Hit, first int) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO ga_hits
		(visit_id, ordinal, hit_number, hit_type, hit_timestamp, hit_at,
		page_path, page_title, hostname) VALUES `)

	args := make([]any, 0, len(hits)*hitCols)
	for i, h := range hits {
		if i > 0 {
			sb.WriteByte(',')
		}
		b := i*hitCols + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d::jsonb,$%d,$%d,$%d::jsonb,$%d::jsonb,$%d::jsonb)",
			b, b+1, b+2, b+3, b+4, b+5, b+6, b+7, b+8)
		args = append(args,
			h.VisitID, first+i, h.HitNumber, jsonText(h.HitType), h.HitTimestamp, h.At,
			jsonText(h.PagePath), jsonText(h.PageTitle), jsonText(h.Hostname),
		)
	}
	_, err := s.q.Exec(ctx, sb.String(), args...)
	return err
}

// PGMirror loads each record into Postgres in its own transaction
type PGMirror struct {
	tx   repokit.TxRunner
	bind repokit.Binder[Storage]
}

// NewPGMirror wraps tx. Hooks run at the start of every record transaction
func NewPGMirror(tx repokit.TxRunner, hooks ...repokit.BeginHook) *PGMirror {
	return &PGMirror{tx: repokit.WithBeginHooks(tx, hooks...), bind: NewPGBinder()}
}

// Name implements domain.Mirror
func (m *PGMirror) Name() string { return "pg" }

// EnsureSchema creates the mirror tables when missing
func (m *PGMirror) EnsureSchema(ctx context.Context) error {
	for _, stmt := range pgSchema {
		if _, err := m.tx.Exec(ctx, stmt); err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "pg: ensure schema")
		}
	}
	return nil
}

// loadAttempts bounds retries of a record transaction that hit a deadlock
// or serialization failure. Load is idempotent so a retry is safe
const loadAttempts = 2

// Load implements domain.Mirror
func (m *PGMirror) Load(ctx context.Context, v visit.Visit, hits []visit.Hit) error {
	var err error
	for i := 0; i < loadAttempts; i++ {
		err = repokit.InTx(ctx, m.tx, m.bind, func(st Storage) error {
			if err := st.UpsertVisit(ctx, v); err != nil {
				return err
			}
			return st.ReplaceHits(ctx, v.UniqueVisitID, hits)
		})
		if err == nil || !perr.IsTransientPG(err) {
			break
		}
	}
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "pg: load visit %s", v.UniqueVisitID)
	}
	return nil
}
