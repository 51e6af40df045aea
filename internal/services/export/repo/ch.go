package repo

import (
	"context"
	"encoding/json"
	"strings"

	"gaexport/internal/core/visit"
	perr "gaexport/internal/platform/errors"
	"gaexport/internal/platform/store"
)

// chSchema is applied by EnsureSchema. Column order is the insert order.
// Verbatim fields hold the decoded text of a JSON string, the compact JSON
// text of any other value, and NULL for JSON null
var chSchema = []string{
	`CREATE TABLE IF NOT EXISTS ga_visits (
		unique_visit_id  String,
		full_visitor_id  Nullable(String),
		visit_id         Nullable(String),
		visit_number     Int64,
		visit_start_time String,
		started_at       DateTime64(0, 'UTC'),
		browser          Nullable(String),
		country          Nullable(String)
	) ENGINE = ReplacingMergeTree
	ORDER BY unique_visit_id`,
	`CREATE TABLE IF NOT EXISTS ga_hits (
		visit_id      String,
		ordinal       UInt32,
		hit_number    Int64,
		hit_type      Nullable(String),
		hit_timestamp String,
		hit_at        DateTime64(0, 'UTC'),
		page_path     Nullable(String),
		page_title    Nullable(String),
		hostname      Nullable(String)
	) ENGINE = ReplacingMergeTree
	PARTITION BY toYYYYMM(hit_at)
	ORDER BY (visit_id, ordinal)`,
}

// CHMirror appends each record to ClickHouse, one batch per table
type CHMirror struct {
	ch store.Clickhouse
}

// NewCHMirror wraps a clickhouse seam
func NewCHMirror(ch store.Clickhouse) *CHMirror { return &CHMirror{ch: ch} }

// Name implements domain.Mirror
func (m *CHMirror) Name() string { return "ch" }

// EnsureSchema creates the mirror tables when missing
func (m *CHMirror) EnsureSchema(ctx context.Context) error {
	for _, stmt := range chSchema {
		if err := m.ch.Exec(ctx, stmt); err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "ch: ensure schema")
		}
	}
	return nil
}

// Load implements domain.Mirror
func (m *CHMirror) Load(ctx context.Context, v visit.Visit, hits []visit.Hit) error {
	if err := m.ch.Insert(ctx, VisitsTable, [][]any{visitRow(v)}); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "ch: insert visit %s", v.UniqueVisitID)
	}
	if len(hits) == 0 {
		return nil
	}
	rows := make([][]any, len(hits))
	for i, h := range hits {
		rows[i] = hitRow(uint32(i), h)
	}
	if err := m.ch.Insert(ctx, HitsTable, rows); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "ch: insert %d hits for %s", len(hits), v.UniqueVisitID)
	}
	return nil
}

func visitRow(v visit.Visit) []any {
	return []any{
		v.UniqueVisitID,
		chText(v.FullVisitorID),
		chText(v.VisitID),
		v.VisitNumber,
		v.VisitStartTime,
		v.StartedAt.UTC(),
		chText(v.Browser),
		chText(v.Country),
	}
}

func hitRow(ordinal uint32, h visit.Hit) []any {
	return []any{
		h.VisitID,
		ordinal,
		h.HitNumber,
		chText(h.HitType),
		h.HitTimestamp,
		h.At.UTC(),
		chText(h.PagePath),
		chText(h.PageTitle),
		chText(h.Hostname),
	}
}

// chText renders a verbatim field for a Nullable(String) column
func chText(raw json.RawMessage) *string {
	t := jsonText(raw)
	if t == "null" {
		return nil
	}
	if strings.HasPrefix(t, `"`) {
		var str string
		if err := json.Unmarshal([]byte(t), &str); err == nil {
			return &str
		}
	}
	return &t
}
