package module

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaexport/internal/adapters/ingest/jsonl"
	"gaexport/internal/modkit"
	"gaexport/internal/platform/config"
	perr "gaexport/internal/platform/errors"
	"gaexport/internal/platform/store"
	"gaexport/internal/platform/testkit"
	"gaexport/internal/services/export/repo"
)

func defaults() Options {
	return Options{TimeZone: "utc", PGMaxConns: 4, PGSlowMs: 500}
}

func TestFromConfig_Defaults(t *testing.T) {
	for _, k := range []string{"EXPORT_TIMEZONE", "EXPORT_MIRROR_PG", "EXPORT_PG_MAX_CONNS", "EXPORT_LEGACY_EXIT_ZERO"} {
		t.Setenv(k, "")
	}
	o := FromConfig(config.New())
	assert.Equal(t, "local", o.TimeZone)
	assert.False(t, o.MirrorPG)
	assert.False(t, o.LegacyExitZero)
	assert.Equal(t, 4, o.PGMaxConns)
}

func TestFromConfig_Env(t *testing.T) {
	t.Setenv("EXPORT_TIMEZONE", "Europe/Berlin")
	t.Setenv("EXPORT_TIMESTAMP_OFFSET", "true")
	t.Setenv("EXPORT_MIRROR_PG", "1")
	t.Setenv("EXPORT_PG_DBURL", "postgres://u:p@db:5432/ga")
	t.Setenv("EXPORT_PG_MAX_CONNS", "8")

	o := FromConfig(config.New())
	assert.Equal(t, "Europe/Berlin", o.TimeZone)
	assert.True(t, o.TimestampOffset)
	assert.True(t, o.MirrorPG)
	assert.Equal(t, "postgres://u:p@db:5432/ga", o.PGURL)
	assert.Equal(t, 8, o.PGMaxConns)

	c, err := o.Clock()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", c.Location.String())
	assert.True(t, c.WithOffset)
}

func TestNew_ValidatesOptions(t *testing.T) {
	o := defaults()
	o.MirrorPG = true
	_, err := New(modkit.Deps{}, o)
	testkit.MustCode(t, err, perr.ErrorCodeValidation)
	e, _ := perr.As(err)
	assert.Equal(t, "EXPORT_PG_DBURL", e.Field())

	o = defaults()
	o.TimeZone = "Mars/Olympus"
	_, err = New(modkit.Deps{}, o)
	testkit.MustCode(t, err, perr.ErrorCodeValidation)
}

func TestNew_MirrorNeedsConnection(t *testing.T) {
	o := defaults()
	o.MirrorCH = true
	o.CHURL = "clickhouse://localhost:9000/ga"
	_, err := New(modkit.Deps{}, o)
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
}

// nopCH satisfies store.Clickhouse
type nopCH struct{ execs int }

func (n *nopCH) Exec(context.Context, string, ...any) error                { n.execs++; return nil }
func (n *nopCH) Insert(context.Context, string, [][]any) error             { return nil }
func (n *nopCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (n *nopCH) Close() error                                              { return nil }

func TestModule_PrepareAndRun(t *testing.T) {
	o := defaults()
	o.MirrorCH = true
	o.CHURL = "clickhouse://localhost:9000/ga"
	ch := &nopCH{}

	m, err := New(modkit.Deps{Log: zerolog.Nop(), CH: ch}, o)
	require.NoError(t, err)
	assert.Equal(t, "export", m.Name())
	ports := m.Ports().(Ports)
	require.Len(t, ports.Mirrors, 1)
	assert.IsType(t, &repo.CHMirror{}, ports.Mirrors[0])

	require.NoError(t, m.Prepare(context.Background()))
	assert.Equal(t, 2, ch.execs)

	in := `{"fullVisitorId":"1","visitId":"100","visitNumber":"1","visitStartTime":"1000",` +
		`"device":{"browser":"Chrome"},"geoNetwork":{"country":"US"},"hits":[]}` + "\n"
	rd, err := jsonl.NewReader(strings.NewReader(in))
	require.NoError(t, err)
	var visits, hits bytes.Buffer
	vw, hw := jsonl.NewWriter(&visits), jsonl.NewWriter(&hits)

	st, err := m.Run(context.Background(), rd, vw, hw)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Records)
	assert.Contains(t, visits.String(), `"visit_start_time":"1970-01-01T00:16:40"`)
	assert.Equal(t, time.UTC, m.clock.Clock.Location)
}
