package config

import (
	"testing"
	"time"

	kit "gaexport/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	exp := New().Prefix("EXPORT_")
	if got := exp.key("TIMEZONE"); got != "EXPORT_TIMEZONE" {
		t.Fatalf("key() = %q, want %q", got, "EXPORT_TIMEZONE")
	}
	pg := exp.Prefix("PG_")
	if got := pg.key("DBURL"); got != "EXPORT_PG_DBURL" {
		t.Fatalf("nested key() = %q, want %q", got, "EXPORT_PG_DBURL")
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_DSN", "  postgres://x ")
	if got := c.MustString("DSN"); got != "postgres://x" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("TZ", "local"); got != "local" {
		t.Fatalf("MayString default = %q", got)
	}
	t.Setenv("S_TZ", " utc ")
	if got := c.MayString("TZ", "local"); got != "utc" {
		t.Fatalf("MayString = %q", got)
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("N_")
	if got := c.MayInt("CONNS", 4); got != 4 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("N_CONNS", "9")
	if got := c.MayInt("CONNS", 4); got != 9 {
		t.Fatalf("MayInt = %d", got)
	}
	t.Setenv("N_CONNS", "lots")
	if got := c.MayInt("CONNS", 4); got != 4 {
		t.Fatalf("MayInt invalid = %d, want default", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("F_")
	if !c.MayBool("ON", true) {
		t.Fatalf("MayBool default lost")
	}
	t.Setenv("F_ON", "false")
	if c.MayBool("ON", true) {
		t.Fatalf("MayBool = true, want false")
	}
	t.Setenv("F_ON", "maybe")
	if !c.MayBool("ON", true) {
		t.Fatalf("MayBool invalid should use default")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("D_")
	if got := c.MayDuration("PING", time.Second); got != time.Second {
		t.Fatalf("MayDuration default = %v", got)
	}
	t.Setenv("D_PING", "250ms")
	if got := c.MayDuration("PING", time.Second); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	t.Setenv("D_PING", "soon")
	if got := c.MayDuration("PING", time.Second); got != time.Second {
		t.Fatalf("MayDuration invalid = %v", got)
	}
}
