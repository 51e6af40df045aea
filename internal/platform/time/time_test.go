package time

import (
	"testing"
	"time"

	perr "gaexport/internal/platform/errors"
	kit "gaexport/internal/platform/testkit"
)

func TestLoadLocation(t *testing.T) {
	for _, name := range []string{"", "local", " LOCAL "} {
		loc, err := LoadLocation(name)
		if err != nil || loc != time.Local {
			t.Fatalf("LoadLocation(%q) = %v, %v; want Local", name, loc, err)
		}
	}
	for _, name := range []string{"utc", "UTC", "Z"} {
		loc, err := LoadLocation(name)
		if err != nil || loc != time.UTC {
			t.Fatalf("LoadLocation(%q) = %v, %v; want UTC", name, loc, err)
		}
	}
	loc, err := LoadLocation("Europe/Berlin")
	if err != nil || loc.String() != "Europe/Berlin" {
		t.Fatalf("LoadLocation(Europe/Berlin) = %v, %v", loc, err)
	}
	_, err = LoadLocation("Mars/Olympus_Mons")
	kit.MustCode(t, err, perr.ErrorCodeValidation)
}

func TestClockISO_UTC(t *testing.T) {
	c := Clock{Location: time.UTC}
	got, err := c.ISO(1000)
	if err != nil || got != "1970-01-01T00:16:40" {
		t.Fatalf("ISO(1000) = %q, %v", got, err)
	}

	c.WithOffset = true
	got, err = c.ISO(1000)
	if err != nil || got != "1970-01-01T00:16:40+00:00" {
		t.Fatalf("ISO(1000) with offset = %q, %v", got, err)
	}
}

func TestClockISO_FixedZone(t *testing.T) {
	c := Clock{Location: time.FixedZone("X", -5*3600)}
	got, err := c.ISO(1000)
	if err != nil || got != "1969-12-31T19:16:40" {
		t.Fatalf("ISO(1000) in UTC-5 = %q, %v", got, err)
	}
	c.WithOffset = true
	got, _ = c.ISO(1000)
	if got != "1969-12-31T19:16:40-05:00" {
		t.Fatalf("offset render = %q", got)
	}
}

func TestClockISO_ZeroValueIsLocal(t *testing.T) {
	var c Clock
	want := time.Unix(1500000000, 0).In(time.Local).Format(LayoutNaive)
	got, err := c.ISO(1500000000)
	if err != nil || got != want {
		t.Fatalf("zero Clock ISO = %q, %v; want %q", got, err, want)
	}
	if Local().Location != time.Local {
		t.Fatalf("Local() should use time.Local")
	}
}

func TestClockISO_OutOfRange(t *testing.T) {
	c := Clock{Location: time.UTC}
	_, err := c.ISO(253402300800) // 10000-01-01T00:00:00Z
	kit.MustCode(t, err, perr.ErrorCodeCoercion)
	_, err = c.ISO(-62135596801) // one second before 0001-01-01
	kit.MustCode(t, err, perr.ErrorCodeCoercion)
	if _, err := c.ISO(253402300799); err != nil {
		t.Fatalf("9999-12-31T23:59:59 should be accepted: %v", err)
	}
}
