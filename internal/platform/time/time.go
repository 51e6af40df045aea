// Package time contains time related helpers
package time

import (
	"strings"
	"time"

	perr "gaexport/internal/platform/errors"
)

// Layouts for ISO-8601 wall-clock rendering, second precision
const (
	LayoutNaive  = "2006-01-02T15:04:05"
	LayoutOffset = "2006-01-02T15:04:05-07:00"
)

// Clock renders epoch seconds as ISO-8601 in a fixed location.
// The zero Clock renders in the process-local zone without an offset
type Clock struct {
	Location   *time.Location
	WithOffset bool
}

// Local returns the default clock: process time zone, no offset suffix
func Local() Clock { return Clock{Location: time.Local} }

// LoadLocation resolves "local", "utc" or an IANA zone name
func LoadLocation(name string) (*time.Location, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "local":
		return time.Local, nil
	case "utc", "z":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(name))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "unknown time zone %q", name)
	}
	return loc, nil
}

// Instant converts epoch seconds to a time in the clock's location
func (c Clock) Instant(sec int64) time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(sec, 0).In(loc)
}

// ISO formats epoch seconds. Years outside 1..9999 are rejected since they
// have no four-digit ISO-8601 form
func (c Clock) ISO(sec int64) (string, error) {
	t := c.Instant(sec)
	if y := t.Year(); y < 1 || y > 9999 {
		return "", perr.Newf(perr.ErrorCodeCoercion, "timestamp %d out of range (year %d)", sec, y)
	}
	if c.WithOffset {
		return t.Format(LayoutOffset), nil
	}
	return t.Format(LayoutNaive), nil
}
