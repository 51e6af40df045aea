// Package visit flattens one web-analytics session record into a visit row
// and one row per hit.
//
// The transform is pure: no I/O, no shared state, same input and Options give
// the same output. Field extraction is direct with no defaults, so a missing
// key fails the record.
package visit

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	perr "gaexport/internal/platform/errors"
	ptime "gaexport/internal/platform/time"
)

// Input is one decoded session line: top-level keys with raw values
type Input = map[string]json.RawMessage

// KeySeparator joins visitor and visit ids into the composite key. It is not
// escaped, so ("a_b","c") and ("a","b_c") share a key
const KeySeparator = "_"

// Options controls the transform
type Options struct {
	// Clock renders epoch seconds; the zero value uses the process-local zone
	Clock ptime.Clock
}

// Visit is the flat visit row. Verbatim fields keep the input's JSON value
type Visit struct {
	UniqueVisitID  string          `json:"unique_visit_id"`
	FullVisitorID  json.RawMessage `json:"full_visitor_id"`
	VisitID        json.RawMessage `json:"visit_id"`
	VisitNumber    int64           `json:"visit_number"`
	VisitStartTime string          `json:"visit_start_time"`
	Browser        json.RawMessage `json:"browser"`
	Country        json.RawMessage `json:"country"`

	// StartedAt is the instant behind VisitStartTime, for mirrors
	StartedAt time.Time `json:"-"`
}

// Hit is the flat hit row. VisitID carries the parent's UniqueVisitID
type Hit struct {
	VisitID      string          `json:"visit_id"`
	HitNumber    int64           `json:"hit_number"`
	HitType      json.RawMessage `json:"hit_type"`
	HitTimestamp string          `json:"hit_timestamp"`
	PagePath     json.RawMessage `json:"page_path"`
	PageTitle    json.RawMessage `json:"page_title"`
	Hostname     json.RawMessage `json:"hostname"`

	// At is the instant behind HitTimestamp, for mirrors
	At time.Time `json:"-"`
}

// Transform maps one session record to its visit row and hit rows, in the
// order the hits appear. Fields are read in output order so the first
// failing field is the one reported
func Transform(in Input, opt Options) (Visit, []Hit, error) {
	var v Visit

	fullVisitorID, err := field(in, "", "fullVisitorId")
	if err != nil {
		return Visit{}, nil, err
	}
	visitID, err := field(in, "", "visitId")
	if err != nil {
		return Visit{}, nil, err
	}
	key := Key(fullVisitorID) + KeySeparator + Key(visitID)

	v.UniqueVisitID = key
	v.FullVisitorID = fullVisitorID
	v.VisitID = visitID

	if v.VisitNumber, err = intField(in, "", "visitNumber"); err != nil {
		return Visit{}, nil, err
	}
	start, err := intField(in, "", "visitStartTime")
	if err != nil {
		return Visit{}, nil, err
	}
	if v.VisitStartTime, err = iso(opt.Clock, start, "visitStartTime"); err != nil {
		return Visit{}, nil, err
	}
	v.StartedAt = opt.Clock.Instant(start)

	if v.Browser, err = nested(in, "", "device", "browser"); err != nil {
		return Visit{}, nil, err
	}
	if v.Country, err = nested(in, "", "geoNetwork", "country"); err != nil {
		return Visit{}, nil, err
	}

	rawHits, err := field(in, "", "hits")
	if err != nil {
		return Visit{}, nil, err
	}
	items, err := array(rawHits, "hits")
	if err != nil {
		return Visit{}, nil, err
	}

	hits := make([]Hit, 0, len(items))
	for i, item := range items {
		h, err := hit(item, "hits["+strconv.Itoa(i)+"]", key, start, opt.Clock)
		if err != nil {
			return Visit{}, nil, err
		}
		hits = append(hits, h)
	}
	return v, hits, nil
}

func hit(raw json.RawMessage, path, key string, start int64, clock ptime.Clock) (Hit, error) {
	h := Hit{VisitID: key}

	obj, err := object(raw, path)
	if err != nil {
		return Hit{}, err
	}
	if h.HitNumber, err = intField(obj, path, "hitNumber"); err != nil {
		return Hit{}, err
	}
	if h.HitType, err = field(obj, path, "type"); err != nil {
		return Hit{}, err
	}
	offsetMs, err := intField(obj, path, "time")
	if err != nil {
		return Hit{}, err
	}
	at, ok := addSeconds(start, FloorDiv(offsetMs, 1000))
	if !ok {
		return Hit{}, perr.Coercionf(join(path, "time"), "hit time %d overflows visit start %d", offsetMs, start)
	}
	if h.HitTimestamp, err = iso(clock, at, join(path, "time")); err != nil {
		return Hit{}, err
	}
	h.At = clock.Instant(at)

	page, err := field(obj, path, "page")
	if err != nil {
		return Hit{}, err
	}
	pagePath := join(path, "page")
	pageObj, err := object(page, pagePath)
	if err != nil {
		return Hit{}, err
	}
	if h.PagePath, err = field(pageObj, pagePath, "pagePath"); err != nil {
		return Hit{}, err
	}
	if h.PageTitle, err = field(pageObj, pagePath, "pageTitle"); err != nil {
		return Hit{}, err
	}
	if h.Hostname, err = field(pageObj, pagePath, "hostname"); err != nil {
		return Hit{}, err
	}
	return h, nil
}

// FloorDiv divides rounding toward negative infinity, so -1500ms is -2s
func FloorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func addSeconds(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func iso(c ptime.Clock, sec int64, path string) (string, error) {
	s, err := c.ISO(sec)
	if err != nil {
		return "", perr.WithField(err, path)
	}
	return s, nil
}
