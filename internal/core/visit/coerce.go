package visit

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	perr "gaexport/internal/platform/errors"
)

// Int coerces a raw JSON value to an integer. Accepted: integer numbers,
// numbers with a fraction (truncated toward zero), booleans (1/0) and
// strings holding a base-10 integer with optional surrounding whitespace,
// sign and single underscores between digits. Everything else fails with a
// coercion error tagged with path
func Int(raw json.RawMessage, path string) (int64, error) {
	raw = bytes.TrimSpace(raw)
	switch k := kind(raw); {
	case k == 't':
		return 1, nil
	case k == 'f':
		return 0, nil
	case k == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, perr.Coercionf(path, "%s: bad string %s", path, raw)
		}
		n, err := parseIntString(s)
		if err != nil {
			return 0, perr.Coercionf(path, "%s: invalid integer %q: %v", path, s, err)
		}
		return n, nil
	case k == '-' || (k >= '0' && k <= '9'):
		return numberInt(string(raw), path)
	}
	return 0, perr.Coercionf(path, "%s: cannot convert %s to integer", path, describe(raw))
}

func numberInt(lit, path string) (int64, error) {
	if isIntLiteral(lit) {
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return 0, perr.Coercionf(path, "%s: integer %s out of range", path, lit)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, perr.Coercionf(path, "%s: invalid number %s", path, lit)
	}
	t := math.Trunc(f)
	if math.IsInf(t, 0) || math.IsNaN(t) || t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, perr.Coercionf(path, "%s: number %s out of integer range", path, lit)
	}
	return int64(t), nil
}

var errSyntax = errors.New("not a base-10 integer")

func parseIntString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	digits := s
	if digits != "" && (digits[0] == '+' || digits[0] == '-') {
		digits = digits[1:]
	}
	if digits == "" || digits[0] == '_' || digits[len(digits)-1] == '_' || strings.Contains(digits, "__") {
		return 0, errSyntax
	}
	for i := 0; i < len(digits); i++ {
		if c := digits[i]; c != '_' && (c < '0' || c > '9') {
			return 0, errSyntax
		}
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, errors.New("out of range")
		}
		return 0, errSyntax
	}
	return n, nil
}
