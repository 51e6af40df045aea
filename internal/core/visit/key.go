package visit

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Key renders an id value for the composite visit key. Strings appear
// without quotes, numbers as written (floats in shortest round-trip form),
// booleans and null as True, False and None.
//
// Objects and arrays render as compact JSON ({"a":1}), not the single-quoted
// form ({'a': 1}) the legacy exporter produced. Ids are scalars in practice, so
// keys only differ from legacy output for malformed input
func Key(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	switch kind(raw) {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	case 't':
		return "True"
	case 'f':
		return "False"
	case 'n':
		return "None"
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
		return string(raw)
	case 0:
		return ""
	}
	return numberKey(string(raw))
}

func numberKey(lit string) string {
	if isIntLiteral(lit) {
		if lit == "-0" {
			return "0"
		}
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !math.IsInf(f, 0) {
		return lit
	}
	return FormatFloat(f)
}

// FormatFloat renders f in shortest round-trip form: fixed notation with a
// trailing ".0" for decimal exponents in [-4, 16), exponent notation
// otherwise, and inf/nan spelled out
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

func isIntLiteral(lit string) bool {
	s := strings.TrimPrefix(lit, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
