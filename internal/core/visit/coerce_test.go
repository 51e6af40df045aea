package visit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "gaexport/internal/platform/errors"
	"gaexport/internal/platform/testkit"
)

func TestInt_Accepts(t *testing.T) {
	cases := map[string]int64{
		`42`:                    42,
		`-7`:                    -7,
		`"42"`:                  42,
		`" 42\n"`:               42,
		`"+5"`:                  5,
		`"-5"`:                  -5,
		`"1_000"`:               1000,
		`3.9`:                   3,
		`-3.9`:                  -3,
		`1e3`:                   1000,
		`true`:                  1,
		`false`:                 0,
		`"9223372036854775807"`: 9223372036854775807,
	}
	for in, want := range cases {
		got, err := Int(json.RawMessage(in), "x")
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestInt_Rejects(t *testing.T) {
	for _, in := range []string{
		`null`, `"abc"`, `""`, `"1.5"`, `"_1"`, `"1_"`, `"1__0"`, `"0x10"`, `{}`, `[]`,
		`"9223372036854775808"`, `99999999999999999999`, `1e300`,
	} {
		_, err := Int(json.RawMessage(in), "hits[0].time")
		testkit.MustCode(t, err, perr.ErrorCodeCoercion)
		e, _ := perr.As(err)
		assert.Equal(t, "hits[0].time", e.Field(), in)
	}
}

func TestKey(t *testing.T) {
	cases := map[string]string{
		`"abc"`:                   "abc",
		`"a\"b"`:                  `a"b`,
		`123`:                     "123",
		`-0`:                      "0",
		`12345678901234567890123`: "12345678901234567890123",
		`1.5`:                     "1.5",
		`1.0`:                     "1.0",
		`1e3`:                     "1000.0",
		`1e16`:                    "1e+16",
		`0.00001`:                 "1e-05",
		`0.0001`:                  "0.0001",
		`1e400`:                   "inf",
		`true`:                    "True",
		`false`:                   "False",
		`null`:                    "None",
		`[1, 2]`:                  "[1,2]",
		`{"a": 1}`:                `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, Key(json.RawMessage(in)), in)
	}
}
