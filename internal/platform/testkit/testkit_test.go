package testkit

import (
	"os"
	"testing"

	perr "gaexport/internal/platform/errors"
)

func TestMustPanic(t *testing.T) {
	t.Parallel()

	MustPanic(t, func() {
		panic("boom")
	})
}

func TestMustNotPanic(t *testing.T) {
	t.Parallel()

	MustNotPanic(t, func() {})
}

func TestMustContain(t *testing.T) {
	t.Parallel()

	MustContain(t, `{"unique_visit_id":"1_100"}`, "1_100")
}

func TestMustCode(t *testing.T) {
	t.Parallel()

	MustCode(t, perr.JSONErrf("bad line"), perr.ErrorCodeJSON)
}

func TestWriteTemp(t *testing.T) {
	t.Parallel()

	p := WriteTemp(t, "in.jsonl", []byte("{}\n"))
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "{}\n" {
		t.Fatalf("WriteTemp roundtrip: %q %v", b, err)
	}
}
