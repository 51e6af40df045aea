package errors

import (
	stderrs "errors"
	"fmt"
	"strings"
	"testing"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeInvalidArgument, ExitUsage},
		{ErrorCodeValidation, ExitUsage},
		{ErrorCodeJSON, ExitDataErr},
		{ErrorCodeMissingField, ExitDataErr},
		{ErrorCodeCoercion, ExitDataErr},
		{ErrorCodeNoInput, ExitNoInput},
		{ErrorCodeIO, ExitIOErr},
		{ErrorCodeDB, ExitUnavailable},
		{ErrorCodePanic, ExitSoftware},
		{ErrorCodeUnknown, ExitSoftware},
		{9999, ExitSoftware}, // default branch
	}
	for _, c := range cases {
		if got := ExitCodeOf(c.code); got != c.want {
			t.Fatalf("ExitCodeOf(%v) = %d, want %d", c.code, got, c.want)
		}
	}
	if ExitCode(nil) != ExitOK {
		t.Fatalf("ExitCode(nil) should be 0")
	}
	if ExitCode(stderrs.New("plain")) != ExitSoftware {
		t.Fatalf("foreign errors should map to software error")
	}
}

func TestCodeString(t *testing.T) {
	if ErrorCodeMissingField.String() != "missing_field" || ErrorCode(999).String() != "unknown" {
		t.Fatalf("unexpected names: %s %s", ErrorCodeMissingField, ErrorCode(999))
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}
	if e.StackTrace() != nil {
		t.Fatalf("nil *Error should have no stack")
	}

	e1 := New(ErrorCodeValidation, "bad stuff")
	if CodeOf(e1) != ErrorCodeValidation {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeJSON, "bad json %d", 12)
	if got := e2.Error(); got != "bad json 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	src := stderrs.New("root")
	e3 := Wrap(src, ErrorCodeIO, "write failed")
	if u := stderrs.Unwrap(e3); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	if got := e3.Error(); got != "write failed: root" {
		t.Fatalf("Wrap().Error = %q", got)
	}
	if Root(fmt.Errorf("outer: %w", e3)) != src {
		t.Fatalf("Root should reach the deepest cause")
	}
	if Root(nil) != nil {
		t.Fatalf("Root(nil) should be nil")
	}
	e4 := Wrapf(src, ErrorCodeDB, "insert %s", "ga_visits")
	if !IsCode(e4, ErrorCodeDB) || !stderrs.Is(e4, src) {
		t.Fatalf("Wrapf lost code or cause")
	}
	if WrapIf(nil, ErrorCodeIO, "x") != nil {
		t.Fatalf("WrapIf(nil) should be nil")
	}
	if !IsCode(WrapIf(src, ErrorCodeIO, "x"), ErrorCodeIO) {
		t.Fatalf("WrapIf should wrap")
	}
}

func TestMutatorsCopyOnWrite(t *testing.T) {
	base := MissingFieldf("device", "missing key %q", "device")
	withOp := WithOp(base, "line 3")
	withField := WithField(withOp, "device.browser")

	b, _ := As(base)
	f, _ := As(withField)
	if b.Op() != "" || b.Field() != "device" {
		t.Fatalf("base mutated: op=%q field=%q", b.Op(), b.Field())
	}
	if f.Op() != "line 3" || f.Field() != "device.browser" {
		t.Fatalf("mutations missing: op=%q field=%q", f.Op(), f.Field())
	}

	plain := stderrs.New("x")
	if WithOp(plain, "y") != plain || WithField(plain, "z") != plain {
		t.Fatalf("foreign errors must pass through unchanged")
	}
}

func TestSugarCodes(t *testing.T) {
	cases := []struct {
		err  error
		code ErrorCode
	}{
		{MissingFieldf("hits", "missing"), ErrorCodeMissingField},
		{Coercionf("visitNumber", "bad int"), ErrorCodeCoercion},
		{JSONErrf("bad"), ErrorCodeJSON},
		{InvalidArgf("bad"), ErrorCodeInvalidArgument},
		{Validationf("bad"), ErrorCodeValidation},
		{IOf("bad"), ErrorCodeIO},
		{DBf("bad"), ErrorCodeDB},
		{PanicErrf("bad"), ErrorCodePanic},
	}
	for _, c := range cases {
		if CodeOf(c.err) != c.code {
			t.Fatalf("%v: code = %v, want %v", c.err, CodeOf(c.err), c.code)
		}
	}
	if e, _ := As(Coercionf("visitNumber", "bad")); e.Field() != "visitNumber" {
		t.Fatalf("Coercionf lost field")
	}
}

func TestStackTraceCapturesCaller(t *testing.T) {
	err := IOf("disk full")
	e, ok := As(err)
	if !ok {
		t.Fatalf("expected *Error")
	}
	st := e.StackTrace()
	if len(st) == 0 {
		t.Fatalf("expected captured frames")
	}
	top := fmt.Sprintf("%+v", st[0])
	if !strings.Contains(top, "TestStackTraceCapturesCaller") {
		t.Fatalf("top frame = %q, want the calling test", top)
	}
}
