// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
	"runtime"

	pkgerrs "github.com/pkg/errors"
)

// ErrorCode classifies failures across the exporter
// Values are stable; they feed exit statuses
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is for recovered panics
	ErrorCodePanic

	// ErrorCodeInvalidArgument is for bad command-line usage
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is for configuration that fails validation
	ErrorCodeValidation

	// ErrorCodeJSON is for input lines that are not a JSON object
	ErrorCodeJSON

	// ErrorCodeMissingField is for a required input key that is absent or of the wrong shape
	ErrorCodeMissingField

	// ErrorCodeCoercion is for values that cannot be converted (int, timestamp)
	ErrorCodeCoercion

	// ErrorCodeIO is for failures opening, reading or writing streams
	ErrorCodeIO

	// ErrorCodeNoInput is for an input file that cannot be opened
	ErrorCodeNoInput

	// ErrorCodeDB is for mirror database errors
	ErrorCodeDB
)

// Exit statuses, sysexits(3) flavoured
const (
	ExitOK          = 0
	ExitUsage       = 64
	ExitDataErr     = 65
	ExitNoInput     = 66
	ExitUnavailable = 69
	ExitSoftware    = 70
	ExitIOErr       = 74
)

// ExitCodeOf turns an ErrorCode into a process exit status
func ExitCodeOf(c ErrorCode) int {
	switch c {
	case ErrorCodeInvalidArgument, ErrorCodeValidation:
		return ExitUsage
	case ErrorCodeJSON, ErrorCodeMissingField, ErrorCodeCoercion:
		return ExitDataErr
	case ErrorCodeNoInput:
		return ExitNoInput
	case ErrorCodeIO:
		return ExitIOErr
	case ErrorCodeDB:
		return ExitUnavailable
	case ErrorCodePanic, ErrorCodeUnknown:
		return ExitSoftware
	default:
		return ExitSoftware
	}
}

// ExitCode returns the exit status for any error; nil maps to ExitOK
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return ExitCodeOf(CodeOf(err))
}

// String names the code for logs
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodePanic:
		return "panic"
	case ErrorCodeInvalidArgument:
		return "invalid_argument"
	case ErrorCodeValidation:
		return "validation"
	case ErrorCodeJSON:
		return "json"
	case ErrorCodeMissingField:
		return "missing_field"
	case ErrorCodeCoercion:
		return "coercion"
	case ErrorCodeIO:
		return "io"
	case ErrorCodeNoInput:
		return "no_input"
	case ErrorCodeDB:
		return "db"
	default:
		return "unknown"
	}
}

// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; code is machine facing
// field names the offending input path; op tags where it happened
// orig is the wrapped cause; stack is captured at construction
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
	stack []uintptr
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// StackTrace exposes the construction stack in the pkg/errors shape, which
// zerolog's pkgerrors marshaler understands
func (e *Error) StackTrace() pkgerrs.StackTrace {
	if e == nil {
		return nil
	}
	st := make(pkgerrs.StackTrace, len(e.stack))
	for i, pc := range e.stack {
		st[i] = pkgerrs.Frame(pc)
	}
	return st
}

func callers() []uintptr {
	var pcs [32]uintptr
	// skip runtime.Callers, callers, and the constructor
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Mutators (copy-on-write)

// WithField attaches a field to an *Error. If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error. If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg, stack: callers()} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), stack: callers()}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig, stack: callers()}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig, stack: callers()}
}

// WrapIf wraps only when err != nil (helper for 1-liners)
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, msg: msg, orig: err, stack: callers()}
}

// Sugar

// MissingFieldf returns a missing field error tagged with the dotted input path
func MissingFieldf(field, format string, a ...any) error {
	return &Error{code: ErrorCodeMissingField, msg: fmt.Sprintf(format, a...), field: field, stack: callers()}
}

// Coercionf returns a coercion error tagged with the dotted input path
func Coercionf(field, format string, a ...any) error {
	return &Error{code: ErrorCodeCoercion, msg: fmt.Sprintf(format, a...), field: field, stack: callers()}
}

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error {
	return &Error{code: ErrorCodeJSON, msg: fmt.Sprintf(format, a...), stack: callers()}
}

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error {
	return &Error{code: ErrorCodeInvalidArgument, msg: fmt.Sprintf(format, a...), stack: callers()}
}

// Validationf returns a validation error
func Validationf(format string, a ...any) error {
	return &Error{code: ErrorCodeValidation, msg: fmt.Sprintf(format, a...), stack: callers()}
}

// IOf returns an I/O error
func IOf(format string, a ...any) error {
	return &Error{code: ErrorCodeIO, msg: fmt.Sprintf(format, a...), stack: callers()}
}

// DBf returns a mirror database error
func DBf(format string, a ...any) error {
	return &Error{code: ErrorCodeDB, msg: fmt.Sprintf(format, a...), stack: callers()}
}

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error {
	return &Error{code: ErrorCodePanic, msg: fmt.Sprintf(format, a...), stack: callers()}
}
