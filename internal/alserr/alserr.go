// Package alserr defines the stable error taxonomy surfaced by every ALS
// component.
package alserr

import "fmt"

// Code is a stable discriminant for an ALS error. Callers should switch on
// Code() rather than on the error's dynamic type or message text.
type Code string

const (
	CodeCSVParse       Code = "CSV_PARSE"
	CodeJSONParse      Code = "JSON_PARSE"
	CodeAlsSyntax      Code = "ALS_SYNTAX"
	CodeInvalidDictRef Code = "INVALID_DICT_REF"
	CodeRangeOverflow  Code = "RANGE_OVERFLOW"
	CodeVersionMismatch Code = "VERSION_MISMATCH"
	CodeColumnMismatch Code = "COLUMN_MISMATCH"
	CodeIO             Code = "IO_ERROR"
	CodeInputTooLarge  Code = "INPUT_TOO_LARGE"
	CodeCancelled      Code = "CANCELLED"
)

// Error is the concrete error type for every failure kind above. It
// carries a stable Code, a human-readable message, and an optional byte
// offset identifying the first offending token (0 when not applicable).
type Error struct {
	code    Code
	message string
	offset  int64
	hasOff  bool
	cause   error
}

// New builds an Error with no offset information.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf builds an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// AtOffset attaches the byte offset of the first offending token.
func (e *Error) AtOffset(offset int64) *Error {
	e.offset = offset
	e.hasOff = true
	return e
}

// Wrap attaches an underlying cause, preserved for errors.Unwrap/errors.Is.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

// Code reports the stable discriminant for this error.
func (e *Error) Code() Code { return e.code }

// Offset reports the byte offset of the first offending token, if known.
func (e *Error) Offset() (int64, bool) { return e.offset, e.hasOff }

func (e *Error) Error() string {
	if e.hasOff {
		if e.cause != nil {
			return fmt.Sprintf("%s at byte %d: %s: %v", e.code, e.offset, e.message, e.cause)
		}
		return fmt.Sprintf("%s at byte %d: %s", e.code, e.offset, e.message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same Code, so that
// errors.Is(err, alserr.New(alserr.CodeCancelled, "")) style sentinel
// comparisons work without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code == e.code
}

// CodeOf extracts the Code from err if it is (or wraps) an *Error.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if as(err, &e) {
		return e.code, true
	}
	return "", false
}

// as is a tiny local shim so this package does not need to import errors
// twice in call sites; kept here to keep the public API surface small.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
