// Package errors is curator's structured error type.
// Import it as perr.
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error for retry decisions, exit codes and http mapping.
// Values are stable; append only.
type ErrorCode uint16

const (
	// ErrorCodeUnknown is an unclassified failure
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is a recovered panic
	ErrorCodePanic

	// ErrorCodeUnavailable is a transient failure; a retry may succeed
	ErrorCodeUnavailable

	// ErrorCodeTooManyRequests is remote rate limiting; also transient
	ErrorCodeTooManyRequests

	// ErrorCodeConflict is a state conflict, e.g. a duplicate run
	ErrorCodeConflict

	// ErrorCodeInvalidArgument is a bad input parameter
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is a struct validation failure
	ErrorCodeValidation

	// ErrorCodeNotFound is a missing entity, run or file
	ErrorCodeNotFound

	// ErrorCodeDuplicateKey is a unique constraint violation
	ErrorCodeDuplicateKey

	// ErrorCodeDB is any other storage failure
	ErrorCodeDB

	// ErrorCodeFatalConfig is a precondition failure that aborts a run before dispatch
	ErrorCodeFatalConfig

	// ErrorCodeProcessing is a domain failure inside one work unit
	ErrorCodeProcessing

	// ErrorCodeJSON is a malformed request body or query
	ErrorCodeJSON

	// ErrorCodeUnauthorized is a missing or wrong api token
	ErrorCodeUnauthorized
)

var codeNames = map[ErrorCode]string{
	ErrorCodeUnknown:         "unknown",
	ErrorCodePanic:           "panic",
	ErrorCodeUnavailable:     "unavailable",
	ErrorCodeTooManyRequests: "too_many_requests",
	ErrorCodeConflict:        "conflict",
	ErrorCodeInvalidArgument: "invalid_argument",
	ErrorCodeValidation:      "validation",
	ErrorCodeNotFound:        "not_found",
	ErrorCodeDuplicateKey:    "duplicate_key",
	ErrorCodeDB:              "db",
	ErrorCodeFatalConfig:     "fatal_config",
	ErrorCodeProcessing:      "processing",
	ErrorCodeJSON:            "json",
	ErrorCodeUnauthorized:    "unauthorized",
}

// String returns the snake_case name of the code
func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", uint16(c))
}

// HTTPStatusCode maps a code to an http status
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case ErrorCodeValidation, ErrorCodeFatalConfig, ErrorCodeJSON:
		return http.StatusBadRequest
	case ErrorCodeConflict, ErrorCodeDuplicateKey:
		return http.StatusConflict
	case ErrorCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a code, a message, an optional field and op label, and the wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Wire is the JSON form returned by the status API
type Wire struct {
	Code    ErrorCode `json:"code"`
	Name    string    `json:"name"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.msg
	if e.op != "" {
		msg = e.op + ": " + msg
	}
	if e.orig != nil {
		return msg + ": " + e.orig.Error()
	}
	return msg
}

// Unwrap returns the cause
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if any
func (e *Error) Op() string { return e.op }

// Message returns the message without op or cause
func (e *Error) Message() string { return e.msg }

// WireFrom converts any error to its wire payload
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return Wire{Code: e.code, Name: e.code.String(), Message: e.msg, Field: e.field}
	}
	return Wire{Code: ErrorCodeUnknown, Name: ErrorCodeUnknown.String(), Message: err.Error()}
}

// Root returns the innermost cause
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

// As returns the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns err's code, Unknown for foreign errors
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code
func IsCode(err error, code ErrorCode) bool { return err != nil && CodeOf(err) == code }

// HTTPStatus maps any error to an http status
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// WithField returns a copy of err with field set; foreign errors are returned unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp returns a copy of err labelled with op; foreign errors are returned unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// New returns an error with code and msg
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns an error with code and a formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap wraps orig with code and msg
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf wraps orig with code and a formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// WrapIf wraps only a non-nil err
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// Unavailablef returns a transient error
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }

// FatalConfigf returns a run-aborting precondition error
func FatalConfigf(format string, a ...any) error { return Newf(ErrorCodeFatalConfig, format, a...) }

// Processingf returns a per-entity domain failure
func Processingf(format string, a ...any) error { return Newf(ErrorCodeProcessing, format, a...) }

// PanicErrf returns a recovered panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// JSONErrf returns a request decoding error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// Unauthorizedf returns an authentication error
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }

// DBf returns a storage error
func DBf(format string, a ...any) error { return Newf(ErrorCodeDB, format, a...) }

// ErrNotFound is the shared not found sentinel
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// IsTransient reports whether a retry of the same call may succeed
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	}
	return IsRetryable(err)
}

// IsFatalConfig reports whether err must abort a run before any unit starts
func IsFatalConfig(err error) bool { return IsCode(err, ErrorCodeFatalConfig) }
