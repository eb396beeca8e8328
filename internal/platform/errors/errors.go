// Package errors provides the project error type: a closed set of error
// kinds with wrapping and metadata, inspected by code rather than by
// dynamic type checks
package errors

// Always import this package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode enumerates the supported error kinds.
// Values are stable for wire compatibility; add sparingly
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is for panics recovered by middleware
	ErrorCodePanic

	// ErrorCodeUnauthorized is for missing or invalid credentials
	ErrorCodeUnauthorized

	// ErrorCodeForbidden is for valid credentials that fail an access check
	ErrorCodeForbidden

	// ErrorCodeValidation is for client input defects (distinct from Forbidden)
	ErrorCodeValidation

	// ErrorCodeInvalidArgument is for bad parameters outside body validation
	ErrorCodeInvalidArgument

	// ErrorCodeJSON is for JSON parsing failures
	ErrorCodeJSON

	// ErrorCodeNotFound is for missing resources
	ErrorCodeNotFound

	// ErrorCodeConflict is for state conflicts, e.g. duplicate responses
	ErrorCodeConflict

	// ErrorCodeDuplicateKey is for unique constraint violations
	ErrorCodeDuplicateKey

	// ErrorCodeDependency is for failed calls to external collaborators.
	// Never folded into NotFound or Forbidden
	ErrorCodeDependency

	// ErrorCodeDB is for general database errors
	ErrorCodeDB
)

// HTTPStatusCode maps an ErrorCode to an HTTP status
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeValidation, ErrorCodeJSON:
		return http.StatusBadRequest
	case ErrorCodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict, ErrorCodeDuplicateKey:
		return http.StatusConflict
	case ErrorCodeDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the structured error with a machine-facing code, a developer
// facing message, an optional offending field, and a wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
}

// Wire is the JSON-serializable form returned by the API
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
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

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// ToWire converts to the wire payload
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// As unwraps err and returns (*Error, true) when it is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// WireFrom converts any error into a wire payload with best-effort mapping
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

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

// WithField attaches a field name (copy-on-write); foreign errors pass through
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// Constructors

// New returns a fresh *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a fresh *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns an *Error wrapping orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns an *Error wrapping orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// Sugar

// Unauthorizedf builds an unauthenticated error
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }

// Forbiddenf builds a forbidden error
func Forbiddenf(format string, a ...any) error { return Newf(ErrorCodeForbidden, format, a...) }

// Validationf builds a validation error
func Validationf(format string, a ...any) error { return Newf(ErrorCodeValidation, format, a...) }

// InvalidArgf builds an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// JSONErrf builds a JSON parsing error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// NotFoundf builds a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// Conflictf builds a conflict error
func Conflictf(format string, a ...any) error { return Newf(ErrorCodeConflict, format, a...) }

// Dependencyf builds a dependency failure error
func Dependencyf(format string, a ...any) error { return Newf(ErrorCodeDependency, format, a...) }

// DBf builds a database error
func DBf(format string, a ...any) error { return Newf(ErrorCodeDB, format, a...) }

// PanicErrf builds a recovered panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// Internalf builds a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }

// HTTP bundles status and wire payload in one call
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}
