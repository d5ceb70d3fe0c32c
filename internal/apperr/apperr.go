// Package apperr defines the structured error surfaced by the account
// services and authorization guards. Every access or validation failure
// travels through this type; callers must not expect sentinel return
// values.
package apperr

import "fmt"

// Stable error codes. These are the machine-readable kinds a transport
// maps onto its own status space.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeConflict        = "CONFLICT"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidSort     = "INVALID_SORT_FIELD"
)

// Error carries a stable code, a human-readable message and a map of
// machine-readable extension fields. All instances are terminal and
// non-retryable.
type Error struct {
	Code       string
	Message    string
	Extensions map[string]any
}

func (e *Error) Error() string { return e.Message }

// New builds an Error; the code is mirrored into the extensions map so
// transports can serialize extensions as-is.
func New(code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Extensions: map[string]any{"code": code},
	}
}

// Newf is New with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// WithExtension attaches one machine-readable detail field.
func (e *Error) WithExtension(key string, value any) *Error {
	e.Extensions[key] = value
	return e
}

// Unauthenticated builds an UNAUTHENTICATED error.
func Unauthenticated(message string) *Error { return New(CodeUnauthenticated, message) }

// Forbidden builds a FORBIDDEN error.
func Forbidden(message string) *Error { return New(CodeForbidden, message) }

// NotFound builds a NOT_FOUND error.
func NotFound(message string) *Error { return New(CodeNotFound, message) }
