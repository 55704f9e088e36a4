// Package apperrors defines the classified error type shared by every
// mutating operation in the application. Callers branch on the Kind to decide
// what to show the user, rather than guessing from an opaque failure.
// File: apperrors/apperrors.go
package apperrors

import (
	"errors"
	"fmt"
)

// Kind identifies the broad class of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindPermission
	KindInvalidCredential
	KindRateLimited
	KindNotFound
	KindUnavailable
)

// String returns the canonical name of the kind, used in log lines.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_failed"
	case KindPermission:
		return "permission_denied"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is a structured application error. Message is safe to show a user;
// Internal carries the underlying cause for logs only.
type Error struct {
	Kind     Kind
	Message  string
	Internal error
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Internal
}

// UserMessage returns the text suitable for an inline status message.
func (e *Error) UserMessage() string {
	return e.Message
}

// ------------------- constructors -------------------

// Validation reports rejected input (missing photo, age out of range, ...).
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Permission reports a write rejected by the document service's access rules.
func Permission(message string, err error) *Error {
	return &Error{Kind: KindPermission, Message: message, Internal: err}
}

// InvalidCredential reports a failed sign-in attempt.
func InvalidCredential(message string) *Error {
	return &Error{Kind: KindInvalidCredential, Message: message}
}

// RateLimited reports an account temporarily locked after repeated failures.
func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message}
}

// NotFound reports a missing document or account.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Unavailable reports that the backing service could not be reached.
func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Internal: err}
}

// Wrap tags an arbitrary error with KindUnknown so callers always receive a
// classified error from mutation operations.
func Wrap(message string, err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindUnknown, Message: message, Internal: err}
}

// KindOf extracts the Kind from any error chain; plain errors report
// KindUnknown and nil reports KindUnknown as well.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// UserMessage returns the inline status text for any error chain. Unclassified
// errors get a generic message rather than leaking internals to the page.
func UserMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Something went wrong. Please try again."
}
