// File: /store/errors.go
package store

import (
	"errors"
	"fmt"
)

// Code classifies store failures. Callers branch on the class, never on
// backend-specific error strings.
type Code int

const (
	Unknown Code = iota
	InvalidArgument
	Unauthenticated
	PermissionDenied
	NotFound
	AlreadyExists
	// FailedPrecondition covers missing-index errors on sorted queries. It is
	// the only class that triggers the unsorted fetch fallback.
	FailedPrecondition
	ResourceExhausted
	Unavailable
)

func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "invalid-argument"
	case Unauthenticated:
		return "unauthenticated"
	case PermissionDenied:
		return "permission-denied"
	case NotFound:
		return "not-found"
	case AlreadyExists:
		return "already-exists"
	case FailedPrecondition:
		return "failed-precondition"
	case ResourceExhausted:
		return "resource-exhausted"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is a classified store failure.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store: %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("store: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified store error.
func NewError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError classifies an underlying backend error.
func WrapError(code Code, err error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the classification from an error chain. Unclassified errors
// report Unknown.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return Unknown
}
