package errors

import (
	"errors"
	"fmt"
)

// Type classifies a failure for retry and propagation decisions
type Type string

const (
	TypeAuthExpired    Type = "auth_expired"
	TypeNetwork        Type = "network"
	TypeRateLimited    Type = "rate_limited"
	TypePagination     Type = "pagination_glitch"
	TypeMalformedInput Type = "malformed_input"
	TypeUnusableRecord Type = "unusable_record"
	TypeUnknown        Type = "unknown"
)

// Error is a classified scraper error. The wrapped cause, if any, is
// preserved for errors.Is/errors.As chains.
type Error struct {
	Type    Type
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without a cause.
func New(t Type, msg string) *Error {
	return &Error{Type: t, Message: msg}
}

// Newf creates a classified error with a formatted message.
func Newf(t Type, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a classification to an existing error.
func Wrap(t Type, msg string, err error) *Error {
	return &Error{Type: t, Message: msg, Err: err}
}

// TypeOf returns the classification of err. Errors that already carry a
// Type keep it; anything else is classified lexically from its message.
func TypeOf(err error) Type {
	if err == nil {
		return TypeUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return Classify(err.Error())
}

// IsRetryable reports whether the retry policy may re-attempt an
// operation that failed with this classification on its own. Auth
// expiry needs external credential refresh and unknown errors abort.
func IsRetryable(t Type) bool {
	switch t {
	case TypeNetwork, TypeRateLimited, TypePagination:
		return true
	default:
		return false
	}
}
