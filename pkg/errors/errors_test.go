package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		msg      string
		expected Type
	}{
		{"401 Unauthorized", TypeAuthExpired},
		{"cookie expired, please log in again", TypeAuthExpired},
		{"Session Timeout", TypeAuthExpired}, // auth wins over network
		{"dial tcp: connection refused", TypeNetwork},
		{"read: connection reset by peer", TypeNetwork},
		{"request timed out", TypeNetwork},
		{"lookup x.com: no such host", TypeNetwork},
		{"429 Too Many Requests", TypeRateLimited},
		{"rate limit exceeded, slow down", TypeRateLimited},
		{"tweet not found", TypePagination},
		{"empty response from timeline endpoint", TypePagination},
		{"something inexplicable happened", TypeUnknown},
		{"", TypeUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.msg, func(t *testing.T) {
			if got := Classify(tc.msg); got != tc.expected {
				t.Errorf("Classify(%q) = %s, want %s", tc.msg, got, tc.expected)
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	t.Run("TypedError", func(t *testing.T) {
		err := New(TypeRateLimited, "upstream throttling")
		if got := TypeOf(err); got != TypeRateLimited {
			t.Errorf("TypeOf = %s, want %s", got, TypeRateLimited)
		}
	})

	t.Run("WrappedTypedError", func(t *testing.T) {
		err := fmt.Errorf("search failed: %w", New(TypeAuthExpired, "stale cookies"))
		if got := TypeOf(err); got != TypeAuthExpired {
			t.Errorf("TypeOf = %s, want %s", got, TypeAuthExpired)
		}
	})

	t.Run("PlainError", func(t *testing.T) {
		err := errors.New("connection refused")
		if got := TypeOf(err); got != TypeNetwork {
			t.Errorf("TypeOf = %s, want %s", got, TypeNetwork)
		}
	})

	t.Run("Nil", func(t *testing.T) {
		if got := TypeOf(nil); got != TypeUnknown {
			t.Errorf("TypeOf(nil) = %s, want %s", got, TypeUnknown)
		}
	})
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	err := Wrap(TypeNetwork, "fetching next page", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}

	var typed *Error
	if !errors.As(err, &typed) {
		t.Fatal("expected errors.As to match *Error")
	}
	if typed.Type != TypeNetwork {
		t.Errorf("unexpected type %s", typed.Type)
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []Type{TypeNetwork, TypeRateLimited, TypePagination}
	for _, typ := range retryable {
		if !IsRetryable(typ) {
			t.Errorf("expected %s to be retryable", typ)
		}
	}

	terminal := []Type{TypeAuthExpired, TypeMalformedInput, TypeUnusableRecord, TypeUnknown}
	for _, typ := range terminal {
		if IsRetryable(typ) {
			t.Errorf("expected %s to not be retryable", typ)
		}
	}
}
