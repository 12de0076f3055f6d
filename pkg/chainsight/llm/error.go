package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a text generation service failure. It covers network errors,
// timeouts, and quota or auth rejections uniformly - callers that need
// to distinguish transient failures can check Retryable.
type Error struct {
	// Op is the operation that failed ("complete").
	Op string
	// Err is the underlying error.
	Err error
	// Retryable reports whether the failure looks transient.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a service error.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// IsRetryable reports whether err looks transient. The analyzer never
// retries (a failed call falls back to deterministic annotation), but
// callers that own the retry policy can use this to decide.
func IsRetryable(err error) bool {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Retryable
	}
	if err == nil {
		return false
	}
	return isRetryableMessage(err.Error())
}

// isRetryableMessage checks if an error message indicates a transient error.
func isRetryableMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "overloaded") ||
		strings.Contains(lower, "503") ||
		strings.Contains(lower, "529")
}
