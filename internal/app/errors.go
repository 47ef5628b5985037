package app

import (
	"errors"
	"fmt"
)

// ErrRunHalted is returned by MigratePosts when the consecutive-failure
// circuit breaker trips. The accompanying result still carries all
// progress and failures accumulated before the halt.
var ErrRunHalted = errors.New("migration halted: too many consecutive post failures")

// nonRetryableError marks structurally invalid items (missing required
// fields) whose failure a manual retry cannot fix.
type nonRetryableError struct {
	err error
}

func (e *nonRetryableError) Error() string {
	return e.err.Error()
}

func (e *nonRetryableError) Unwrap() error {
	return e.err
}

func nonRetryable(format string, args ...any) error {
	return &nonRetryableError{err: fmt.Errorf(format, args...)}
}

func isRetryable(err error) bool {
	var nr *nonRetryableError
	return !errors.As(err, &nr)
}
