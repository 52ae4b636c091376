package connector

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrAttemptTimeout is reported for an attempt that did not complete
	// within the request's RetryTimeout.
	ErrAttemptTimeout = errors.New("connection attempt timed out")

	// ErrConnectionExhausted matches any *ExhaustedError via errors.Is.
	ErrConnectionExhausted = errors.New("connection retries exceeded")

	// ErrInvalidRequest is returned before any dial when a Request is malformed.
	ErrInvalidRequest = errors.New("invalid connection request")
)

// AttemptError describes one failed connection attempt.
type AttemptError struct {
	Attempt int
	Address string
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("attempt %d to %s: %v", e.Attempt, e.Address, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// Timeout reports whether the attempt was aborted by its deadline.
func (e *AttemptError) Timeout() bool { return errors.Is(e.Err, ErrAttemptTimeout) }

// ExhaustedError is the terminal failure after every allowed attempt failed.
type ExhaustedError struct {
	Address string
	Tries   int
	// Err is the underlying error of the last attempt.
	Err error

	all error
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("%s after %d attempts", ErrConnectionExhausted, e.Tries)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

func (e *ExhaustedError) Is(target error) bool { return target == ErrConnectionExhausted }

// Errors returns the error of every attempt, in order.
func (e *ExhaustedError) Errors() []error { return multierr.Errors(e.all) }
