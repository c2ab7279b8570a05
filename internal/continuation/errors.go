// ABOUTME: Error values surfaced by the continuation engine
// ABOUTME: Config misuse, cancellation, and the opt-in max-continuations failure
package continuation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid continuation config")

	// ErrCancelled is returned when the run's context is cancelled. The
	// context error is wrapped alongside it.
	ErrCancelled = errors.New("continuation cancelled")

	// ErrMaxContinuationsReached matches *MaxContinuationsError.
	ErrMaxContinuationsReached = errors.New("max continuations reached")
)

// MaxContinuationsError is returned when the cap is hit and the config asks
// for an error. Text holds everything accumulated so far.
type MaxContinuationsError struct {
	Count int
	Text  string
}

func (e *MaxContinuationsError) Error() string {
	return fmt.Sprintf("max continuations reached after %d continuations (%d bytes accumulated)", e.Count, len(e.Text))
}

func (e *MaxContinuationsError) Unwrap() error {
	return ErrMaxContinuationsReached
}

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
