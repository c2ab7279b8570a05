// ABOUTME: Continuation policy: limits, pacing, recovery toggles, and prompt text
// ABOUTME: Validated once when an Engine is constructed
package continuation

import (
	"fmt"
	"time"
)

// DefaultContinuationPrompt is sent as the user turn asking for more output.
const DefaultContinuationPrompt = "Please continue from where you left off."

// Config controls one engine's retry policy.
type Config struct {
	// MaxContinuations caps the number of follow-up requests per run.
	MaxContinuations int
	// MaxTotalDuration is advisory: exceeding it logs a warning.
	MaxTotalDuration time.Duration
	// DelayBetweenContinuations pauses before every request after the first.
	DelayBetweenContinuations time.Duration

	EnableJSONRecovery      bool
	EnableCodeBlockRecovery bool

	ContinuationPrompt      string
	IncludePreviousResponse bool

	// MinProgressPerContinuation is the minimum rune length of the latest
	// fragment for the loop to keep going.
	MinProgressPerContinuation int

	// ThrowOnMaxContinuations makes hitting the cap an error instead of a
	// partial result.
	ThrowOnMaxContinuations bool
}

// DefaultConfig returns the default continuation policy.
func DefaultConfig() Config {
	return Config{
		MaxContinuations:           5,
		MaxTotalDuration:           5 * time.Minute,
		DelayBetweenContinuations:  0,
		EnableJSONRecovery:         true,
		EnableCodeBlockRecovery:    true,
		ContinuationPrompt:         DefaultContinuationPrompt,
		IncludePreviousResponse:    true,
		MinProgressPerContinuation: 10,
		ThrowOnMaxContinuations:    false,
	}
}

// Validate rejects negative counts and durations.
func (c Config) Validate() error {
	if c.MaxContinuations < 0 {
		return fmt.Errorf("%w: max continuations must be non-negative, got %d", ErrInvalidConfig, c.MaxContinuations)
	}
	if c.MaxTotalDuration < 0 {
		return fmt.Errorf("%w: max total duration must be non-negative, got %v", ErrInvalidConfig, c.MaxTotalDuration)
	}
	if c.DelayBetweenContinuations < 0 {
		return fmt.Errorf("%w: delay between continuations must be non-negative, got %v", ErrInvalidConfig, c.DelayBetweenContinuations)
	}
	if c.MinProgressPerContinuation < 0 {
		return fmt.Errorf("%w: min progress per continuation must be non-negative, got %d", ErrInvalidConfig, c.MinProgressPerContinuation)
	}
	return nil
}
