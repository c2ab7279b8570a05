// ABOUTME: Request rate limiting for provider adapters
// ABOUTME: Wraps golang.org/x/time/rate so an unset rate means no limiting
package util

import (
	"context"

	"golang.org/x/time/rate"
)

// NewLimiter allows rps requests per second with bursts of burst.
// A non-positive rps disables limiting and returns nil.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// WaitLimiter blocks until l permits one request. A nil limiter never blocks.
func WaitLimiter(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}
