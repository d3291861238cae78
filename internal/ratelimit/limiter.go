// Package ratelimit throttles repeated attempts per client key with a fixed
// window counter. A client may burst up to twice the limit across a window
// boundary; that imprecision is accepted in exchange for a constant-size entry.
package ratelimit

import (
	"context"
	"math"
	"time"
)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// Decision is the outcome of one check.
type Decision struct {
	Allowed bool
	// RetryAfter is the time left in the current window when denied.
	RetryAfter time.Duration
}

// RetryAfterMinutes rounds the remaining window up to whole minutes. A denial
// always reports at least one minute, even when it lands on the window edge.
func (d Decision) RetryAfterMinutes() int {
	if d.Allowed {
		return 0
	}
	return max(int(math.Ceil(d.RetryAfter.Minutes())), 1)
}

// RetryAfterSeconds is the Retry-After header value, at least 1 when denied.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	return max(int(math.Ceil(d.RetryAfter.Seconds())), 1)
}

// Limiter counts an attempt for key and decides whether it may proceed.
// Every call may mutate the counter; none blocks or retries.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
