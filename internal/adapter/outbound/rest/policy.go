package rest

import (
	"net/http"
	"time"
)

// Default retry parameters. With three attempts and a one-second base the
// backoff sequence is 1s, 2s, 4s.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
)

// RetryPolicy is a per-call value object controlling bounded retry with
// exponential backoff. It is stateless across calls.
//
// Only statuses listed in RetryableStatuses are retried; everything else
// non-2xx fails immediately. 429 is the only retryable status by default.
// Server errors (5xx) are deliberately not retried unless a caller opts in.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, minimum 1.
	MaxAttempts int

	// BaseDelay is the backoff base. Delay for attempt n (0-based) is
	// BaseDelay * 2^n.
	BaseDelay time.Duration

	// RetryableStatuses is the set of HTTP statuses that are retried.
	RetryableStatuses []int
}

// DefaultPolicy returns the standard policy: 3 attempts, 1s base delay,
// retry on 429 only.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       DefaultMaxAttempts,
		BaseDelay:         DefaultBaseDelay,
		RetryableStatuses: []int{http.StatusTooManyRequests},
	}
}

// NoRetry returns a single-attempt policy. Use for non-idempotent requests.
func NoRetry() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       1,
		BaseDelay:         DefaultBaseDelay,
		RetryableStatuses: nil,
	}
}

// Delay returns the backoff delay before retrying after the given 0-based
// attempt index.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	return base << uint(attempt)
}

// Retryable reports whether the given HTTP status is in the retryable set.
func (p RetryPolicy) Retryable(status int) bool {
	for _, s := range p.RetryableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// attempts returns MaxAttempts clamped to a minimum of 1.
func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}
