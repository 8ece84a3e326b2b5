package listing

import (
	"time"

	"car-passion/cmd/api/httpclient"
)

const (
	DefaultMaxRetries = 2
	DefaultRetryDelay = 1500 * time.Millisecond
)

// RetryPolicy decides whether a failed fetch is tried again. attempt is the
// number of retries already made for the current fetch.
type RetryPolicy interface {
	Next(attempt int, err error) (retry bool, delay time.Duration)
}

// RetryPolicyFunc adapts a function to RetryPolicy.
type RetryPolicyFunc func(attempt int, err error) (bool, time.Duration)

func (f RetryPolicyFunc) Next(attempt int, err error) (bool, time.Duration) {
	return f(attempt, err)
}

// TransientRetryPolicy retries transport failures (no response, timeout) a
// fixed number of times with a fixed delay. Server errors are never retried.
type TransientRetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

func NewTransientRetryPolicy(maxRetries int, delay time.Duration) TransientRetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return TransientRetryPolicy{MaxRetries: maxRetries, Delay: delay}
}

// DefaultRetryPolicy allows 2 retries at 1.5s, 3 attempts in total.
func DefaultRetryPolicy() TransientRetryPolicy {
	return NewTransientRetryPolicy(DefaultMaxRetries, DefaultRetryDelay)
}

func (p TransientRetryPolicy) Next(attempt int, err error) (bool, time.Duration) {
	if err == nil || attempt >= p.MaxRetries || !httpclient.IsTransient(err) {
		return false, 0
	}
	return true, p.Delay
}

// MaxAttempts is MaxRetries plus the first try.
func (p TransientRetryPolicy) MaxAttempts() int {
	return p.MaxRetries + 1
}

// NoRetry never retries.
var NoRetry RetryPolicy = RetryPolicyFunc(func(int, error) (bool, time.Duration) { return false, 0 })
