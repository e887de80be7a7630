package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RateLimitError marks an HTTP 429 from an upstream API.
type RateLimitError struct {
	Endpoint string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("upstream rate limit hit: %s", e.Endpoint)
}

// IsRateLimited reports whether err carries an upstream 429.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// RetryPolicy is a bounded retry schedule with linearly increasing waits
// between attempts. A 429 gets a distinct wait before the next attempt
// instead of the regular backoff step.
type RetryPolicy struct {
	MaxAttempts   uint64
	Step          time.Duration
	RateLimitWait time.Duration
}

// DetailRetryPolicy is the schedule used by the single-coin detail lookup.
func DetailRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		Step:          time.Second,
		RateLimitWait: 2 * time.Second,
	}
}

// Do runs op, retrying failures up to MaxAttempts total attempts.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	lb := &linearBackOff{step: p.Step}
	b := backoff.WithContext(backoff.WithMaxRetries(lb, p.MaxAttempts-1), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if IsRateLimited(err) {
			select {
			case <-time.After(p.RateLimitWait):
			case <-ctx.Done():
				return backoff.Permanent(ctx.Err())
			}
		}
		return err
	}, b)
}

// linearBackOff waits step, 2*step, 3*step, ... between attempts.
type linearBackOff struct {
	step    time.Duration
	attempt int64
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.attempt++
	return time.Duration(l.attempt) * l.step
}

func (l *linearBackOff) Reset() {
	l.attempt = 0
}
