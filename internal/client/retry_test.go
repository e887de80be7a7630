package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryPolicyStopsAtMaxAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Step: time.Millisecond, RateLimitWait: time.Millisecond}

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		return errors.New("persistent failure")
	})

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryPolicySucceedsMidway(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Step: time.Millisecond, RateLimitWait: time.Millisecond}

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success on second attempt, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetryPolicyRetriesRateLimit(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Step: time.Millisecond, RateLimitWait: time.Millisecond}

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		if attempts == 1 {
			return &RateLimitError{Endpoint: "/coins/bitcoin"}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected recovery after a 429, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetryPolicyHonorsContextCancel(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, Step: 50 * time.Millisecond, RateLimitWait: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := policy.Do(ctx, func() error {
		attempts++
		cancel()
		return errors.New("failure")
	})

	if err == nil {
		t.Fatal("expected error after context cancel")
	}
	if attempts != 1 {
		t.Errorf("cancelled context must stop retries, got %d attempts", attempts)
	}
}

func TestIsRateLimited(t *testing.T) {
	base := &RateLimitError{Endpoint: "/coins/markets"}

	if !IsRateLimited(base) {
		t.Error("direct RateLimitError should be detected")
	}
	if !IsRateLimited(fmt.Errorf("fetch failed: %w", base)) {
		t.Error("wrapped RateLimitError should be detected")
	}
	if IsRateLimited(errors.New("something else")) {
		t.Error("unrelated error must not be detected as rate limited")
	}
	if IsRateLimited(nil) {
		t.Error("nil is not a rate limit error")
	}
}

func TestLinearBackOffSchedule(t *testing.T) {
	lb := &linearBackOff{step: time.Second}

	for i, want := range []time.Duration{time.Second, 2 * time.Second, 3 * time.Second} {
		if got := lb.NextBackOff(); got != want {
			t.Errorf("wait %d = %v, want %v", i+1, got, want)
		}
	}

	lb.Reset()
	if got := lb.NextBackOff(); got != time.Second {
		t.Errorf("after Reset the schedule should restart at %v, got %v", time.Second, got)
	}
}
