package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	policy := RetryPolicy{Attempts: 3, InitialBackoff: time.Millisecond, Multiplier: 2}

	err := Retry(context.Background(), policy, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetry_ReturnsLastErrorOnExhaustion(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), RetryPolicy{Attempts: 2}, func() error {
		attempts++
		return errors.New("permanent")
	})
	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetry_StopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Retry(ctx, RetryPolicy{Attempts: 3, InitialBackoff: time.Hour}, func() error {
		attempts++
		return errors.New("always fails")
	})
	if err == nil {
		t.Fatalf("expected context cancellation error")
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt before backoff wait, got %d", attempts)
	}
}
