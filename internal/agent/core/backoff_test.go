package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wanirfan/atlast/internal/agent/config"
)

func TestBackoffRetriesUntilSuccess(t *testing.T) {
	var slept []time.Duration
	b := Backoff{MaxAttempts: 5, Delay: time.Second, Multiplier: 2, Sleep: func(d time.Duration) { slept = append(slept, d) }}

	attempts := 0
	err := b.Retry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Fatalf("unexpected sleeps: %v", slept)
	}
}

func TestBackoffExhaustsBudget(t *testing.T) {
	b := Backoff{MaxAttempts: 3, Delay: time.Millisecond, Multiplier: 1, Sleep: func(time.Duration) {}}

	attempts := 0
	last := errors.New("still broken")
	err := b.Retry(context.Background(), func() error {
		attempts++
		return last
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, last) {
		t.Fatalf("expected last error wrapped, got %v", err)
	}
}

func TestBackoffStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewBackoff(config.BackoffConfig{MaxAttempts: 10})
	b.Sleep = func(time.Duration) {}

	attempts := 0
	err := b.Retry(ctx, func() error { attempts++; return errors.New("x") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if attempts != 0 {
		t.Fatalf("expected no attempts after cancel, got %d", attempts)
	}
}

func TestNewBackoffDefaults(t *testing.T) {
	b := NewBackoff(config.BackoffConfig{})
	if b.MaxAttempts != 3 || b.Delay != 2*time.Second || b.Multiplier != 1 {
		t.Fatalf("unexpected defaults: %+v", b)
	}
}
