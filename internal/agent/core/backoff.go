package core

import (
	"context"
	"fmt"
	"time"

	"github.com/wanirfan/atlast/internal/agent/config"
)

// Backoff retries an operation with a fixed or growing delay. The sleep
// function is injectable so tests run without waiting.
type Backoff struct {
	MaxAttempts int
	Delay       time.Duration
	Multiplier  float64
	Sleep       func(time.Duration)
}

// NewBackoff builds a policy from config, filling unset fields
func NewBackoff(cfg config.BackoffConfig) Backoff {
	b := Backoff{
		MaxAttempts: cfg.MaxAttempts,
		Delay:       cfg.Delay,
		Multiplier:  cfg.Multiplier,
		Sleep:       time.Sleep,
	}
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = 3
	}
	if b.Delay <= 0 {
		b.Delay = 2 * time.Second
	}
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	return b
}

// Retry runs fn until it succeeds, the attempt budget runs out, or the
// context is cancelled. The last error is returned wrapped.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	sleep := b.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	delay := b.Delay
	var lastErr error
	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt < b.MaxAttempts {
			sleep(delay)
			delay = time.Duration(float64(delay) * b.Multiplier)
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", b.MaxAttempts, lastErr)
}
