package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parchment-ai/parchment/internal/domain"
)

// RetryConfig controls retries of rate-limited provider calls.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig returns the retry policy applied to provider calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// retryDelay computes the exponential backoff delay for the given attempt,
// capped at MaxDelay. Attempt numbering starts at 0.
func (c RetryConfig) retryDelay(attempt int) time.Duration {
	delay := c.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	if delay > c.MaxDelay {
		return c.MaxDelay
	}
	return delay
}

// withRetry runs fn, retrying only rate-limited failures with exponential
// backoff. Any other error is returned on first occurrence. When every
// attempt is rate limited the provider is reported unavailable.
func withRetry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.retryDelay(attempt - 1)):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, domain.ErrRateLimited) {
			return lastErr
		}
	}

	return fmt.Errorf("retries exhausted after %d attempts: %v: %w", attempts, lastErr, domain.ErrProviderUnavailable)
}
