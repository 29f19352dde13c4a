package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-ai/parchment/internal/domain"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
	}
}

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_NonRateLimitedNotRetried(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		return domain.ErrProviderError
	})

	assert.ErrorIs(t, err, domain.ErrProviderError)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RateLimitedThenSuccess(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return domain.ErrRateLimited
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_Exhaustion(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		return domain.ErrRateLimited
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "retries exhausted after 3 attempts")
}

func TestWithRetry_WrappedRateLimitRetried(t *testing.T) {
	calls := 0
	wrapped := errors.Join(errors.New("openai: too many requests"), domain.ErrRateLimited)
	err := withRetry(context.Background(), fastRetry(2), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return wrapped
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Minute, MaxDelay: time.Minute}
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := withRetry(ctx, cfg, func(ctx context.Context) error {
		calls++
		return domain.ErrRateLimited
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ZeroAttemptsTreatedAsOne(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), RetryConfig{MaxAttempts: 0}, func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryDelay_ExponentialCapped(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 500 * time.Millisecond, MaxDelay: 8 * time.Second}

	assert.Equal(t, 500*time.Millisecond, cfg.retryDelay(0))
	assert.Equal(t, time.Second, cfg.retryDelay(1))
	assert.Equal(t, 2*time.Second, cfg.retryDelay(2))
	assert.Equal(t, 4*time.Second, cfg.retryDelay(3))
	assert.Equal(t, 8*time.Second, cfg.retryDelay(4))
	assert.Equal(t, 8*time.Second, cfg.retryDelay(10))
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.BaseDelay)
	assert.Equal(t, 8*time.Second, cfg.MaxDelay)
}
