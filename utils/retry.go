package utils

import (
	"context"
	"log/slog"
	"sandwichcheck/config"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy retries an operation with a doubling delay while Retryable accepts its error.
// Any other error ends the loop at once.
type RetryPolicy struct {
	BaseDelay  time.Duration
	MaxRetries int
	Retryable  func(error) bool
}

// DefaultRetryPolicy waits 2s, 4s, 8s between attempts on rate-limit errors.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:  config.RETRY_BASE_DELAY,
		MaxRetries: config.RETRY_MAX_RETRIES,
		Retryable:  IsRateLimited,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	// WithMaxRetries treats 0 as unlimited
	if p.MaxRetries <= 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = p.BaseDelay << uint(p.MaxRetries)
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxRetries)), ctx)
}

// Retry runs op until it succeeds, fails with a non-retryable error, or the retries run out.
func Retry[T any](ctx context.Context, p RetryPolicy, logger *slog.Logger, name string, op func(context.Context) (T, error)) (T, error) {
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRateLimited
	}
	attempt := 0
	return backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, p.backOff(ctx), func(err error, wait time.Duration) {
		if logger != nil {
			logger.Warn("Rate limited, retrying", "op", name, "attempt", attempt, "wait", wait.String(), "err", err)
		}
	})
}

// SleepContext pauses for d unless ctx ends first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
