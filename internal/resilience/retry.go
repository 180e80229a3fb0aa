// Package resilience provides a generic attempt-with-backoff helper
// parameterized over an error-classification function, so call sites
// don't duplicate retry loops.
package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config defines a retry policy.
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// RetryIf decides whether an error is worth retrying. A nil
	// function retries everything.
	RetryIf func(error) bool
}

// DefaultConfig is a sane policy for provider calls: a couple of
// retries with short exponential backoff.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
	}
}

// Retry runs operation with exponential backoff until it succeeds, the
// retry budget is exhausted, a non-retryable error occurs, or ctx is
// cancelled.
func Retry(ctx context.Context, cfg Config, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	b.Multiplier = cfg.Multiplier
	b.MaxElapsedTime = 0

	var policy backoff.BackOff = b
	if cfg.MaxRetries > 0 {
		policy = backoff.WithMaxRetries(b, uint64(cfg.MaxRetries))
	}
	policy = backoff.WithContext(policy, ctx)

	return backoff.Retry(func() error {
		err := operation()
		if err != nil && cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// RetryWithResult is Retry for operations that return a value.
func RetryWithResult[T any](ctx context.Context, cfg Config, operation func() (T, error)) (T, error) {
	var result T
	err := Retry(ctx, cfg, func() error {
		var opErr error
		result, opErr = operation()
		return opErr
	})
	return result, err
}
