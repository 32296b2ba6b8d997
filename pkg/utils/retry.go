package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryOptions contains configuration for retry behavior.
type RetryOptions struct {
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
}

// GetAPIRetryOptions returns retry options for game-server API read calls.
func GetAPIRetryOptions() RetryOptions {
	return RetryOptions{
		MaxElapsedTime:  30 * time.Second,
		InitialInterval: 1 * time.Second,
		MaxInterval:     5 * time.Second,
		MaxRetries:      3,
	}
}

// WithRetry executes the given operation with exponential backoff using provided options.
func WithRetry(ctx context.Context, operation func() error, opts RetryOptions) error {
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(opts.MaxElapsedTime),
		backoff.WithInitialInterval(opts.InitialInterval),
		backoff.WithMaxInterval(opts.MaxInterval),
	), opts.MaxRetries)

	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

// linearBackOff waits base*1, base*2, base*3, ... between successive attempts.
type linearBackOff struct {
	base    time.Duration
	attempt uint64
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.attempt++
	return l.base * time.Duration(l.attempt)
}

func (l *linearBackOff) Reset() {
	l.attempt = 0
}

// WithLinearRetry executes the operation up to maxAttempts times with a
// linearly increasing delay between attempts.
func WithLinearRetry(ctx context.Context, operation func() error, maxAttempts uint64, base time.Duration) error {
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	b := backoff.WithMaxRetries(&linearBackOff{base: base}, maxAttempts-1)

	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}
