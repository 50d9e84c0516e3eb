// Package retry runs an operation with optional exponential backoff.
//
// Nothing retries by default: the client performs a single attempt per
// command unless the user raises the attempt count through
// configuration. Errors must be explicitly marked with Retryable to be
// eligible for another attempt at all.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Config controls the attempt schedule.
type Config struct {
	MaxAttempts int           // total attempts; values < 1 mean one attempt
	InitialWait time.Duration // wait before the second attempt
	MaxWait     time.Duration // backoff ceiling
	Multiplier  float64       // backoff growth factor
	Jitter      float64       // jitter fraction, 0..1
}

// Single returns a configuration that performs exactly one attempt.
func Single() Config {
	return Config{MaxAttempts: 1}
}

// WithAttempts returns a backoff schedule for the given attempt count.
func WithAttempts(attempts int) Config {
	return Config{
		MaxAttempts: attempts,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     10 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.1,
	}
}

// RetryableError marks an error as eligible for another attempt.
type RetryableError struct {
	Err error
}

func (e RetryableError) Error() string {
	return e.Err.Error()
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

// Retryable wraps err so Do will consider another attempt. A nil err
// stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return RetryableError{Err: err}
}

// IsRetryable reports whether err carries the Retryable marker.
func IsRetryable(err error) bool {
	var retryable RetryableError
	return errors.As(err, &retryable)
}

// Do runs fn up to cfg.MaxAttempts times, sleeping with exponential
// backoff between attempts. A non-retryable error or a cancelled
// context ends the loop immediately.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := float64(cfg.InitialWait) * math.Pow(cfg.Multiplier, float64(attempt-1))
		if wait > float64(cfg.MaxWait) {
			wait = float64(cfg.MaxWait)
		}
		if cfg.Jitter > 0 {
			wait += wait * cfg.Jitter * (rand.Float64()*2 - 1)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(wait)):
		}
	}

	return lastErr
}
