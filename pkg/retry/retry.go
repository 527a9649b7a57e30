package retry

import (
	"context"
	"math"
	"time"
)

// Func is a function that can be retried
type Func func() error

// Classifier reports whether an error is worth retrying
type Classifier func(error) bool

// Options defines the configuration for retries
type Options struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Classifier      Classifier
}

// DefaultOptions returns a set of sensible default retry options
func DefaultOptions() Options {
	return Options{
		MaxAttempts:     5,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		Classifier: func(err error) bool {
			return true
		},
	}
}

// Do executes the function with exponential backoff retries. The storage
// adapter itself never retries; callers wrap the operations they consider
// transient (bootstrap connects, event publishes) in Do.
func Do(ctx context.Context, fn Func, opts Options) error {
	var lastErr error
	interval := opts.InitialInterval

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if opts.Classifier != nil && !opts.Classifier(err) {
			return err
		}

		if attempt == opts.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
			next := float64(interval) * opts.Multiplier
			if next > float64(opts.MaxInterval) {
				interval = opts.MaxInterval
			} else {
				interval = time.Duration(next)
			}
		}
	}

	return lastErr
}

// Backoff returns the wait interval for a specific attempt number
func Backoff(attempt int, opts Options) time.Duration {
	if attempt <= 1 {
		return opts.InitialInterval
	}

	interval := float64(opts.InitialInterval) * math.Pow(opts.Multiplier, float64(attempt-1))
	if interval > float64(opts.MaxInterval) {
		return opts.MaxInterval
	}
	return time.Duration(interval)
}
