// Package retry runs capture attempts under a bounded retry loop with
// configurable backoff. Transient failures (navigation timeouts,
// connection resets) are retried; fatal failures (malformed URLs,
// unsupported schemes) are wrapped with Stop and returned immediately.
//
// The delay step is injected through a sleeper interface so the loop's
// scheduling is testable without real time passing.
package retry

import (
	"context"
	"errors"
	"time"
)

// Config controls the retry loop.
type Config struct {
	MaxAttempts int           // Total attempts including the first. <=0 means one attempt.
	InitDelay   time.Duration // Delay before the first re-attempt.
	MaxDelay    time.Duration // Upper bound on any single delay.
	Backoff     float64       // Multiplier applied to the delay after each attempt (<=1 means constant).
}

// DefaultConfig retries twice after the initial attempt with doubling
// backoff, matching the scanner's default capture policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitDelay:   300 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Backoff:     2,
	}
}

// StopError wraps an error to signal that retrying must stop immediately.
type StopError struct {
	Err error
}

func (e *StopError) Error() string { return e.Err.Error() }
func (e *StopError) Unwrap() error { return e.Err }

// Stop wraps err so that Do returns it without further attempts. Use it
// for fatal failures that no amount of retrying can fix.
func Stop(err error) error {
	return &StopError{Err: err}
}

// sleeper abstracts the delay step so tests can observe scheduled waits
// without sleeping.
type sleeper interface {
	sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do executes fn up to cfg.MaxAttempts times and returns the number of
// attempts actually made along with the outcome: nil on the first
// success, the wrapped error if fn returned a StopError, ctx.Err() on
// cancellation, or the last error once attempts are exhausted.
func Do(ctx context.Context, cfg Config, fn func(attempt int) error) (int, error) {
	return doWithSleeper(ctx, cfg, fn, realSleeper{})
}

func doWithSleeper(ctx context.Context, cfg Config, fn func(attempt int) error, s sleeper) (int, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return attempt, nil
		}

		var stop *StopError
		if errors.As(lastErr, &stop) {
			return attempt, stop.Err
		}

		if attempt < cfg.MaxAttempts {
			if err := s.sleep(ctx, Delay(cfg, attempt)); err != nil {
				return attempt, err
			}
		}
	}
	return cfg.MaxAttempts, lastErr
}

// Delay computes the backoff before the attempt following the given
// 1-based attempt number.
func Delay(cfg Config, attempt int) time.Duration {
	d := cfg.InitDelay
	if cfg.Backoff > 1 {
		for i := 1; i < attempt; i++ {
			d = time.Duration(float64(d) * cfg.Backoff)
			if cfg.MaxDelay > 0 && d >= cfg.MaxDelay {
				return cfg.MaxDelay
			}
		}
	}
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return d
}
