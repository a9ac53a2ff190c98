// Package ratelimit spaces out capture dispatches across the whole worker
// pool. A single shared Limiter enforces a minimum interval between any
// two dispatch starts, regardless of which worker dispatches.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum inter-dispatch interval across all workers.
// An interval of zero disables limiting entirely.
//
// Waiting is delegated to a burst-1 token bucket, which serves waiters in
// roughly FIFO order under contention, so no worker starves. The time of
// the last successful acquisition is owned by the Limiter and only read
// or written under its mutex.
type Limiter struct {
	interval time.Duration
	bucket   *rate.Limiter

	mu           sync.Mutex
	lastDispatch time.Time
	dispatches   int64
}

// New creates a limiter with the given minimum interval between
// dispatches. interval <= 0 means unlimited.
func New(interval time.Duration) *Limiter {
	l := &Limiter{interval: interval}
	if interval > 0 {
		l.bucket = rate.NewLimiter(rate.Every(interval), 1)
	}
	return l
}

// Wait blocks until the limiter allows another dispatch, or until ctx is
// cancelled. With a zero interval it returns immediately.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.bucket != nil {
		if err := l.bucket.Wait(ctx); err != nil {
			return err
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	l.lastDispatch = time.Now()
	l.dispatches++
	l.mu.Unlock()
	return nil
}

// Interval returns the configured minimum spacing.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Stats reports limiter state for progress displays.
type Stats struct {
	Interval     time.Duration
	LastDispatch time.Time
	Dispatches   int64
}

func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Interval:     l.interval,
		LastDispatch: l.lastDispatch,
		Dispatches:   l.dispatches,
	}
}
