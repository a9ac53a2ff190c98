package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSleeper records requested delays without sleeping.
type fakeSleeper struct {
	slept []time.Duration
	err   error
}

func (f *fakeSleeper) sleep(_ context.Context, d time.Duration) error {
	f.slept = append(f.slept, d)
	return f.err
}

func TestDoFirstAttemptSucceeds(t *testing.T) {
	s := &fakeSleeper{}
	attempts, err := doWithSleeper(context.Background(), DefaultConfig(), func(int) error {
		return nil
	}, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if len(s.slept) != 0 {
		t.Errorf("slept %d times, want 0", len(s.slept))
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	s := &fakeSleeper{}
	calls := 0
	attempts, err := doWithSleeper(context.Background(), DefaultConfig(), func(int) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(s.slept) != 2 {
		t.Errorf("slept %d times, want 2", len(s.slept))
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	s := &fakeSleeper{}
	failure := errors.New("always fails")
	cfg := Config{MaxAttempts: 4, InitDelay: time.Millisecond, Backoff: 2}

	attempts, err := doWithSleeper(context.Background(), cfg, func(int) error {
		return failure
	}, s)
	if !errors.Is(err, failure) {
		t.Fatalf("err = %v, want %v", err, failure)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}
	// No sleep after the final attempt.
	if len(s.slept) != 3 {
		t.Errorf("slept %d times, want 3", len(s.slept))
	}
}

func TestDoStopErrorShortCircuits(t *testing.T) {
	s := &fakeSleeper{}
	fatal := errors.New("bad url")
	attempts, err := doWithSleeper(context.Background(), DefaultConfig(), func(int) error {
		return Stop(fatal)
	}, s)
	if !errors.Is(err, fatal) {
		t.Fatalf("err = %v, want %v", err, fatal)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if len(s.slept) != 0 {
		t.Errorf("slept %d times, want 0", len(s.slept))
	}
}

func TestDoCancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts, err := doWithSleeper(ctx, DefaultConfig(), func(int) error {
		t.Fatal("fn must not run on a cancelled context")
		return nil
	}, &fakeSleeper{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if attempts != 0 {
		t.Errorf("attempts = %d, want 0", attempts)
	}
}

func TestDoCancelledDuringBackoff(t *testing.T) {
	s := &fakeSleeper{err: context.Canceled}
	attempts, err := doWithSleeper(context.Background(), DefaultConfig(), func(int) error {
		return errors.New("transient")
	}, s)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDelayBacksOffAndCaps(t *testing.T) {
	cfg := Config{
		MaxAttempts: 10,
		InitDelay:   300 * time.Millisecond,
		MaxDelay:    time.Second,
		Backoff:     2,
	}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 300 * time.Millisecond},
		{2, 600 * time.Millisecond},
		{3, time.Second}, // 1200ms capped
		{8, time.Second},
	}
	for _, tc := range cases {
		if got := Delay(cfg, tc.attempt); got != tc.want {
			t.Errorf("Delay(attempt=%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestDelayConstantWithoutBackoff(t *testing.T) {
	cfg := Config{MaxAttempts: 3, InitDelay: 100 * time.Millisecond}
	if got := Delay(cfg, 5); got != 100*time.Millisecond {
		t.Errorf("Delay = %v, want 100ms", got)
	}
}
