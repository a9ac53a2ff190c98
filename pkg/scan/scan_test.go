package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godseye/godseye/pkg/capture"
	"github.com/godseye/godseye/pkg/engine"
	"github.com/godseye/godseye/pkg/retry"
	"github.com/godseye/godseye/pkg/store"
	"github.com/godseye/godseye/pkg/target"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// trackingEngine counts concurrent captures and records dispatch times.
type trackingEngine struct {
	delay time.Duration

	inFlight atomic.Int64
	peak     atomic.Int64
	calls    atomic.Int64

	mu     sync.Mutex
	starts []time.Time
}

func (e *trackingEngine) Capture(_ context.Context, req engine.Request) (*engine.Snapshot, error) {
	cur := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		p := e.peak.Load()
		if cur <= p || e.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	e.calls.Add(1)

	e.mu.Lock()
	e.starts = append(e.starts, time.Now())
	e.mu.Unlock()

	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	return &engine.Snapshot{
		RequestedURL: req.URL,
		FinalURL:     req.URL,
		Status:       200,
		Title:        "ok",
		Image:        []byte{0x89, 'P', 'N', 'G'},
	}, nil
}

func (e *trackingEngine) Close() error { return nil }

func newRunner(t *testing.T, eng engine.Engine, opts Options) (*Runner, store.Layout) {
	t.Helper()
	layout := store.NewLayout(t.TempDir())
	require.NoError(t, layout.Ensure())
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.Config{MaxAttempts: 1}
	}
	if opts.Request.Timeout == 0 {
		opts.Request.Timeout = time.Second
	}
	if opts.Format == "" {
		opts.Format = "png"
	}
	st := store.New(layout, "test")
	return New(eng, st, layout, opts, WithLogger(discardLogger())), layout
}

func makeTargets(n int) []target.Target {
	targets := make([]target.Target, n)
	for i := range targets {
		targets[i] = target.Target{Index: i + 1, URL: fmt.Sprintf("http://host%d.test", i+1)}
	}
	return targets
}

func TestRunBoundsConcurrency(t *testing.T) {
	eng := &trackingEngine{delay: 20 * time.Millisecond}
	runner, _ := newRunner(t, eng, Options{Concurrency: 3})

	results, err := runner.Run(context.Background(), makeTargets(12))
	require.NoError(t, err)
	assert.Len(t, results, 12)
	assert.LessOrEqual(t, eng.peak.Load(), int64(3), "more captures in flight than workers")
	assert.Greater(t, eng.peak.Load(), int64(1), "workers never overlapped")
}

func TestRunResultsOrderedByIndex(t *testing.T) {
	eng := &trackingEngine{delay: 5 * time.Millisecond}
	runner, _ := newRunner(t, eng, Options{Concurrency: 4})

	results, err := runner.Run(context.Background(), makeTargets(9))
	require.NoError(t, err)
	require.Len(t, results, 9)
	for i, res := range results {
		assert.Equal(t, i+1, res.Index)
		assert.Equal(t, capture.OutcomeSuccess, res.Outcome)
	}
}

func TestRunSpacesDispatches(t *testing.T) {
	interval := 25 * time.Millisecond
	eng := &trackingEngine{}
	runner, _ := newRunner(t, eng, Options{Concurrency: 4, Interval: interval})

	start := time.Now()
	_, err := runner.Run(context.Background(), makeTargets(4))
	require.NoError(t, err)

	// 4 dispatches with 25ms spacing need at least 3 intervals after the
	// first token.
	assert.GreaterOrEqual(t, time.Since(start), 3*interval-interval/2)

	eng.mu.Lock()
	defer eng.mu.Unlock()
	require.Len(t, eng.starts, 4)
}

func TestRunResumesPriorSuccesses(t *testing.T) {
	eng := &trackingEngine{}
	runner, layout := newRunner(t, eng, Options{Concurrency: 2})

	// Seed a prior run where targets 1 and 2 already succeeded.
	seed := store.New(layout, "prior")
	for i := 1; i <= 2; i++ {
		require.NoError(t, seed.Add(&capture.Result{
			Index:    i,
			URL:      fmt.Sprintf("http://host%d.test", i),
			FinalURL: fmt.Sprintf("http://host%d.test", i),
			Outcome:  capture.OutcomeSuccess,
			Status:   200,
		}))
	}
	prior, err := store.LoadPriorRun(layout.Root)
	require.NoError(t, err)
	runner.opts.Resume = prior

	results, err := runner.Run(context.Background(), makeTargets(3))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Resumed)
	assert.True(t, results[1].Resumed)
	assert.False(t, results[2].Resumed)
	assert.Equal(t, int64(1), eng.calls.Load(), "only the unseen target hits the browser")

	snap := runner.Snapshot()
	assert.Equal(t, int64(2), snap.Resumed)
	assert.Equal(t, int64(3), snap.Done)
}

func TestRunResumeIsIdempotent(t *testing.T) {
	eng := &trackingEngine{}
	runner, layout := newRunner(t, eng, Options{Concurrency: 2})

	targets := makeTargets(3)
	first, err := runner.Run(context.Background(), targets)
	require.NoError(t, err)
	require.Len(t, first, 3)

	// Second run over the same output dir with resume enabled captures
	// nothing new and yields the same target set.
	prior, err := store.LoadPriorRun(layout.Root)
	require.NoError(t, err)

	eng2 := &trackingEngine{}
	runner2, _ := newRunner(t, eng2, Options{Concurrency: 2, Resume: prior})
	second, err := runner2.Run(context.Background(), targets)
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.Zero(t, eng2.calls.Load())
	for i := range second {
		assert.Equal(t, first[i].Index, second[i].Index)
		assert.Equal(t, first[i].URL, second[i].URL)
	}
}

func TestRunCancelledDropsUndispatched(t *testing.T) {
	eng := &trackingEngine{delay: 30 * time.Millisecond}
	runner, _ := newRunner(t, eng, Options{Concurrency: 1, Interval: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(35 * time.Millisecond)
		cancel()
	}()

	results, err := runner.Run(ctx, makeTargets(20))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, len(results), 20, "cancelled run must not finish the whole queue")
}

func TestRunProgressCallback(t *testing.T) {
	eng := &trackingEngine{}
	var seen atomic.Int64

	layout := store.NewLayout(t.TempDir())
	require.NoError(t, layout.Ensure())
	st := store.New(layout, "test")
	runner := New(eng, st, layout, Options{
		Concurrency: 2,
		Retry:       retry.Config{MaxAttempts: 1},
		Request:     engine.Request{Timeout: time.Second},
		Format:      "png",
	}, WithLogger(discardLogger()), WithProgress(func(p Progress) {
		// Keep the highest Done observed; callbacks may interleave.
		for {
			cur := seen.Load()
			if p.Done <= cur || seen.CompareAndSwap(cur, p.Done) {
				break
			}
		}
	}))

	_, err := runner.Run(context.Background(), makeTargets(5))
	require.NoError(t, err)
	assert.Equal(t, int64(5), seen.Load())
}
