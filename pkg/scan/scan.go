// Package scan runs the capture phase: a fixed pool of workers pulls
// targets from a queue, a shared rate limiter spaces out dispatches, and
// every finished capture is checkpointed so an interrupted run can be
// resumed from results.json.
package scan

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godseye/godseye/pkg/capture"
	"github.com/godseye/godseye/pkg/engine"
	"github.com/godseye/godseye/pkg/ratelimit"
	"github.com/godseye/godseye/pkg/retry"
	"github.com/godseye/godseye/pkg/store"
	"github.com/godseye/godseye/pkg/target"
)

// Options configures a run.
type Options struct {
	Concurrency int
	Interval    time.Duration // minimum spacing between dispatch starts
	Retry       retry.Config
	Request     engine.Request // capture template, URL filled per target
	Format      string         // screenshot format, "png" or "jpeg"
	Quality     int            // JPEG quality, <=0 means the default

	// Resume holds this output directory's previous results. Targets whose
	// prior capture succeeded are copied forward instead of re-fetched.
	Resume *store.PriorRun
}

// Progress is a point-in-time view of the run, safe to read from the
// progress callback while workers are still going.
type Progress struct {
	Total     int64
	Done      int64
	Succeeded int64
	Failed    int64
	Resumed   int64
}

// Runner executes the capture phase.
type Runner struct {
	engine  engine.Engine
	store   *store.Store
	layout  store.Layout
	limiter *ratelimit.Limiter
	opts    Options

	logger     *slog.Logger
	onProgress func(Progress)

	total     int64
	done      atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	resumed   atomic.Int64
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger routes the runner's logging.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithProgress installs a callback invoked after every completed target.
func WithProgress(fn func(Progress)) Option {
	return func(r *Runner) { r.onProgress = fn }
}

// New builds a runner over the given engine and store.
func New(eng engine.Engine, st *store.Store, layout store.Layout, opts Options, options ...Option) *Runner {
	r := &Runner{
		engine:  eng,
		store:   st,
		layout:  layout,
		limiter: ratelimit.New(opts.Interval),
		opts:    opts,
		logger:  slog.Default(),
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Run captures every target and returns the results ordered by target
// index. On cancellation the in-flight captures finish (each attempt is
// bounded by its own timeout), undispatched targets are dropped, and the
// partial results are returned with ctx.Err().
func (r *Runner) Run(ctx context.Context, targets []target.Target) ([]*capture.Result, error) {
	r.total = int64(len(targets))

	tasks := make(chan target.Target, len(targets))
	for _, t := range targets {
		tasks <- t
	}
	close(tasks)

	results := make(chan *capture.Result, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < r.opts.Concurrency; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r.work(ctx, worker, tasks, results)
		}(i + 1)
	}

	collected := make([]*capture.Result, 0, len(targets))
	collectDone := make(chan struct{})
	go func() {
		defer close(collectDone)
		for res := range results {
			collected = append(collected, res)
		}
	}()

	wg.Wait()
	close(results)
	<-collectDone

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].Index < collected[j].Index
	})

	if err := ctx.Err(); err != nil {
		r.logger.Warn("scan interrupted",
			"done", r.done.Load(), "total", r.total)
		return collected, err
	}
	return collected, nil
}

func (r *Runner) work(ctx context.Context, worker int, tasks <-chan target.Target, results chan<- *capture.Result) {
	for t := range tasks {
		// Resume check comes before the rate limiter so skipped targets
		// never consume dispatch slots.
		if res, ok := r.resumeResult(t); ok {
			r.record(res, results)
			continue
		}

		if err := r.limiter.Wait(ctx); err != nil {
			// Cancelled while queued; drain without executing.
			r.logger.Debug("dispatch cancelled", "worker", worker, "index", t.Index, "url", t.URL)
			continue
		}

		task := &capture.Task{
			Target:  t,
			Engine:  r.engine,
			Request: r.opts.Request,
			Retry:   r.opts.Retry,
			OutDir:  r.layout.Screenshots,
			Format:  r.opts.Format,
			Quality: r.opts.Quality,
			Logger:  r.logger,
		}
		r.record(task.Run(ctx), results)
	}
}

// resumeResult copies a prior successful capture forward under the
// current target's index.
func (r *Runner) resumeResult(t target.Target) (*capture.Result, bool) {
	if r.opts.Resume == nil {
		return nil, false
	}
	prior, ok := r.opts.Resume.Lookup(t.URL)
	if !ok || !prior.Succeeded() {
		return nil, false
	}
	res := *prior
	res.Index = t.Index
	res.URL = t.URL
	res.Resumed = true
	r.logger.Info("resumed", "index", t.Index, "url", t.URL)
	return &res, true
}

// record persists one result, updates the counters, and notifies the
// progress callback. A persistence failure is logged and the scan goes
// on; the result is still held in memory for the final write.
func (r *Runner) record(res *capture.Result, results chan<- *capture.Result) {
	if err := r.store.Add(res); err != nil {
		r.logger.Error("persisting result", "index", res.Index, "error", err)
	}

	r.done.Add(1)
	if res.Succeeded() {
		r.succeeded.Add(1)
	} else {
		r.failed.Add(1)
	}
	if res.Resumed {
		r.resumed.Add(1)
	}

	if r.onProgress != nil {
		r.onProgress(r.Snapshot())
	}
	results <- res
}

// Snapshot reads the live counters.
func (r *Runner) Snapshot() Progress {
	return Progress{
		Total:     r.total,
		Done:      r.done.Load(),
		Succeeded: r.succeeded.Load(),
		Failed:    r.failed.Load(),
		Resumed:   r.resumed.Load(),
	}
}
