// Command godseye captures screenshots of web targets in parallel and,
// given a baseline run, reports what changed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/godseye/godseye/pkg/aggregate"
	"github.com/godseye/godseye/pkg/capture"
	"github.com/godseye/godseye/pkg/config"
	"github.com/godseye/godseye/pkg/defaults"
	"github.com/godseye/godseye/pkg/diff"
	"github.com/godseye/godseye/pkg/duration"
	"github.com/godseye/godseye/pkg/engine"
	"github.com/godseye/godseye/pkg/input"
	"github.com/godseye/godseye/pkg/report"
	"github.com/godseye/godseye/pkg/retry"
	"github.com/godseye/godseye/pkg/scan"
	"github.com/godseye/godseye/pkg/store"
	"github.com/godseye/godseye/pkg/target"
	"github.com/godseye/godseye/pkg/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.ParseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return defaults.ExitOK
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return defaults.ExitUsage
	}
	if cfg.ShowVersion {
		fmt.Println("godseye v" + defaults.Version)
		return defaults.ExitOK
	}

	if cfg.NoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		ui.DisableColor()
	}

	layout := store.NewLayout(cfg.OutputDir)
	if err := layout.Ensure(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return defaults.ExitRunFailure
	}

	logger, closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return defaults.ExitRunFailure
	}
	defer closeLog()

	if !cfg.Silent {
		ui.Banner(os.Stdout)
	}

	urls, err := collectTargets(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return defaults.ExitUsage
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "error: no targets to scan")
		return defaults.ExitUsage
	}
	queue := target.NewQueue(urls)

	if !cfg.Silent {
		ui.RunConfig(os.Stdout, cfg, queue.Len())
	}

	runID := uuid.NewString()[:8]
	logger.Info("run starting",
		"run_id", runID,
		"targets", queue.Len(),
		"concurrency", cfg.Concurrency,
		"output", cfg.OutputDir)

	headers, err := config.ParseHeaders(cfg.HeaderSpecs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return defaults.ExitUsage
	}
	cookies, err := config.ParseCookies(cfg.CookieSpecs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return defaults.ExitUsage
	}

	var resume *store.PriorRun
	if cfg.Resume {
		resume, err = store.LoadPriorRun(cfg.OutputDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return defaults.ExitRunFailure
		}
		logger.Info("resuming", "prior_results", len(resume.Results))
	}

	var baseline *store.PriorRun
	if cfg.CompareDir != "" {
		baseline, err = store.LoadPriorRun(cfg.CompareDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return defaults.ExitRunFailure
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	browser, err := engine.NewBrowser(ctx, engine.Options{
		ChromePath: cfg.ChromePath,
		Proxy:      cfg.Proxy,
		IgnoreTLS:  cfg.IgnoreTLS,
	})
	if err != nil {
		logger.Error("browser startup failed", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		return defaults.ExitRunFailure
	}
	defer browser.Close()

	scanOpts := []scan.Option{scan.WithLogger(logger)}
	var bar *ui.ProgressBar
	if !cfg.Silent {
		bar = ui.NewProgressBar(os.Stdout)
		bar.Start()
		scanOpts = append(scanOpts, scan.WithProgress(bar.Update))
	}

	st := store.New(layout, runID)
	runner := scan.New(browser, st, layout, scan.Options{
		Concurrency: cfg.Concurrency,
		Interval:    cfg.Interval,
		Retry: retry.Config{
			MaxAttempts: cfg.Retries + 1,
			InitDelay:   duration.RetryBase,
			MaxDelay:    duration.RetryMax,
			Backoff:     2,
		},
		Request: engine.Request{
			Wait:      engine.WaitMode(cfg.Wait),
			ViewportW: cfg.ViewportW,
			ViewportH: cfg.ViewportH,
			UserAgent: cfg.UserAgent,
			Headers:   headers,
			Cookies:   cookies,
			InjectJS:  cfg.InjectJS,
			FullPage:  cfg.FullPage,
			Timeout:   cfg.Timeout,
		},
		Format:  cfg.Format,
		Quality: cfg.Quality,
		Resume:  resume,
	}, scanOpts...)

	started := time.Now()
	results, runErr := runner.Run(ctx, queue.Targets())
	if bar != nil {
		bar.Stop()
	}
	if runErr != nil {
		logger.Warn("scan ended early", "error", runErr)
	}

	records := joinRecords(cfg, layout, baseline, queue.Targets(), results, logger)
	summary := aggregate.Summarize(records)

	rep := &report.Report{
		RunID:     runID,
		Generated: time.Now().UTC(),
		Version:   defaults.Version,
		Baseline:  cfg.CompareDir,
		Summary:   summary,
		Results:   records,
	}
	if err := writeReports(cfg, layout, rep, logger); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return defaults.ExitRunFailure
	}

	if !cfg.Silent {
		ui.Summary(os.Stdout, records, summary, ui.Elapsed(time.Since(started)))
		fmt.Printf("  report: %s\n\n", filepath.Join(cfg.OutputDir, defaults.ReportFile))
	}

	logger.Info("run finished",
		"run_id", runID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"elapsed", time.Since(started).String())

	if runErr != nil {
		return defaults.ExitRunFailure
	}
	return defaults.ExitOK
}

// setupLogging writes structured logs to scan.log in the run directory.
// With -v the same stream also goes to stderr at debug level.
func setupLogging(cfg *config.Config) (*slog.Logger, func(), error) {
	path := filepath.Join(cfg.OutputDir, "scan.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}

	var w io.Writer = f
	level := slog.LevelInfo
	if cfg.Verbose {
		w = io.MultiWriter(f, os.Stderr)
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}

// collectTargets enumerates, filters, and dedupes the scan input.
func collectTargets(cfg *config.Config) ([]string, error) {
	ports := make([]int, 0, len(cfg.Ports))
	for _, p := range cfg.Ports {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		ports = append(ports, n)
	}

	src := input.Source{
		URLs:     cfg.TargetURLs,
		ListFile: cfg.ListFile,
		NmapXML:  cfg.NmapFile,
		CIDR:     cfg.CIDR,
		Ports:    ports,
		Stdin:    cfg.StdinInput,
		Exclude:  cfg.Excludes,
	}
	return src.Collect()
}

// joinRecords runs the diff phase when a baseline was supplied. The full
// queue goes in so interrupted runs still account for every target.
func joinRecords(cfg *config.Config, layout store.Layout, baseline *store.PriorRun, targets []target.Target, results []*capture.Result, logger *slog.Logger) []*aggregate.Record {
	differ := &aggregate.Differ{
		Prior:         baseline,
		PriorLayout:   store.NewLayout(cfg.CompareDir),
		CurrentLayout: layout,
		Logger:        logger,
	}
	if baseline != nil {
		eng, err := diff.NewEngine(diff.Config{
			Threshold: cfg.DiffThreshold,
			BlockSize: cfg.DiffBlockSize,
		}, layout.Diffs, logger)
		if err != nil {
			// Validate() already bounds these; reaching here is a bug.
			logger.Error("diff engine rejected config", "error", err)
		} else {
			differ.Engine = eng
		}
	}
	return differ.Join(targets, results)
}

// writeReports always writes the JSON manifest, plus whichever optional
// formats were requested.
func writeReports(cfg *config.Config, layout store.Layout, rep *report.Report, logger *slog.Logger) error {
	if err := report.WriteJSON(layout.Results, rep); err != nil {
		return err
	}
	if cfg.HTML {
		if err := report.WriteHTML(filepath.Join(cfg.OutputDir, defaults.ReportFile), rep); err != nil {
			logger.Error("writing html report", "error", err)
		}
	}
	if cfg.CSV {
		if err := report.WriteCSV(filepath.Join(cfg.OutputDir, "results.csv"), rep); err != nil {
			logger.Error("writing csv", "error", err)
		}
	}
	if cfg.PDF {
		if err := report.WritePDF(filepath.Join(cfg.OutputDir, "report.pdf"), rep); err != nil {
			logger.Error("writing pdf", "error", err)
		}
	}
	return nil
}
