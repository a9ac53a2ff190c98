// Package capture turns one target into one persisted Result: it drives
// the browser engine under the retry policy, writes the screenshot
// artifact, and runs the page classifiers over the snapshot.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/godseye/godseye/pkg/classify"
	"github.com/godseye/godseye/pkg/duration"
	"github.com/godseye/godseye/pkg/engine"
	"github.com/godseye/godseye/pkg/retry"
	"github.com/godseye/godseye/pkg/target"
)

// Outcome values recorded on a Result. Skipped marks queued targets the
// scan never dispatched (interrupted runs); they carry no snapshot.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// interestingHeaders are the response headers worth persisting per target.
var interestingHeaders = []string{
	"server",
	"x-powered-by",
	"content-type",
	"via",
	"x-generator",
	"strict-transport-security",
	"content-security-policy",
	"x-frame-options",
	"x-content-type-options",
	"referrer-policy",
	"permissions-policy",
}

// Result is the persisted record of one target's capture. The JSON field
// names are the on-disk manifest format and must stay stable across
// versions so old runs remain resumable and diffable.
type Result struct {
	Index           int               `json:"index"`
	URL             string            `json:"url"`
	FinalURL        string            `json:"final_url,omitempty"`
	Outcome         string            `json:"outcome"`
	Attempts        int               `json:"attempts"`
	Error           string            `json:"error,omitempty"`
	Status          int               `json:"status,omitempty"`
	Title           string            `json:"title,omitempty"`
	Screenshot      string            `json:"screenshot,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"`
	Technologies    []string          `json:"technologies,omitempty"`
	SecurityGrade   string            `json:"security_grade,omitempty"`
	SecurityHeaders []string          `json:"security_headers,omitempty"`
	Category        string            `json:"category,omitempty"`
	RedirectChain   []string          `json:"redirect_chain,omitempty"`
	ConsoleLogs     []string          `json:"console_logs,omitempty"`
	Cookies         []engine.Cookie   `json:"cookies,omitempty"`
	TLS             *engine.TLSInfo   `json:"tls,omitempty"`
	LoadTimeMS      int64             `json:"load_time_ms,omitempty"`
	CapturedAt      time.Time         `json:"captured_at"`
	Notes           []string          `json:"notes,omitempty"`

	// Resumed marks results copied forward from a prior run. Not persisted;
	// a copied result is indistinguishable from a fresh one on disk.
	Resumed bool `json:"-"`
}

// Succeeded reports whether the capture produced a usable snapshot.
func (r *Result) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Task captures a single target.
type Task struct {
	Target  target.Target
	Engine  engine.Engine
	Request engine.Request // template; URL is filled from Target
	Retry   retry.Config
	OutDir  string // screenshots directory, must exist
	Format  string // "png" or "jpeg"
	Quality int    // JPEG quality; <=0 means the default
	Logger  *slog.Logger
}

// Run executes the capture under the retry policy. The passed context
// gates dispatch and the backoff sleeps; each browser attempt runs under
// its own detached timeout so an in-flight render finishes or times out
// even when the scan is being interrupted.
func (t *Task) Run(ctx context.Context) *Result {
	res := &Result{
		Index:      t.Target.Index,
		URL:        t.Target.URL,
		Outcome:    OutcomeFailed,
		CapturedAt: time.Now().UTC(),
	}

	if err := validateTarget(t.Target.URL); err != nil {
		res.Attempts = 1
		res.Error = err.Error()
		t.Logger.Warn("target rejected", "index", t.Target.Index, "url", t.Target.URL, "error", err)
		return res
	}

	var snap *engine.Snapshot
	attempts, err := retry.Do(ctx, t.Retry, func(attempt int) error {
		if attempt > 1 {
			t.Logger.Debug("retrying capture",
				"index", t.Target.Index, "url", t.Target.URL, "attempt", attempt)
		}
		req := t.Request
		req.URL = t.Target.URL
		if req.Timeout <= 0 {
			req.Timeout = duration.PageTimeout
		}

		attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), req.Timeout)
		defer cancel()

		var captureErr error
		snap, captureErr = t.Engine.Capture(attemptCtx, req)
		if captureErr != nil && fatalCapture(captureErr) {
			return retry.Stop(captureErr)
		}
		return captureErr
	})

	res.Attempts = attempts
	if err != nil {
		res.Error = err.Error()
		res.Notes = append(res.Notes, "Failed to load")
		t.Logger.Warn("capture failed",
			"index", t.Target.Index, "url", t.Target.URL, "attempts", attempts, "error", err)
		return res
	}

	res.Outcome = OutcomeSuccess
	res.FinalURL = snap.FinalURL
	res.Status = snap.Status
	res.Title = snap.Title
	res.RedirectChain = snap.RedirectChain
	res.ConsoleLogs = snap.Console
	res.Cookies = snap.Cookies
	res.TLS = snap.TLS
	res.LoadTimeMS = snap.Elapsed.Milliseconds()
	res.Headers = filterHeaders(snap.Headers)
	res.Notes = append(res.Notes, statusNote(snap.Status))

	grade, present := classify.GradeHeaders(snap.Headers)
	res.SecurityGrade = string(grade)
	res.SecurityHeaders = present
	res.Technologies = classify.Fingerprint(snap.Headers, snap.HTML)
	res.Category = string(classify.Categorize(snap.Title, snap.HTML))

	name := ArtifactName(t.Target.Index, res.FinalURL, t.Format)
	path := filepath.Join(t.OutDir, name)
	if err := saveImage(path, snap.Image, t.Format, t.Quality); err != nil {
		res.Notes = append(res.Notes, fmt.Sprintf("screenshot not saved: %v", err))
		t.Logger.Error("saving screenshot", "index", t.Target.Index, "path", path, "error", err)
	} else {
		res.Screenshot = name
	}

	t.Logger.Info("captured",
		"index", t.Target.Index,
		"url", t.Target.URL,
		"final_url", res.FinalURL,
		"status", res.Status,
		"attempts", attempts,
		"load_ms", res.LoadTimeMS)
	return res
}

// statusNote is the human-readable outcome wording persisted per record.
func statusNote(status int) string {
	switch {
	case status >= 500:
		return "Server Error"
	case status >= 400:
		return "Client Error"
	default:
		return "Success"
	}
}

// fatalNavErrors are Chrome navigation failures no retry can fix; the
// host does not exist or the URL can never be fetched.
var fatalNavErrors = []string{
	"net::ERR_NAME_NOT_RESOLVED",
	"net::ERR_INVALID_URL",
	"net::ERR_UNKNOWN_URL_SCHEME",
	"net::ERR_BLOCKED_BY_CLIENT",
}

// fatalCapture reports whether the browser error is one no retry can fix.
func fatalCapture(err error) bool {
	msg := err.Error()
	for _, code := range fatalNavErrors {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}

// validateTarget rejects URLs no browser attempt could ever load, before
// the retry loop starts.
func validateTarget(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}

// filterHeaders keeps only the headers worth persisting.
func filterHeaders(headers map[string]string) map[string]string {
	kept := make(map[string]string)
	for _, k := range interestingHeaders {
		if v, ok := headers[k]; ok {
			kept[k] = v
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// saveImage writes the PNG bytes from the engine, converting to JPEG
// when the configured format asks for it.
func saveImage(path string, png []byte, format string, quality int) error {
	data := png
	if format == "jpeg" {
		converted, err := pngToJPEG(png, quality)
		if err != nil {
			return fmt.Errorf("converting screenshot: %w", err)
		}
		data = converted
	}
	return os.WriteFile(path, data, 0o644)
}
