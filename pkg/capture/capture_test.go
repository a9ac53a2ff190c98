package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godseye/godseye/pkg/engine"
	"github.com/godseye/godseye/pkg/retry"
	"github.com/godseye/godseye/pkg/target"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fakeEngine fails a configured number of times, then succeeds.
type fakeEngine struct {
	failures int
	failWith error // error returned while failing; default is a transient reset
	calls    int
	snapshot *engine.Snapshot
}

func (f *fakeEngine) Capture(_ context.Context, req engine.Request) (*engine.Snapshot, error) {
	f.calls++
	if f.calls <= f.failures {
		if f.failWith != nil {
			return nil, f.failWith
		}
		return nil, errors.New("net::ERR_CONNECTION_RESET")
	}
	snap := *f.snapshot
	snap.RequestedURL = req.URL
	return &snap, nil
}

func (f *fakeEngine) Close() error { return nil }

func testSnapshot(t *testing.T) *engine.Snapshot {
	return &engine.Snapshot{
		FinalURL: "https://app.example.com/login",
		Status:   200,
		Title:    "Sign in",
		HTML:     `<html><input type="password"></html>`,
		Headers: map[string]string{
			"server":                    "nginx",
			"x-frame-options":           "DENY",
			"content-security-policy":   "default-src 'self'",
			"strict-transport-security": "max-age=300",
			"x-request-id":              "discarded",
		},
		Image:   tinyPNG(t),
		Elapsed: 120 * time.Millisecond,
	}
}

func testTask(t *testing.T, eng engine.Engine, dir string) *Task {
	return &Task{
		Target:  target.Target{Index: 7, URL: "http://example.com"},
		Engine:  eng,
		Request: engine.Request{Wait: engine.WaitBalanced, Timeout: time.Second},
		Retry:   retry.Config{MaxAttempts: 3, InitDelay: time.Millisecond, Backoff: 2},
		OutDir:  dir,
		Format:  "png",
		Logger:  discardLogger(),
	}
}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	eng := &fakeEngine{snapshot: testSnapshot(t)}
	res := testTask(t, eng, dir).Run(context.Background())

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 7, res.Index)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "https://app.example.com/login", res.FinalURL)
	assert.Equal(t, 200, res.Status)
	assert.Equal(t, "Login Page", res.Category)
	assert.Equal(t, "C", res.SecurityGrade)
	assert.Contains(t, res.Technologies, "Nginx")
	assert.Equal(t, int64(120), res.LoadTimeMS)

	// Only the interesting headers survive.
	assert.Contains(t, res.Headers, "server")
	assert.NotContains(t, res.Headers, "x-request-id")

	assert.Equal(t, "007_app.example.com.png", res.Screenshot)
	assert.FileExists(t, filepath.Join(dir, res.Screenshot))
	assert.Contains(t, res.Notes, "Success")
}

func TestRunRetriesThenSucceeds(t *testing.T) {
	dir := t.TempDir()
	eng := &fakeEngine{failures: 2, snapshot: testSnapshot(t)}
	res := testTask(t, eng, dir).Run(context.Background())

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, eng.calls)
}

func TestRunExhaustsRetries(t *testing.T) {
	dir := t.TempDir()
	eng := &fakeEngine{failures: 10, snapshot: testSnapshot(t)}
	res := testTask(t, eng, dir).Run(context.Background())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, eng.calls)
	assert.Contains(t, res.Error, "ERR_CONNECTION_RESET")
	assert.Empty(t, res.Screenshot)
	assert.Contains(t, res.Notes, "Failed to load")
}

func TestRunStopsOnFatalNavigation(t *testing.T) {
	dir := t.TempDir()
	eng := &fakeEngine{
		failures: 10,
		failWith: errors.New("page load error net::ERR_NAME_NOT_RESOLVED"),
		snapshot: testSnapshot(t),
	}
	res := testTask(t, eng, dir).Run(context.Background())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, 1, res.Attempts, "unresolvable host must not be retried")
	assert.Equal(t, 1, eng.calls)
	assert.Contains(t, res.Error, "ERR_NAME_NOT_RESOLVED")
}

func TestRunRejectsBadScheme(t *testing.T) {
	dir := t.TempDir()
	eng := &fakeEngine{snapshot: testSnapshot(t)}
	task := testTask(t, eng, dir)
	task.Target.URL = "ftp://example.com"

	res := task.Run(context.Background())
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.Zero(t, eng.calls, "engine must not be called for an invalid target")
	assert.Contains(t, res.Error, "unsupported scheme")
}

func TestRunJPEGConversion(t *testing.T) {
	dir := t.TempDir()
	eng := &fakeEngine{snapshot: testSnapshot(t)}
	task := testTask(t, eng, dir)
	task.Format = "jpeg"

	res := task.Run(context.Background())
	require.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "007_app.example.com.jpg", res.Screenshot)

	data, err := os.ReadFile(filepath.Join(dir, res.Screenshot))
	require.NoError(t, err)
	_, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestArtifactName(t *testing.T) {
	cases := []struct {
		index  int
		url    string
		format string
		want   string
	}{
		{1, "https://example.com/path", "png", "001_example.com.png"},
		{42, "http://10.0.0.1:8080", "png", "042_10.0.0.1_8080.png"},
		{7, "https://Sub.Example.COM", "jpeg", "007_sub.example.com.jpg"},
		{3, "garbage", "png", "003_unknown.png"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ArtifactName(tc.index, tc.url, tc.format), "url %q", tc.url)
	}
}

func TestSanitizeHost(t *testing.T) {
	assert.Equal(t, "a_b.example.com", SanitizeHost("a b.Example.com"))
	assert.Equal(t, "unknown", SanitizeHost(""))
}
