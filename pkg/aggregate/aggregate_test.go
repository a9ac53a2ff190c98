package aggregate

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godseye/godseye/pkg/capture"
	"github.com/godseye/godseye/pkg/diff"
	"github.com/godseye/godseye/pkg/store"
	"github.com/godseye/godseye/pkg/target"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSolidPNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// buildBaseline writes a baseline run directory containing one successful
// capture of example.com.
func buildBaseline(t *testing.T) (store.Layout, *store.PriorRun) {
	t.Helper()
	layout := store.NewLayout(t.TempDir())
	require.NoError(t, layout.Ensure())

	st := store.New(layout, "baseline")
	require.NoError(t, st.Add(&capture.Result{
		Index:      1,
		URL:        "http://example.com",
		FinalURL:   "http://example.com",
		Outcome:    capture.OutcomeSuccess,
		Status:     200,
		Title:      "Home",
		Screenshot: "001_example.com.png",
	}))
	writeSolidPNG(t, layout.ScreenshotIn("001_example.com.png"), color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	prior, err := store.LoadPriorRun(layout.Root)
	require.NoError(t, err)
	return layout, prior
}

func newDiffer(t *testing.T, prior *store.PriorRun, priorLayout, curLayout store.Layout) *Differ {
	t.Helper()
	eng, err := diff.NewEngine(diff.DefaultConfig(), curLayout.Diffs, discardLogger())
	require.NoError(t, err)
	return &Differ{
		Engine:        eng,
		Prior:         prior,
		PriorLayout:   priorLayout,
		CurrentLayout: curLayout,
		Logger:        discardLogger(),
	}
}

func TestJoinWithoutBaseline(t *testing.T) {
	d := &Differ{Logger: discardLogger()}
	targets := []target.Target{
		{Index: 1, URL: "http://a.test"},
		{Index: 2, URL: "http://b.test"},
	}
	records := d.Join(targets, []*capture.Result{
		{Index: 1, Outcome: capture.OutcomeSuccess},
		{Index: 2, Outcome: capture.OutcomeFailed},
	})
	require.Len(t, records, 2)
	assert.Nil(t, records[0].Diff)
	assert.Nil(t, records[1].Diff)
}

func TestJoinEmitsSkippedForUndispatched(t *testing.T) {
	d := &Differ{Logger: discardLogger()}
	targets := []target.Target{
		{Index: 1, URL: "http://a.test"},
		{Index: 2, URL: "http://b.test"},
		{Index: 3, URL: "http://c.test"},
	}
	// An interrupted run: target 2 was never dispatched.
	records := d.Join(targets, []*capture.Result{
		{Index: 1, URL: "http://a.test", Outcome: capture.OutcomeSuccess},
		{Index: 3, URL: "http://c.test", Outcome: capture.OutcomeSuccess},
	})
	require.Len(t, records, 3, "every queued target must yield a record")
	assert.Equal(t, capture.OutcomeSuccess, records[0].Outcome)
	assert.Equal(t, capture.OutcomeSkipped, records[1].Outcome)
	assert.Equal(t, 2, records[1].Index)
	assert.Equal(t, "http://b.test", records[1].URL)
	assert.Nil(t, records[1].Diff)
	assert.Equal(t, capture.OutcomeSuccess, records[2].Outcome)
}

func TestJoinSkipsFailedCaptures(t *testing.T) {
	priorLayout, prior := buildBaseline(t)
	curLayout := store.NewLayout(t.TempDir())
	require.NoError(t, curLayout.Ensure())

	d := newDiffer(t, prior, priorLayout, curLayout)
	records := d.Join([]target.Target{{Index: 1, URL: "http://example.com"}}, []*capture.Result{
		{Index: 1, URL: "http://example.com", Outcome: capture.OutcomeFailed, Error: "timeout"},
	})
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Diff, "failed capture must not be diffed")
}

func TestJoinMarksNewTargets(t *testing.T) {
	priorLayout, prior := buildBaseline(t)
	curLayout := store.NewLayout(t.TempDir())
	require.NoError(t, curLayout.Ensure())

	d := newDiffer(t, prior, priorLayout, curLayout)
	records := d.Join([]target.Target{{Index: 1, URL: "http://brand-new.test"}}, []*capture.Result{
		{Index: 1, URL: "http://brand-new.test", FinalURL: "http://brand-new.test", Outcome: capture.OutcomeSuccess},
	})
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Diff)
	assert.Equal(t, diff.SeverityNew, records[0].Diff.Severity)
}

func TestJoinComparesAgainstPrior(t *testing.T) {
	priorLayout, prior := buildBaseline(t)
	curLayout := store.NewLayout(t.TempDir())
	require.NoError(t, curLayout.Ensure())
	writeSolidPNG(t, curLayout.ScreenshotIn("001_example.com.png"), color.NRGBA{A: 255})

	d := newDiffer(t, prior, priorLayout, curLayout)
	records := d.Join([]target.Target{{Index: 1, URL: "http://example.com"}}, []*capture.Result{{
		Index:      1,
		URL:        "http://example.com",
		FinalURL:   "http://example.com",
		Outcome:    capture.OutcomeSuccess,
		Status:     200,
		Title:      "Home",
		Screenshot: "001_example.com.png",
	}})
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Diff)
	// White baseline vs black current: everything changed.
	assert.Equal(t, 100.0, records[0].Diff.Percent)
	assert.Equal(t, diff.SeverityHigh, records[0].Diff.Severity)
}

func TestSummarize(t *testing.T) {
	records := []*Record{
		{Result: capture.Result{Outcome: capture.OutcomeSuccess, Status: 200, Resumed: true},
			Diff: &diff.Result{Severity: diff.SeverityNone}},
		{Result: capture.Result{Outcome: capture.OutcomeSuccess, Status: 503},
			Diff: &diff.Result{Severity: diff.SeverityHigh}},
		{Result: capture.Result{Outcome: capture.OutcomeFailed}},
		{Result: capture.Result{Outcome: capture.OutcomeSkipped}},
	}
	sum := Summarize(records)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Resumed)
	assert.Equal(t, 2, sum.Diffed)
	assert.Equal(t, 1, sum.BySeverity[diff.SeverityHigh])
	assert.Equal(t, 1, sum.BySeverity[diff.SeverityNone])
	assert.Equal(t, 1, sum.ByStatus["2xx"])
	assert.Equal(t, 1, sum.ByStatus["5xx"])
}
