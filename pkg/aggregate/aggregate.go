// Package aggregate joins a finished scan with its baseline run: each
// capture result is paired with the visual and content diff against the
// prior capture of the same page, and the whole set is rolled up into
// the run summary the UI and reports consume.
package aggregate

import (
	"log/slog"

	"github.com/godseye/godseye/pkg/capture"
	"github.com/godseye/godseye/pkg/diff"
	"github.com/godseye/godseye/pkg/store"
	"github.com/godseye/godseye/pkg/target"
)

// Record is one target's full outcome: the capture plus, when a baseline
// was supplied, its diff.
type Record struct {
	capture.Result
	Diff *diff.Result `json:"diff,omitempty"`
}

// Differ pairs current results with a baseline run.
type Differ struct {
	Engine        *diff.Engine
	Prior         *store.PriorRun
	PriorLayout   store.Layout
	CurrentLayout store.Layout
	Logger        *slog.Logger
}

// Join produces exactly one record per queued target, in index order.
// Targets the scan never dispatched come back as Skipped records, so an
// interrupted run still accounts for its whole queue. Without a baseline
// every record carries no diff. With one, failed captures are never
// diffed, absent pages are marked new, and everything else is compared.
func (d *Differ) Join(targets []target.Target, results []*capture.Result) []*Record {
	byIndex := make(map[int]*capture.Result, len(results))
	for _, res := range results {
		byIndex[res.Index] = res
	}

	records := make([]*Record, 0, len(targets))
	for _, t := range targets {
		res, ok := byIndex[t.Index]
		if !ok {
			d.Logger.Debug("never dispatched", "index", t.Index, "url", t.URL)
			records = append(records, &Record{Result: capture.Result{
				Index:   t.Index,
				URL:     t.URL,
				Outcome: capture.OutcomeSkipped,
			}})
			continue
		}
		rec := &Record{Result: *res}
		records = append(records, rec)

		if d.Prior == nil {
			continue
		}
		if !res.Succeeded() {
			d.Logger.Debug("diff skipped, capture failed", "index", res.Index, "url", res.URL)
			continue
		}

		lookup := res.FinalURL
		if lookup == "" {
			lookup = res.URL
		}
		prior, ok := d.Prior.Lookup(lookup)
		if !ok {
			prior, ok = d.Prior.Lookup(res.URL)
		}
		if !ok {
			rec.Diff = diff.NewTarget()
			continue
		}

		rec.Diff = d.Engine.Compare(
			res.Index,
			d.PriorLayout.ScreenshotIn(prior.Screenshot),
			d.CurrentLayout.ScreenshotIn(res.Screenshot),
			prior, res,
		)
	}
	return records
}

// Summary is the run rollup.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Resumed   int `json:"resumed"`

	ByStatus   map[string]int        `json:"by_status,omitempty"`
	Diffed     int                   `json:"diffed"`
	BySeverity map[diff.Severity]int `json:"by_severity,omitempty"`
}

// Summarize rolls the records up into counts.
func Summarize(records []*Record) Summary {
	s := Summary{Total: len(records)}
	for _, rec := range records {
		switch {
		case rec.Succeeded():
			s.Succeeded++
			if rec.Status != 0 {
				if s.ByStatus == nil {
					s.ByStatus = make(map[string]int)
				}
				s.ByStatus[statusClass(rec.Status)]++
			}
		case rec.Outcome == capture.OutcomeSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
		if rec.Resumed {
			s.Resumed++
		}
		if rec.Diff != nil {
			s.Diffed++
			if s.BySeverity == nil {
				s.BySeverity = make(map[diff.Severity]int)
			}
			s.BySeverity[rec.Diff.Severity]++
		}
	}
	return s
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
