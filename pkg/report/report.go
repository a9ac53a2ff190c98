// Package report writes the run's final outputs: the results manifest,
// and the optional CSV, HTML, and PDF reports.
package report

import (
	"fmt"
	"os"
	"time"

	"github.com/godseye/godseye/pkg/aggregate"
	"github.com/godseye/godseye/pkg/jsonutil"
)

// Report is everything the writers need about a finished run.
type Report struct {
	RunID     string              `json:"run_id"`
	Generated time.Time           `json:"generated"`
	Version   string              `json:"version"`
	Baseline  string              `json:"baseline,omitempty"`
	Summary   aggregate.Summary   `json:"summary"`
	Results   []*aggregate.Record `json:"results"`
}

// WriteJSON writes the final results manifest. The shape is a superset
// of the checkpoint manifest, so the same file feeds resume, diffing,
// and downstream tooling.
func WriteJSON(path string, r *Report) error {
	data, err := jsonutil.MarshalIndent(r, "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
