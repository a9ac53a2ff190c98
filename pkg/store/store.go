// Package store persists scan state to the run directory. The results
// manifest is rewritten atomically after every capture so an interrupted
// scan can resume from whatever was already done.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/godseye/godseye/pkg/capture"
	"github.com/godseye/godseye/pkg/defaults"
	"github.com/godseye/godseye/pkg/jsonutil"
)

// Manifest is the on-disk shape of results.json.
type Manifest struct {
	RunID     string            `json:"run_id"`
	Generated time.Time         `json:"generated"`
	Version   string            `json:"version"`
	Results   []*capture.Result `json:"results"`
}

// Layout describes the run directory structure.
type Layout struct {
	Root        string
	Screenshots string
	Diffs       string
	Results     string
}

// NewLayout derives the artifact paths under a run directory.
func NewLayout(root string) Layout {
	return Layout{
		Root:        root,
		Screenshots: filepath.Join(root, defaults.ScreenshotsDir),
		Diffs:       filepath.Join(root, defaults.DiffsDir),
		Results:     filepath.Join(root, defaults.ResultsFile),
	}
}

// Ensure creates the run directory tree.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Root, l.Screenshots, l.Diffs} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Store accumulates capture results and checkpoints them to disk.
// Safe for concurrent use by the scan workers.
type Store struct {
	layout Layout
	runID  string

	mu      sync.Mutex
	results map[int]*capture.Result
}

// New creates a store writing into the given layout.
func New(layout Layout, runID string) *Store {
	return &Store{
		layout:  layout,
		runID:   runID,
		results: make(map[int]*capture.Result),
	}
}

// Add records one result and rewrites the manifest. The write is a temp
// file rename so a crash mid-write never corrupts the previous state.
func (s *Store) Add(res *capture.Result) error {
	s.mu.Lock()
	s.results[res.Index] = res
	manifest := s.manifestLocked()
	s.mu.Unlock()

	return writeAtomic(s.layout.Results, manifest)
}

// Results returns all recorded results ordered by target index.
func (s *Store) Results() []*capture.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manifestLocked().Results
}

func (s *Store) manifestLocked() *Manifest {
	out := make([]*capture.Result, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return &Manifest{
		RunID:     s.runID,
		Generated: time.Now().UTC(),
		Version:   defaults.Version,
		Results:   out,
	}
}

// writeAtomic marshals v and renames it into place.
func writeAtomic(path string, v any) error {
	data, err := jsonutil.MarshalIndent(v, "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
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
