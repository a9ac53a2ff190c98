package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/godseye/godseye/pkg/capture"
	"github.com/godseye/godseye/pkg/jsonutil"
	"github.com/godseye/godseye/pkg/target"
)

// ErrNoPriorRun means the baseline directory has no readable results file.
var ErrNoPriorRun = errors.New("no prior run found")

// PriorRun is a loaded baseline: the results of an earlier scan, indexed
// for resume checks and diff lookups.
type PriorRun struct {
	Results []*capture.Result

	// byURL maps normalized final URLs (and, as a fallback, normalized
	// requested URLs) of successful captures to their results.
	byURL map[string]*capture.Result
}

// LoadPriorRun reads a results manifest from a run directory. Both the
// current wrapped shape and the legacy bare-array shape are accepted;
// fields the diff engine added on top of the capture record are ignored.
func LoadPriorRun(dir string) (*PriorRun, error) {
	path := NewLayout(dir).Results
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoPriorRun, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var manifest Manifest
	if err := jsonutil.Unmarshal(data, &manifest); err != nil || manifest.Results == nil {
		// Legacy runs stored a bare array of results.
		var legacy []*capture.Result
		if legacyErr := jsonutil.Unmarshal(data, &legacy); legacyErr != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, legacyErr)
		}
		manifest.Results = legacy
	}

	prior := &PriorRun{
		Results: manifest.Results,
		byURL:   make(map[string]*capture.Result),
	}
	for _, r := range manifest.Results {
		if !r.Succeeded() {
			continue
		}
		if key := target.NormalizeURL(r.FinalURL); key != "" {
			if _, taken := prior.byURL[key]; !taken {
				prior.byURL[key] = r
			}
		}
		if key := target.NormalizeURL(r.URL); key != "" {
			if _, taken := prior.byURL[key]; !taken {
				prior.byURL[key] = r
			}
		}
	}
	return prior, nil
}

// Lookup finds the prior result for a target URL, matching on the
// normalized form.
func (p *PriorRun) Lookup(rawURL string) (*capture.Result, bool) {
	r, ok := p.byURL[target.NormalizeURL(rawURL)]
	return r, ok
}

// ScreenshotIn joins a stored artifact name into the screenshots dir.
func (l Layout) ScreenshotIn(name string) string {
	if name == "" {
		return ""
	}
	return filepath.Join(l.Screenshots, name)
}
