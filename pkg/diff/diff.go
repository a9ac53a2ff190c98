package diff

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spaolacci/murmur3"

	"github.com/godseye/godseye/pkg/capture"
)

// Result is the outcome of diffing one target against its baseline.
type Result struct {
	Percent       float64       `json:"percent"`
	ChangedBlocks int           `json:"changed_blocks"`
	TotalBlocks   int           `json:"total_blocks"`
	Identical     bool          `json:"identical,omitempty"`
	Severity      Severity      `json:"severity"`
	Changes       []FieldChange `json:"changes,omitempty"`
	Heatmap       string        `json:"heatmap,omitempty"`
	Composite     string        `json:"composite,omitempty"`
	Note          string        `json:"note,omitempty"`
}

// NewTarget is the diff recorded for a target with no baseline capture.
func NewTarget() *Result {
	return &Result{Severity: SeverityNew}
}

// Engine runs comparisons and writes artifacts into the diffs directory.
type Engine struct {
	cfg    Config
	dir    string
	logger *slog.Logger
}

// NewEngine validates the tuning and returns a diff engine.
func NewEngine(cfg Config, diffsDir string, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, dir: diffsDir, logger: logger}, nil
}

// Compare diffs a target's current capture against its prior one. A
// comparison never fails the run: unreadable inputs yield a none-severity
// result carrying a note, so one corrupt artifact cannot sink the scan.
func (e *Engine) Compare(index int, baselinePath, currentPath string, prior, cur *capture.Result) *Result {
	changes := ContentDiff(prior, cur)

	baseData, err := os.ReadFile(baselinePath)
	if err != nil {
		return e.unreadable(index, changes, fmt.Sprintf("baseline unreadable: %v", err))
	}
	curData, err := os.ReadFile(currentPath)
	if err != nil {
		return e.unreadable(index, changes, fmt.Sprintf("current unreadable: %v", err))
	}

	// Byte-identical screenshots short-circuit the pixel work entirely.
	if len(baseData) == len(curData) && murmur3.Sum64(baseData) == murmur3.Sum64(curData) {
		return &Result{
			Percent:   0,
			Identical: true,
			Severity:  Classify(0, changes),
			Changes:   changes,
		}
	}

	baseImg, err := loadImage(baselinePath)
	if err != nil {
		return e.unreadable(index, changes, fmt.Sprintf("baseline undecodable: %v", err))
	}
	curImg, err := loadImage(currentPath)
	if err != nil {
		return e.unreadable(index, changes, fmt.Sprintf("current undecodable: %v", err))
	}

	grid := compareBlocks(baseImg, curImg, e.cfg)
	total := grid.cols * grid.rows
	changed := grid.changedBlocks(e.cfg.Threshold)

	res := &Result{
		ChangedBlocks: changed,
		TotalBlocks:   total,
		Changes:       changes,
	}
	if total > 0 {
		res.Percent = roundPercent(float64(changed) / float64(total) * 100)
	}
	res.Severity = Classify(res.Percent, changes)

	if ArtifactWorthy(res.Percent) {
		res.Heatmap, res.Composite = e.writeArtifacts(index, baseImg, curImg, grid, res)
	}

	e.logger.Debug("compared",
		"index", index,
		"percent", res.Percent,
		"changed_blocks", changed,
		"total_blocks", total,
		"severity", res.Severity)
	return res
}

// writeArtifacts renders and saves the heatmap and composite, returning
// the artifact names that made it to disk. A failed write is noted on the
// result instead of aborting the comparison.
func (e *Engine) writeArtifacts(index int, baseImg, curImg image.Image, grid *blockGrid, res *Result) (heatmap, composite string) {
	heatImg := renderHeatmap(baseImg, grid, e.cfg.Threshold)

	heatmapName := fmt.Sprintf("diff_%03d_heatmap.png", index)
	if err := writePNG(filepath.Join(e.dir, heatmapName), heatImg); err != nil {
		e.logger.Error("writing heatmap", "index", index, "error", err)
		res.Note = appendNote(res.Note, fmt.Sprintf("heatmap not saved: %v", err))
	} else {
		heatmap = heatmapName
	}

	compositeName := fmt.Sprintf("diff_%03d_compare.png", index)
	if err := writePNG(filepath.Join(e.dir, compositeName), renderComposite(baseImg, heatImg, curImg)); err != nil {
		e.logger.Error("writing composite", "index", index, "error", err)
		res.Note = appendNote(res.Note, fmt.Sprintf("composite not saved: %v", err))
	} else {
		composite = compositeName
	}
	return heatmap, composite
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}

func (e *Engine) unreadable(index int, changes []FieldChange, note string) *Result {
	e.logger.Warn("diff inputs unreadable", "index", index, "note", note)
	return &Result{
		Severity: SeverityNone,
		Changes:  changes,
		Note:     note,
	}
}
