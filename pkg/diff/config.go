// Package diff compares a current screenshot against a baseline using a
// block-based luminance diff, renders heatmap and side-by-side artifacts
// for meaningful changes, diffs the non-visual page fields, and folds
// everything into a severity classification.
package diff

import (
	"fmt"

	"github.com/godseye/godseye/pkg/defaults"
)

// Config tunes the block diff.
type Config struct {
	// Threshold is the mean per-block luminance delta (0-255 scale) a
	// block must exceed to count as changed.
	Threshold int

	// BlockSize is the square block edge in pixels.
	BlockSize int
}

// DefaultConfig returns the standard diff tuning.
func DefaultConfig() Config {
	return Config{
		Threshold: defaults.DiffThreshold,
		BlockSize: defaults.DiffBlockSize,
	}
}

// Validate rejects out-of-range tunings before any comparison runs.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > defaults.IntensityMax {
		return fmt.Errorf("diff threshold %d out of range 0-%d", c.Threshold, defaults.IntensityMax)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("diff block size %d must be positive", c.BlockSize)
	}
	return nil
}
