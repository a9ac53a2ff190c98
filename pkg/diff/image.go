package diff

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
)

// blockGrid holds the per-block mean luminance delta for one comparison.
type blockGrid struct {
	cols, rows int
	size       int // block edge in pixels
	mean       []float64
}

func (g *blockGrid) at(col, row int) float64 {
	return g.mean[row*g.cols+col]
}

// loadImage decodes a screenshot from disk. PNG and JPEG are accepted.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// luminance maps a pixel to the 0-255 perceptual brightness scale.
func luminance(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
}

// commonBounds crops both images to their shared top-left region. Sizes
// legitimately drift between runs (dynamic page height, viewport change),
// and cropping keeps the comparison aligned instead of rescaling content.
func commonBounds(a, b image.Image) image.Rectangle {
	ab, bb := a.Bounds(), b.Bounds()
	w := min(ab.Dx(), bb.Dx())
	h := min(ab.Dy(), bb.Dy())
	return image.Rect(0, 0, w, h)
}

// compareBlocks computes the per-block mean absolute luminance delta over
// the images' common region. Partial edge blocks are averaged over the
// pixels they actually cover.
func compareBlocks(baseline, current image.Image, cfg Config) *blockGrid {
	bounds := commonBounds(baseline, current)
	bx, by := baseline.Bounds().Min, current.Bounds().Min

	cols := (bounds.Dx() + cfg.BlockSize - 1) / cfg.BlockSize
	rows := (bounds.Dy() + cfg.BlockSize - 1) / cfg.BlockSize
	grid := &blockGrid{
		cols: cols,
		rows: rows,
		size: cfg.BlockSize,
		mean: make([]float64, cols*rows),
	}

	for row := 0; row < rows; row++ {
		y0 := row * cfg.BlockSize
		y1 := min(y0+cfg.BlockSize, bounds.Dy())
		for col := 0; col < cols; col++ {
			x0 := col * cfg.BlockSize
			x1 := min(x0+cfg.BlockSize, bounds.Dx())

			var sum float64
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					la := luminance(baseline, bx.X+x, bx.Y+y)
					lb := luminance(current, by.X+x, by.Y+y)
					sum += math.Abs(la - lb)
				}
			}
			grid.mean[row*cols+col] = sum / float64((x1-x0)*(y1-y0))
		}
	}
	return grid
}

// changedBlocks counts blocks whose mean delta strictly exceeds the
// threshold.
func (g *blockGrid) changedBlocks(threshold int) int {
	var n int
	for _, m := range g.mean {
		if m > float64(threshold) {
			n++
		}
	}
	return n
}

// roundPercent keeps exactly two decimals, the precision persisted and
// compared against the severity thresholds.
func roundPercent(p float64) float64 {
	return math.Round(p*100) / 100
}
