package diff

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
)

// Intensity bands for heatmap coloring. A changed block is tinted by how
// far its mean delta climbed: subtle, moderate, severe.
const (
	intensityYellow = 60
	intensityRed    = 140
)

var (
	tintGreen  = color.NRGBA{R: 46, G: 204, B: 113, A: 255}
	tintYellow = color.NRGBA{R: 241, G: 196, B: 15, A: 255}
	tintRed    = color.NRGBA{R: 231, G: 76, B: 60, A: 255}
)

func intensityTint(mean float64) color.NRGBA {
	switch {
	case mean >= intensityRed:
		return tintRed
	case mean >= intensityYellow:
		return tintYellow
	default:
		return tintGreen
	}
}

// renderHeatmap dims the baseline to grayscale and paints every changed
// block with its intensity tint, so the eye lands on what moved.
func renderHeatmap(baseline image.Image, grid *blockGrid, threshold int) image.Image {
	bounds := baseline.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			lum := luminance(baseline, bounds.Min.X+x, bounds.Min.Y+y)
			dim := uint8(lum * 0.4)
			out.SetNRGBA(x, y, color.NRGBA{R: dim, G: dim, B: dim, A: 255})
		}
	}

	for row := 0; row < grid.rows; row++ {
		for col := 0; col < grid.cols; col++ {
			mean := grid.at(col, row)
			if mean <= float64(threshold) {
				continue
			}
			tint := intensityTint(mean)
			x0, y0 := col*grid.size, row*grid.size
			x1 := min(x0+grid.size, bounds.Dx())
			y1 := min(y0+grid.size, bounds.Dy())
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					base := out.NRGBAAt(x, y)
					out.SetNRGBA(x, y, blend(base, tint, 0.6))
				}
			}
		}
	}
	return out
}

func blend(under, over color.NRGBA, alpha float64) color.NRGBA {
	mix := func(u, o uint8) uint8 {
		return uint8(float64(u)*(1-alpha) + float64(o)*alpha)
	}
	return color.NRGBA{
		R: mix(under.R, over.R),
		G: mix(under.G, over.G),
		B: mix(under.B, over.B),
		A: 255,
	}
}

// separatorWidth is the gap between the panes of a composite.
const separatorWidth = 6

// renderComposite lays the three review panes side by side: baseline on
// the left, the heatmap in the middle, current on the right.
func renderComposite(baseline, heatmap, current image.Image) image.Image {
	bb, hb, cb := baseline.Bounds(), heatmap.Bounds(), current.Bounds()
	w := bb.Dx() + separatorWidth + hb.Dx() + separatorWidth + cb.Dx()
	h := max(bb.Dy(), max(hb.Dy(), cb.Dy()))

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.NRGBA{R: 30, G: 30, B: 30, A: 255}), image.Point{}, draw.Src)

	x := 0
	for _, pane := range []image.Image{baseline, heatmap, current} {
		pb := pane.Bounds()
		draw.Draw(out, image.Rect(x, 0, x+pb.Dx(), pb.Dy()), pane, pb.Min, draw.Src)
		x += pb.Dx() + separatorWidth
	}
	return out
}

// writePNG saves an artifact image.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
