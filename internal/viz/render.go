package viz

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gridshed/zonalstats/internal/mask"
)

// DefaultScale is the pixel magnification used when the caller passes 0.
// Zone windows are usually tiny, so a bare 1:1 render is unreadable.
const DefaultScale = 16

// Value ramp endpoints and the fixed state palette. Ramp colors are blended
// in Lab space so the midpoints stay perceptually even.
var (
	rampLow  = colorful.Color{R: 0.17, G: 0.48, B: 0.71} // blue
	rampHigh = colorful.Color{R: 0.84, G: 0.19, B: 0.15} // red

	uncoveredColor = colorful.Color{R: 0.96, G: 0.96, B: 0.96}
	nodataColor    = colorful.Color{R: 0.55, G: 0.55, B: 0.55}
	noOverlapColor = colorful.Color{R: 0.13, G: 0.13, B: 0.13}
	nanColor       = colorful.Color{R: 0.72, G: 0.29, B: 0.68}
)

// RenderValues paints Valid pixels on the low-to-high value ramp and every
// other state with its palette color. A window without any Valid pixels
// renders from the palette alone.
func RenderValues(m *mask.Masked, scale int) (image.Image, error) {
	if err := checkRender(m, &scale); err != nil {
		return nil, err
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i, st := range m.States {
		if st != mask.Valid {
			continue
		}
		if v := m.Values[i]; v < lo {
			lo = v
		}
		if v := m.Values[i]; v > hi {
			hi = v
		}
	}
	span := hi - lo

	img := image.NewNRGBA(image.Rect(0, 0, m.Cols, m.Rows))
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			i := r*m.Cols + c
			var col colorful.Color
			if m.States[i] == mask.Valid {
				t := 0.5
				if span > 0 {
					t = (m.Values[i] - lo) / span
				}
				col = rampLow.BlendLab(rampHigh, t).Clamped()
			} else {
				col = stateColor(m.States[i])
			}
			img.Set(c, r, col)
		}
	}
	return upscale(img, m.Cols, m.Rows, scale), nil
}

// RenderStates paints the pixel classification with the fixed palette,
// Valid pixels included.
func RenderStates(m *mask.Masked, scale int) (image.Image, error) {
	if err := checkRender(m, &scale); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, m.Cols, m.Rows))
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			img.Set(c, r, stateColor(m.States[r*m.Cols+c]))
		}
	}
	return upscale(img, m.Cols, m.Rows, scale), nil
}

// Save writes the image to path, with the format picked from the extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("viz: save %s: %w", path, err)
	}
	return nil
}

func checkRender(m *mask.Masked, scale *int) error {
	if m.Rows == 0 || m.Cols == 0 {
		return fmt.Errorf("viz: empty window")
	}
	if *scale == 0 {
		*scale = DefaultScale
	}
	if *scale < 1 {
		return fmt.Errorf("viz: scale %d out of range", *scale)
	}
	return nil
}

func stateColor(st mask.State) colorful.Color {
	switch st {
	case mask.Valid:
		return rampLow
	case mask.Nodata:
		return nodataColor
	case mask.NoOverlap:
		return noOverlapColor
	case mask.NaN:
		return nanColor
	default:
		return uncoveredColor
	}
}

func upscale(img image.Image, cols, rows, scale int) image.Image {
	if scale == 1 {
		return img
	}
	return transform.Resize(img, cols*scale, rows*scale, transform.NearestNeighbor)
}
