// Package window computes the integer raster window covering a geometry's
// bounding box, along with the window's derived sub-transform.
package window

import (
	"fmt"
	"math"

	"github.com/gridshed/zonalstats/internal/affine"
)

// Window is a rectangular pixel region with half-open row and column ranges.
// A window produced by FromBounds is unclipped: it may extend past the raster
// edges (or lie entirely outside) when the geometry does. Clip intersects it
// with the raster extent.
type Window struct {
	RowStart, RowEnd int
	ColStart, ColEnd int
}

// Full returns the window covering an entire raster.
func Full(rows, cols int) Window {
	return Window{RowStart: 0, RowEnd: rows, ColStart: 0, ColEnd: cols}
}

// FromBounds returns the smallest window fully containing the geographic
// bounding box (minX, minY, maxX, maxY) under the given transform. Pixel
// bounds are expanded outward (floor of the minimum, ceil of the maximum) so
// partially covered edge pixels are included.
func FromBounds(minX, minY, maxX, maxY float64, tr affine.Affine) (Window, error) {
	inv, err := tr.Invert()
	if err != nil {
		return Window{}, err
	}

	// Use all four corners so sheared transforms are handled.
	cMin, rMin := math.Inf(1), math.Inf(1)
	cMax, rMax := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{minX, minY}, {minX, maxY}, {maxX, minY}, {maxX, maxY}} {
		col, row := inv.Apply(p[0], p[1])
		cMin = math.Min(cMin, col)
		cMax = math.Max(cMax, col)
		rMin = math.Min(rMin, row)
		rMax = math.Max(rMax, row)
	}

	return Window{
		RowStart: int(math.Floor(rMin)),
		RowEnd:   int(math.Ceil(rMax)),
		ColStart: int(math.Floor(cMin)),
		ColEnd:   int(math.Ceil(cMax)),
	}, nil
}

// Clip intersects the window with a raster of the given shape. A window with
// no overlap clips to an empty window, never to negative ranges.
func (w Window) Clip(rows, cols int) Window {
	c := Window{
		RowStart: clamp(w.RowStart, 0, rows),
		RowEnd:   clamp(w.RowEnd, 0, rows),
		ColStart: clamp(w.ColStart, 0, cols),
		ColEnd:   clamp(w.ColEnd, 0, cols),
	}
	if c.RowEnd < c.RowStart {
		c.RowEnd = c.RowStart
	}
	if c.ColEnd < c.ColStart {
		c.ColEnd = c.ColStart
	}
	return c
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// Shape returns the window's row and column counts.
func (w Window) Shape() (rows, cols int) {
	return w.RowEnd - w.RowStart, w.ColEnd - w.ColStart
}

// Empty reports whether the window covers no pixels.
func (w Window) Empty() bool {
	return w.RowEnd <= w.RowStart || w.ColEnd <= w.ColStart
}

// Transform derives the window's transform from its parent raster transform:
// same pixel size, origin translated to the window start.
func (w Window) Transform(parent affine.Affine) affine.Affine {
	return parent.Mul(affine.Translation(float64(w.ColStart), float64(w.RowStart)))
}

func (w Window) String() string {
	return fmt.Sprintf("Window(rows %d:%d, cols %d:%d)", w.RowStart, w.RowEnd, w.ColStart, w.ColEnd)
}
