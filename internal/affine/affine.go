// Package affine implements the 2D affine transform used to map between
// pixel coordinates and geographic coordinates, following the same
// six-parameter convention as GDAL and the python affine library:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
//
// where (col, row) are fractional pixel coordinates with (0, 0) at the
// top-left corner of the top-left pixel. E is typically negative for
// north-up rasters.
package affine

import (
	"errors"
	"fmt"
	"math"
)

// ErrSingular is returned when a transform cannot be inverted.
var ErrSingular = errors.New("affine: transform is singular")

// Affine holds the six transform coefficients.
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// New creates a transform from its six coefficients in row-major order.
func New(a, b, c, d, e, f float64) Affine {
	return Affine{A: a, B: b, C: c, D: d, E: e, F: f}
}

// Identity returns the identity transform.
func Identity() Affine {
	return New(1, 0, 0, 0, 1, 0)
}

// Translation returns a transform that offsets coordinates by (dx, dy).
func Translation(dx, dy float64) Affine {
	return New(1, 0, dx, 0, 1, dy)
}

// Scale returns a transform that scales coordinates by (sx, sy).
func Scale(sx, sy float64) Affine {
	return New(sx, 0, 0, 0, sy, 0)
}

// Apply maps fractional pixel coordinates to geographic coordinates.
func (t Affine) Apply(col, row float64) (x, y float64) {
	return t.A*col + t.B*row + t.C, t.D*col + t.E*row + t.F
}

// Mul composes two transforms; the result applies u first, then t.
func (t Affine) Mul(u Affine) Affine {
	return Affine{
		A: t.A*u.A + t.B*u.D,
		B: t.A*u.B + t.B*u.E,
		C: t.A*u.C + t.B*u.F + t.C,
		D: t.D*u.A + t.E*u.D,
		E: t.D*u.B + t.E*u.E,
		F: t.D*u.C + t.E*u.F + t.F,
	}
}

// Invert returns the inverse transform, mapping geographic coordinates back
// to fractional pixel coordinates.
func (t Affine) Invert() (Affine, error) {
	det := t.A*t.E - t.B*t.D
	if det == 0 {
		return Affine{}, ErrSingular
	}
	return Affine{
		A: t.E / det,
		B: -t.B / det,
		C: (t.B*t.F - t.E*t.C) / det,
		D: -t.D / det,
		E: t.A / det,
		F: (t.D*t.C - t.A*t.F) / det,
	}, nil
}

// PixelSize returns the absolute pixel width and height.
func (t Affine) PixelSize() (w, h float64) {
	return math.Abs(t.A), math.Abs(t.E)
}

// Coefficients returns the six coefficients in row-major order.
func (t Affine) Coefficients() [6]float64 {
	return [6]float64{t.A, t.B, t.C, t.D, t.E, t.F}
}

func (t Affine) String() string {
	return fmt.Sprintf("Affine(%g, %g, %g, %g, %g, %g)", t.A, t.B, t.C, t.D, t.E, t.F)
}
