package raster

import (
	"fmt"

	"github.com/gridshed/zonalstats/internal/affine"
	"github.com/gridshed/zonalstats/internal/window"
)

// Source is a read-only raster: a shape, a pixel-to-geographic transform,
// an optional nodata value, and windowed buffer reads.
type Source interface {
	// Shape returns the raster's row and column counts.
	Shape() (rows, cols int)
	// Transform maps fractional pixel coordinates to geographic coordinates.
	Transform() affine.Affine
	// Nodata returns the raster-level nodata value, if one is defined.
	Nodata() (float64, bool)
	// Read returns a row-major buffer for a window already clipped to the
	// raster extent.
	Read(w window.Window) ([]float64, error)
	// Close releases any resources held by the source.
	Close() error
}

// MemorySource serves windows from a buffer already in memory.
type MemorySource struct {
	values []float64
	rows   int
	cols   int
	tr     affine.Affine
	nodata *float64
}

// NewMemory wraps a row-major 2-D buffer with its transform. The transform
// must be invertible: a bare numeric buffer with no usable transform cannot
// anchor geometries and is rejected. nodata is optional.
func NewMemory(values [][]float64, tr affine.Affine, nodata *float64) (*MemorySource, error) {
	if _, err := tr.Invert(); err != nil {
		return nil, fmt.Errorf("raster: buffer has no usable transform: %w", err)
	}
	rows := len(values)
	cols := 0
	if rows > 0 {
		cols = len(values[0])
	}
	flat := make([]float64, 0, rows*cols)
	for i, rowVals := range values {
		if len(rowVals) != cols {
			return nil, fmt.Errorf("raster: row %d has %d columns, want %d", i, len(rowVals), cols)
		}
		flat = append(flat, rowVals...)
	}
	return &MemorySource{values: flat, rows: rows, cols: cols, tr: tr, nodata: nodata}, nil
}

func (s *MemorySource) Shape() (rows, cols int)  { return s.rows, s.cols }
func (s *MemorySource) Transform() affine.Affine { return s.tr }

func (s *MemorySource) Nodata() (float64, bool) {
	if s.nodata == nil {
		return 0, false
	}
	return *s.nodata, true
}

func (s *MemorySource) Read(w window.Window) ([]float64, error) {
	return readGrid(s.values, s.rows, s.cols, w)
}

func (s *MemorySource) Close() error { return nil }

func readGrid(values []float64, rows, cols int, w window.Window) ([]float64, error) {
	if w.RowStart < 0 || w.ColStart < 0 || w.RowEnd > rows || w.ColEnd > cols {
		return nil, fmt.Errorf("raster: %v outside raster of %d x %d", w, rows, cols)
	}
	wr, wc := w.Shape()
	out := make([]float64, wr*wc)
	for r := 0; r < wr; r++ {
		src := (w.RowStart+r)*cols + w.ColStart
		copy(out[r*wc:(r+1)*wc], values[src:src+wc])
	}
	return out, nil
}

// ReadPadded reads an unclipped window, filling pixels outside the raster
// extent with fill. The returned inside mask is nil when the window lies
// entirely within the raster, so callers can skip no-overlap handling in
// the common case.
func ReadPadded(src Source, w window.Window, fill float64) (values []float64, inside []bool, err error) {
	rows, cols := src.Shape()
	clipped := w.Clip(rows, cols)
	if clipped == w {
		values, err = src.Read(w)
		return values, nil, err
	}

	wr, wc := w.Shape()
	values = make([]float64, wr*wc)
	inside = make([]bool, wr*wc)
	for i := range values {
		values[i] = fill
	}

	if !clipped.Empty() {
		part, err := src.Read(clipped)
		if err != nil {
			return nil, nil, err
		}
		_, pc := clipped.Shape()
		for r := clipped.RowStart; r < clipped.RowEnd; r++ {
			dst := (r-w.RowStart)*wc + (clipped.ColStart - w.ColStart)
			srcOff := (r - clipped.RowStart) * pc
			copy(values[dst:dst+pc], part[srcOff:srcOff+pc])
			for c := 0; c < pc; c++ {
				inside[dst+c] = true
			}
		}
	}
	return values, inside, nil
}
