// Package mask combines a geometry coverage mask with raster validity into
// an explicitly classified window buffer.
//
// Every pixel of a window carries one of five states. Only Valid pixels feed
// arithmetic statistics; Nodata, NoOverlap and NaN are tracked separately
// and are mutually exclusive per pixel. Pixels not covered by the geometry
// are excluded from every statistic.
//
// Classification applies the first matching rule, in order: outside the
// raster extent (or equal to the no-overlap sentinel) -> NoOverlap; equal to
// the nodata value -> Nodata; IEEE NaN -> NaN; otherwise Valid.
package mask

import (
	"errors"
	"math"
)

// ErrSentinelCollision is returned when the nodata value and the no-overlap
// sentinel are configured to the same value, which would make the two pixel
// classes indistinguishable.
var ErrSentinelCollision = errors.New("mask: nodata value equals no-overlap sentinel")

// State classifies one window pixel.
type State uint8

const (
	// Uncovered pixels are outside the geometry and excluded entirely.
	Uncovered State = iota
	// Valid pixels are covered, inside the raster, and hold usable values.
	Valid
	// Nodata pixels are covered but equal the raster's nodata value.
	Nodata
	// NoOverlap pixels are covered but fall outside the raster extent.
	NoOverlap
	// NaN pixels are covered but hold an IEEE NaN.
	NaN
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Nodata:
		return "nodata"
	case NoOverlap:
		return "no_overlap"
	case NaN:
		return "nan"
	default:
		return "uncovered"
	}
}

// Masked is a window buffer with its per-pixel classification.
type Masked struct {
	Rows, Cols int
	Values     []float64 // row-major window buffer
	States     []State   // parallel to Values
}

// Build classifies a row-major window buffer of the given shape. cover marks
// pixels covered by the geometry; inside marks pixels within the raster
// extent and may be nil when the window does not extend past the raster
// edges. nodata and sentinel are optional; configuring both to the same
// value is an error.
func Build(values []float64, cover []bool, inside []bool, rows, cols int, nodata, sentinel *float64) (*Masked, error) {
	if nodata != nil && sentinel != nil && *nodata == *sentinel {
		return nil, ErrSentinelCollision
	}

	states := make([]State, len(values))
	for i, v := range values {
		if !cover[i] {
			continue
		}
		switch {
		case inside != nil && !inside[i]:
			states[i] = NoOverlap
		case sentinel != nil && v == *sentinel:
			states[i] = NoOverlap
		case nodata != nil && v == *nodata:
			states[i] = Nodata
		case math.IsNaN(v):
			states[i] = NaN
		default:
			states[i] = Valid
		}
	}

	return &Masked{Rows: rows, Cols: cols, Values: values, States: states}, nil
}

// Count returns the number of pixels in the given state.
func (m *Masked) Count(s State) int {
	n := 0
	for _, st := range m.States {
		if st == s {
			n++
		}
	}
	return n
}

// ValidValues returns the values of Valid pixels in row-major order.
func (m *Masked) ValidValues() []float64 {
	vals := make([]float64, 0, len(m.Values))
	for i, st := range m.States {
		if st == Valid {
			vals = append(vals, m.Values[i])
		}
	}
	return vals
}

// ValidWeights returns the fractional coverage of Valid pixels, aligned with
// ValidValues. frac must be the window's fractional coverage mask.
func (m *Masked) ValidWeights(frac []float32) []float64 {
	w := make([]float64, 0, len(frac))
	for i, st := range m.States {
		if st == Valid {
			w = append(w, float64(frac[i]))
		}
	}
	return w
}
