package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gridshed/zonalstats/internal/mask"
)

// Engine computes a resolved statistic set over classified windows. One
// engine is built per run and reused across geometries; it holds no mutable
// state, so geometries may be processed concurrently against it.
type Engine struct {
	resolved    []Stat
	custom      map[string]Reducer
	categorical bool
}

// Result holds one zone's computed statistics. Named maps statistic name to
// value (float64, int, or nil). Categories maps raw pixel value to
// occurrence count; it is non-nil only in categorical mode or when the
// counting statistics were requested alongside a category map.
type Result struct {
	Named      map[string]interface{}
	Categories map[float64]float64
}

// New builds an engine from a resolved statistic set.
func New(resolved []Stat, categorical bool, custom map[string]Reducer) *Engine {
	return &Engine{resolved: resolved, custom: custom, categorical: categorical}
}

// Compute evaluates the engine's statistic set over one classified window.
// weights, when non-nil, is the fractional coverage of each valid pixel
// (aligned with the window's valid values) and switches count, sum and mean
// to their coverage-weighted forms.
func (e *Engine) Compute(m *mask.Masked, weights []float64) (Result, error) {
	vals := m.ValidValues()

	// majority/minority/unique are defined over the valid pixel set itself,
	// so the counting pass ignores coverage weights. Only the categorical
	// output reports weighted counts.
	var counts map[float64]float64
	if NeedsCounts(e.resolved, e.categorical) {
		counts = tally(vals, nil)
	}

	// Sorted copy, built once, shared by median and percentiles.
	var sorted []float64
	sortedVals := func() []float64 {
		if sorted == nil {
			sorted = append([]float64(nil), vals...)
			sort.Float64s(sorted)
		}
		return sorted
	}

	named := make(map[string]interface{}, len(e.resolved))
	for _, s := range e.resolved {
		switch s.Kind {
		case KindCount:
			if weights != nil {
				named[s.Name] = floats.Sum(weights)
			} else {
				named[s.Name] = len(vals)
			}
		case KindMin:
			if len(vals) == 0 {
				named[s.Name] = nil
			} else {
				named[s.Name] = floats.Min(vals)
			}
		case KindMax:
			if len(vals) == 0 {
				named[s.Name] = nil
			} else {
				named[s.Name] = floats.Max(vals)
			}
		case KindMean:
			named[s.Name] = jsonSafe(meanOf(vals, weights))
		case KindSum:
			if len(vals) == 0 {
				named[s.Name] = nil
			} else if weights != nil {
				sum := 0.0
				for i, v := range vals {
					sum += v * weights[i]
				}
				named[s.Name] = sum
			} else {
				named[s.Name] = floats.Sum(vals)
			}
		case KindStd:
			if len(vals) == 0 {
				named[s.Name] = nil
			} else {
				named[s.Name] = stat.PopStdDev(vals, nil)
			}
		case KindMedian:
			if len(vals) == 0 {
				named[s.Name] = nil
			} else {
				named[s.Name] = percentile(sortedVals(), 50)
			}
		case KindPercentile:
			if len(vals) == 0 {
				named[s.Name] = nil
			} else {
				named[s.Name] = percentile(sortedVals(), s.Q)
			}
		case KindMajority:
			named[s.Name] = extremeKey(counts, true)
		case KindMinority:
			named[s.Name] = extremeKey(counts, false)
		case KindUnique:
			named[s.Name] = len(counts)
		case KindRange:
			if len(vals) == 0 {
				named[s.Name] = nil
			} else {
				named[s.Name] = floats.Max(vals) - floats.Min(vals)
			}
		case KindNodata:
			named[s.Name] = m.Count(mask.Nodata)
		case KindNaN:
			named[s.Name] = m.Count(mask.NaN)
		case KindNoOverlap:
			named[s.Name] = m.Count(mask.NoOverlap)
		case KindCustom:
			fn := e.custom[s.Name]
			v, err := fn(vals)
			if err != nil {
				return Result{}, fmt.Errorf("stats: custom statistic %q: %w", s.Name, err)
			}
			named[s.Name] = jsonSafe(v)
		}
	}

	res := Result{Named: named}
	if e.categorical {
		if weights != nil {
			res.Categories = tally(vals, weights)
		} else {
			res.Categories = counts
		}
	}
	return res, nil
}

// tally counts occurrences of each valid value, weighted by fractional
// coverage when weights are supplied.
func tally(vals, weights []float64) map[float64]float64 {
	counts := make(map[float64]float64)
	for i, v := range vals {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		counts[v] += w
	}
	return counts
}

// extremeKey returns the value with the maximum (or minimum) count. Ties
// break toward the smallest value, so results do not depend on map
// iteration order. Returns nil for an empty count set.
func extremeKey(counts map[float64]float64, wantMax bool) interface{} {
	if len(counts) == 0 {
		return nil
	}
	keys := make([]float64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	best := keys[0]
	for _, k := range keys[1:] {
		if (wantMax && counts[k] > counts[best]) || (!wantMax && counts[k] < counts[best]) {
			best = k
		}
	}
	return best
}

func meanOf(vals, weights []float64) interface{} {
	if len(vals) == 0 {
		return nil
	}
	if weights != nil {
		n := floats.Sum(weights)
		if n == 0 {
			return nil
		}
		sum := 0.0
		for i, v := range vals {
			sum += v * weights[i]
		}
		return sum / n
	}
	return stat.Mean(vals, nil)
}

// percentile evaluates the linearly interpolated q-th percentile over a
// sorted, non-empty slice (numpy's default convention).
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * q / 100
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// jsonSafe replaces non-finite floats with nil so results always serialize.
func jsonSafe(v interface{}) interface{} {
	if f, ok := v.(float64); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	}
	return v
}
