package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies a built-in statistic.
type Kind uint8

const (
	KindCount Kind = iota
	KindMin
	KindMax
	KindMean
	KindSum
	KindStd
	KindMedian
	KindMajority
	KindMinority
	KindUnique
	KindRange
	KindNodata
	KindNaN
	KindNoOverlap
	KindPercentile
	KindCustom
)

// percentilePrefix starts every percentile statistic name.
const percentilePrefix = "percentile_"

// Default is the statistic set used when none is requested (and categorical
// mode is off).
var Default = []string{"count", "min", "max", "mean"}

// Vocabulary lists every fixed built-in statistic name. Percentiles are
// handled as a special case on top of this set.
var Vocabulary = []string{
	"count", "min", "max", "mean",
	"sum", "std", "median", "majority", "minority", "unique", "range",
	"nodata", "nan", "no_overlap",
}

var kindByName = map[string]Kind{
	"count":      KindCount,
	"min":        KindMin,
	"max":        KindMax,
	"mean":       KindMean,
	"sum":        KindSum,
	"std":        KindStd,
	"median":     KindMedian,
	"majority":   KindMajority,
	"minority":   KindMinority,
	"unique":     KindUnique,
	"range":      KindRange,
	"nodata":     KindNodata,
	"nan":        KindNaN,
	"no_overlap": KindNoOverlap,
}

// Stat is one resolved statistic request.
type Stat struct {
	Name string
	Kind Kind
	Q    float64 // percentile value, set only for KindPercentile
}

// Reducer computes a custom statistic from the valid pixel values. It is
// called even when the slice is empty and may return nil for "undefined".
type Reducer func(values []float64) (interface{}, error)

// ParsePercentile extracts Q from a "percentile_Q" statistic name. Q must
// parse as a number in [0, 100].
func ParsePercentile(name string) (float64, error) {
	if !strings.HasPrefix(name, percentilePrefix) {
		return 0, fmt.Errorf("stats: %q must start with %q", name, percentilePrefix)
	}
	q, err := strconv.ParseFloat(strings.TrimPrefix(name, percentilePrefix), 64)
	if err != nil {
		return 0, fmt.Errorf("stats: %q has a malformed percentile value", name)
	}
	if math.IsNaN(q) || q < 0 || q > 100 {
		return 0, fmt.Errorf("stats: percentile %g outside [0, 100]", q)
	}
	return q, nil
}

// Resolve validates the requested statistic names against the built-in
// vocabulary and the custom reducer registry, expanding the wildcard and
// applying defaults. Order is preserved and duplicates are dropped.
func Resolve(names []string, categorical bool, custom map[string]Reducer) ([]Stat, error) {
	for name, fn := range custom {
		if fn == nil {
			return nil, fmt.Errorf("stats: custom statistic %q has a nil reducer", name)
		}
	}

	if len(names) == 0 {
		if categorical {
			names = nil
		} else {
			names = Default
		}
	} else {
		for _, n := range names {
			if n == "*" || strings.EqualFold(n, "all") {
				names = Vocabulary
				break
			}
		}
	}

	resolved := make([]Stat, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		if kind, ok := kindByName[name]; ok {
			resolved = append(resolved, Stat{Name: name, Kind: kind})
			continue
		}
		if strings.HasPrefix(name, percentilePrefix) {
			q, err := ParsePercentile(name)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, Stat{Name: name, Kind: KindPercentile, Q: q})
			continue
		}
		if _, ok := custom[name]; ok {
			resolved = append(resolved, Stat{Name: name, Kind: KindCustom})
			continue
		}
		return nil, fmt.Errorf("stats: %q is not a valid statistic; must be one of %s",
			name, strings.Join(Vocabulary, ", "))
	}
	return resolved, nil
}

// NeedsCounts reports whether the resolved set (or categorical mode)
// requires the per-value counting pass.
func NeedsCounts(resolved []Stat, categorical bool) bool {
	if categorical {
		return true
	}
	for _, s := range resolved {
		switch s.Kind {
		case KindMajority, KindMinority, KindUnique:
			return true
		}
	}
	return false
}
