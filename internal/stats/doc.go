// Package stats validates requested statistic names and computes them over
// a classified window.
//
// # Vocabulary
//
// The built-in statistics form a closed set: count, min, max, mean, sum,
// std, median, majority, minority, unique, range, nodata, nan, no_overlap,
// and percentile_Q for any Q in [0, 100]. Requests are validated by Resolve
// before any raster is read; unknown names and malformed percentiles are
// configuration errors, never runtime surprises. The wildcard "*" (or "ALL")
// expands to the full built-in set. Callers may register custom reducers
// under their own names; these are excluded from the wildcard and must be
// requested explicitly.
//
// # Semantics
//
// Only Valid pixels feed arithmetic statistics. An empty valid set is not an
// error: count is 0, unique is 0, and every other statistic is nil. std is
// the population standard deviation, median is percentile_50, and
// percentiles use linear interpolation between order statistics. The
// majority/minority/unique family shares a single counting pass; ties are
// broken toward the smallest value so results are deterministic.
//
// When coverage weighting is enabled, count, sum and mean use per-pixel
// fractional coverage as weights (count becomes a float), and categorical
// counts report summed coverage; every other statistic, the
// majority/minority/unique family included, remains unweighted.
//
// All computed values are JSON-safe: finite numbers, integers, or nil.
package stats
