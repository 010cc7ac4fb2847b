// Package zonal runs the per-geometry statistics pipeline.
//
// For each input feature the pipeline resolves the minimal raster window
// covering the geometry, reads that window's buffer, rasterizes the geometry
// into a coverage mask, classifies every pixel, computes the requested
// statistics, and assembles the per-feature result. Features are processed
// in input order; the first failure aborts the run.
//
// # Configuration
//
// All options live in Config and are validated by Resolve before the first
// raster read. Configuration mistakes (unknown statistic, percentile out of
// range, colliding sentinels, nil hooks) surface as errors wrapping
// ErrConfig, distinct from raster I/O failures.
//
// # Degenerate zones
//
// Geometries that miss the raster entirely, or whose zones hold only nodata
// pixels, are not errors: they produce a well-formed result with count 0 and
// nil for the arithmetic statistics.
//
// # Concurrency
//
// A resolved Run holds no shared mutable state beyond the read-only raster
// source, so callers may process disjoint feature batches concurrently with
// the same source and configuration if they need to.
package zonal
