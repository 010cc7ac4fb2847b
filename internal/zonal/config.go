package zonal

import (
	"errors"
	"fmt"

	"github.com/gridshed/zonalstats/internal/raster"
	"github.com/gridshed/zonalstats/internal/rasterize"
	"github.com/gridshed/zonalstats/internal/stats"
)

// ErrConfig marks configuration errors. They are reported before any raster
// window is read and are never retried.
var ErrConfig = errors.New("zonal: invalid configuration")

// ZoneFunc is an optional hook applied to the raw window buffer before
// masking and statistics, e.g. to zero-fill or reclassify values in place.
type ZoneFunc func(values []float64)

// Config is the caller-facing configuration for one run. The zero value
// computes the default statistics (count, min, max, mean) with binary
// coverage and no prefix.
type Config struct {
	// Stats lists the requested statistic names; "*" or "ALL" expands to
	// the full built-in vocabulary. Empty means the default set (or no
	// named statistics in categorical mode).
	Stats []string

	// Nodata overrides the raster's own nodata value.
	Nodata *float64

	// NoOverlap is the sentinel marking pixels outside the raster extent
	// in pre-padded buffers. Must differ from the nodata value.
	NoOverlap *float64

	// Band selects the raster band, 1-based. Zero means band 1.
	Band int

	// AllTouched switches rasterization from center-in to all-touched.
	AllTouched bool

	// Categorical reports per-value pixel counts instead of (or alongside)
	// the named statistics.
	Categorical bool

	// CategoryMap relabels raw category values in the output. Unmapped
	// values keep their numeric key.
	CategoryMap map[float64]string

	// GlobalExtent processes every geometry against the full raster
	// instead of its minimal window.
	GlobalExtent bool

	// CoverWeighted computes count, sum and mean with fractional pixel
	// coverage as weights. CoverScale is the oversampling factor used to
	// estimate coverage; zero means the default of 10.
	CoverWeighted bool
	CoverScale    int

	// Custom maps extra statistic names to caller-supplied reducers.
	Custom map[string]stats.Reducer

	// Prefix is prepended to every statistic key in the output.
	Prefix string

	// ZoneFunc, when set, transforms each window buffer before statistics.
	ZoneFunc ZoneFunc

	// RasterOut embeds each zone's window buffer, transform and nodata
	// value in the result for debugging and visualization.
	RasterOut bool
}

// resolved is the validated, immutable per-run configuration.
type resolved struct {
	cfg    *Config
	engine *stats.Engine
	nodata *float64
	scale  int
}

// Resolve validates a configuration against a raster source. All
// configuration errors surface here, before any window is read.
func (cfg *Config) Resolve(src raster.Source) (*resolved, error) {
	if cfg.Band < 0 {
		return nil, fmt.Errorf("%w: band %d", ErrConfig, cfg.Band)
	}
	if cfg.Band > 1 {
		return nil, fmt.Errorf("%w: band %d requested from a single-band source", ErrConfig, cfg.Band)
	}

	nodata := cfg.Nodata
	if nodata == nil {
		if v, ok := src.Nodata(); ok {
			nodata = &v
		}
	}
	if nodata != nil && cfg.NoOverlap != nil && *nodata == *cfg.NoOverlap {
		return nil, fmt.Errorf("%w: nodata value %g equals the no-overlap sentinel", ErrConfig, *nodata)
	}

	scale := cfg.CoverScale
	if scale == 0 {
		scale = rasterize.DefaultScale
	}
	if scale < 1 {
		return nil, fmt.Errorf("%w: coverage oversampling factor %d", ErrConfig, scale)
	}

	resolvedStats, err := stats.Resolve(cfg.Stats, cfg.Categorical, cfg.Custom)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	return &resolved{
		cfg:    cfg,
		engine: stats.New(resolvedStats, cfg.Categorical, cfg.Custom),
		nodata: nodata,
		scale:  scale,
	}, nil
}
