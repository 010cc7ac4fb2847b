package zonal

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/gridshed/zonalstats/internal/mask"
	"github.com/gridshed/zonalstats/internal/raster"
	"github.com/gridshed/zonalstats/internal/rasterize"
	"github.com/gridshed/zonalstats/internal/window"
)

// Result maps statistic keys (already prefixed and category-remapped) to
// values: float64, int, nil, or the embedded mini-raster fields.
type Result map[string]interface{}

// Run computes the configured statistics for every feature, in input order.
// The configuration is resolved once up front; the first failing feature
// aborts the run.
func Run(features []Feature, src raster.Source, cfg *Config) ([]Result, error) {
	rc, err := cfg.Resolve(src)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(features))
	for i, ft := range features {
		if ft.Geometry == nil {
			return nil, fmt.Errorf("%w: feature %d has no geometry", ErrConfig, i)
		}
		res, err := runZone(ft.Geometry, src, rc)
		if err != nil {
			return nil, fmt.Errorf("zonal: feature %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func runZone(geom orb.Geometry, src raster.Source, rc *resolved) (Result, error) {
	// Points are boxified before window resolution so each point's owning
	// pixel is always inside its window.
	switch geom.(type) {
	case orb.Point, orb.MultiPoint:
		boxed, err := rasterize.BoxifyPoints(geom, src.Transform())
		if err != nil {
			return nil, err
		}
		geom = boxed
	}

	rows, cols := src.Shape()
	var w window.Window
	if rc.cfg.GlobalExtent {
		w = window.Full(rows, cols)
	} else {
		b := geom.Bound()
		var err error
		w, err = window.FromBounds(b.Min[0], b.Min[1], b.Max[0], b.Max[1], src.Transform())
		if err != nil {
			return nil, err
		}
	}
	if w.Empty() {
		w = window.Window{}
	}
	wr, wc := w.Shape()
	tr := w.Transform(src.Transform())

	// The window is kept unclipped so pixels past the raster edge can be
	// classified as no-overlap; ReadPadded fills them.
	fill := 0.0
	if rc.cfg.NoOverlap != nil {
		fill = *rc.cfg.NoOverlap
	}
	var values []float64
	var inside []bool
	if !w.Empty() {
		var err error
		values, inside, err = raster.ReadPadded(src, w, fill)
		if err != nil {
			return nil, err
		}
	}

	if rc.cfg.ZoneFunc != nil && len(values) > 0 {
		rc.cfg.ZoneFunc(values)
	}

	cover, err := rasterize.Mask(geom, wr, wc, tr, rc.cfg.AllTouched)
	if err != nil {
		return nil, err
	}
	m, err := mask.Build(values, cover, inside, wr, wc, rc.nodata, rc.cfg.NoOverlap)
	if err != nil {
		return nil, err
	}

	var weights []float64
	if rc.cfg.CoverWeighted {
		frac, err := rasterize.FracMask(geom, wr, wc, tr, rc.scale, rc.cfg.AllTouched)
		if err != nil {
			return nil, err
		}
		weights = m.ValidWeights(frac)
	}

	sres, err := rc.engine.Compute(m, weights)
	if err != nil {
		return nil, err
	}
	return rc.assemble(sres, m, tr), nil
}
