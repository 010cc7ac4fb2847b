package zonal

import (
	"math"
	"strconv"

	"github.com/gridshed/zonalstats/internal/affine"
	"github.com/gridshed/zonalstats/internal/mask"
	"github.com/gridshed/zonalstats/internal/stats"
)

// assemble merges one zone's named statistics and category counts into the
// final key-value result, applying the key prefix and the category map.
func (rc *resolved) assemble(sres stats.Result, m *mask.Masked, tr affine.Affine) Result {
	prefix := rc.cfg.Prefix
	out := make(Result, len(sres.Named)+len(sres.Categories))

	for name, v := range sres.Named {
		out[prefix+name] = v
	}

	for raw, count := range sres.Categories {
		key := strconv.FormatFloat(raw, 'g', -1, 64)
		if label, ok := rc.cfg.CategoryMap[raw]; ok {
			key = label
		}
		if rc.cfg.CoverWeighted {
			out[prefix+key] = count
		} else {
			out[prefix+key] = int(math.Round(count))
		}
	}

	if rc.cfg.RasterOut {
		grid := make([][]float64, m.Rows)
		for r := 0; r < m.Rows; r++ {
			grid[r] = m.Values[r*m.Cols : (r+1)*m.Cols]
		}
		out[prefix+"mini_raster_array"] = grid
		out[prefix+"mini_raster_states"] = append([]mask.State(nil), m.States...)
		out[prefix+"mini_raster_affine"] = tr.Coefficients()
		if rc.nodata != nil {
			out[prefix+"mini_raster_nodata"] = *rc.nodata
		} else {
			out[prefix+"mini_raster_nodata"] = nil
		}
	}

	return out
}

// MiniRaster reconstructs a zone's masked window from a result assembled
// with RasterOut. It reports false when the result carries no mini raster.
func MiniRaster(res Result, prefix string) (*mask.Masked, bool) {
	grid, ok := res[prefix+"mini_raster_array"].([][]float64)
	if !ok || len(grid) == 0 || len(grid[0]) == 0 {
		return nil, false
	}
	states, ok := res[prefix+"mini_raster_states"].([]mask.State)
	if !ok {
		return nil, false
	}
	rows, cols := len(grid), len(grid[0])
	values := make([]float64, 0, rows*cols)
	for _, row := range grid {
		values = append(values, row...)
	}
	return &mask.Masked{Rows: rows, Cols: cols, Values: values, States: states}, true
}
