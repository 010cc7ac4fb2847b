package rasterize

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/gridshed/zonalstats/internal/affine"
)

// DefaultScale is the default oversampling factor for fractional coverage.
const DefaultScale = 10

// maxScale bounds the oversampling factor so the intermediate uint32 block
// sums cannot overflow and the oversampled grid stays bounded in memory.
const maxScale = 1000

// pointShrink is the fraction of the smaller pixel dimension by which a
// point's pixel-footprint box is shrunk. Inherited from the reference
// behavior; changing it moves pixel inclusion at tile boundaries.
const pointShrink = 0.01

// Mask burns a geometry into a rows x cols boolean coverage grid, row-major,
// under the given transform. The allTouched flag selects the inclusion rule
// described in the package documentation.
func Mask(geom orb.Geometry, rows, cols int, tr affine.Affine, allTouched bool) ([]bool, error) {
	if rows <= 0 || cols <= 0 {
		return nil, nil
	}
	m := make([]bool, rows*cols)
	inv, err := tr.Invert()
	if err != nil {
		return nil, err
	}
	g := grid{mask: m, rows: rows, cols: cols, inv: inv}
	if err := g.burn(geom, tr, allTouched); err != nil {
		return nil, err
	}
	return m, nil
}

// FracMask returns per-pixel fractional coverage in [0, 1], computed by
// rasterizing at scale x the native resolution and rebinning. A scale of 1
// degenerates to the binary mask. Scale must be in [1, 1000].
func FracMask(geom orb.Geometry, rows, cols int, tr affine.Affine, scale int, allTouched bool) ([]float32, error) {
	if scale < 1 || scale > maxScale {
		return nil, fmt.Errorf("rasterize: oversampling factor %d out of range [1, %d]", scale, maxScale)
	}

	if scale == 1 {
		bin, err := Mask(geom, rows, cols, tr, allTouched)
		if err != nil {
			return nil, err
		}
		frac := make([]float32, len(bin))
		for i, b := range bin {
			if b {
				frac[i] = 1
			}
		}
		return frac, nil
	}

	s := float64(scale)
	fineTr := tr.Mul(affine.Scale(1/s, 1/s))
	fine, err := Mask(geom, rows*scale, cols*scale, fineTr, allTouched)
	if err != nil {
		return nil, err
	}
	return rebin(fine, rows, cols, scale), nil
}

// rebin sums scale x scale blocks of the oversampled mask and normalizes by
// the block size. uint32 holds any block sum up to maxScale squared.
func rebin(fine []bool, rows, cols, scale int) []float32 {
	frac := make([]float32, rows*cols)
	fineCols := cols * scale
	norm := float32(scale * scale)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var sum uint32
			for fr := r * scale; fr < (r+1)*scale; fr++ {
				base := fr * fineCols
				for fc := c * scale; fc < (c+1)*scale; fc++ {
					if fine[base+fc] {
						sum++
					}
				}
			}
			frac[r*cols+c] = float32(sum) / norm
		}
	}
	return frac
}

// BoxifyPoints converts a Point or MultiPoint into a MultiPolygon of
// slightly shrunken pixel-footprint boxes, one per point, so the geometry
// can be rasterized by the ordinary polygon path.
func BoxifyPoints(geom orb.Geometry, tr affine.Affine) (orb.MultiPolygon, error) {
	var pts []orb.Point
	switch g := geom.(type) {
	case orb.Point:
		pts = []orb.Point{g}
	case orb.MultiPoint:
		pts = []orb.Point(g)
	default:
		return nil, fmt.Errorf("rasterize: BoxifyPoints requires Point or MultiPoint, got %s", geom.GeoJSONType())
	}

	inv, err := tr.Invert()
	if err != nil {
		return nil, err
	}
	pw, ph := tr.PixelSize()
	shrink := pointShrink * math.Min(pw, ph)

	mp := make(orb.MultiPolygon, 0, len(pts))
	for _, pt := range pts {
		col, row := inv.Apply(pt[0], pt[1])
		c, r := math.Floor(col), math.Floor(row)

		// Footprint corners of the owning pixel, in geographic space.
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, corner := range [4][2]float64{{c, r}, {c + 1, r}, {c, r + 1}, {c + 1, r + 1}} {
			x, y := tr.Apply(corner[0], corner[1])
			minX = math.Min(minX, x)
			maxX = math.Max(maxX, x)
			minY = math.Min(minY, y)
			maxY = math.Max(maxY, y)
		}
		minX += shrink
		minY += shrink
		maxX -= shrink
		maxY -= shrink

		ring := orb.Ring{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}}
		mp = append(mp, orb.Polygon{ring})
	}
	return mp, nil
}

// grid carries the burn state for one rasterization call. Coordinates are
// converted to fractional pixel space up front; pixel (r, c) owns the square
// [c, c+1) x [r, r+1) with its center at (c+0.5, r+0.5).
type grid struct {
	mask       []bool
	rows, cols int
	inv        affine.Affine
}

func (g *grid) set(r, c int) {
	if r >= 0 && r < g.rows && c >= 0 && c < g.cols {
		g.mask[r*g.cols+c] = true
	}
}

func (g *grid) burn(geom orb.Geometry, tr affine.Affine, allTouched bool) error {
	switch gm := geom.(type) {
	case orb.Point, orb.MultiPoint:
		boxed, err := BoxifyPoints(gm, tr)
		if err != nil {
			return err
		}
		return g.burn(boxed, tr, allTouched)
	case orb.LineString:
		g.burnLine(gm, allTouched)
	case orb.MultiLineString:
		for _, ls := range gm {
			g.burnLine(ls, allTouched)
		}
	case orb.Ring:
		return g.burn(orb.Polygon{gm}, tr, allTouched)
	case orb.Polygon:
		g.burnPolygon(gm, allTouched)
	case orb.MultiPolygon:
		for _, poly := range gm {
			g.burnPolygon(poly, allTouched)
		}
	case orb.Collection:
		for _, member := range gm {
			if err := g.burn(member, tr, allTouched); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("rasterize: unsupported geometry type %s", geom.GeoJSONType())
	}
	return nil
}

// pixel projects a geographic coordinate into fractional pixel space.
func (g *grid) pixel(p orb.Point) (x, y float64) {
	return g.inv.Apply(p[0], p[1])
}

func (g *grid) burnPolygon(poly orb.Polygon, allTouched bool) {
	g.fillRings(poly)
	if allTouched {
		for _, ring := range poly {
			g.walkRing(ring)
		}
	}
}

// fillRings scan-converts a polygon's rings with the even-odd rule. Holes
// need no special treatment: crossings of interior rings flip the parity
// back out.
func (g *grid) fillRings(poly orb.Polygon) {
	for r := 0; r < g.rows; r++ {
		y := float64(r) + 0.5
		var xs []float64
		for _, ring := range poly {
			xs = g.crossings(ring, y, xs)
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			// Pixel centers c+0.5 in [xs[i], xs[i+1]).
			c0 := int(math.Ceil(xs[i] - 0.5))
			c1 := int(math.Ceil(xs[i+1] - 0.5))
			if c0 < 0 {
				c0 = 0
			}
			if c1 > g.cols {
				c1 = g.cols
			}
			for c := c0; c < c1; c++ {
				g.mask[r*g.cols+c] = true
			}
		}
	}
}

// crossings appends the x coordinates where ring edges cross the horizontal
// scanline at y. The half-open vertex rule (y0 <= y < y1 or y1 <= y < y0)
// counts each vertex crossing exactly once and skips horizontal edges.
func (g *grid) crossings(ring orb.Ring, y float64, xs []float64) []float64 {
	n := len(ring)
	if n < 2 {
		return xs
	}
	for i := 0; i < n-1; i++ {
		x0, y0 := g.pixel(ring[i])
		x1, y1 := g.pixel(ring[i+1])
		if (y0 <= y && y1 > y) || (y1 <= y && y0 > y) {
			t := (y - y0) / (y1 - y0)
			xs = append(xs, x0+t*(x1-x0))
		}
	}
	// Close the ring if the input is not explicitly closed.
	if ring[0] != ring[n-1] {
		x0, y0 := g.pixel(ring[n-1])
		x1, y1 := g.pixel(ring[0])
		if (y0 <= y && y1 > y) || (y1 <= y && y0 > y) {
			t := (y - y0) / (y1 - y0)
			xs = append(xs, x0+t*(x1-x0))
		}
	}
	return xs
}

func (g *grid) burnLine(ls orb.LineString, allTouched bool) {
	if len(ls) == 1 {
		x, y := g.pixel(ls[0])
		g.set(int(math.Floor(y)), int(math.Floor(x)))
		return
	}
	for i := 0; i+1 < len(ls); i++ {
		x0, y0 := g.pixel(ls[i])
		x1, y1 := g.pixel(ls[i+1])
		if allTouched {
			g.supercover(x0, y0, x1, y1)
		} else {
			g.bresenham(x0, y0, x1, y1)
		}
	}
}

func (g *grid) walkRing(ring orb.Ring) {
	n := len(ring)
	for i := 0; i < n-1; i++ {
		x0, y0 := g.pixel(ring[i])
		x1, y1 := g.pixel(ring[i+1])
		g.supercover(x0, y0, x1, y1)
	}
	if n > 1 && ring[0] != ring[n-1] {
		x0, y0 := g.pixel(ring[n-1])
		x1, y1 := g.pixel(ring[0])
		g.supercover(x0, y0, x1, y1)
	}
}

// bresenham marks the cells of an integer line walk between the cells owning
// the two endpoints. This approximates GDAL's default line burning: roughly
// one cell per row or column along the dominant axis.
func (g *grid) bresenham(x0f, y0f, x1f, y1f float64) {
	c0, r0 := int(math.Floor(x0f)), int(math.Floor(y0f))
	c1, r1 := int(math.Floor(x1f)), int(math.Floor(y1f))

	dc := abs(c1 - c0)
	dr := -abs(r1 - r0)
	sc := 1
	if c0 > c1 {
		sc = -1
	}
	sr := 1
	if r0 > r1 {
		sr = -1
	}
	e := dc + dr
	for {
		g.set(r0, c0)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

// supercover marks every cell the segment passes through, using an
// Amanatides–Woo grid traversal in pixel space.
func (g *grid) supercover(x0, y0, x1, y1 float64) {
	c := int(math.Floor(x0))
	r := int(math.Floor(y0))
	cEnd := int(math.Floor(x1))
	rEnd := int(math.Floor(y1))

	dx := x1 - x0
	dy := y1 - y0
	stepC, stepR := 0, 0
	tMaxX, tMaxY := math.Inf(1), math.Inf(1)
	tDeltaX, tDeltaY := math.Inf(1), math.Inf(1)

	if dx > 0 {
		stepC = 1
		tMaxX = (math.Floor(x0) + 1 - x0) / dx
		tDeltaX = 1 / dx
	} else if dx < 0 {
		stepC = -1
		tMaxX = (math.Floor(x0) - x0) / dx
		tDeltaX = -1 / dx
	}
	if dy > 0 {
		stepR = 1
		tMaxY = (math.Floor(y0) + 1 - y0) / dy
		tDeltaY = 1 / dy
	} else if dy < 0 {
		stepR = -1
		tMaxY = (math.Floor(y0) - y0) / dy
		tDeltaY = -1 / dy
	}

	// Bounded walk: the traversal can visit at most one cell per grid line
	// crossed, plus the starting cell.
	limit := abs(cEnd-c) + abs(rEnd-r) + 1
	for i := 0; i <= limit; i++ {
		g.set(r, c)
		if c == cEnd && r == rEnd {
			return
		}
		if tMaxX < tMaxY {
			tMaxX += tDeltaX
			c += stepC
		} else {
			tMaxY += tDeltaY
			r += stepR
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
