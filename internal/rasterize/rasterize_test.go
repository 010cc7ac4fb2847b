package rasterize

import (
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/gridshed/zonalstats/internal/affine"
)

// 4x4 raster, pixel size 1, top-left at (0, 4).
var tr = affine.New(1, 0, 0, 0, -1, 4)

func rect(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func countMask(m []bool) int {
	n := 0
	for _, b := range m {
		if b {
			n++
		}
	}
	return n
}

func TestMaskPolygon(t *testing.T) {
	tests := []struct {
		name       string
		geom       orb.Geometry
		allTouched bool
		wantCount  int
	}{
		{"full extent", rect(0, 0, 4, 4), false, 16},
		{"pixel aligned 2x2", rect(1, 1, 3, 3), false, 4},
		{"sub pixel sliver center in", rect(0.1, 3.6, 0.4, 3.9), false, 0},
		{"sub pixel sliver all touched", rect(0.1, 3.6, 0.4, 3.9), true, 1},
		{"half cover center in", rect(0, 0, 2.4, 4), false, 8},
		{"multipolygon", orb.MultiPolygon{rect(0, 3, 1, 4), rect(3, 0, 4, 1)}, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Mask(tt.geom, 4, 4, tr, tt.allTouched)
			if err != nil {
				t.Fatalf("Mask failed: %v", err)
			}
			if got := countMask(m); got != tt.wantCount {
				t.Errorf("covered %d pixels, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestMaskPolygonWithHole(t *testing.T) {
	outer := orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	hole := orb.Ring{{1, 1}, {3, 1}, {3, 3}, {1, 3}, {1, 1}}
	m, err := Mask(orb.Polygon{outer, hole}, 4, 4, tr, false)
	if err != nil {
		t.Fatalf("Mask failed: %v", err)
	}
	if got := countMask(m); got != 12 {
		t.Errorf("covered %d pixels, want 12 (16 minus 2x2 hole)", got)
	}
	// Center of the hole must not be covered.
	if m[1*4+1] || m[2*4+2] {
		t.Error("hole interior pixels are covered")
	}
}

func TestAllTouchedSuperset(t *testing.T) {
	geoms := []orb.Geometry{
		rect(0.5, 0.5, 2.5, 2.5),
		rect(1, 1, 3, 3), // boundary through pixel corners
		orb.LineString{{0.2, 0.3}, {3.7, 3.1}},
		orb.Polygon{orb.Ring{{0.5, 0.5}, {3.5, 1.5}, {2, 3.8}, {0.5, 0.5}}},
	}
	for _, geom := range geoms {
		centerIn, err := Mask(geom, 4, 4, tr, false)
		if err != nil {
			t.Fatalf("Mask failed: %v", err)
		}
		touched, err := Mask(geom, 4, 4, tr, true)
		if err != nil {
			t.Fatalf("Mask failed: %v", err)
		}
		for i := range centerIn {
			if centerIn[i] && !touched[i] {
				t.Fatalf("pixel %d covered center-in but not all-touched", i)
			}
		}
		if countMask(centerIn) > countMask(touched) {
			t.Error("center-in covered more pixels than all-touched")
		}
	}
}

func TestMaskLine(t *testing.T) {
	// Horizontal line across the second row of pixels.
	line := orb.LineString{{0.1, 2.5}, {3.9, 2.5}}
	m, err := Mask(line, 4, 4, tr, false)
	if err != nil {
		t.Fatalf("Mask failed: %v", err)
	}
	if got := countMask(m); got != 4 {
		t.Errorf("covered %d pixels, want 4", got)
	}
	for c := 0; c < 4; c++ {
		if !m[1*4+c] {
			t.Errorf("row 1 col %d not covered", c)
		}
	}
}

func TestMaskPoint(t *testing.T) {
	m, err := Mask(orb.Point{1.3, 1.7}, 4, 4, tr, false)
	if err != nil {
		t.Fatalf("Mask failed: %v", err)
	}
	if got := countMask(m); got != 1 {
		t.Fatalf("covered %d pixels, want 1", got)
	}
	// (1.3, 1.7) falls in col 1, row 2.
	if !m[2*4+1] {
		t.Error("point did not burn its owning pixel")
	}
}

func TestMaskMultiPoint(t *testing.T) {
	mp := orb.MultiPoint{{0.5, 3.5}, {2.5, 1.5}, {2.6, 1.4}}
	m, err := Mask(mp, 4, 4, tr, false)
	if err != nil {
		t.Fatalf("Mask failed: %v", err)
	}
	// The last two points share a pixel.
	if got := countMask(m); got != 2 {
		t.Errorf("covered %d pixels, want 2", got)
	}
}

func TestBoxifyPoints(t *testing.T) {
	mp, err := BoxifyPoints(orb.Point{1.3, 1.7}, tr)
	if err != nil {
		t.Fatalf("BoxifyPoints failed: %v", err)
	}
	if len(mp) != 1 {
		t.Fatalf("got %d polygons, want 1", len(mp))
	}
	b := mp[0].Bound()
	// Owning pixel footprint is (1,1)-(2,2), shrunk by 1% of the pixel size.
	if math.Abs(b.Min[0]-1.01) > 1e-9 || math.Abs(b.Max[0]-1.99) > 1e-9 ||
		math.Abs(b.Min[1]-1.01) > 1e-9 || math.Abs(b.Max[1]-1.99) > 1e-9 {
		t.Errorf("box bounds = %v, want (1.01, 1.01)-(1.99, 1.99)", b)
	}

	if _, err := BoxifyPoints(rect(0, 0, 1, 1), tr); err == nil {
		t.Error("expected error for non-point geometry")
	}
}

func TestFracMask(t *testing.T) {
	// Left half of a single pixel.
	one := affine.New(1, 0, 0, 0, -1, 1)
	frac, err := FracMask(rect(0, 0, 0.5, 1), 1, 1, one, DefaultScale, false)
	if err != nil {
		t.Fatalf("FracMask failed: %v", err)
	}
	if frac[0] != 0.5 {
		t.Errorf("coverage = %g, want 0.5", frac[0])
	}
}

func TestFracMaskTotalsArea(t *testing.T) {
	frac, err := FracMask(rect(1, 1, 3, 3), 4, 4, tr, DefaultScale, false)
	if err != nil {
		t.Fatalf("FracMask failed: %v", err)
	}
	var total float64
	for _, f := range frac {
		if f < 0 || f > 1 {
			t.Fatalf("coverage %g outside [0, 1]", f)
		}
		total += float64(f)
	}
	if math.Abs(total-4) > 1e-6 {
		t.Errorf("total coverage = %g, want 4 (geometry area in pixels)", total)
	}
}

func TestFracMaskScaleOne(t *testing.T) {
	geom := rect(0.5, 0.5, 2.5, 2.5)
	bin, err := Mask(geom, 4, 4, tr, false)
	if err != nil {
		t.Fatal(err)
	}
	frac, err := FracMask(geom, 4, 4, tr, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := range bin {
		want := float32(0)
		if bin[i] {
			want = 1
		}
		if frac[i] != want {
			t.Fatalf("pixel %d: frac %g, binary %v", i, frac[i], bin[i])
		}
	}
}

func TestFracMaskBadScale(t *testing.T) {
	for _, scale := range []int{0, -3, maxScale + 1} {
		if _, err := FracMask(rect(0, 0, 1, 1), 4, 4, tr, scale, false); err == nil {
			t.Errorf("scale %d: expected error", scale)
		}
	}
}

func TestMaskEmptyWindow(t *testing.T) {
	m, err := Mask(rect(0, 0, 1, 1), 0, 0, tr, false)
	if err != nil {
		t.Fatalf("Mask failed: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("got %d pixels for empty window", len(m))
	}
}

func TestMaskUnsupportedGeometry(t *testing.T) {
	if _, err := Mask(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}, 4, 4, tr, false); err == nil {
		t.Error("expected error for unsupported geometry type")
	}
}
