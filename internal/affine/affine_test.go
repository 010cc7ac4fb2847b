package affine

import (
	"math"
	"testing"
)

func TestApply(t *testing.T) {
	tr := New(1, 0, 0, 0, -1, 2)

	tests := []struct {
		name     string
		col, row float64
		wantX    float64
		wantY    float64
	}{
		{"origin", 0, 0, 0, 2},
		{"one pixel right", 1, 0, 1, 2},
		{"one pixel down", 0, 1, 0, 1},
		{"pixel center", 0.5, 0.5, 0.5, 1.5},
		{"bottom right", 2, 2, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tr.Apply(tt.col, tt.row)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("Apply(%g, %g) = (%g, %g), want (%g, %g)",
					tt.col, tt.row, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestInvertRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tr   Affine
	}{
		{"north up", New(1, 0, 10, 0, -1, 20)},
		{"non-square pixels", New(0.5, 0, -180, 0, -0.25, 90)},
		{"sheared", New(2, 0.3, 100, -0.1, -2, 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := tt.tr.Invert()
			if err != nil {
				t.Fatalf("Invert failed: %v", err)
			}
			for _, p := range [][2]float64{{0, 0}, {3, 7}, {-2.5, 4.25}} {
				x, y := tt.tr.Apply(p[0], p[1])
				col, row := inv.Apply(x, y)
				if math.Abs(col-p[0]) > 1e-9 || math.Abs(row-p[1]) > 1e-9 {
					t.Errorf("round trip (%g, %g) -> (%g, %g)", p[0], p[1], col, row)
				}
			}
		})
	}
}

func TestInvertSingular(t *testing.T) {
	if _, err := New(0, 0, 1, 0, 0, 2).Invert(); err != ErrSingular {
		t.Errorf("got %v, want ErrSingular", err)
	}
}

func TestMulTranslation(t *testing.T) {
	parent := New(1, 0, 0, 0, -1, 2)
	sub := parent.Mul(Translation(3, 1))

	// Pixel (0,0) of the sub-window is pixel (3,1) of the parent.
	wantX, wantY := parent.Apply(3, 1)
	x, y := sub.Apply(0, 0)
	if x != wantX || y != wantY {
		t.Errorf("sub origin = (%g, %g), want (%g, %g)", x, y, wantX, wantY)
	}

	// Pixel size is unchanged by translation.
	w, h := sub.PixelSize()
	if w != 1 || h != 1 {
		t.Errorf("pixel size = (%g, %g), want (1, 1)", w, h)
	}
}

func TestMulScale(t *testing.T) {
	parent := New(1, 0, 5, 0, -1, 10)
	fine := parent.Mul(Scale(0.1, 0.1))

	// The oversampled grid shares the parent origin.
	x0, y0 := fine.Apply(0, 0)
	if x0 != 5 || y0 != 10 {
		t.Errorf("fine origin = (%g, %g), want (5, 10)", x0, y0)
	}

	// Ten fine pixels span one parent pixel.
	x, y := fine.Apply(10, 10)
	wantX, wantY := parent.Apply(1, 1)
	if math.Abs(x-wantX) > 1e-12 || math.Abs(y-wantY) > 1e-12 {
		t.Errorf("fine (10,10) = (%g, %g), want (%g, %g)", x, y, wantX, wantY)
	}

	w, h := fine.PixelSize()
	if math.Abs(w-0.1) > 1e-12 || math.Abs(h-0.1) > 1e-12 {
		t.Errorf("pixel size = (%g, %g), want (0.1, 0.1)", w, h)
	}
}

func TestPixelSize(t *testing.T) {
	w, h := New(0.25, 0, 0, 0, -0.5, 0).PixelSize()
	if w != 0.25 || h != 0.5 {
		t.Errorf("PixelSize = (%g, %g), want (0.25, 0.5)", w, h)
	}
}
