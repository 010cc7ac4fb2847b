package raster

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/gridshed/zonalstats/internal/affine"
	"github.com/gridshed/zonalstats/internal/window"
)

// FileSource is a raster decoded from a grayscale image file (TIFF, PNG or
// BMP), georeferenced by an ESRI world file next to it. The whole grid is
// decoded once at open time; window reads copy out of memory.
type FileSource struct {
	values []float64
	rows   int
	cols   int
	tr     affine.Affine
	nodata *float64
}

// Open decodes an image raster and its world file. Failures to open or
// decode wrap the underlying I/O error; they are never configuration
// errors.
func Open(path string) (*FileSource, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: open %s: %w", path, err)
	}
	tr, err := worldTransform(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	values := make([]float64, rows*cols)
	switch im := img.(type) {
	case *image.Gray:
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				values[r*cols+c] = float64(im.GrayAt(bounds.Min.X+c, bounds.Min.Y+r).Y)
			}
		}
	case *image.Gray16:
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				values[r*cols+c] = float64(im.Gray16At(bounds.Min.X+c, bounds.Min.Y+r).Y)
			}
		}
	default:
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				g := color.Gray16Model.Convert(img.At(bounds.Min.X+c, bounds.Min.Y+r)).(color.Gray16)
				values[r*cols+c] = float64(g.Y)
			}
		}
	}

	return &FileSource{values: values, rows: rows, cols: cols, tr: tr}, nil
}

func (s *FileSource) Shape() (rows, cols int)  { return s.rows, s.cols }
func (s *FileSource) Transform() affine.Affine { return s.tr }

func (s *FileSource) Nodata() (float64, bool) {
	if s.nodata == nil {
		return 0, false
	}
	return *s.nodata, true
}

// SetNodata records a nodata value for the file; image containers carry
// none of their own.
func (s *FileSource) SetNodata(v float64) { s.nodata = &v }

func (s *FileSource) Read(w window.Window) ([]float64, error) {
	return readGrid(s.values, s.rows, s.cols, w)
}

func (s *FileSource) Close() error { return nil }

// worldTransform locates and parses the world file for an image path,
// trying the conventional sidecar extension (.tif -> .tfw, .png -> .pgw)
// and then the generic .wld.
func worldTransform(path string) (affine.Affine, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	var candidates []string
	if len(ext) == 4 {
		candidates = append(candidates, base+"."+string(ext[1])+string(ext[3])+"w")
	}
	candidates = append(candidates, base+".wld", path+"w")

	for _, cand := range candidates {
		data, err := os.ReadFile(cand)
		if err != nil {
			continue
		}
		tr, err := parseWorldFile(string(data))
		if err != nil {
			return affine.Affine{}, fmt.Errorf("raster: %s: %w", cand, err)
		}
		return tr, nil
	}
	return affine.Affine{}, fmt.Errorf("raster: no world file found for %s (tried %s)",
		path, strings.Join(candidates, ", "))
}

// parseWorldFile reads the six world-file parameters. World files give the
// geographic coordinate of the CENTER of the top-left pixel; the transform
// origin is that coordinate shifted back by half a pixel.
func parseWorldFile(text string) (affine.Affine, error) {
	fields := strings.Fields(text)
	if len(fields) < 6 {
		return affine.Affine{}, fmt.Errorf("world file has %d values, want 6", len(fields))
	}
	var v [6]float64
	for i := 0; i < 6; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return affine.Affine{}, fmt.Errorf("world file value %d: %w", i+1, err)
		}
		v[i] = f
	}
	// World file order: A, D, B, E, center-x, center-y.
	a, d, b, e, cx, cy := v[0], v[1], v[2], v[3], v[4], v[5]
	return affine.New(a, b, cx-(a+b)/2, d, e, cy-(d+e)/2), nil
}
