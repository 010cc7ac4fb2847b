package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/gridshed/zonalstats/internal/raster"
	"github.com/gridshed/zonalstats/internal/viz"
	"github.com/gridshed/zonalstats/internal/zonal"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var cache = raster.NewCache()

func main() {
	// Handle --version and --help before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("zonalstats %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	var (
		rasterPath   = flag.String("raster", "", "raster file to summarize (required)")
		statsArg     = flag.String("stats", "", "space-separated statistic names, or * for all")
		band         = flag.Int("band", 0, "raster band, 1-based (0 means band 1)")
		allTouched   = flag.Bool("all-touched", false, "count every pixel the geometry touches")
		categorical  = flag.Bool("categorical", false, "report per-value pixel counts")
		globalExtent = flag.Bool("global-extent", false, "process each geometry against the full raster")
		weighted     = flag.Bool("weighted", false, "weight count, sum and mean by fractional pixel coverage")
		nodataArg    = flag.String("nodata", "", "nodata value, overriding the raster's own")
		noOverlapArg = flag.String("no-overlap", "", "sentinel value marking pixels outside the raster")
		prefix       = flag.String("prefix", "_", "prefix for statistic keys in the output properties")
		indent       = flag.Int("indent", 0, "indent the output GeoJSON by this many spaces")
		renderDir    = flag.String("render", "", "write a PNG of each zone's window to this directory")
		outPath      = flag.String("out", "", "output file (default stdout)")
		info         = flag.Bool("info", false, "log per-run information to stderr")
	)
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime)

	if err := run(*rasterPath, flag.Arg(0), *outPath, &zonal.Config{
		Stats:         strings.Fields(*statsArg),
		Band:          *band,
		AllTouched:    *allTouched,
		Categorical:   *categorical,
		GlobalExtent:  *globalExtent,
		CoverWeighted: *weighted,
		Nodata:        parseOptFloat(*nodataArg),
		NoOverlap:     parseOptFloat(*noOverlapArg),
		Prefix:        *prefix,
		RasterOut:     *renderDir != "",
	}, *indent, *renderDir, *info); err != nil {
		log.Fatalf("zonalstats: %v", err)
	}
}

func run(rasterPath, inPath, outPath string, cfg *zonal.Config, indent int, renderDir string, info bool) error {
	if rasterPath == "" {
		return fmt.Errorf("no raster given, see --help")
	}

	input, err := readInput(inPath)
	if err != nil {
		return err
	}
	features, err := zonal.ReadFeatures(input)
	if err != nil {
		return err
	}

	src, err := cache.Load(rasterPath)
	if err != nil {
		return err
	}
	defer cache.Close()

	if info {
		rows, cols := src.Shape()
		log.Printf("raster %s: %dx%d pixels, transform %s", rasterPath, rows, cols, src.Transform())
		log.Printf("processing %d features", len(features))
	}

	results, err := zonal.Run(features, src, cfg)
	if err != nil {
		return err
	}

	if renderDir != "" {
		if err := renderZones(features, results, cfg, renderDir); err != nil {
			return err
		}
	}

	return writeOutput(outPath, features, results, cfg, indent)
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading features: %w", err)
	}
	return data, nil
}

func writeOutput(path string, features []zonal.Feature, results []zonal.Result, cfg *zonal.Config, indent int) error {
	fc := geojson.NewFeatureCollection()
	for i, ft := range features {
		stripRenderKeys(results[i], cfg.Prefix)
		fc.Append(zonal.AsFeature(ft, results[i]))
	}

	var (
		data []byte
		err  error
	)
	if indent > 0 {
		data, err = json.MarshalIndent(fc, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(fc)
	}
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// renderZones recomputes each zone's window mask and saves it as a PNG named
// by feature index. The embedded mini raster keys are consumed here and
// stripped from the JSON output by writeOutput.
func renderZones(features []zonal.Feature, results []zonal.Result, cfg *zonal.Config, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("render directory: %w", err)
	}
	for i, res := range results {
		m, ok := zonal.MiniRaster(res, cfg.Prefix)
		if !ok {
			continue
		}
		img, err := viz.RenderValues(m, 0)
		if err != nil {
			continue // degenerate window, nothing to draw
		}
		name := fmt.Sprintf("zone_%04d.png", i)
		if id, ok := features[i].ID.(string); ok && id != "" {
			name = id + ".png"
		}
		if err := viz.Save(img, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func stripRenderKeys(res zonal.Result, prefix string) {
	delete(res, prefix+"mini_raster_array")
	delete(res, prefix+"mini_raster_affine")
	delete(res, prefix+"mini_raster_nodata")
	delete(res, prefix+"mini_raster_states")
}

func parseOptFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	var v float64
	if _, err := fmt.Sscanf(s, "%g", &v); err != nil {
		log.Fatalf("zonalstats: not a number: %q", s)
	}
	return &v
}

func printHelp() {
	fmt.Println("zonalstats - per-geometry raster summary statistics")
	fmt.Println()
	fmt.Println("Usage: zonalstats -raster FILE [options] [features.geojson]")
	fmt.Println()
	fmt.Println("Reads GeoJSON or WKT features from the given file or stdin, computes")
	fmt.Println("the requested statistics over the raster, and writes a GeoJSON")
	fmt.Println("FeatureCollection with the statistics merged into each feature's")
	fmt.Println("properties.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -raster FILE      raster image with an ESRI world file sidecar (required)")
	fmt.Println("  -stats NAMES      space-separated statistics (default: count min max mean)")
	fmt.Println("  -band N           raster band, 1-based")
	fmt.Println("  -all-touched      count every pixel the geometry touches")
	fmt.Println("  -categorical      report per-value pixel counts")
	fmt.Println("  -global-extent    process each geometry against the full raster")
	fmt.Println("  -weighted         weight count, sum and mean by fractional coverage")
	fmt.Println("  -nodata V         nodata value, overriding the raster's own")
	fmt.Println("  -no-overlap V     sentinel marking pixels outside the raster")
	fmt.Println("  -prefix S         prefix for statistic keys (default \"_\")")
	fmt.Println("  -indent N         pretty-print the output GeoJSON")
	fmt.Println("  -render DIR       write a PNG of each zone's window to DIR")
	fmt.Println("  -out FILE         output file (default stdout)")
	fmt.Println("  -info             log per-run information to stderr")
	fmt.Println("  --version, -v     print version information")
	fmt.Println("  --help, -h        print this help message")
}
