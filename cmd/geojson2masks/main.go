// Command geojson2masks converts QuPath GeoJSON segmentation exports
// to label mask images: one TIFF with per-pixel cell identifiers and
// one with the matching nucleus identifiers.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/histotools/geojson2masks/internal/geojson"
	"github.com/histotools/geojson2masks/internal/mask"
	"github.com/histotools/geojson2masks/internal/preview"
	"github.com/histotools/geojson2masks/internal/raster"
	"github.com/histotools/geojson2masks/internal/tiffio"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const previewMaxDim = 2048

var (
	width         int
	height        int
	outputDir     string
	cellSuffix    string
	nucleusSuffix string
	noCompress    bool
	quiet         bool
	withPreview   bool
	showVersion   bool
)

func init() {
	flag.IntVar(&width, "width", 0, "width of the output mask image in pixels (required)")
	flag.IntVar(&width, "W", 0, "shorthand for -width")
	flag.IntVar(&height, "height", 0, "height of the output mask image in pixels (required)")
	flag.IntVar(&height, "H", 0, "shorthand for -height")
	flag.StringVar(&outputDir, "output-dir", "", "output directory for mask files (default: same as input file)")
	flag.StringVar(&outputDir, "o", "", "shorthand for -output-dir")
	flag.StringVar(&cellSuffix, "cell-suffix", "_cell_mask", "suffix for the cell mask filename")
	flag.StringVar(&nucleusSuffix, "nucleus-suffix", "_nucleus_mask", "suffix for the nucleus mask filename")
	flag.BoolVar(&noCompress, "no-compress", false, "disable TIFF compression (faster but larger files)")
	flag.BoolVar(&quiet, "quiet", false, "suppress progress output")
	flag.BoolVar(&quiet, "q", false, "shorthand for -quiet")
	flag.BoolVar(&withPreview, "preview", false, "also write a downscaled color preview PNG")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: geojson2masks [options] input.geojson")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Convert QuPath GeoJSON segmentation exports to label mask images.")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  geojson2masks -width 20000 -height 20000 input.geojson")
	fmt.Fprintln(os.Stderr, "  geojson2masks -W 20000 -H 20000 -o out/ input.geojson")
}

func main() {
	flag.Usage = usage
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	if showVersion {
		fmt.Printf("geojson2masks %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}
	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// say prints user-facing progress text, suppressed in quiet mode.
func say(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

func run(input string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", width, height)
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("input file not found: %s", input)
	}
	if !strings.EqualFold(filepath.Ext(input), ".geojson") {
		log.Printf("Warning: input file does not have .geojson extension")
	}

	outDir := outputDir
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	cellPath := filepath.Join(outDir, base+cellSuffix+".tif")
	nucleusPath := filepath.Join(outDir, base+nucleusSuffix+".tif")

	say("Input: %s", input)
	say("Output dimensions: %d x %d", width, height)
	say("Cell mask: %s", cellPath)
	say("Nucleus mask: %s", nucleusPath)

	// The count pass only sizes the progress bar, so quiet mode skips
	// it entirely. It can overstate when cells carry degenerate
	// geometry; the bar then simply stops short of its total.
	total := 0
	var progress raster.ProgressFunc
	var bar *progressbar.ProgressBar
	if !quiet {
		say("Counting cells...")
		n, err := geojson.Count(input)
		if err != nil {
			return fmt.Errorf("count cells: %w", err)
		}
		total = n
		say("Found %d cells", n)
		if n > 0 {
			bar = progressbar.NewOptions(n,
				progressbar.OptionSetDescription("Rasterizing"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
			)
			progress = func(current, total int) {
				_ = bar.Set(current)
			}
		}
	}

	stream, err := geojson.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer stream.Close()

	cellMask, nucleusMask, err := raster.CreateLabelMasks(stream, width, height, total, progress)
	if err != nil {
		return fmt.Errorf("rasterize: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	// Both masks share one bit depth so a nucleus label is always
	// representable alongside its cell label.
	maxID := cellMask.Max()
	if n := nucleusMask.Max(); n > maxID {
		maxID = n
	}
	say("Max cell ID: %d", maxID)
	say("Using %d-bit masks", mask.BitDepth(maxID))

	cellImg := mask.Convert(cellMask, maxID)
	nucleusImg := mask.Convert(nucleusMask, maxID)

	compress := !noCompress
	say("Saving cell mask to %s...", cellPath)
	if err := tiffio.Write(cellPath, cellImg, compress); err != nil {
		return err
	}
	say("Saving nucleus mask to %s...", nucleusPath)
	if err := tiffio.Write(nucleusPath, nucleusImg, compress); err != nil {
		return err
	}

	if withPreview {
		previewPath := filepath.Join(outDir, base+"_preview.png")
		say("Saving preview to %s...", previewPath)
		if err := preview.Save(previewPath, preview.Render(cellMask, nucleusMask), previewMaxDim); err != nil {
			// Masks are already on disk; a failed preview is not fatal.
			log.Printf("Warning: preview failed: %v", err)
		}
	}

	say("Done!")
	for _, p := range []string{cellPath, nucleusPath} {
		if info, err := os.Stat(p); err == nil {
			say("  %s (%.1f MB)", p, float64(info.Size())/1024/1024)
		}
	}
	return nil
}
