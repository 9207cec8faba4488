package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandbars-surf/wavegrid/internal/erddap"
	"github.com/sandbars-surf/wavegrid/internal/grid"
	"github.com/sandbars-surf/wavegrid/internal/landmask"
	"github.com/sandbars-surf/wavegrid/internal/ndbc"
	"github.com/sandbars-surf/wavegrid/internal/pipeline"
	"github.com/sandbars-surf/wavegrid/internal/sampler"
	"github.com/sandbars-surf/wavegrid/internal/storage"
	"github.com/sandbars-surf/wavegrid/internal/ui"
)

const usage = `wavegrid - marine forecast grid conversion and ingestion

Usage:
    wavegrid <command> [flags]

Commands:
    convert    Convert extracted forecast fields to GeoJSON and raster tiles
    waves      Fetch WAVEWATCH III global wave data via ERDDAP
    buoys      Fetch NDBC buoy observations
    mask       Build the Web Mercator water mask from Natural Earth shapefiles
    all        Run waves and buoys ingestion

Run "wavegrid <command> -h" for command flags.
`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "convert":
		err = runConvert(ctx, os.Args[2:])
	case "waves", "ww3":
		err = runWaves(ctx, os.Args[2:])
	case "buoys", "ndbc":
		err = runBuoys(ctx, os.Args[2:])
	case "mask":
		err = runMask(os.Args[2:])
	case "all":
		if err = runWaves(ctx, nil); err == nil {
			err = runBuoys(ctx, nil)
		}
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runConvert(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	inputGlob := fs.String("in", "data/extracted/*.json", "Glob of extracted forecast hour files")
	outDir := fs.String("out", "data/processed", "Output directory for GeoJSON and PNG artifacts")
	workers := fs.Int("workers", 0, "Concurrent hour processors (0 = NumCPU)")
	stride := fs.Int("stride", sampler.DefaultStride, "Grid cell stride for point sampling")
	rasterSize := fs.Int("size", pipeline.DefaultRasterSize, "Raster width and height in pixels")
	minSwell := fs.Float64("min-swell", sampler.DefaultMinSwellHeight, "Minimum swell height in meters to keep a component")
	threshold := fs.Float64("max-failed", pipeline.DefaultFailureThreshold, "Failed-hour fraction above which the batch fails")
	noTUI := fs.Bool("no-tui", false, "Plain log progress instead of the terminal view")
	fs.Parse(args)

	inputs, err := filepath.Glob(*inputGlob)
	if err != nil {
		return fmt.Errorf("bad input glob: %w", err)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no inputs match %q", *inputGlob)
	}
	sort.Strings(inputs)

	renderer, err := pipeline.NewRenderer()
	if err != nil {
		return err
	}
	renderer.RasterSize = *rasterSize
	renderer.Sampler.Stride = *stride
	renderer.Sampler.MinSwellHeight = *minSwell

	opts := pipeline.BatchOptions{
		Workers:          *workers,
		FailureThreshold: *threshold,
	}

	if *noTUI {
		opts.Progress = func(done, total int, input string, err error) {
			if err != nil {
				log.Printf("[%d/%d] %s: %v", done, total, filepath.Base(input), err)
				return
			}
			log.Printf("[%d/%d] %s", done, total, filepath.Base(input))
		}
		result, err := renderer.ProcessBatch(ctx, inputs, grid.FileDecoder{}, *outDir, opts)
		log.Printf("Conversion complete: %d ok, %d failed", result.Succeeded, result.Failed)
		return err
	}

	return convertWithTUI(ctx, renderer, inputs, *outDir, opts)
}

// convertWithTUI runs the batch in a goroutine and streams progress into the
// bubbletea view. The program owns the terminal; batch results arrive as
// messages.
func convertWithTUI(ctx context.Context, renderer *pipeline.Renderer, inputs []string, outDir string, opts pipeline.BatchOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(ui.NewModel("Converting forecast grids", len(inputs)))

	opts.Progress = func(done, total int, input string, err error) {
		p.Send(ui.HourCompletedMsg{Input: filepath.Base(input), Done: done, Total: total, Err: err})
	}

	go func() {
		result, err := renderer.ProcessBatch(ctx, inputs, grid.FileDecoder{}, outDir, opts)
		p.Send(ui.BatchFinishedMsg{Result: &result, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running progress view: %w", err)
	}

	m := final.(ui.Model)
	switch m.State() {
	case ui.StateCanceled:
		return fmt.Errorf("conversion canceled")
	case ui.StateFailed:
		return m.Err()
	}
	return nil
}

func runWaves(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("waves", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath(), "SQLite database path")
	minLat := fs.Float64("min-lat", erddap.GlobalBounds.MinLat, "Southern bound")
	maxLat := fs.Float64("max-lat", erddap.GlobalBounds.MaxLat, "Northern bound")
	minLon := fs.Float64("min-lon", erddap.GlobalBounds.MinLon, "Western bound")
	maxLon := fs.Float64("max-lon", erddap.GlobalBounds.MaxLon, "Eastern bound")
	fs.Parse(args)

	store, err := storage.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	bounds := erddap.Bounds{MinLat: *minLat, MaxLat: *maxLat, MinLon: *minLon, MaxLon: *maxLon}
	_, err = erddap.Ingest(ctx, erddap.NewClient(), store, bounds)
	return err
}

func runBuoys(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("buoys", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath(), "SQLite database path")
	fs.Parse(args)

	store, err := storage.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	_, failed := ndbc.Ingest(ctx, ndbc.NewClient(), store, ndbc.PriorityStations)
	if failed == len(ndbc.PriorityStations) {
		return fmt.Errorf("all %d stations failed", failed)
	}
	return nil
}

func runMask(args []string) error {
	fs := flag.NewFlagSet("mask", flag.ExitOnError)
	dataDir := fs.String("data", "data/naturalearth", "Directory for downloaded Natural Earth shapefiles")
	out := fs.String("out", "data/processed/water-mask.png", "Output mask PNG path")
	size := fs.Int("size", landmask.DefaultSize, "Mask width and height in pixels")
	fs.Parse(args)

	landShp, lakesShp, err := landmask.Provision(*dataDir)
	if err != nil {
		return err
	}

	mask, err := landmask.Build(landShp, lakesShp, *size)
	if err != nil {
		return err
	}
	log.Printf("Water fraction: %.1f%%", mask.WaterFraction()*100)

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return mask.WritePNG(*out)
}

func defaultDBPath() string {
	if env := os.Getenv("WAVEGRID_DB"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "wavegrid.db"
	}
	return filepath.Join(home, ".wavegrid", "wavegrid.db")
}
