package erddap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sandbars-surf/wavegrid/internal/storage"
)

// SourceName identifies ERDDAP-derived rows in the wave point store.
const SourceName = "wavewatch3_erddap"

// FetchGlobal pulls the full model surface. ERDDAP indexes longitude 0-360,
// so a box spanning the date line is fetched as two requests: the western
// hemisphere (-180..0 maps to 180..360) and the eastern (0..180 maps
// straight through).
func FetchGlobal(ctx context.Context, src WaveSource, bounds Bounds) ([]WavePoint, error) {
	if bounds.MinLon < 0 && bounds.MaxLon > 0 {
		west, err := src.FetchRegion(ctx, bounds.MinLat, bounds.MaxLat, 180+bounds.MinLon, 359.5, DefaultStride)
		if err != nil {
			return nil, fmt.Errorf("fetching western hemisphere: %w", err)
		}
		east, err := src.FetchRegion(ctx, bounds.MinLat, bounds.MaxLat, 0, bounds.MaxLon, DefaultStride)
		if err != nil {
			return nil, fmt.Errorf("fetching eastern hemisphere: %w", err)
		}
		return append(west, east...), nil
	}

	minLon := bounds.MinLon
	if minLon < 0 {
		minLon += 360
	}
	maxLon := bounds.MaxLon
	if maxLon < 0 {
		maxLon += 360
	}
	return src.FetchRegion(ctx, bounds.MinLat, bounds.MaxLat, minLon, maxLon, DefaultStride)
}

// WaveStore is the slice of storage the ingest loop needs.
type WaveStore interface {
	UpsertWavePoints(points []storage.WavePoint, source string, modelRun time.Time) error
	InsertForecastRun(model string, runTime time.Time, hours []int, pointCount int, metadata map[string]any) error
	UpdateLatest(model, run string, hours []int) error
}

// Ingest fetches the current global surface and records it as one model run.
// ERDDAP serves only the latest timestep, so the run carries forecast hour 0.
func Ingest(ctx context.Context, src WaveSource, store WaveStore, bounds Bounds) (int, error) {
	runTime := time.Now().UTC()
	runStr := runTime.Format("2006010215")

	log.Printf("Ingesting WAVEWATCH III data: %s", runStr)

	points, err := FetchGlobal(ctx, src, bounds)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		log.Print("No data fetched, aborting")
		return 0, nil
	}
	log.Printf("Fetched %d wave grid points from ERDDAP", len(points))

	rows := make([]storage.WavePoint, len(points))
	for i, p := range points {
		rows[i] = storage.WavePoint{
			Lat:       p.Lat,
			Lon:       p.Lon,
			Height:    p.Height,
			Period:    p.Period,
			Direction: p.Direction,
		}
	}
	if err := store.UpsertWavePoints(rows, SourceName, runTime); err != nil {
		return 0, fmt.Errorf("storing wave points: %w", err)
	}

	meta := map[string]any{
		"source": "PacIOOS ERDDAP",
		"url":    DefaultDatasetURL,
	}
	if err := store.InsertForecastRun(SourceName, runTime, []int{0}, len(points), meta); err != nil {
		return 0, fmt.Errorf("recording forecast run: %w", err)
	}
	if err := store.UpdateLatest("wavewatch", runStr, []int{0}); err != nil {
		return 0, fmt.Errorf("updating latest run: %w", err)
	}

	log.Printf("WAVEWATCH III ingestion complete: %d points", len(points))
	return len(points), nil
}
