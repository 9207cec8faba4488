package ndbc

import (
	"context"
	"log"

	"github.com/sandbars-surf/wavegrid/internal/storage"
)

// ReadingStore is the slice of storage the ingest loop needs, kept narrow so
// tests can substitute a recorder.
type ReadingStore interface {
	UpsertStation(st storage.Station) error
	InsertBuoyReading(r storage.BuoyReading) error
}

// Ingest fetches the latest observation for each station and stores it.
// Individual station failures are logged and counted, never fatal.
func Ingest(ctx context.Context, client BuoyClient, store ReadingStore, stations []StationInfo) (succeeded, failed int) {
	for _, st := range stations {
		if ctx.Err() != nil {
			return succeeded, failed
		}
		log.Printf("Fetching %s (%s)...", st.ID, st.Name)

		if err := store.UpsertStation(storage.Station{
			ID:           st.ID,
			Name:         st.Name,
			Latitude:     st.Lat,
			Longitude:    st.Lon,
			HasWaves:     true,
			HasWind:      true,
			HasWaterTemp: true,
		}); err != nil {
			log.Printf("  failed to upsert station %s: %v", st.ID, err)
		}

		obs, err := client.FetchRealtime(ctx, st.ID)
		if err != nil {
			log.Printf("  failed to fetch %s: %v", st.ID, err)
			failed++
			continue
		}
		if err := store.InsertBuoyReading(toReading(obs)); err != nil {
			log.Printf("  failed to store reading for %s: %v", st.ID, err)
			failed++
			continue
		}
		succeeded++
	}
	log.Printf("NDBC ingestion complete: %d success, %d failed", succeeded, failed)
	return succeeded, failed
}

func toReading(o *Observation) storage.BuoyReading {
	return storage.BuoyReading{
		StationID:          o.StationID,
		ObservedAt:         o.ObservedAt,
		WindSpeed:          o.WindSpeed,
		WindDirection:      o.WindDirection,
		WindGust:           o.WindGust,
		WaveHeight:         o.WaveHeight,
		DominantWavePeriod: o.DominantWavePeriod,
		AverageWavePeriod:  o.AverageWavePeriod,
		WaveDirection:      o.WaveDirection,
		WaterTemp:          o.WaterTemp,
		AirTemp:            o.AirTemp,
		Pressure:           o.Pressure,
	}
}
