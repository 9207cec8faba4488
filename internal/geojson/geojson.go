// Package geojson serializes sampled point features into the vector format
// consumed by the map client.
package geojson

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sandbars-surf/wavegrid/internal/sampler"
)

// Metadata describes one forecast hour's feature collection.
type Metadata struct {
	ForecastHour  int    `json:"forecastHour"`
	ValidTime     string `json:"validTime"`
	ReferenceTime string `json:"referenceTime"`
	GeneratedAt   string `json:"generatedAt"`
	PointCount    int    `json:"pointCount"`
}

// Geometry is a GeoJSON point geometry.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // lon, lat
}

// Properties carries the per-point forecast detail.
type Properties struct {
	WaveHeight *float64                 `json:"waveHeight"`
	Swells     []sampler.SwellComponent `json:"swells"`
	WindWaves  *sampler.WindWave        `json:"windWaves"`
	Wind       sampler.Wind             `json:"wind"`
}

// Feature is one GeoJSON point feature.
type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// FeatureCollection is the complete vector product for one forecast hour.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Metadata Metadata  `json:"metadata"`
	Features []Feature `json:"features"`
}

// New assembles a feature collection from sampled points, preserving their
// order. Coordinates are rounded to 2 decimal places.
func New(points []sampler.PointFeature, hour int, refTime, validTime, generatedAt time.Time) *FeatureCollection {
	fc := &FeatureCollection{
		Type: "FeatureCollection",
		Metadata: Metadata{
			ForecastHour:  hour,
			ValidTime:     validTime.UTC().Format(time.RFC3339),
			ReferenceTime: refTime.UTC().Format(time.RFC3339),
			GeneratedAt:   generatedAt.UTC().Format(time.RFC3339),
			PointCount:    len(points),
		},
		Features: make([]Feature, 0, len(points)),
	}

	for _, p := range points {
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{round2(p.Lon), round2(p.Lat)},
			},
			Properties: Properties{
				WaveHeight: p.WaveHeight,
				Swells:     p.Swells,
				WindWaves:  p.WindWaves,
				Wind:       p.Wind,
			},
		})
	}
	return fc
}

// Encode marshals the collection to JSON.
func (fc *FeatureCollection) Encode() ([]byte, error) {
	return json.Marshal(fc)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
