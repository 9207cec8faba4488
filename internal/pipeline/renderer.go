// Package pipeline orchestrates the per-hour grid-to-product conversion and
// the batch run over a directory of forecast files.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sandbars-surf/wavegrid/internal/colormap"
	"github.com/sandbars-surf/wavegrid/internal/geojson"
	"github.com/sandbars-surf/wavegrid/internal/grid"
	"github.com/sandbars-surf/wavegrid/internal/mercator"
	"github.com/sandbars-surf/wavegrid/internal/sampler"
)

// DefaultRasterSize is the square output raster dimension in pixels.
const DefaultRasterSize = 720

// Renderer converts one forecast hour's fields into the map products. The
// layer set is built once and shared read-only across hours, so a single
// Renderer is safe for concurrent use.
type Renderer struct {
	Layers     []colormap.Layer
	RasterSize int
	Sampler    sampler.Options

	// Now lets tests pin the generatedAt timestamp.
	Now func() time.Time
}

// NewRenderer builds a renderer with the default layer set and options.
func NewRenderer() (*Renderer, error) {
	layers, err := colormap.DefaultLayers()
	if err != nil {
		return nil, err
	}
	return &Renderer{
		Layers:     layers,
		RasterSize: DefaultRasterSize,
		Sampler:    sampler.DefaultOptions(),
		Now:        time.Now,
	}, nil
}

// HourProduct is everything produced for one forecast hour: one raster per
// layer plus the feature collection. It is only returned whole — a failed
// hour yields no partial artifacts.
type HourProduct struct {
	ForecastHour int
	Collection   *geojson.FeatureCollection
	Rasters      map[string]*image.RGBA
	SkippedLand  int
}

// RenderHour runs the full per-hour conversion: validation, longitude
// normalization, one reproject+colormap pass per layer, and one feature
// sampling pass.
func (r *Renderer) RenderHour(f *grid.Fields) (*HourProduct, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.NormalizeLongitudes()

	rasters := make(map[string]*image.RGBA, len(r.Layers))
	for _, layer := range r.Layers {
		src, err := r.layerSource(f, layer.Name)
		if err != nil {
			return nil, err
		}
		vals := mercator.Reproject(src, r.RasterSize)
		rasters[layer.Name] = layer.Map(vals, r.RasterSize, r.RasterSize)
	}

	points, skipped := sampler.Sample(f, r.Sampler)
	fc := geojson.New(points, f.ForecastHour, f.RefTime, f.ValidTime, r.Now().UTC())

	return &HourProduct{
		ForecastHour: f.ForecastHour,
		Collection:   fc,
		Rasters:      rasters,
		SkippedLand:  skipped,
	}, nil
}

// layerSource picks the grid a visualized layer renders from. Swell period
// uses the primary partition.
func (r *Renderer) layerSource(f *grid.Fields, name string) (*grid.Grid, error) {
	switch name {
	case colormap.LayerWaveHeight:
		return f.WaveHeight, nil
	case colormap.LayerSwellPeriod:
		return f.SwellPeriod[0], nil
	case colormap.LayerWindSpeed:
		return f.WindSpeed, nil
	}
	return nil, fmt.Errorf("no source grid for layer %q", name)
}

// classify maps an error from the decode or render stage to its failure kind.
func classify(err error) FailureKind {
	if errors.Is(err, grid.ErrShapeMismatch) {
		return ShapeMismatch
	}
	return DecodeFailure
}
