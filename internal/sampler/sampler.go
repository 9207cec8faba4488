// Package sampler walks a forecast grid at a fixed stride and assembles the
// sparse point features shown on the map.
package sampler

import (
	"math"

	"github.com/sandbars-surf/wavegrid/internal/grid"
)

// DefaultStride samples every 24th cell: 6° on the 0.25° global grid.
const DefaultStride = 24

// DefaultMinSwellHeight is the minimum partition height, in metres, worth
// reporting as a swell component.
const DefaultMinSwellHeight = 0.1

// Options controls sampling density and thresholds.
type Options struct {
	// Stride is the cell step along both axes.
	Stride int

	// MinSwellHeight excludes swell partitions below this height in metres.
	MinSwellHeight float64

	// NullMissingDirections reports a missing swell or wind-wave direction
	// as absent instead of zero degrees. Off by default for compatibility
	// with existing map clients, which expect the zero fallback.
	NullMissingDirections bool
}

// DefaultOptions returns the sampling parameters used in production.
func DefaultOptions() Options {
	return Options{Stride: DefaultStride, MinSwellHeight: DefaultMinSwellHeight}
}

// SwellComponent is one swell partition at a sample point. Components keep
// the model's partition order; they are never sorted by magnitude.
type SwellComponent struct {
	Height    float64  `json:"height"`
	Period    *float64 `json:"period"`
	Direction *int     `json:"direction"`
}

// WindWave describes locally wind-driven seas, present only where the model
// reports a positive wind-sea height.
type WindWave struct {
	Height    float64  `json:"height"`
	Period    *float64 `json:"period"`
	Direction *int     `json:"direction"`
}

// Wind is always present; missing components fall back to zero.
type Wind struct {
	Speed     float64 `json:"speed"`
	Direction int     `json:"direction"`
}

// PointFeature is the full per-point detail for one sampled water cell.
type PointFeature struct {
	Lon float64
	Lat float64

	WaveHeight *float64         `json:"waveHeight"`
	Swells     []SwellComponent `json:"swells"`
	WindWaves  *WindWave        `json:"windWaves"`
	Wind       Wind             `json:"wind"`
}

// Sample walks the normalized grids at opts.Stride in row-major order and
// returns one feature per non-land cell plus the count of skipped land cells.
// A NaN wave height marks land and is the sole sparsity filter.
func Sample(f *grid.Fields, opts Options) (features []PointFeature, skippedLand int) {
	if opts.Stride < 1 {
		opts.Stride = 1
	}
	rows, cols := f.WaveHeight.Rows(), f.WaveHeight.Cols()

	for i := 0; i < rows; i += opts.Stride {
		for j := 0; j < cols; j += opts.Stride {
			wh := f.WaveHeight.At(i, j)
			if math.IsNaN(wh) {
				skippedLand++
				continue
			}

			pt := PointFeature{
				Lat:        f.WaveHeight.Lats[i],
				Lon:        grid.NormalizeLon(f.WaveHeight.Lons[j]),
				WaveHeight: round1(wh),
				Swells:     make([]SwellComponent, 0, grid.NumPartitions),
			}

			for p := 0; p < grid.NumPartitions; p++ {
				h := f.SwellHeight[p].At(i, j)
				if math.IsNaN(h) || h < opts.MinSwellHeight {
					continue
				}
				pt.Swells = append(pt.Swells, SwellComponent{
					Height:    *round1(h),
					Period:    round1(f.SwellPeriod[p].At(i, j)),
					Direction: degrees(f.SwellDirection[p].At(i, j), opts),
				})
			}

			ws := f.WindSpeed.At(i, j)
			if !math.IsNaN(ws) {
				pt.Wind.Speed = math.Round(ws*10) / 10
			}
			wd := f.WindDirection.At(i, j)
			if !math.IsNaN(wd) {
				pt.Wind.Direction = wrapDegrees(wd)
			}

			wwh := f.WindWaveHeight.At(i, j)
			if !math.IsNaN(wwh) && wwh > 0 {
				pt.WindWaves = &WindWave{
					Height:    *round1(wwh),
					Period:    round1(f.WindWavePeriod.At(i, j)),
					Direction: degreesOrNil(f.WindWaveDirection.At(i, j)),
				}
			}

			features = append(features, pt)
		}
	}
	return features, skippedLand
}

// round1 rounds to one decimal place, mapping NaN to absent.
func round1(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	r := math.Round(v*10) / 10
	return &r
}

// degrees converts a direction to whole degrees, using the configured
// missing-value convention: zero fallback by default, absent when
// NullMissingDirections is set.
func degrees(v float64, opts Options) *int {
	if math.IsNaN(v) {
		if opts.NullMissingDirections {
			return nil
		}
		zero := 0
		return &zero
	}
	d := wrapDegrees(v)
	return &d
}

// degreesOrNil converts a direction to whole degrees, absent when missing.
// Wind-wave direction has always used the absent convention.
func degreesOrNil(v float64) *int {
	if math.IsNaN(v) {
		return nil
	}
	d := wrapDegrees(v)
	return &d
}

// wrapDegrees rounds to the nearest integer degree in [0,360).
func wrapDegrees(v float64) int {
	d := int(math.Round(v)) % 360
	if d < 0 {
		d += 360
	}
	return d
}
