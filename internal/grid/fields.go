package grid

import (
	"context"
	"fmt"
	"time"
)

// NumPartitions is the number of swell partitions reported by the wave model.
// Partitions are ordered by the model's own index, not by magnitude.
const NumPartitions = 3

// Fields collects every decoded variable for one forecast hour. All grids
// share identical axes; Validate enforces this before any processing.
type Fields struct {
	WaveHeight    *Grid // significant wave height, metres
	WindSpeed     *Grid // m/s
	WindDirection *Grid // degrees

	WindWaveHeight    *Grid
	WindWavePeriod    *Grid
	WindWaveDirection *Grid

	SwellHeight    [NumPartitions]*Grid
	SwellPeriod    [NumPartitions]*Grid
	SwellDirection [NumPartitions]*Grid

	RefTime      time.Time
	ValidTime    time.Time
	ForecastHour int
}

// Decoder is the boundary to the external grid format reader. Implementations
// decode one input file into named arrays; the pipeline never touches the
// native binary layout itself.
type Decoder interface {
	Decode(ctx context.Context, path string) (*Fields, error)
}

// grids returns every grid with its role name, for validation and iteration.
func (f *Fields) grids() []*Grid {
	gs := []*Grid{
		f.WaveHeight, f.WindSpeed, f.WindDirection,
		f.WindWaveHeight, f.WindWavePeriod, f.WindWaveDirection,
	}
	for p := 0; p < NumPartitions; p++ {
		gs = append(gs, f.SwellHeight[p], f.SwellPeriod[p], f.SwellDirection[p])
	}
	return gs
}

// Validate checks that every required variable is present and that all grids
// share identical shape and axis values.
func (f *Fields) Validate() error {
	gs := f.grids()
	var ref *Grid
	for _, g := range gs {
		if g == nil {
			continue
		}
		ref = g
		break
	}
	if ref == nil {
		return fmt.Errorf("%w: no grids decoded", ErrMissingField)
	}
	for _, g := range gs {
		if g == nil {
			return fmt.Errorf("%w: forecast hour %d", ErrMissingField, f.ForecastHour)
		}
		if err := checkShape(g); err != nil {
			return err
		}
		if !sameAxes(ref, g) {
			return fmt.Errorf("%w: %s does not match %s", ErrShapeMismatch, g.Name, ref.Name)
		}
	}
	return nil
}

// Normalized reports whether longitudes have already been shifted to the
// -180..180 convention.
func (f *Fields) Normalized() bool {
	return f.WaveHeight != nil && len(f.WaveHeight.Lons) > 0 && f.WaveHeight.Lons[0] < 0
}

// NormalizeLongitudes converts every grid from the decoder's 0-360 longitude
// convention to -180..180 by cyclically shifting the data half a grid width,
// so array index 0 corresponds to -180. Calling it on already-normalized
// fields is a no-op.
func (f *Fields) NormalizeLongitudes() {
	if f.Normalized() {
		return
	}
	var newLons []float64
	for _, g := range f.grids() {
		if g == nil {
			continue
		}
		shiftGrid(g)
		if newLons == nil {
			newLons = g.Lons
		} else {
			g.Lons = newLons // axes stay shared after the shift
		}
	}
}

// shiftGrid rotates the longitude axis and each data row by half the width
// and rewrites the axis in -180..180 terms, ascending from index 0.
func shiftGrid(g *Grid) {
	w := len(g.Lons)
	half := w / 2

	lons := make([]float64, w)
	for j := 0; j < w; j++ {
		lon := NormalizeLon(g.Lons[(j+half)%w])
		if lon == 180 {
			lon = -180 // keep the axis ascending from the west edge
		}
		lons[j] = lon
	}
	g.Lons = lons

	row := make([]float64, w)
	for i := 0; i < len(g.Lats); i++ {
		base := i * w
		copy(row, g.Data[base:base+w])
		for j := 0; j < w; j++ {
			g.Data[base+j] = row[(j+half)%w]
		}
	}
}

// NormalizeLon maps a raw longitude in [0,360) to (-180,180].
func NormalizeLon(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	return lon
}
