package colormap

import (
	"image"
	"image/color"
	"math"
)

// LUTSize is the resolution of every compiled lookup table.
const LUTSize = 1024

// Layer binds a named visualized variable to its value range and compiled
// LUT. Layers are built once at startup and shared read-only by every raster
// render, so they are safe across concurrent forecast hours.
type Layer struct {
	Name string
	Min  float64
	Max  float64
	lut  []color.RGBA
}

// NewLayer compiles a ramp into a ready-to-use layer.
func NewLayer(name string, min, max float64, ramp Ramp) (Layer, error) {
	lut, err := BuildLUT(ramp, LUTSize)
	if err != nil {
		return Layer{}, err
	}
	return Layer{Name: name, Min: min, Max: max, lut: lut}, nil
}

// Map quantizes a w×h scalar raster into an RGBA image. NaN cells become
// fully transparent; values are clamp-normalized into [Min,Max] so Min maps
// to the first ramp color and Max to the last.
func (l Layer) Map(values []float64, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scale := l.Max - l.Min
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := values[y*w+x]
			if math.IsNaN(v) {
				img.SetRGBA(x, y, color.RGBA{})
				continue
			}
			n := (v - l.Min) / scale
			if n < 0 {
				n = 0
			}
			if n > 1 {
				n = 1
			}
			idx := int(math.Round(n * float64(len(l.lut)-1)))
			img.SetRGBA(x, y, l.lut[idx])
		}
	}
	return img
}

// Layer names for the three rendered variables.
const (
	LayerWaveHeight  = "wave-height"
	LayerSwellPeriod = "swell-period"
	LayerWindSpeed   = "wind-speed"
)

// DefaultLayers builds the standard layer set: significant wave height in
// metres, primary swell period in seconds, wind speed in m/s.
func DefaultLayers() ([]Layer, error) {
	defs := []struct {
		name     string
		min, max float64
		ramp     Ramp
	}{
		{LayerWaveHeight, 0, 8, Ramp{
			{0.0, color.RGBA{30, 60, 140, 255}},   // calm, deep blue
			{0.25, color.RGBA{40, 170, 200, 255}}, // light chop, cyan
			{0.5, color.RGBA{90, 200, 90, 255}},   // moderate, green
			{0.7, color.RGBA{240, 210, 70, 255}},  // heavy, yellow
			{0.85, color.RGBA{235, 120, 50, 255}}, // very heavy, orange
			{1.0, color.RGBA{180, 40, 120, 255}},  // extreme, magenta
		}},
		{LayerSwellPeriod, 0, 22, Ramp{
			{0.0, color.RGBA{70, 70, 90, 255}},    // short wind swell
			{0.35, color.RGBA{60, 130, 200, 255}}, // mid period
			{0.7, color.RGBA{80, 220, 170, 255}},  // long period
			{1.0, color.RGBA{250, 250, 210, 255}}, // ground swell
		}},
		{LayerWindSpeed, 0, 25, Ramp{
			{0.0, color.RGBA{60, 90, 180, 255}},
			{0.3, color.RGBA{80, 190, 120, 255}},
			{0.6, color.RGBA{235, 215, 80, 255}},
			{0.8, color.RGBA{230, 110, 45, 255}},
			{1.0, color.RGBA{160, 30, 60, 255}},
		}},
	}

	layers := make([]Layer, 0, len(defs))
	for _, d := range defs {
		l, err := NewLayer(d.name, d.min, d.max, d.ramp)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	return layers, nil
}
