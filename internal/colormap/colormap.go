// Package colormap turns scalar rasters into RGBA pixels via precomputed
// color lookup tables.
package colormap

import (
	"fmt"
	"image/color"
	"math"
)

// Stop is one color ramp control point.
type Stop struct {
	Position float64 // 0..1
	Color    color.RGBA
}

// Ramp is an ordered list of at least two stops with strictly increasing
// positions, the first at 0.0 and the last at 1.0.
type Ramp []Stop

// Validate checks the ramp invariants.
func (r Ramp) Validate() error {
	if len(r) < 2 {
		return fmt.Errorf("ramp needs at least 2 stops, got %d", len(r))
	}
	if r[0].Position != 0 {
		return fmt.Errorf("first stop position = %v, want 0", r[0].Position)
	}
	if r[len(r)-1].Position != 1 {
		return fmt.Errorf("last stop position = %v, want 1", r[len(r)-1].Position)
	}
	for i := 1; i < len(r); i++ {
		if r[i].Position <= r[i-1].Position {
			return fmt.Errorf("stop positions not strictly increasing at index %d", i)
		}
	}
	return nil
}

// BuildLUT compiles a ramp into a lookup table of n colors by piecewise-linear
// interpolation between consecutive stops. The first and last entries are the
// endpoint stops' colors exactly, so ramp endpoints survive quantization.
func BuildLUT(r Ramp, n int) ([]color.RGBA, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("LUT size %d too small", n)
	}

	lut := make([]color.RGBA, n)
	for s := 0; s < len(r)-1; s++ {
		a, b := r[s], r[s+1]
		idx0 := int(a.Position * float64(n-1))
		idx1 := int(b.Position * float64(n-1))
		if idx1 <= idx0 {
			continue // segment narrower than one LUT cell
		}
		span := float64(idx1 - idx0)
		for i := idx0; i < idx1; i++ {
			t := float64(i-idx0) / span
			lut[i] = lerpColor(a.Color, b.Color, t)
		}
	}
	// Pin both ends exactly: degenerate leading segments can otherwise leave
	// a later stop's color at index 0.
	lut[0] = r[0].Color
	lut[n-1] = r[len(r)-1].Color
	return lut, nil
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
		A: lerpChannel(a.A, b.A, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	v := math.Round(float64(a) + t*(float64(b)-float64(a)))
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
