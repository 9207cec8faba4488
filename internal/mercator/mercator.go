// Package mercator resamples equirectangular forecast grids onto the square
// Web-Mercator surface used by map tiles.
package mercator

import (
	"math"

	"github.com/sandbars-surf/wavegrid/internal/grid"
)

// MaxLatitude is the Web-Mercator clip latitude; the projection is undefined
// at the poles.
const MaxLatitude = 85.051129

// yLimit returns ln(tan(π/4 + clip/2)), the Mercator ordinate of the clip
// latitude.
func yLimit() float64 {
	return math.Log(math.Tan(math.Pi/4 + MaxLatitude*math.Pi/180/2))
}

// RowToLat maps an output pixel row to its latitude on a size-pixel square.
// Row 0 is the north edge.
func RowToLat(row, size int) float64 {
	yMax := yLimit()
	yNorm := float64(row) / float64(size-1)
	yMerc := yMax - yNorm*2*yMax
	return (2*math.Atan(math.Exp(yMerc)) - math.Pi/2) * 180 / math.Pi
}

// LatToRow maps a latitude to its fractional pixel row on a size-pixel
// square, clamping beyond the clip latitude.
func LatToRow(lat float64, size int) float64 {
	if lat > MaxLatitude {
		lat = MaxLatitude
	}
	if lat < -MaxLatitude {
		lat = -MaxLatitude
	}
	yMax := yLimit()
	yMerc := math.Log(math.Tan(math.Pi/4 + lat*math.Pi/180/2))
	return (yMax - yMerc) / (2 * yMax) * float64(size-1)
}

// LonToCol maps a longitude in -180..180 to its fractional pixel column.
func LonToCol(lon float64, size int) float64 {
	return (lon + 180) / 360 * float64(size-1)
}

// Reproject resamples src (longitude already normalized to -180..180,
// latitudes descending from +90) onto a size×size Web-Mercator raster with
// bilinear interpolation. Cells that are mostly NaN in the source stay NaN in
// the output, so land never bleeds into coastal water pixels. The result is
// row-major, row 0 at the north edge.
func Reproject(src *grid.Grid, size int) []float64 {
	inH, inW := src.Rows(), src.Cols()
	out := make([]float64, size*size)

	for r := 0; r < size; r++ {
		lat := RowToLat(r, size)
		inRow := (90 - lat) / 180 * float64(inH-1)
		for c := 0; c < size; c++ {
			inCol := float64(c) / float64(size-1) * float64(inW-1)
			v, invalid := sample(src, inRow, inCol)
			if invalid > 0.5 {
				out[r*size+c] = math.NaN()
			} else {
				out[r*size+c] = v
			}
		}
	}
	return out
}

// sample bilinearly interpolates the grid at fractional (row, col), clamping
// to the edges. It returns the interpolated value with NaN cells counted as
// zero, plus the interpolated weight of NaN cells so callers can reject
// pixels dominated by missing data.
func sample(g *grid.Grid, row, col float64) (value, invalid float64) {
	inH, inW := g.Rows(), g.Cols()

	if row < 0 {
		row = 0
	}
	if row > float64(inH-1) {
		row = float64(inH - 1)
	}
	if col < 0 {
		col = 0
	}
	if col > float64(inW-1) {
		col = float64(inW - 1)
	}

	i0 := int(math.Floor(row))
	j0 := int(math.Floor(col))
	if i0 > inH-2 {
		i0 = inH - 2
	}
	if j0 > inW-2 {
		j0 = inW - 2
	}
	if i0 < 0 {
		i0 = 0
	}
	if j0 < 0 {
		j0 = 0
	}
	fy := row - float64(i0)
	fx := col - float64(j0)

	i1 := i0 + 1
	if i1 > inH-1 {
		i1 = inH - 1
	}
	j1 := j0 + 1
	if j1 > inW-1 {
		j1 = inW - 1
	}

	v00, n00 := cellValue(g, i0, j0)
	v01, n01 := cellValue(g, i0, j1)
	v10, n10 := cellValue(g, i1, j0)
	v11, n11 := cellValue(g, i1, j1)

	// Nested lerps: exact when all four corners are equal, so a uniform
	// field survives resampling without floating-point drift.
	value = lerp(lerp(v00, v01, fx), lerp(v10, v11, fx), fy)
	invalid = lerp(lerp(n00, n01, fx), lerp(n10, n11, fx), fy)
	return value, invalid
}

// cellValue reads one grid cell, splitting NaN into the (0, weight-1) form
// the interpolation expects.
func cellValue(g *grid.Grid, i, j int) (value, invalid float64) {
	v := g.At(i, j)
	if math.IsNaN(v) {
		return 0, 1
	}
	return v, 0
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
