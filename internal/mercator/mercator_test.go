package mercator

import (
	"math"
	"testing"

	"github.com/sandbars-surf/wavegrid/internal/grid"
)

func uniformGrid(rows, cols int, v float64) *grid.Grid {
	lats := make([]float64, rows)
	lons := make([]float64, cols)
	for i := range lats {
		lats[i] = 90 - 180*float64(i)/float64(rows-1)
	}
	for j := range lons {
		lons[j] = -180 + 360*float64(j)/float64(cols)
	}
	g := grid.New("test", lats, lons)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			g.Set(i, j, v)
		}
	}
	return g
}

// A constant field must round-trip exactly: every output pixel holds the
// input value, regardless of output size.
func TestReprojectUniform(t *testing.T) {
	g := uniformGrid(9, 18, 3.25)
	for _, size := range []int{4, 64, 120} {
		out := Reproject(g, size)
		for k, v := range out {
			if v != 3.25 {
				t.Fatalf("size %d: out[%d] = %v, want 3.25", size, k, v)
			}
		}
	}
}

// A NaN row in the source must stay NaN in the output wherever it dominates,
// and must never contribute a numeric value to those pixels.
func TestReprojectNaNRowPropagation(t *testing.T) {
	g := uniformGrid(4, 4, 1.0)
	for j := 0; j < 4; j++ {
		g.Set(1, j, math.NaN())
	}

	size := 16
	out := Reproject(g, size)

	nanPixels := 0
	for r := 0; r < size; r++ {
		lat := RowToLat(r, size)
		inRow := (90 - lat) / 180 * 3
		for c := 0; c < size; c++ {
			v := out[r*size+c]
			// Pixels whose nearest source row is the NaN row must be NaN.
			if math.Round(inRow) == 1 {
				if !math.IsNaN(v) {
					t.Fatalf("pixel (%d,%d) near NaN row = %v, want NaN", r, c, v)
				}
				nanPixels++
			} else if !math.IsNaN(v) && (v < 0.5-1e-9 || v > 1.0+1e-9) {
				// A numeric pixel interpolates NaN cells as zero, so its
				// value is 1 minus the (minority) NaN weight: always in
				// [0.5, 1].
				t.Fatalf("pixel (%d,%d) = %v, want within [0.5, 1.0]", r, c, v)
			}
		}
	}
	if nanPixels == 0 {
		t.Fatal("no output pixels mapped onto the NaN source row")
	}
}

func TestRowToLatEdges(t *testing.T) {
	size := 720
	if got := RowToLat(0, size); math.Abs(got-MaxLatitude) > 1e-6 {
		t.Errorf("RowToLat(0) = %v, want %v", got, MaxLatitude)
	}
	if got := RowToLat(size-1, size); math.Abs(got+MaxLatitude) > 1e-6 {
		t.Errorf("RowToLat(size-1) = %v, want %v", got, -MaxLatitude)
	}
	mid := RowToLat((size-1)/2, size)
	if math.Abs(mid) > 0.3 {
		t.Errorf("RowToLat(middle) = %v, want ~0", mid)
	}
}

func TestLatToRowRoundTrip(t *testing.T) {
	size := 720
	for _, lat := range []float64{80, 45, 10, 0, -10, -45, -80} {
		row := LatToRow(lat, size)
		back := RowToLat(int(math.Round(row)), size)
		if math.Abs(back-lat) > 0.5 {
			t.Errorf("lat %v -> row %v -> lat %v", lat, row, back)
		}
	}
}

func TestLonToCol(t *testing.T) {
	if got := LonToCol(-180, 721); got != 0 {
		t.Errorf("LonToCol(-180) = %v, want 0", got)
	}
	if got := LonToCol(180, 721); got != 720 {
		t.Errorf("LonToCol(180) = %v, want 720", got)
	}
	if got := LonToCol(0, 721); got != 360 {
		t.Errorf("LonToCol(0) = %v, want 360", got)
	}
}
