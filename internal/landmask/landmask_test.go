package landmask

import (
	"os"
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"

	"github.com/sandbars-surf/wavegrid/internal/mercator"
)

func TestNewMaskAllWater(t *testing.T) {
	m := NewMask(8)
	if got := m.WaterFraction(); got != 1.0 {
		t.Errorf("WaterFraction() = %v, want 1.0", got)
	}
	if m.IsWater(-1, 0) || m.IsWater(0, 8) {
		t.Error("out-of-range pixels must be land")
	}
}

func TestFillRing(t *testing.T) {
	m := NewMask(16)
	// A square covering pixel columns/rows 4..11.
	ring := [][2]float64{{4, 4}, {12, 4}, {12, 12}, {4, 12}}
	m.fillRing(ring, false)

	if m.IsWater(8, 8) {
		t.Error("center of filled ring still water")
	}
	if !m.IsWater(2, 8) || !m.IsWater(8, 2) || !m.IsWater(13, 13) {
		t.Error("pixels outside ring were filled")
	}
	// Refilling the interior as water (a lake) restores it.
	m.fillRing([][2]float64{{6, 6}, {10, 6}, {10, 10}, {6, 10}}, true)
	if !m.IsWater(8, 8) {
		t.Error("lake interior not restored to water")
	}
	if m.IsWater(5, 8) {
		t.Error("land between ring and lake was lost")
	}
}

// writePolygonShapefile writes a single-ring polygon in lon/lat coordinates.
func writePolygonShapefile(t *testing.T, path string, coords [][2]float64) {
	t.Helper()
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		t.Fatalf("creating shapefile: %v", err)
	}

	pts := make([]shp.Point, 0, len(coords)+1)
	box := shp.Box{MinX: coords[0][0], MinY: coords[0][1], MaxX: coords[0][0], MaxY: coords[0][1]}
	for _, c := range coords {
		pts = append(pts, shp.Point{X: c[0], Y: c[1]})
		if c[0] < box.MinX {
			box.MinX = c[0]
		}
		if c[0] > box.MaxX {
			box.MaxX = c[0]
		}
		if c[1] < box.MinY {
			box.MinY = c[1]
		}
		if c[1] > box.MaxY {
			box.MaxY = c[1]
		}
	}
	pts = append(pts, pts[0]) // close the ring

	poly := &shp.Polygon{
		Box:       box,
		NumParts:  1,
		NumPoints: int32(len(pts)),
		Parts:     []int32{0},
		Points:    pts,
	}
	w.Write(poly)
	w.Close()
}

func TestBuildFromShapefile(t *testing.T) {
	dir := t.TempDir()
	landPath := filepath.Join(dir, "land.shp")
	// A continent spanning lon -90..90, lat -40..40.
	writePolygonShapefile(t, landPath, [][2]float64{
		{-90, -40}, {90, -40}, {90, 40}, {-90, 40},
	})

	size := 64
	m, err := Build(landPath, "", size)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Center of the continent (lon 0, lat 0) is land.
	cx := int(mercator.LonToCol(0, size))
	cy := int(mercator.LatToRow(0, size))
	if m.IsWater(cx, cy) {
		t.Errorf("continent center (%d,%d) is water", cx, cy)
	}
	// The far Pacific (lon -170, lat 0) stays water.
	px := int(mercator.LonToCol(-170, size))
	if !m.IsWater(px, cy) {
		t.Errorf("open ocean (%d,%d) is land", px, cy)
	}

	frac := m.WaterFraction()
	if frac <= 0 || frac >= 1 {
		t.Errorf("WaterFraction() = %v, want a mix of land and water", frac)
	}
}

func TestWritePNG(t *testing.T) {
	m := NewMask(16)
	m.fillRing([][2]float64{{2, 2}, {10, 2}, {10, 10}, {2, 10}}, false)

	path := filepath.Join(t.TempDir(), "mask.png")
	if err := m.WritePNG(path); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("mask PNG is empty")
	}
}
