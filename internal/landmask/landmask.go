// Package landmask rasterizes Natural Earth coastline polygons into a strict
// binary water mask on the Web-Mercator square, used by map clients to clip
// rendered layers to water.
package landmask

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"sort"

	shp "github.com/jonas-p/go-shp"

	"github.com/sandbars-surf/wavegrid/internal/mercator"
)

// DefaultSize is the standard mask dimension in pixels.
const DefaultSize = 1440

// Mask is a square land/water bitmap in Web-Mercator pixel space.
type Mask struct {
	Size  int
	water []bool
}

// NewMask returns an all-water mask.
func NewMask(size int) *Mask {
	m := &Mask{Size: size, water: make([]bool, size*size)}
	for i := range m.water {
		m.water[i] = true
	}
	return m
}

// IsWater reports whether pixel (x, y) is water. Out-of-range pixels are
// land.
func (m *Mask) IsWater(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Size || y >= m.Size {
		return false
	}
	return m.water[y*m.Size+x]
}

// WaterFraction returns the fraction of water pixels, for sanity reporting.
func (m *Mask) WaterFraction() float64 {
	n := 0
	for _, w := range m.water {
		if w {
			n++
		}
	}
	return float64(n) / float64(len(m.water))
}

// Build rasterizes land polygons (and lake polygons back to water) from
// shapefiles into a strict binary mask: no anti-aliased edges, every pixel is
// either land or water.
func Build(landShp, lakesShp string, size int) (*Mask, error) {
	m := NewMask(size)

	if err := m.fillFromShapefile(landShp, false); err != nil {
		return nil, fmt.Errorf("rasterizing land: %w", err)
	}
	if lakesShp != "" {
		if err := m.fillFromShapefile(lakesShp, true); err != nil {
			return nil, fmt.Errorf("rasterizing lakes: %w", err)
		}
	}
	return m, nil
}

// fillFromShapefile rasterizes every polygon ring of the file with the given
// water value.
func (m *Mask) fillFromShapefile(path string, water bool) error {
	reader, err := shp.Open(path)
	if err != nil {
		return fmt.Errorf("opening shapefile %s: %w", path, err)
	}
	defer reader.Close()

	for reader.Next() {
		_, p := reader.Shape()
		polygon, ok := p.(*shp.Polygon)
		if !ok {
			continue
		}
		for part := 0; part < len(polygon.Parts); part++ {
			start := int(polygon.Parts[part])
			end := len(polygon.Points)
			if part+1 < len(polygon.Parts) {
				end = int(polygon.Parts[part+1])
			}
			if end-start < 3 {
				continue
			}
			ring := make([][2]float64, 0, end-start)
			for i := start; i < end; i++ {
				pt := polygon.Points[i]
				ring = append(ring, [2]float64{
					mercator.LonToCol(pt.X, m.Size),
					mercator.LatToRow(pt.Y, m.Size),
				})
			}
			m.fillRing(ring, water)
		}
	}
	return nil
}

// fillRing scanline-fills one closed ring in pixel space using even-odd
// crossing counts evaluated at pixel centers.
func (m *Mask) fillRing(ring [][2]float64, water bool) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, pt := range ring {
		if pt[1] < minY {
			minY = pt[1]
		}
		if pt[1] > maxY {
			maxY = pt[1]
		}
	}

	y0 := int(math.Max(0, math.Floor(minY)))
	y1 := int(math.Min(float64(m.Size-1), math.Ceil(maxY)))

	var xs []float64
	for y := y0; y <= y1; y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]
		for i := 0; i < len(ring); i++ {
			a := ring[i]
			b := ring[(i+1)%len(ring)]
			if (a[1] <= cy) == (b[1] <= cy) {
				continue // edge does not cross this scanline
			}
			t := (cy - a[1]) / (b[1] - a[1])
			xs = append(xs, a[0]+t*(b[0]-a[0]))
		}
		sort.Float64s(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			x0 := int(math.Ceil(xs[k] - 0.5))
			x1 := int(math.Floor(xs[k+1] - 0.5))
			if x0 < 0 {
				x0 = 0
			}
			if x1 >= m.Size {
				x1 = m.Size - 1
			}
			for x := x0; x <= x1; x++ {
				m.water[y*m.Size+x] = water
			}
		}
	}
}

// WritePNG saves the mask as an 8-bit grayscale image: 0 land, 255 water.
func (m *Mask) WritePNG(path string) error {
	img := image.NewGray(image.Rect(0, 0, m.Size, m.Size))
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			if m.water[y*m.Size+x] {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
