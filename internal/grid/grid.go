// Package grid holds in-memory forecast fields decoded from model output.
//
// A Grid is one scalar variable on a regular latitude/longitude grid. Land and
// missing cells carry a NaN sentinel, which downstream stages treat as "no
// data" rather than an error condition.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrShapeMismatch indicates that grids for one forecast hour disagree on
// dimensions or axis values. This is always fatal for that hour.
var ErrShapeMismatch = errors.New("grid shape mismatch")

// ErrMissingField indicates the decoder did not produce a required variable.
var ErrMissingField = errors.New("missing field")

// Grid is a single scalar field stored row-major: Data[i*len(Lons)+j] is the
// value at latitude index i, longitude index j. Lats descend from +90 at
// index 0; Lons ascend.
type Grid struct {
	Name string
	Lats []float64
	Lons []float64
	Data []float64
}

// New allocates a grid for the given axes with every cell set to NaN.
func New(name string, lats, lons []float64) *Grid {
	data := make([]float64, len(lats)*len(lons))
	for i := range data {
		data[i] = math.NaN()
	}
	return &Grid{Name: name, Lats: lats, Lons: lons, Data: data}
}

// Rows returns the number of latitude rows.
func (g *Grid) Rows() int { return len(g.Lats) }

// Cols returns the number of longitude columns.
func (g *Grid) Cols() int { return len(g.Lons) }

// At returns the value at (latIndex, lonIndex).
func (g *Grid) At(i, j int) float64 {
	return g.Data[i*len(g.Lons)+j]
}

// Set writes the value at (latIndex, lonIndex).
func (g *Grid) Set(i, j int, v float64) {
	g.Data[i*len(g.Lons)+j] = v
}

// sameAxes reports whether two grids share identical shape and axis values.
func sameAxes(a, b *Grid) bool {
	if len(a.Lats) != len(b.Lats) || len(a.Lons) != len(b.Lons) {
		return false
	}
	for i := range a.Lats {
		if a.Lats[i] != b.Lats[i] {
			return false
		}
	}
	for i := range a.Lons {
		if a.Lons[i] != b.Lons[i] {
			return false
		}
	}
	return true
}

// checkShape verifies that the data length matches the axes.
func checkShape(g *Grid) error {
	if len(g.Data) != len(g.Lats)*len(g.Lons) {
		return fmt.Errorf("%w: %s has %d values for %dx%d axes",
			ErrShapeMismatch, g.Name, len(g.Data), len(g.Lats), len(g.Lons))
	}
	return nil
}
