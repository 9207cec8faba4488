package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// FileDecoder reads forecast fields from the intermediate JSON dumps produced
// by the external GRIB extraction step. The native binary format is never
// parsed here; this is only the hand-off layout: axis arrays plus one 2D
// array per surface variable and one 3D array per swell variable, with null
// marking land/missing cells.
type FileDecoder struct{}

// nanFloat decodes JSON null as NaN so "missing" survives the boundary as
// the usual sentinel.
type nanFloat float64

func (f *nanFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = nanFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = nanFloat(v)
	return nil
}

type fieldsDoc struct {
	ReferenceTime time.Time `json:"referenceTime"`
	ValidTime     time.Time `json:"validTime"`
	ForecastHour  int       `json:"forecastHour"`

	Latitude  []float64 `json:"latitude"`
	Longitude []float64 `json:"longitude"`

	Swh   [][]nanFloat `json:"swh"`
	Ws    [][]nanFloat `json:"ws"`
	Wdir  [][]nanFloat `json:"wdir"`
	Shww  [][]nanFloat `json:"shww"`
	Mpww  [][]nanFloat `json:"mpww"`
	Wvdir [][]nanFloat `json:"wvdir"`

	Shts  [][][]nanFloat `json:"shts"`
	Mpts  [][][]nanFloat `json:"mpts"`
	Swdir [][][]nanFloat `json:"swdir"`
}

// Decode reads one forecast hour from path.
func (FileDecoder) Decode(ctx context.Context, path string) (*Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc fieldsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc.toFields(path)
}

func (d *fieldsDoc) toFields(path string) (*Fields, error) {
	if len(d.Latitude) == 0 || len(d.Longitude) == 0 {
		return nil, fmt.Errorf("%s: %w: latitude/longitude axes", path, ErrMissingField)
	}

	f := &Fields{
		RefTime:      d.ReferenceTime,
		ValidTime:    d.ValidTime,
		ForecastHour: d.ForecastHour,
	}

	surface := []struct {
		name string
		rows [][]nanFloat
		dst  **Grid
	}{
		{"swh", d.Swh, &f.WaveHeight},
		{"ws", d.Ws, &f.WindSpeed},
		{"wdir", d.Wdir, &f.WindDirection},
		{"shww", d.Shww, &f.WindWaveHeight},
		{"mpww", d.Mpww, &f.WindWavePeriod},
		{"wvdir", d.Wvdir, &f.WindWaveDirection},
	}
	for _, v := range surface {
		g, err := d.toGrid(v.name, v.rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		*v.dst = g
	}

	swell := []struct {
		name string
		arr  [][][]nanFloat
		dst  *[NumPartitions]*Grid
	}{
		{"shts", d.Shts, &f.SwellHeight},
		{"mpts", d.Mpts, &f.SwellPeriod},
		{"swdir", d.Swdir, &f.SwellDirection},
	}
	for _, v := range swell {
		if len(v.arr) != NumPartitions {
			return nil, fmt.Errorf("%s: %w: %s has %d partitions, want %d",
				path, ErrShapeMismatch, v.name, len(v.arr), NumPartitions)
		}
		for p := 0; p < NumPartitions; p++ {
			g, err := d.toGrid(fmt.Sprintf("%s[%d]", v.name, p), v.arr[p])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			v.dst[p] = g
		}
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (d *fieldsDoc) toGrid(name string, rows [][]nanFloat) (*Grid, error) {
	if rows == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	if len(rows) != len(d.Latitude) {
		return nil, fmt.Errorf("%w: %s has %d rows, want %d",
			ErrShapeMismatch, name, len(rows), len(d.Latitude))
	}
	g := New(name, d.Latitude, d.Longitude)
	for i, row := range rows {
		if len(row) != len(d.Longitude) {
			return nil, fmt.Errorf("%w: %s row %d has %d columns, want %d",
				ErrShapeMismatch, name, i, len(row), len(d.Longitude))
		}
		for j, v := range row {
			g.Set(i, j, float64(v))
		}
	}
	return g, nil
}
