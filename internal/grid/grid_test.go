package grid

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeLon(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{0, 0},
		{45.5, 45.5},
		{180, 180},
		{180.25, -179.75},
		{270, -90},
		{359.75, -0.25},
	}
	for _, tt := range tests {
		if got := NormalizeLon(tt.raw); got != tt.want {
			t.Errorf("NormalizeLon(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

// Normalization must be reversible: adding 360 back to any negative result
// recovers the raw value for every raw in [0,360).
func TestNormalizeLonRoundTrip(t *testing.T) {
	for raw := 0.0; raw < 360; raw += 0.25 {
		n := NormalizeLon(raw)
		back := n
		if back < 0 {
			back += 360
		}
		if back != raw {
			t.Fatalf("round trip of %v: normalized %v, recovered %v", raw, n, back)
		}
	}
}

func testFields(lats, lons []float64) *Fields {
	f := &Fields{
		WaveHeight:        New("swh", lats, lons),
		WindSpeed:         New("ws", lats, lons),
		WindDirection:     New("wdir", lats, lons),
		WindWaveHeight:    New("shww", lats, lons),
		WindWavePeriod:    New("mpww", lats, lons),
		WindWaveDirection: New("wvdir", lats, lons),
	}
	for p := 0; p < NumPartitions; p++ {
		f.SwellHeight[p] = New("shts", lats, lons)
		f.SwellPeriod[p] = New("mpts", lats, lons)
		f.SwellDirection[p] = New("swdir", lats, lons)
	}
	return f
}

func TestNormalizeLongitudes(t *testing.T) {
	lats := []float64{90, 0, -90}
	lons := []float64{0, 90, 180, 270}
	f := testFields(lats, lons)

	// Tag each cell with its original longitude so the shift is visible.
	for i := range lats {
		for j, lon := range lons {
			f.WaveHeight.Set(i, j, lon)
		}
	}

	f.NormalizeLongitudes()

	wantLons := []float64{-180, -90, 0, 90}
	for j, want := range wantLons {
		if got := f.WaveHeight.Lons[j]; got != want {
			t.Errorf("Lons[%d] = %v, want %v", j, got, want)
		}
	}
	// Data followed the axis: index 0 now holds what was at 180°.
	wantData := []float64{180, 270, 0, 90}
	for j, want := range wantData {
		if got := f.WaveHeight.At(1, j); got != want {
			t.Errorf("At(1,%d) = %v, want %v", j, got, want)
		}
	}

	// Idempotent: a second call changes nothing.
	f.NormalizeLongitudes()
	if got := f.WaveHeight.Lons[0]; got != -180 {
		t.Errorf("Lons[0] after second normalize = %v, want -180", got)
	}
	if got := f.WaveHeight.At(1, 0); got != 180 {
		t.Errorf("At(1,0) after second normalize = %v, want 180", got)
	}
}

func TestValidateShapeMismatch(t *testing.T) {
	lats := []float64{90, 0, -90}
	lons := []float64{0, 90, 180, 270}
	f := testFields(lats, lons)

	if err := f.Validate(); err != nil {
		t.Fatalf("Validate() on consistent fields: %v", err)
	}

	f.WindSpeed = New("ws", []float64{90, -90}, lons)
	err := f.Validate()
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Validate() = %v, want ErrShapeMismatch", err)
	}
}

func TestValidateMissingField(t *testing.T) {
	f := testFields([]float64{90, -90}, []float64{0, 180})
	f.WindWavePeriod = nil
	err := f.Validate()
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("Validate() = %v, want ErrMissingField", err)
	}
}

func TestFileDecoder(t *testing.T) {
	doc := `{
		"referenceTime": "2025-06-01T12:00:00Z",
		"validTime": "2025-06-01T15:00:00Z",
		"forecastHour": 3,
		"latitude": [90, -90],
		"longitude": [0, 180],
		"swh": [[1.5, null], [2.0, 2.5]],
		"ws": [[5, 6], [7, 8]],
		"wdir": [[180, 190], [200, 210]],
		"shww": [[0.5, null], [0.6, 0.7]],
		"mpww": [[4, null], [5, 6]],
		"wvdir": [[90, null], [100, 110]],
		"shts": [[[1, null], [1, 1]], [[0, null], [0, 0]], [[0, null], [0, 0]]],
		"mpts": [[[10, null], [10, 10]], [[0, null], [0, 0]], [[0, null], [0, 0]]],
		"swdir": [[[270, null], [270, 270]], [[0, null], [0, 0]], [[0, null], [0, 0]]]
	}`

	path := filepath.Join(t.TempDir(), "fields.f003.json")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := FileDecoder{}.Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if f.ForecastHour != 3 {
		t.Errorf("ForecastHour = %d, want 3", f.ForecastHour)
	}
	if got := f.WaveHeight.At(0, 0); got != 1.5 {
		t.Errorf("WaveHeight.At(0,0) = %v, want 1.5", got)
	}
	if got := f.WaveHeight.At(0, 1); !math.IsNaN(got) {
		t.Errorf("WaveHeight.At(0,1) = %v, want NaN", got)
	}
	if got := f.SwellDirection[0].At(1, 0); got != 270 {
		t.Errorf("SwellDirection[0].At(1,0) = %v, want 270", got)
	}
}

func TestFileDecoderMissingVariable(t *testing.T) {
	doc := `{
		"latitude": [90, -90],
		"longitude": [0, 180],
		"swh": [[1, 2], [3, 4]]
	}`
	path := filepath.Join(t.TempDir(), "fields.f000.json")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := FileDecoder{}.Decode(context.Background(), path)
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("Decode() = %v, want ErrMissingField", err)
	}
}
