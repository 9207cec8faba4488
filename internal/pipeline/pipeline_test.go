package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/sandbars-surf/wavegrid/internal/colormap"
	"github.com/sandbars-surf/wavegrid/internal/grid"
	"github.com/sandbars-surf/wavegrid/internal/sampler"
)

func TestParseForecastHour(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"gfswave.t12z.global.0p25.f000.grib2", 0, false},
		{"gfswave.t12z.global.0p25.f036.grib2", 36, false},
		{"/some/dir/gfswave.t00z.global.0p25.f120.json", 120, false},
		{"gfswave.t12z.global.0p25.grib2", 0, true},
		{"forecast.f12.grib2", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseForecastHour(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseForecastHour(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseForecastHour(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRasterFileName(t *testing.T) {
	if got := RasterFileName("wave-height", 3); got != "wave-height-f003.png" {
		t.Errorf("RasterFileName = %s, want wave-height-f003.png", got)
	}
	if got := FeatureFileName(120); got != "wave-data-f120.geojson" {
		t.Errorf("FeatureFileName = %s, want wave-data-f120.geojson", got)
	}
}

// synthFields builds a small, consistent set of forecast grids. Cells on the
// first latitude row are land (NaN wave height).
func synthFields(hour int) *grid.Fields {
	n := 8
	lats := make([]float64, n)
	lons := make([]float64, n)
	for i := 0; i < n; i++ {
		lats[i] = 90 - 180*float64(i)/float64(n-1)
		lons[i] = 360 * float64(i) / float64(n)
	}

	f := &grid.Fields{
		WaveHeight:        grid.New("swh", lats, lons),
		WindSpeed:         grid.New("ws", lats, lons),
		WindDirection:     grid.New("wdir", lats, lons),
		WindWaveHeight:    grid.New("shww", lats, lons),
		WindWavePeriod:    grid.New("mpww", lats, lons),
		WindWaveDirection: grid.New("wvdir", lats, lons),
		RefTime:           time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ValidTime:         time.Date(2025, 6, 1, 12+hour, 0, 0, 0, time.UTC),
		ForecastHour:      hour,
	}
	for p := 0; p < grid.NumPartitions; p++ {
		f.SwellHeight[p] = grid.New("shts", lats, lons)
		f.SwellPeriod[p] = grid.New("mpts", lats, lons)
		f.SwellDirection[p] = grid.New("swdir", lats, lons)
	}

	for i := 1; i < n; i++ {
		for j := 0; j < n; j++ {
			f.WaveHeight.Set(i, j, 2.0)
			f.WindSpeed.Set(i, j, 8.0)
			f.WindDirection.Set(i, j, 270)
			f.SwellHeight[0].Set(i, j, 1.5)
			f.SwellPeriod[0].Set(i, j, 12)
			f.SwellDirection[0].Set(i, j, 280)
		}
	}
	return f
}

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	r.RasterSize = 32
	r.Sampler = sampler.Options{Stride: 2, MinSwellHeight: 0.1}
	return r
}

func TestRenderHour(t *testing.T) {
	r := testRenderer(t)
	product, err := r.RenderHour(synthFields(3))
	if err != nil {
		t.Fatalf("RenderHour() error = %v", err)
	}

	if product.ForecastHour != 3 {
		t.Errorf("ForecastHour = %d, want 3", product.ForecastHour)
	}
	if len(product.Rasters) != 3 {
		t.Fatalf("len(Rasters) = %d, want 3", len(product.Rasters))
	}
	for _, name := range []string{colormap.LayerWaveHeight, colormap.LayerSwellPeriod, colormap.LayerWindSpeed} {
		img, ok := product.Rasters[name]
		if !ok {
			t.Fatalf("missing raster for %s", name)
		}
		if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
			t.Errorf("%s raster bounds = %v, want 32x32", name, img.Bounds())
		}
	}

	// Stride 2 over an 8x8 grid samples 16 cells; the 4 on the land row are
	// skipped.
	if got := product.Collection.Metadata.PointCount; got != 12 {
		t.Errorf("PointCount = %d, want 12", got)
	}
	if product.SkippedLand != 4 {
		t.Errorf("SkippedLand = %d, want 4", product.SkippedLand)
	}

	// The land row reprojects to transparent pixels at the top of the
	// wave-height raster.
	wh := product.Rasters[colormap.LayerWaveHeight]
	if _, _, _, a := wh.At(0, 0).RGBA(); a != 0 {
		t.Errorf("north land pixel alpha = %d, want 0", a)
	}
	if _, _, _, a := wh.At(16, 16).RGBA(); a == 0 {
		t.Errorf("mid-ocean pixel alpha = 0, want opaque")
	}
}

func TestRenderHourShapeMismatch(t *testing.T) {
	r := testRenderer(t)
	f := synthFields(0)
	f.WindSpeed = grid.New("ws", []float64{90, -90}, f.WaveHeight.Lons)

	_, err := r.RenderHour(f)
	if err == nil {
		t.Fatal("RenderHour() = nil error for mismatched shapes")
	}
	if classify(err) != ShapeMismatch {
		t.Errorf("classify(%v) = %v, want ShapeMismatch", err, classify(err))
	}
}

// fakeDecoder serves synthetic fields, failing for configured paths.
type fakeDecoder struct {
	fail map[string]bool
}

func (d fakeDecoder) Decode(ctx context.Context, path string) (*grid.Fields, error) {
	if d.fail[path] {
		return nil, fmt.Errorf("unusable arrays in %s", path)
	}
	hour, err := ParseForecastHour(path)
	if err != nil {
		return nil, err
	}
	return synthFields(hour), nil
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	r := testRenderer(t)
	outDir := t.TempDir()

	var inputs []string
	fail := map[string]bool{}
	for h := 0; h < 10; h++ {
		name := fmt.Sprintf("gfswave.t12z.global.0p25.f%03d.json", h*3)
		inputs = append(inputs, name)
	}
	// One bad hour out of ten stays under the 10% threshold.
	fail[inputs[4]] = true

	res, err := r.ProcessBatch(context.Background(), inputs, fakeDecoder{fail: fail}, outDir, BatchOptions{Workers: 4})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if res.Succeeded != 9 || res.Failed != 1 {
		t.Errorf("Result = %d ok / %d failed, want 9/1", res.Succeeded, res.Failed)
	}
	if len(res.FailedInputs) != 1 || res.FailedInputs[0] != inputs[4] {
		t.Errorf("FailedInputs = %v, want [%s]", res.FailedInputs, inputs[4])
	}

	// Successful hours wrote their artifacts; hour 0 also wrote the default
	// output name.
	for _, name := range []string{"wave-height-f000.png", "wave-data-f027.geojson", "wave-data.geojson"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	// The failed hour (f012) left no feature file.
	if _, err := os.Stat(filepath.Join(outDir, "wave-data-f012.geojson")); err == nil {
		t.Error("failed hour wrote artifacts")
	}
}

// Ten inputs with two decode failures exceed the 10% threshold, so the batch
// reports overall failure even though eight hours succeeded.
func TestProcessBatchThreshold(t *testing.T) {
	r := testRenderer(t)

	var inputs []string
	fail := map[string]bool{}
	for h := 0; h < 10; h++ {
		name := fmt.Sprintf("gfswave.t12z.global.0p25.f%03d.json", h*3)
		inputs = append(inputs, name)
	}
	fail[inputs[1]] = true
	fail[inputs[7]] = true

	res, err := r.ProcessBatch(context.Background(), inputs, fakeDecoder{fail: fail}, t.TempDir(), BatchOptions{Workers: 2})
	if err == nil {
		t.Fatal("ProcessBatch() = nil error, want overall batch failure at 20% failed")
	}
	if res.Succeeded != 8 || res.Failed != 2 {
		t.Errorf("Result = %d ok / %d failed, want 8/2", res.Succeeded, res.Failed)
	}
}

func TestResultOK(t *testing.T) {
	tests := []struct {
		ok, failed int
		want       bool
	}{
		{10, 0, true},
		{9, 1, true}, // exactly at the threshold
		{8, 2, false},
		{0, 1, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		r := Result{Succeeded: tt.ok, Failed: tt.failed}
		if got := r.OK(DefaultFailureThreshold); got != tt.want {
			t.Errorf("Result{%d,%d}.OK() = %v, want %v", tt.ok, tt.failed, got, tt.want)
		}
	}
}

func TestProcessBatchProgress(t *testing.T) {
	r := testRenderer(t)
	inputs := []string{
		"gfswave.t12z.global.0p25.f000.json",
		"gfswave.t12z.global.0p25.f003.json",
	}
	var reported []string
	_, err := r.ProcessBatch(context.Background(), inputs, fakeDecoder{}, t.TempDir(), BatchOptions{
		Workers: 1,
		Progress: func(done, total int, input string, err error) {
			reported = append(reported, input)
			if total != 2 {
				t.Errorf("total = %d, want 2", total)
			}
			if err != nil {
				t.Errorf("progress err for %s = %v, want nil", input, err)
			}
		},
	})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if len(reported) != 2 {
		t.Fatalf("progress calls = %d, want 2", len(reported))
	}

	// Successful hours must name their input too, not just failures.
	sort.Strings(reported)
	if !slicesEqual(reported, inputs) {
		t.Errorf("progress inputs = %v, want %v", reported, inputs)
	}
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
