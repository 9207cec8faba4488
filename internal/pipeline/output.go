package pipeline

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// forecastHourRe matches the ".fNNN" marker in model file names, e.g.
// gfswave.t12z.global.0p25.f036.grib2.
var forecastHourRe = regexp.MustCompile(`\.f(\d{3})\.`)

// ParseForecastHour extracts the 3-digit forecast hour from an input file
// name.
func ParseForecastHour(name string) (int, error) {
	m := forecastHourRe.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, fmt.Errorf("no forecast hour marker in %q", name)
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parsing forecast hour in %q: %w", name, err)
	}
	return hour, nil
}

// RasterFileName returns the output name for one layer raster:
// {layer}-f{hour:03d}.png.
func RasterFileName(layer string, hour int) string {
	return fmt.Sprintf("%s-f%03d.png", layer, hour)
}

// FeatureFileName returns the output name for the vector product.
func FeatureFileName(hour int) string {
	return fmt.Sprintf("wave-data-f%03d.geojson", hour)
}

// WriteProduct writes every artifact of a rendered hour to outDir. The hour-0
// feature collection is additionally written as wave-data.geojson, the
// original single-output name older clients still fetch.
func WriteProduct(outDir string, p *HourProduct) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	for layer, img := range p.Rasters {
		path := filepath.Join(outDir, RasterFileName(layer, p.ForecastHour))
		if err := writePNG(path, img); err != nil {
			return err
		}
	}

	raw, err := p.Collection.Encode()
	if err != nil {
		return fmt.Errorf("encoding features: %w", err)
	}
	path := filepath.Join(outDir, FeatureFileName(p.ForecastHour))
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if p.ForecastHour == 0 {
		base := filepath.Join(outDir, "wave-data.geojson")
		if err := os.WriteFile(base, raw, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", base, err)
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
