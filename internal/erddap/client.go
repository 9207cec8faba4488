// Package erddap fetches WAVEWATCH III surface data from the University of
// Hawaii PacIOOS ERDDAP server. ERDDAP serves gridded model output as a flat
// table; the client handles the 0-360 longitude convention and the date-line
// split needed for global coverage.
package erddap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	// DefaultDatasetURL is the PacIOOS global WAVEWATCH III griddap endpoint.
	DefaultDatasetURL = "https://pae-paha.pacioos.hawaii.edu/erddap/griddap/ww3_global"

	// DefaultStride thins the native 0.5 degree grid to roughly 2 degrees.
	DefaultStride = 4
)

// Bounds is a latitude/longitude box in standard -180..180 coordinates.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// GlobalBounds covers the WAVEWATCH III global domain. The model grid stops
// short of the poles.
var GlobalBounds = Bounds{MinLat: -77.5, MaxLat: 77.5, MinLon: -180, MaxLon: 180}

// WavePoint is one ocean cell from the model's significant-wave table.
// Direction and period may be missing where the model reports only height.
type WavePoint struct {
	Lat       float64
	Lon       float64
	Height    *float64
	Period    *float64
	Direction *int
	Timestamp string
}

// WaveSource fetches the latest model surface for a region.
type WaveSource interface {
	FetchRegion(ctx context.Context, minLat, maxLat, minLon, maxLon float64, stride int) ([]WavePoint, error)
}

// Client talks to an ERDDAP griddap dataset over HTTP.
type Client struct {
	datasetURL string
	httpClient *http.Client
	userAgent  string
}

// NewClient returns a client for the default PacIOOS dataset.
func NewClient() *Client {
	return &Client{
		datasetURL: DefaultDatasetURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		userAgent: "wavegrid/1.0 (github.com/sandbars-surf/wavegrid)",
	}
}

// tableDoc is ERDDAP's .json response envelope. Rows mix types: the time
// column is an ISO timestamp string, dimension and data columns are numbers,
// and masked cells are null.
type tableDoc struct {
	Table struct {
		ColumnNames []string `json:"columnNames"`
		Rows        [][]any  `json:"rows"`
	} `json:"table"`
}

// FetchRegion requests Thgt, Tdir, and Tper for the latest timestep over the
// given box. Longitudes are in ERDDAP's 0-360 convention. Land cells (null or
// NaN wave height) are dropped.
func (c *Client) FetchRegion(ctx context.Context, minLat, maxLat, minLon, maxLon float64, stride int) ([]WavePoint, error) {
	if stride < 1 {
		stride = 1
	}
	dims := fmt.Sprintf("[(last)][(0.0)][(%g):%d:(%g)][(%g):%d:(%g)]",
		minLat, stride, maxLat, minLon, stride, maxLon)
	url := fmt.Sprintf("%s.json?Thgt%s,Tdir%s,Tper%s", c.datasetURL, dims, dims, dims)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building ERDDAP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching ERDDAP region: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ERDDAP request failed: %s: %s", resp.Status, body)
	}

	var doc tableDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding ERDDAP response: %w", err)
	}
	return parseTable(&doc)
}

func parseTable(doc *tableDoc) ([]WavePoint, error) {
	if len(doc.Table.Rows) == 0 {
		return nil, nil
	}

	idx := make(map[string]int, len(doc.Table.ColumnNames))
	for i, name := range doc.Table.ColumnNames {
		idx[name] = i
	}
	for _, name := range []string{"time", "latitude", "longitude", "Thgt", "Tdir", "Tper"} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("ERDDAP response missing column %q", name)
		}
	}

	points := make([]WavePoint, 0, len(doc.Table.Rows))
	for _, row := range doc.Table.Rows {
		if len(row) < len(doc.Table.ColumnNames) {
			continue
		}
		height, ok := cellFloat(row[idx["Thgt"]])
		if !ok {
			// Land cell.
			continue
		}
		lat, okLat := cellFloat(row[idx["latitude"]])
		lon, okLon := cellFloat(row[idx["longitude"]])
		if !okLat || !okLon {
			continue
		}
		if lon > 180 {
			lon -= 360
		}

		p := WavePoint{
			Lat:    lat,
			Lon:    lon,
			Height: roundPtr(height, 2),
		}
		if ts, ok := row[idx["time"]].(string); ok {
			p.Timestamp = ts
		}
		if dir, ok := cellFloat(row[idx["Tdir"]]); ok {
			d := int(math.Round(dir))
			p.Direction = &d
		}
		if per, ok := cellFloat(row[idx["Tper"]]); ok {
			p.Period = roundPtr(per, 1)
		}
		points = append(points, p)
	}
	return points, nil
}

// cellFloat extracts a numeric cell. ERDDAP writes null for masked cells, and
// an upstream fill value can still arrive as NaN; both count as missing.
func cellFloat(cell any) (float64, bool) {
	v, ok := cell.(float64)
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func roundPtr(v float64, decimals int) *float64 {
	scale := math.Pow(10, float64(decimals))
	r := math.Round(v*scale) / scale
	return &r
}
