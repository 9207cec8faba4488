// Package ndbc fetches real-time observations from NOAA's National Data Buoy
// Center.
package ndbc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// BuoyClient defines the interface for fetching buoy observations
type BuoyClient interface {
	// FetchRealtime retrieves the latest observation for a single station
	FetchRealtime(ctx context.Context, stationID string) (*Observation, error)
}

// Observation is the most recent report from one buoy. Fields the station
// does not measure (or reported as "MM") are nil.
type Observation struct {
	StationID  string
	ObservedAt time.Time

	WindSpeed          *float64 // m/s
	WindDirection      *int     // degrees
	WindGust           *float64
	WaveHeight         *float64 // metres
	DominantWavePeriod *float64 // seconds
	AverageWavePeriod  *float64
	WaveDirection      *int
	WaterTemp          *float64 // °C
	AirTemp            *float64
	Pressure           *float64 // hPa
}

// Client implements BuoyClient against the NDBC realtime2 text feed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new NDBC client
func NewClient() *Client {
	return &Client{
		baseURL: "https://www.ndbc.noaa.gov/data/realtime2",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "wavegrid/1.0 (github.com/sandbars-surf/wavegrid)",
	}
}

// FetchRealtime retrieves and parses the latest observation line for a
// station.
func (c *Client) FetchRealtime(ctx context.Context, stationID string) (*Observation, error) {
	url := fmt.Sprintf("%s/%s.txt", c.baseURL, stationID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch station %s: %w", stationID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("station %s returned status %d", stationID, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response for %s: %w", stationID, err)
	}

	obs, err := parseRealtime(stationID, string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", stationID, err)
	}
	return obs, nil
}

// parseRealtime reads the realtime2 text format: a '#'-prefixed header line,
// a units line, then observations newest first.
//
//	#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP ...
func parseRealtime(stationID, text string) (*Observation, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 3 {
		return nil, fmt.Errorf("feed has %d lines, want at least 3", len(lines))
	}

	header := strings.Fields(strings.TrimPrefix(lines[0], "#"))
	data := strings.Fields(lines[2])
	if len(data) < len(header) {
		// Trailing columns are sometimes absent; pad as missing.
		for len(data) < len(header) {
			data = append(data, "MM")
		}
	}

	cols := make(map[string]string, len(header))
	for i, name := range header {
		cols[name] = data[i]
	}

	observedAt, err := parseTimestamp(cols)
	if err != nil {
		return nil, err
	}

	return &Observation{
		StationID:          stationID,
		ObservedAt:         observedAt,
		WindSpeed:          parseFloat(cols["WSPD"]),
		WindDirection:      parseDegrees(cols["WDIR"]),
		WindGust:           parseFloat(cols["GST"]),
		WaveHeight:         parseFloat(cols["WVHT"]),
		DominantWavePeriod: parseFloat(cols["DPD"]),
		AverageWavePeriod:  parseFloat(cols["APD"]),
		WaveDirection:      parseDegrees(cols["MWD"]),
		WaterTemp:          parseFloat(cols["WTMP"]),
		AirTemp:            parseFloat(cols["ATMP"]),
		Pressure:           parseFloat(cols["PRES"]),
	}, nil
}

func parseTimestamp(cols map[string]string) (time.Time, error) {
	yearStr, ok := cols["YY"]
	if !ok {
		yearStr = cols["YYYY"]
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad year %q", yearStr)
	}
	if year < 100 {
		year += 2000
	}

	var parts [4]int
	for i, key := range []string{"MM", "DD", "hh", "mm"} {
		v, err := strconv.Atoi(cols[key])
		if err != nil {
			return time.Time{}, fmt.Errorf("bad %s %q", key, cols[key])
		}
		parts[i] = v
	}
	return time.Date(year, time.Month(parts[0]), parts[1], parts[2], parts[3], 0, 0, time.UTC), nil
}

// parseFloat reads a numeric column, mapping NDBC's missing markers to nil.
func parseFloat(s string) *float64 {
	if s == "" || s == "MM" || s == "N/A" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseDegrees(s string) *int {
	f := parseFloat(s)
	if f == nil {
		return nil
	}
	d := int(*f) % 360
	if d < 0 {
		d += 360
	}
	return &d
}
