// Package storage persists sampled wave grids, forecast-run bookkeeping and
// buoy observations in a local SQLite database.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// upsertBatchSize bounds how many grid points go into one transaction.
const upsertBatchSize = 1000

// Store wraps the database handle. A Store is safe for use from a single
// goroutine; the ingest commands are sequential.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the path of the shared database file.
func DefaultPath() string {
	return filepath.Join("data", "wavegrid.db")
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Set pragmas for performance
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")
	db.Exec("PRAGMA cache_size=10000")

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS forecast_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			model TEXT NOT NULL,
			run_time DATETIME NOT NULL,
			forecast_hours TEXT NOT NULL,
			point_count INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'complete',
			metadata TEXT,
			UNIQUE(model, run_time)
		);

		CREATE TABLE IF NOT EXISTS wave_points (
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			wave_height REAL,
			wave_period REAL,
			wave_direction INTEGER,
			source TEXT NOT NULL,
			model_run DATETIME NOT NULL,
			computed_at DATETIME NOT NULL,
			PRIMARY KEY (lat, lon, source)
		);

		CREATE TABLE IF NOT EXISTS stations (
			station_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			type TEXT NOT NULL DEFAULT 'buoy',
			owner TEXT NOT NULL DEFAULT 'ndbc',
			has_waves INTEGER NOT NULL DEFAULT 0,
			has_wind INTEGER NOT NULL DEFAULT 0,
			has_water_temp INTEGER NOT NULL DEFAULT 0,
			active INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS buoy_readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			station_id TEXT NOT NULL,
			observed_at DATETIME NOT NULL,
			wind_speed REAL,
			wind_direction INTEGER,
			wind_gust REAL,
			wave_height REAL,
			dominant_wave_period REAL,
			average_wave_period REAL,
			wave_direction INTEGER,
			water_temp REAL,
			air_temp REAL,
			pressure REAL,
			UNIQUE(station_id, observed_at)
		);

		CREATE TABLE IF NOT EXISTS latest_runs (
			model TEXT PRIMARY KEY,
			run TEXT NOT NULL,
			forecast_hours TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// WavePoint is one sampled grid cell headed for the wave_points table.
type WavePoint struct {
	Lat       float64
	Lon       float64
	Height    *float64
	Period    *float64
	Direction *int
}

// UpsertWavePoints writes sampled grid points in batches, replacing any
// previous row for the same (lat, lon, source).
func (s *Store) UpsertWavePoints(points []WavePoint, source string, modelRun time.Time) error {
	if len(points) == 0 {
		return nil
	}
	now := time.Now().UTC()

	for start := 0; start < len(points); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(points) {
			end = len(points)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("starting batch: %w", err)
		}
		stmt, err := tx.Prepare(`
			INSERT INTO wave_points
				(lat, lon, wave_height, wave_period, wave_direction, source, model_run, computed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(lat, lon, source) DO UPDATE SET
				wave_height = excluded.wave_height,
				wave_period = excluded.wave_period,
				wave_direction = excluded.wave_direction,
				model_run = excluded.model_run,
				computed_at = excluded.computed_at
		`)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("preparing upsert: %w", err)
		}
		for _, p := range points[start:end] {
			if _, err := stmt.Exec(round2(p.Lat), round2(p.Lon), p.Height, p.Period, p.Direction,
				source, modelRun.UTC(), now); err != nil {
				stmt.Close()
				tx.Rollback()
				return fmt.Errorf("upserting point (%.2f, %.2f): %w", p.Lat, p.Lon, err)
			}
		}
		stmt.Close()
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing batch: %w", err)
		}
	}
	return nil
}

// CountWavePoints returns the number of stored grid points for a source.
func (s *Store) CountWavePoints(source string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM wave_points WHERE source = ?", source).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting wave points: %w", err)
	}
	return n, nil
}

// InsertForecastRun records one completed model run.
func (s *Store) InsertForecastRun(model string, runTime time.Time, hours []int, pointCount int, metadata map[string]any) error {
	hoursJSON, err := json.Marshal(hours)
	if err != nil {
		return fmt.Errorf("encoding forecast hours: %w", err)
	}
	var metaJSON []byte
	if metadata != nil {
		if metaJSON, err = json.Marshal(metadata); err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}
	}

	_, err = s.db.Exec(`
		INSERT INTO forecast_runs (model, run_time, forecast_hours, point_count, status, metadata)
		VALUES (?, ?, ?, ?, 'complete', ?)
		ON CONFLICT(model, run_time) DO UPDATE SET
			forecast_hours = excluded.forecast_hours,
			point_count = excluded.point_count,
			status = excluded.status,
			metadata = excluded.metadata
	`, model, runTime.UTC(), string(hoursJSON), pointCount, string(metaJSON))
	if err != nil {
		return fmt.Errorf("recording forecast run: %w", err)
	}
	return nil
}

// UpdateLatest points the per-model "latest" marker at a new run.
func (s *Store) UpdateLatest(model, run string, hours []int) error {
	hoursJSON, err := json.Marshal(hours)
	if err != nil {
		return fmt.Errorf("encoding forecast hours: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO latest_runs (model, run, forecast_hours, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(model) DO UPDATE SET
			run = excluded.run,
			forecast_hours = excluded.forecast_hours,
			updated_at = excluded.updated_at
	`, model, run, string(hoursJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("updating latest run: %w", err)
	}
	return nil
}

// LatestRun returns the recorded latest run string for a model, or "" when
// none exists.
func (s *Store) LatestRun(model string) (string, error) {
	var run string
	err := s.db.QueryRow("SELECT run FROM latest_runs WHERE model = ?", model).Scan(&run)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying latest run: %w", err)
	}
	return run, nil
}

// Station is buoy station metadata.
type Station struct {
	ID           string
	Name         string
	Latitude     float64
	Longitude    float64
	Type         string
	Owner        string
	HasWaves     bool
	HasWind      bool
	HasWaterTemp bool
}

// UpsertStation writes or refreshes station metadata.
func (s *Store) UpsertStation(st Station) error {
	if st.Type == "" {
		st.Type = "buoy"
	}
	if st.Owner == "" {
		st.Owner = "ndbc"
	}
	_, err := s.db.Exec(`
		INSERT INTO stations
			(station_id, name, latitude, longitude, type, owner, has_waves, has_wind, has_water_temp, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(station_id) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			has_waves = excluded.has_waves,
			has_wind = excluded.has_wind,
			has_water_temp = excluded.has_water_temp,
			active = 1
	`, st.ID, st.Name, st.Latitude, st.Longitude, st.Type, st.Owner,
		st.HasWaves, st.HasWind, st.HasWaterTemp)
	if err != nil {
		return fmt.Errorf("upserting station %s: %w", st.ID, err)
	}
	return nil
}

// BuoyReading is one observation row for the buoy_readings table.
type BuoyReading struct {
	StationID          string
	ObservedAt         time.Time
	WindSpeed          *float64
	WindDirection      *int
	WindGust           *float64
	WaveHeight         *float64
	DominantWavePeriod *float64
	AverageWavePeriod  *float64
	WaveDirection      *int
	WaterTemp          *float64
	AirTemp            *float64
	Pressure           *float64
}

// InsertBuoyReading stores one observation, replacing a duplicate for the
// same station and time.
func (s *Store) InsertBuoyReading(r BuoyReading) error {
	_, err := s.db.Exec(`
		INSERT INTO buoy_readings
			(station_id, observed_at, wind_speed, wind_direction, wind_gust,
			 wave_height, dominant_wave_period, average_wave_period, wave_direction,
			 water_temp, air_temp, pressure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id, observed_at) DO UPDATE SET
			wind_speed = excluded.wind_speed,
			wind_direction = excluded.wind_direction,
			wind_gust = excluded.wind_gust,
			wave_height = excluded.wave_height,
			dominant_wave_period = excluded.dominant_wave_period,
			average_wave_period = excluded.average_wave_period,
			wave_direction = excluded.wave_direction,
			water_temp = excluded.water_temp,
			air_temp = excluded.air_temp,
			pressure = excluded.pressure
	`, r.StationID, r.ObservedAt.UTC(), r.WindSpeed, r.WindDirection, r.WindGust,
		r.WaveHeight, r.DominantWavePeriod, r.AverageWavePeriod, r.WaveDirection,
		r.WaterTemp, r.AirTemp, r.Pressure)
	if err != nil {
		return fmt.Errorf("inserting reading for %s: %w", r.StationID, err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
