package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/zanaca/ha-inmet-weather/internal/metrics"
	"github.com/zanaca/ha-inmet-weather/internal/models"

	_ "github.com/go-sql-driver/mysql"
)

// DB represents the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and initializes the schema
// dsn format: "username:password@tcp(host:port)/dbname?parseTime=true"
// example: "user:pass@tcp(localhost:3306)/inmet_weather?parseTime=true"
func NewDB(dsn string) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn}

	// Initialize schema
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	// MySQL doesn't support multiple statements in one Exec, so we need to split them
	statements := []string{
		`CREATE TABLE IF NOT EXISTS stations (
			geocode VARCHAR(10) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS observations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			location VARCHAR(255) NOT NULL,
			geocode VARCHAR(10) NOT NULL,
			station_code VARCHAR(20) NOT NULL DEFAULT '',
			temperature DOUBLE NULL,
			apparent_temperature DOUBLE NULL,
			temp_min DOUBLE NULL,
			temp_max DOUBLE NULL,
			humidity DOUBLE NULL,
			pressure DOUBLE NULL,
			wind_speed DOUBLE NULL,
			wind_gust DOUBLE NULL,
			wind_bearing DOUBLE NULL,
			dew_point DOUBLE NULL,
			rainfall DOUBLE NULL,
			observed_at DATETIME(6) NOT NULL,
			fetched_at DATETIME(6) NOT NULL,
			INDEX idx_observations_location (location),
			INDEX idx_observations_observed (observed_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS forecast_periods (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			location VARCHAR(255) NOT NULL,
			geocode VARCHAR(10) NOT NULL,
			forecast_date DATE NOT NULL,
			period VARCHAR(20) NOT NULL,
			` + "`condition`" + ` VARCHAR(50) NOT NULL,
			summary TEXT NOT NULL,
			temp_max DOUBLE NULL,
			temp_min DOUBLE NULL,
			humidity_max DOUBLE NULL,
			humidity_min DOUBLE NULL,
			wind_direction VARCHAR(20) NOT NULL DEFAULT '',
			wind_intensity VARCHAR(50) NOT NULL DEFAULT '',
			INDEX idx_forecast_location (location),
			INDEX idx_forecast_date (forecast_date)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			location VARCHAR(255) NOT NULL,
			geocode VARCHAR(10) NOT NULL,
			alert_date DATETIME(6) NOT NULL,
			period VARCHAR(20) NOT NULL DEFAULT '',
			kind VARCHAR(50) NOT NULL,
			severity VARCHAR(20) NOT NULL,
			description TEXT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_alerts_location (location),
			INDEX idx_alerts_date (alert_date)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// UpsertStation inserts or updates a station reference row
func (db *DB) UpsertStation(st models.StationReference) error {
	query := `INSERT INTO stations (geocode, name, latitude, longitude) VALUES (?, ?, ?, ?)
	          ON DUPLICATE KEY UPDATE name = VALUES(name), latitude = VALUES(latitude), longitude = VALUES(longitude)`
	queryStart := time.Now()
	_, err := db.conn.Exec(query, st.Geocode, st.Name, st.Latitude, st.Longitude)
	metrics.RecordDBQuery("INSERT", "stations", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to upsert station %s: %w", st.Geocode, err)
	}
	return nil
}

// GetStations retrieves all station reference rows ordered by name
func (db *DB) GetStations() ([]models.StationReference, error) {
	query := `SELECT geocode, name, latitude, longitude FROM stations ORDER BY name`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []models.StationReference
	for rows.Next() {
		var st models.StationReference
		if err := rows.Scan(&st.Geocode, &st.Name, &st.Latitude, &st.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, st)
	}

	return stations, rows.Err()
}

// StoreObservation stores one normalized station observation
func (db *DB) StoreObservation(location string, cur models.CurrentConditions, fetchedAt time.Time) error {
	queryStart := time.Now()
	defer func() {
		stats := db.conn.Stats()
		metrics.UpdateDBConnectionStats(stats.OpenConnections, stats.InUse, stats.Idle)
	}()

	query := `INSERT INTO observations
	          (location, geocode, station_code, temperature, apparent_temperature, temp_min, temp_max, humidity, pressure, wind_speed, wind_gust, wind_bearing, dew_point, rainfall, observed_at, fetched_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.conn.Exec(query, location, cur.Geocode, cur.StationCode,
		cur.Temperature, cur.ApparentTemp, cur.TempMin, cur.TempMax,
		cur.Humidity, cur.Pressure, cur.WindSpeed, cur.WindGust,
		cur.WindBearing, cur.DewPoint, cur.Rainfall, cur.ObservedAt, fetchedAt)
	metrics.RecordDBQuery("INSERT", "observations", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to store observation for %s: %w", location, err)
	}
	return nil
}

// StoreForecast replaces the stored forecast for a location. INMET reissues
// the full forecast on every poll, so stale rows are dropped first.
func (db *DB) StoreForecast(location, geocode string, periods []models.ForecastPeriod) error {
	// Begin transaction so the delete and inserts land together
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if committed

	queryStart := time.Now()
	_, err = tx.Exec(`DELETE FROM forecast_periods WHERE location = ?`, location)
	metrics.RecordDBQuery("DELETE", "forecast_periods", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to clear forecast for %s: %w", location, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO forecast_periods
	    (location, geocode, forecast_date, period, ` + "`condition`" + `, summary, temp_max, temp_min, humidity_max, humidity_min, wind_direction, wind_intensity)
	    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range periods {
		_, err = stmt.Exec(location, geocode, p.Date.Format("2006-01-02"), string(p.Period),
			p.Condition, p.Summary, p.TempMax, p.TempMin, p.HumidityMax, p.HumidityMin,
			p.WindDirection, p.WindIntensity)
		if err != nil {
			return fmt.Errorf("failed to insert forecast period for %s on %s: %w",
				location, p.Date.Format("2006-01-02"), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// StoreAlerts stores derived alerts in a single transaction
func (db *DB) StoreAlerts(alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil // Nothing to store
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if committed

	stmt, err := tx.Prepare(`INSERT INTO alerts (location, geocode, alert_date, period, kind, severity, description, created_at)
	    VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, a := range alerts {
		_, err = stmt.Exec(a.Location, a.Geocode, a.Date, string(a.Period), a.Kind, a.Severity, a.Description, now)
		if err != nil {
			return fmt.Errorf("failed to insert %s alert for %s: %w", a.Kind, a.Location, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✓ Stored %d alerts", len(alerts))
	return nil
}

// GetObservations retrieves observations for a location since a given time,
// newest first
func (db *DB) GetObservations(location string, since time.Time) ([]models.Observation, error) {
	query := `SELECT id, location, geocode, station_code, temperature, apparent_temperature, temp_min, temp_max,
	                 humidity, pressure, wind_speed, wind_gust, wind_bearing, dew_point, rainfall, observed_at, fetched_at
	          FROM observations WHERE location = ? AND observed_at >= ? ORDER BY observed_at DESC`
	queryStart := time.Now()
	rows, err := db.conn.Query(query, location, since)
	metrics.RecordDBQuery("SELECT", "observations", time.Since(queryStart), err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.ID, &o.Location, &o.Geocode, &o.StationCode,
			&o.Temperature, &o.ApparentTemp, &o.TempMin, &o.TempMax,
			&o.Humidity, &o.Pressure, &o.WindSpeed, &o.WindGust,
			&o.WindBearing, &o.DewPoint, &o.Rainfall, &o.ObservedAt, &o.FetchedAt); err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}

	return observations, rows.Err()
}

// GetLatestObservation retrieves the newest observation for a location
func (db *DB) GetLatestObservation(location string) (*models.Observation, error) {
	query := `SELECT id, location, geocode, station_code, temperature, apparent_temperature, temp_min, temp_max,
	                 humidity, pressure, wind_speed, wind_gust, wind_bearing, dew_point, rainfall, observed_at, fetched_at
	          FROM observations WHERE location = ? ORDER BY observed_at DESC LIMIT 1`
	row := db.conn.QueryRow(query, location)

	var o models.Observation
	if err := row.Scan(&o.ID, &o.Location, &o.Geocode, &o.StationCode,
		&o.Temperature, &o.ApparentTemp, &o.TempMin, &o.TempMax,
		&o.Humidity, &o.Pressure, &o.WindSpeed, &o.WindGust,
		&o.WindBearing, &o.DewPoint, &o.Rainfall, &o.ObservedAt, &o.FetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no observations for location: %s", location)
		}
		return nil, fmt.Errorf("failed to scan observation: %w", err)
	}

	return &o, nil
}

// GetAlerts retrieves recent alerts for a specific location
func (db *DB) GetAlerts(location string, limit int) ([]models.Alert, error) {
	query := `SELECT location, geocode, alert_date, period, kind, severity, description
	          FROM alerts WHERE location = ? ORDER BY alert_date DESC, id DESC LIMIT ?`
	rows, err := db.conn.Query(query, location, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var period string
		if err := rows.Scan(&a.Location, &a.Geocode, &a.Date, &period, &a.Kind, &a.Severity, &a.Description); err != nil {
			return nil, err
		}
		a.Period = models.Period(period)
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// GetLocationsWithData returns a set of all locations that have observations
func (db *DB) GetLocationsWithData() (map[string]bool, error) {
	query := `SELECT DISTINCT location FROM observations`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get locations with data: %w", err)
	}
	defer rows.Close()

	locations := make(map[string]bool)
	for rows.Next() {
		var location string
		if err := rows.Scan(&location); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations[location] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
