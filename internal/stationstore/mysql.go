package stationstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/jakartapm25/kelurahan-engine/internal/logging"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

// MySQLStore reads station overrides from a `stations` table
// (sensor_id, longitude, latitude): connection-pool sizing, a single Ping
// before use, and queries scoped to this one read.
type MySQLStore struct {
	DSN          string
	MaxIdleConns int
	MaxOpenConns int
	Logger       *logging.Logger
}

// Load opens a connection, reads the full table once, and closes the connection —
// consistent with §5's "read-only snapshot at startup" shared-resource model.
func (s *MySQLStore) Load() (map[string]models.Sensor, error) {
	if s.DSN == "" {
		return nil, fmt.Errorf("mysql DSN is required")
	}

	db, err := sql.Open("mysql", s.DSN)
	if err != nil {
		return nil, fmt.Errorf("open mysql connection: %w", err)
	}
	defer db.Close()

	maxIdle, maxOpen := s.MaxIdleConns, s.MaxOpenConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxIdleConns(maxIdle)
	db.SetMaxOpenConns(maxOpen)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT sensor_id, longitude, latitude FROM stations`)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.Sensor)
	for rows.Next() {
		var id string
		var lon, lat float64
		if err := rows.Scan(&id, &lon, &lat); err != nil {
			return nil, fmt.Errorf("scan station row: %w", err)
		}
		if _, exists := out[id]; !exists {
			out[id] = models.Sensor{ID: id, Lon: lon, Lat: lat, Source: models.SourceStationOverride}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate station rows: %w", err)
	}

	if s.Logger != nil {
		s.Logger.WithField("count", len(out)).Info("loaded station overrides from mysql")
	}
	return out, nil
}
