// Package loader implements the Loader & Validator stage (spec §4.1): it reads the
// prepared measurement table, optionally joins a station override table, clamps
// sensors to the bounding box, and normalizes types. No third-party CSV library
// appears anywhere in the retrieved corpus (only parquet/ORM stacks for structured
// data), so this reader is built on encoding/csv — see DESIGN.md.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jakartapm25/kelurahan-engine/internal/apperr"
	"github.com/jakartapm25/kelurahan-engine/internal/logging"
	"github.com/jakartapm25/kelurahan-engine/internal/metrics"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
	"github.com/jakartapm25/kelurahan-engine/internal/stationstore"
)

// requiredColumns is the column contract of spec §6.
var requiredColumns = []string{"sensor_id", "longitude", "latitude", "datetime", "pm25"}

// Result is the Loader & Validator's output: normalized measurements plus the set
// of sensors that survived bounding-box validation (§4.1).
type Result struct {
	Measurements []models.Measurement
	Sensors      map[string]models.Sensor // keyed by sensor_id, first-non-null-wins
	ExcludedRows int
	// ExcludedSensors counts sensor_ids seen in the input that never produced a
	// single row with valid, in-bbox coordinates — sensors dropped entirely.
	ExcludedSensors int
	// CoordinateMismatches counts rows for an already-kept sensor_id whose
	// coordinates disagree with the first row kept for it; these sensors are
	// NOT excluded — first non-null wins and the row's measurement is kept.
	CoordinateMismatches int
}

// Load reads path as CSV, optionally overriding sensor coordinates from store, and
// returns the validated, normalized rows. Empty input after validation is fatal (§4.1).
func Load(path string, box models.BoundingBox, pm25Cap float64, store stationstore.Store, log *logging.Logger) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInputShape, fmt.Errorf("open measurement table: %w", err))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInputShape, fmt.Errorf("read header: %w", err))
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInputShape, err)
	}

	var overrides map[string]models.Sensor
	if store != nil {
		overrides, err = store.Load()
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInputShape, fmt.Errorf("load station overrides: %w", err))
		}
	}

	sensors := make(map[string]models.Sensor)
	attemptedSensorIDs := make(map[string]bool)
	measurements := make([]models.Measurement, 0, 1<<16)
	excludedRows := 0
	coordMismatches := 0

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInputShape, fmt.Errorf("read row: %w", err))
		}

		sensorID := strings.TrimSpace(record[cols["sensor_id"]])
		if sensorID == "" {
			excludedRows++
			continue
		}
		attemptedSensorIDs[sensorID] = true

		lon, lonOK := parseFloat(record[cols["longitude"]])
		lat, latOK := parseFloat(record[cols["latitude"]])

		if override, ok := overrides[sensorID]; ok {
			lon, lat = override.Lon, override.Lat
			lonOK, latOK = true, true
		}

		if !lonOK || !latOK || !box.Contains(lon, lat) {
			excludedRows++
			continue
		}

		if existing, ok := sensors[sensorID]; ok {
			if existing.Lon != lon || existing.Lat != lat {
				coordMismatches++
			}
			// first non-null wins: keep existing, ignore this row's coordinates.
		} else {
			source := models.SourceMeasurementTable
			if _, ok := overrides[sensorID]; ok {
				source = models.SourceStationOverride
			}
			sensors[sensorID] = models.Sensor{ID: sensorID, Lon: lon, Lat: lat, Source: source}
		}

		dt, err := parseDatetime(record[cols["datetime"]])
		if err != nil {
			excludedRows++
			continue
		}

		raw, _ := parseFloat(record[cols["pm25"]])
		value, valid := models.NormalizePM25(raw, pm25Cap)

		measurements = append(measurements, models.Measurement{
			SensorID: sensorID,
			Datetime: dt,
			PM25:     value,
			Valid:    valid,
		})
	}

	if len(measurements) == 0 {
		return nil, apperr.Wrap(apperr.KindInputShape, fmt.Errorf("no measurement rows survived validation"))
	}

	// A sensor_id that was attempted but never earned a row in `sensors` never
	// got a valid, in-bbox coordinate on any of its rows — it was excluded
	// entirely, distinct from a merely mismatched (but kept) sensor.
	excludedSensors := len(attemptedSensorIDs) - len(sensors)

	metrics.RowsExcluded.Add(float64(excludedRows))
	metrics.SensorsExcluded.Add(float64(excludedSensors))
	metrics.SensorCoordinateMismatches.Add(float64(coordMismatches))

	log.WithFields(map[string]interface{}{
		"rows_kept":             len(measurements),
		"rows_excluded":         excludedRows,
		"sensors_kept":          len(sensors),
		"sensors_excluded":      excludedSensors,
		"coordinate_mismatches": coordMismatches,
	}).Info("loaded measurement table")

	return &Result{
		Measurements:         measurements,
		Sensors:              sensors,
		ExcludedRows:         excludedRows,
		ExcludedSensors:      excludedSensors,
		CoordinateMismatches: coordMismatches,
	}, nil
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}
	return idx, nil
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// datetimeLayouts are tried in order; the prepared table is expected to carry
// Jakarta-local wall-clock values with no embedded zone offset (§3).
var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func parseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, models.JakartaLocation); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable datetime %q", s)
}
