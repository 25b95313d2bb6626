package models

import "time"

// PM25Cap is the default upper rejection threshold; values above it are treated as missing.
const PM25Cap = 500.0

// Measurement is a single raw reading: (sensor_id, datetime, pm25) from spec.md §3.
// Datetime carries a Jakarta-local (UTC+07:00, no DST) wall-clock interpretation; callers
// are responsible for attaching the JakartaLocation before any rounding happens.
type Measurement struct {
	SensorID string
	Datetime time.Time
	PM25     float64
	Valid    bool // false when PM25 is missing per the 0/>cap convention
}

// JakartaLocation is the fixed UTC+07:00 zone used to interpret every input datetime.
var JakartaLocation = time.FixedZone("WIB", 7*60*60)

// NormalizePM25 applies the missing-value convention: pm25==0 and pm25>cap are missing.
func NormalizePM25(pm25, cap float64) (value float64, valid bool) {
	if pm25 == 0 || pm25 > cap || pm25 < 0 {
		return 0, false
	}
	return pm25, true
}

// NormalizedMeasurement is (sensor_id, t_k, pm25) after temporal rounding (§3).
type NormalizedMeasurement struct {
	SensorID string
	T        time.Time
	PM25     float64
	Valid    bool
}
