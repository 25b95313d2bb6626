package models

import "math"

// BoundingBox is the valid coordinate envelope for Jakarta sensors (§3 L×φ box).
type BoundingBox struct {
	LonMin, LonMax float64
	LatMin, LatMax float64
}

// DefaultBoundingBox is the default box L=[106.0,107.0] x phi=[-7.0,-5.4].
var DefaultBoundingBox = BoundingBox{LonMin: 106.0, LonMax: 107.0, LatMin: -7.0, LatMax: -5.4}

// Contains reports whether (lon, lat) falls inside the box, inclusive of the edges.
func (b BoundingBox) Contains(lon, lat float64) bool {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lon >= b.LonMin && lon <= b.LonMax && lat >= b.LatMin && lat <= b.LatMax
}

// SensorSource records which input fed a sensor's coordinates, for provenance logging.
type SensorSource string

const (
	SourceMeasurementTable SensorSource = "measurement_table"
	SourceStationOverride  SensorSource = "station_override"
)

// Sensor is the immutable-for-the-run identity and position of a monitoring station.
type Sensor struct {
	ID     string
	Lon    float64
	Lat    float64
	Source SensorSource
}

// Valid reports whether the sensor's coordinates are finite and inside box (§3).
func (s Sensor) Valid(box BoundingBox) bool {
	return box.Contains(s.Lon, s.Lat)
}
