// Package stationstore implements the "separate station table" of spec §4.1 (§4.11 of
// SPEC_FULL): an authoritative, read-once source of sensor coordinates that overrides
// whatever the measurement table carries for the same sensor_id.
package stationstore

import "github.com/jakartapm25/kelurahan-engine/internal/models"

// Store loads the full station override table once. Implementations must be read-only
// snapshots: nothing in the engine mutates a Store after Load (§5 shared-resource model).
type Store interface {
	Load() (map[string]models.Sensor, error)
}
