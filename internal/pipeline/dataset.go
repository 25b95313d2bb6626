// Package pipeline implements the Temporal Normalizer, Selective Imputer, and
// Completeness Filter stages (§4.3–§4.5) as a small Stage chain: each stage is
// independently testable and the chain composes them in a fixed order (§9
// Design Notes).
package pipeline

import "time"

// Series is one sensor's normalized, dense time series keyed by slot.
type Series struct {
	SensorID string
	Cadence  string // models.Cadence, kept as string to avoid an import cycle with cadence pkg
	Lon, Lat float64
	Values   map[time.Time]float64 // present only for valid (non-missing) slots
}

func (s *Series) Get(t time.Time) (float64, bool) {
	v, ok := s.Values[t]
	return v, ok
}

func (s *Series) Set(t time.Time, v float64) {
	if s.Values == nil {
		s.Values = make(map[time.Time]float64)
	}
	s.Values[t] = v
}

// Dataset is the pipeline's working snapshot: a regular timestamp axis plus every
// sensor's dense series over that axis. Each Stage returns a new Dataset — no
// in-place mutation — so worker inputs stay deterministic (§9 re-architecture note).
type Dataset struct {
	Interval time.Duration
	Axis     []time.Time
	Sensors  map[string]*Series
}

// clone makes a deep copy: a new axis slice, a new sensor map, and for every
// sensor a new Series with its own copy of the Values map.
func (d *Dataset) clone() *Dataset {
	out := &Dataset{
		Interval: d.Interval,
		Axis:     append([]time.Time(nil), d.Axis...),
		Sensors:  make(map[string]*Series, len(d.Sensors)),
	}
	for id, s := range d.Sensors {
		values := make(map[time.Time]float64, len(s.Values))
		for t, v := range s.Values {
			values[t] = v
		}
		out.Sensors[id] = &Series{SensorID: s.SensorID, Cadence: s.Cadence, Lon: s.Lon, Lat: s.Lat, Values: values}
	}
	return out
}

// ActiveCount returns the number of sensors with a valid reading at t.
func (d *Dataset) ActiveCount(t time.Time) int {
	n := 0
	for _, s := range d.Sensors {
		if _, ok := s.Values[t]; ok {
			n++
		}
	}
	return n
}
