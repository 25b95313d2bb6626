package pipeline

import (
	"sort"
	"time"

	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

// Round rounds t to the nearest multiple of interval, half-up on the boundary (§3).
func Round(t time.Time, interval time.Duration) time.Time {
	unix := t.Unix()
	step := int64(interval / time.Second)
	rem := unix % step
	if rem < 0 {
		rem += step
	}
	var rounded int64
	if rem*2 >= step { // half-up: exact midpoint rounds to the later slot
		rounded = unix - rem + step
	} else {
		rounded = unix - rem
	}
	return time.Unix(rounded, 0).In(t.Location())
}

// BuildDataset rounds every measurement to the elected interval and constructs the
// complete regular axis T = {t_min, ..., t_max} (§4.3).
//
// Two slot-collision policies apply depending on Δ:
//   - Δ=30min: duplicate (sensor_id, t_k) keeps the first non-missing reading, ties
//     keep the first (§3) — at 30-minute resolution a sensor reporting faster than
//     its own cadence is treated as a duplicate-read artifact, not a signal to blend.
//   - Δ=60min: every sensor is aggregated per hour by the mean of its non-null
//     readings landing in that hour (§4.4) — this is how a "thirty"-cadence sensor's
//     two half-hour samples combine into the hourly axis; no imputation follows.
func BuildDataset(ms []models.Measurement, sensors map[string]models.Sensor, labels map[string]models.Cadence, interval time.Duration) *Dataset {
	type accumulator struct {
		sum   float64
		count int
	}

	bySensor := make(map[string]*Series)
	acc := make(map[string]map[time.Time]*accumulator)

	hourlyAggregate := interval == models.IntervalHourly.Duration()

	var tMin, tMax time.Time
	haveRange := false

	for _, m := range ms {
		sensor, ok := sensors[m.SensorID]
		if !ok {
			continue // dropped by the loader/validator already, but guard anyway
		}
		tk := Round(m.Datetime, interval)

		s, ok := bySensor[m.SensorID]
		if !ok {
			s = &Series{SensorID: m.SensorID, Cadence: string(labels[m.SensorID]), Lon: sensor.Lon, Lat: sensor.Lat}
			bySensor[m.SensorID] = s
		}

		if m.Valid {
			if hourlyAggregate {
				slots, ok := acc[m.SensorID]
				if !ok {
					slots = make(map[time.Time]*accumulator)
					acc[m.SensorID] = slots
				}
				a, ok := slots[tk]
				if !ok {
					a = &accumulator{}
					slots[tk] = a
				}
				a.sum += m.PM25
				a.count++
			} else if _, exists := s.Values[tk]; !exists {
				// first non-missing wins; ties keep the first (§3).
				s.Set(tk, m.PM25)
			}
		}

		if !haveRange || tk.Before(tMin) {
			tMin = tk
			haveRange = true
		}
		if !haveRange || tk.After(tMax) {
			tMax = tk
		}
	}

	if hourlyAggregate {
		for sensorID, slots := range acc {
			s := bySensor[sensorID]
			for t, a := range slots {
				s.Set(t, a.sum/float64(a.count))
			}
		}
	}

	axis := make([]time.Time, 0)
	if haveRange {
		for t := tMin; !t.After(tMax); t = t.Add(interval) {
			axis = append(axis, t)
		}
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })

	return &Dataset{Interval: interval, Axis: axis, Sensors: bySensor}
}
