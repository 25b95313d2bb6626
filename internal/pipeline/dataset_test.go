package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

func TestRoundHalfUpOnBoundary(t *testing.T) {
	// 00:15:00 against a 30-minute interval: remainder is exactly half the step,
	// so it rounds up to the later slot.
	t0 := time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC)
	got := Round(t0, 30*time.Minute)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC), got)
}

func TestRoundDownBelowMidpoint(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 10, 0, 0, time.UTC)
	got := Round(t0, 30*time.Minute)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestRoundExactSlotIsUnchanged(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	got := Round(t0, time.Hour)
	assert.Equal(t, t0, got)
}

func sensors() map[string]models.Sensor {
	return map[string]models.Sensor{
		"a": {ID: "a", Lon: 106.8, Lat: -6.2},
	}
}

func TestBuildDatasetThirtyMinuteKeepsFirstNonMissing(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := []models.Measurement{
		{SensorID: "a", Datetime: t0, PM25: 10, Valid: true},
		{SensorID: "a", Datetime: t0.Add(time.Minute), PM25: 99, Valid: true}, // rounds to same slot
	}
	labels := map[string]models.Cadence{"a": models.CadenceThirty}
	d := BuildDataset(ms, sensors(), labels, 30*time.Minute)

	v, ok := d.Sensors["a"].Get(t0)
	require.True(t, ok)
	assert.Equal(t, 10.0, v, "first non-missing reading in a slot wins, later duplicates are dropped")
}

func TestBuildDatasetHourlyAveragesNonNullReadings(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := []models.Measurement{
		{SensorID: "a", Datetime: t0, PM25: 10, Valid: true},
		// 23:30 the previous day rounds half-up into the 00:00 slot.
		{SensorID: "a", Datetime: t0.Add(-30 * time.Minute), PM25: 20, Valid: true},
	}
	labels := map[string]models.Cadence{"a": models.CadenceThirty}
	d := BuildDataset(ms, sensors(), labels, time.Hour)

	v, ok := d.Sensors["a"].Get(t0)
	require.True(t, ok)
	assert.Equal(t, 15.0, v)
}

func TestBuildDatasetSkipsUnknownSensor(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := []models.Measurement{
		{SensorID: "ghost", Datetime: t0, PM25: 10, Valid: true},
	}
	d := BuildDataset(ms, sensors(), map[string]models.Cadence{}, 30*time.Minute)
	assert.Empty(t, d.Sensors)
	assert.Empty(t, d.Axis)
}

func TestBuildDatasetAxisSpansFullRange(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := []models.Measurement{
		{SensorID: "a", Datetime: t0, PM25: 10, Valid: true},
		{SensorID: "a", Datetime: t0.Add(time.Hour), PM25: 20, Valid: true},
	}
	labels := map[string]models.Cadence{"a": models.CadenceThirty}
	d := BuildDataset(ms, sensors(), labels, 30*time.Minute)
	assert.Equal(t, 3, len(d.Axis)) // 00:00, 00:30, 01:00
}

func TestDatasetActiveCountCountsOnlyValidSlots(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := &Dataset{
		Axis: []time.Time{t0},
		Sensors: map[string]*Series{
			"a": {SensorID: "a", Values: map[time.Time]float64{t0: 1}},
			"b": {SensorID: "b", Values: map[time.Time]float64{}},
		},
	}
	assert.Equal(t, 1, d.ActiveCount(t0))
}
