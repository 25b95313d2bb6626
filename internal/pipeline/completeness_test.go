package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletenessStageDropsSparseTimestamps(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(30 * time.Minute)
	d := &Dataset{
		Axis: []time.Time{t0, t1},
		Sensors: map[string]*Series{
			"a": {SensorID: "a", Values: map[time.Time]float64{t0: 1, t1: 1}},
			"b": {SensorID: "b", Values: map[time.Time]float64{t0: 1}},
		},
	}
	stage := &CompletenessStage{SMin: 2}
	out, err := stage.Apply(d)
	require.NoError(t, err)

	require.Len(t, out.Axis, 1)
	assert.Equal(t, t0, out.Axis[0])
}

func TestCompletenessStageKeepsAllWhenThresholdIsZero(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := &Dataset{Axis: []time.Time{t0}, Sensors: map[string]*Series{}}
	stage := &CompletenessStage{SMin: 0}
	out, err := stage.Apply(d)
	require.NoError(t, err)
	assert.Len(t, out.Axis, 1)
}

func TestActiveCountsCoversEveryAxisTimestamp(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(30 * time.Minute)
	d := &Dataset{
		Axis: []time.Time{t0, t1},
		Sensors: map[string]*Series{
			"a": {SensorID: "a", Values: map[time.Time]float64{t0: 1}},
		},
	}
	counts := ActiveCounts(d)
	assert.Equal(t, 1, counts[t0])
	assert.Equal(t, 0, counts[t1])
}
