package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

func halfHourAxis(n int) []time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	axis := make([]time.Time, n)
	for i := range axis {
		axis[i] = base.Add(time.Duration(i) * 30 * time.Minute)
	}
	return axis
}

func TestImputerInactiveReturnsInputUnchanged(t *testing.T) {
	d := &Dataset{Axis: halfHourAxis(3), Sensors: map[string]*Series{}}
	stage := &ImputerStage{Active: false}
	out, err := stage.Apply(d)
	require.NoError(t, err)
	assert.Same(t, d, out)
}

func TestImputerFillsSymmetricGap(t *testing.T) {
	axis := halfHourAxis(3) // 00:00, 00:30, 01:00
	series := &Series{SensorID: "a", Cadence: string(models.CadenceHourly)}
	series.Set(axis[0], 10)
	series.Set(axis[2], 20)
	d := &Dataset{Axis: axis, Sensors: map[string]*Series{"a": series}}

	stage := &ImputerStage{Active: true}
	out, err := stage.Apply(d)
	require.NoError(t, err)

	v, ok := out.Sensors["a"].Get(axis[1])
	require.True(t, ok)
	assert.Equal(t, 15.0, v)
}

func TestImputerLeavesGapWhenOnlyOneFlankPresent(t *testing.T) {
	axis := halfHourAxis(3)
	series := &Series{SensorID: "a", Cadence: string(models.CadenceHourly)}
	series.Set(axis[0], 10) // no reading at axis[2]
	d := &Dataset{Axis: axis, Sensors: map[string]*Series{"a": series}}

	stage := &ImputerStage{Active: true}
	out, err := stage.Apply(d)
	require.NoError(t, err)

	_, ok := out.Sensors["a"].Get(axis[1])
	assert.False(t, ok, "no one-sided fill, no extrapolation")
}

func TestImputerNeverFillsThirtyCadenceSensor(t *testing.T) {
	axis := halfHourAxis(3)
	series := &Series{SensorID: "a", Cadence: string(models.CadenceThirty)}
	series.Set(axis[0], 10)
	series.Set(axis[2], 20)
	d := &Dataset{Axis: axis, Sensors: map[string]*Series{"a": series}}

	stage := &ImputerStage{Active: true}
	out, err := stage.Apply(d)
	require.NoError(t, err)

	_, ok := out.Sensors["a"].Get(axis[1])
	assert.False(t, ok)
}

func TestImputerDoesNotOverwriteExistingReading(t *testing.T) {
	axis := halfHourAxis(3)
	series := &Series{SensorID: "a", Cadence: string(models.CadenceMixed)}
	series.Set(axis[0], 10)
	series.Set(axis[1], 99)
	series.Set(axis[2], 20)
	d := &Dataset{Axis: axis, Sensors: map[string]*Series{"a": series}}

	stage := &ImputerStage{Active: true}
	out, err := stage.Apply(d)
	require.NoError(t, err)

	v, ok := out.Sensors["a"].Get(axis[1])
	require.True(t, ok)
	assert.Equal(t, 99.0, v)
}
