package idw

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakartapm25/kelurahan-engine/pkg/geoutil"
)

func sampleSensors() []ActiveSensor {
	return []ActiveSensor{
		{SensorID: "a", Lon: 106.80, Lat: -6.20, PM25: 10},
		{SensorID: "b", Lon: 106.82, Lat: -6.22, PM25: 20},
		{SensorID: "c", Lon: 106.90, Lat: -6.30, PM25: 50},
		{SensorID: "d", Lon: 107.50, Lat: -6.90, PM25: 100},
	}
}

func TestPredictExactHitReturnsSensorValue(t *testing.T) {
	idx := BuildIndex(sampleSensors())
	pred, ok := idx.Predict(106.80, -6.20, 3, 2.0)
	require.True(t, ok)
	assert.Equal(t, 10.0, pred.Value)
	assert.Equal(t, []string{"a"}, pred.ContributingIDs)
}

func TestPredictIsBoundedByNeighborValues(t *testing.T) {
	idx := BuildIndex(sampleSensors())
	pred, ok := idx.Predict(106.81, -6.21, 3, 2.0)
	require.True(t, ok)
	assert.GreaterOrEqual(t, pred.Value, 10.0)
	assert.LessOrEqual(t, pred.Value, 50.0)
}

func TestPredictUsesAtMostKContributors(t *testing.T) {
	idx := BuildIndex(sampleSensors())
	pred, ok := idx.Predict(106.85, -6.25, 2, 2.0)
	require.True(t, ok)
	assert.LessOrEqual(t, len(pred.ContributingIDs), 2)
}

func TestPredictCloserSensorWeighsMore(t *testing.T) {
	sensors := []ActiveSensor{
		{SensorID: "near", Lon: 106.801, Lat: -6.201, PM25: 100},
		{SensorID: "far", Lon: 106.90, Lat: -6.30, PM25: 0},
	}
	idx := BuildIndex(sensors)
	pred, ok := idx.Predict(106.80, -6.20, 2, 2.0)
	require.True(t, ok)
	assert.Greater(t, pred.Value, 50.0, "the nearer sensor's reading should dominate the weighted average")
}

func TestPredictNoSensorsReturnsFalse(t *testing.T) {
	idx := BuildIndex(nil)
	_, ok := idx.Predict(106.8, -6.2, 5, 2.0)
	assert.False(t, ok)
}

func TestPredictReachesEverySensorWhenBucketsAreSparse(t *testing.T) {
	// Sensors spread far enough apart that the query point's own geohash
	// bucket and its immediate neighbors hold only one of them. With k equal to
	// the sensor count, candidates returns every sensor without a ring search,
	// so all of them contribute however far away their buckets are.
	sensors := []ActiveSensor{
		{SensorID: "a", Lon: 106.80, Lat: -6.20, PM25: 5},
		{SensorID: "b", Lon: 110.00, Lat: -7.50, PM25: 80},
		{SensorID: "c", Lon: 95.00, Lat: 5.00, PM25: 40},
	}
	idx := BuildIndex(sensors)
	pred, ok := idx.Predict(106.81, -6.21, 3, 2.0)
	require.True(t, ok)
	assert.Len(t, pred.ContributingIDs, 3, "all sensors should be reachable regardless of bucket distance")
}

func TestPredictMatchesBruteForceKNearestAcrossManySensors(t *testing.T) {
	// A denser, non-uniform scatter across the bounding box: some sensors
	// share the query point's own geohash bucket, some sit in immediately
	// neighboring buckets, and some are two or more buckets away. Regardless
	// of that layout, Predict must return exactly the true k nearest sensors
	// by planar distance — the ring search is a performance pre-filter, never
	// an approximation.
	lons := []float64{106.05, 106.15, 106.25, 106.35, 106.45, 106.55, 106.65, 106.75, 106.85, 106.95}
	lats := []float64{-6.95, -6.75, -6.55, -6.35, -6.15, -5.95, -5.75, -5.55}

	var sensors []ActiveSensor
	id := 0
	for _, lon := range lons {
		for _, lat := range lats {
			sensors = append(sensors, ActiveSensor{
				SensorID: fmt.Sprintf("s%02d", id),
				Lon:      lon,
				Lat:      lat,
				PM25:     float64(id),
			})
			id++
		}
	}

	idx := BuildIndex(sensors)
	const k = 5
	const queryLon, queryLat = 106.43, -6.18

	pred, ok := idx.Predict(queryLon, queryLat, k, 2.0)
	require.True(t, ok)
	require.Len(t, pred.ContributingIDs, k)

	type distPair struct {
		id   string
		dist float64
	}
	all := make([]distPair, len(sensors))
	for i, s := range sensors {
		all[i] = distPair{id: s.SensorID, dist: geoutil.Planar(queryLon, queryLat, s.Lon, s.Lat)}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].dist < all[j].dist })

	expected := make(map[string]bool, k)
	for i := 0; i < k; i++ {
		expected[all[i].id] = true
	}

	for _, gotID := range pred.ContributingIDs {
		assert.True(t, expected[gotID], "contributing sensor %s is not among the true %d nearest", gotID, k)
	}
}
