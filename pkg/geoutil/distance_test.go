package geoutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanarZeroAtSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Planar(106.8, -6.2, 106.8, -6.2))
}

func TestPlanarPythagorean(t *testing.T) {
	got := Planar(0, 0, 3, 4)
	assert.InDelta(t, 5.0, got, 1e-9)
}

func TestHaversineZeroAtSamePoint(t *testing.T) {
	assert.InDelta(t, 0.0, HaversineKm(106.8, -6.2, 106.8, -6.2), 1e-9)
}

func TestHaversineKnownDistance(t *testing.T) {
	// Jakarta (Monas) to Bandung (Gedung Sate), roughly 115 km apart.
	got := HaversineKm(106.8272, -6.1754, 107.6191, -6.9024)
	assert.Greater(t, got, 100.0)
	assert.Less(t, got, 135.0)
}

func TestHaversineSymmetric(t *testing.T) {
	a := HaversineKm(106.8, -6.2, 107.0, -6.3)
	b := HaversineKm(107.0, -6.3, 106.8, -6.2)
	assert.InDelta(t, a, b, 1e-9)
}

func TestHaversineNeverNaN(t *testing.T) {
	got := HaversineKm(106.8, -6.2, 106.8, -6.2)
	assert.False(t, math.IsNaN(got))
}
