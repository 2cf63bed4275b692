package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{41.0082, 28.9784},
		{-33.8688, 151.2093},
		{89.9, -179.9},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, DistanceKm(p[0], p[1], p[0], p[1]))
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	a := [2]float64{48.8566, 2.3522}    // Paris
	b := [2]float64{51.5074, -0.1278}   // London
	c := [2]float64{-23.5505, -46.6333} // São Paulo

	assert.Equal(t, DistanceKm(a[0], a[1], b[0], b[1]), DistanceKm(b[0], b[1], a[0], a[1]))
	assert.Equal(t, DistanceKm(a[0], a[1], c[0], c[1]), DistanceKm(c[0], c[1], a[0], a[1]))
}

func TestDistanceKmKnownDistances(t *testing.T) {
	// Paris to London is roughly 344 km great-circle.
	got := DistanceKm(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344, got, 5)

	// One degree of latitude is 2*pi*R/360.
	got = DistanceKm(10, 20, 11, 20)
	assert.InDelta(t, 111.195, got, 0.01)
}

func TestDistanceKmNonNegative(t *testing.T) {
	got := DistanceKm(-41.2865, 174.7762, 40.7128, -74.006)
	assert.Greater(t, got, 0.0)
}
