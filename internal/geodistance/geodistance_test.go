package geodistance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMetersZeroForSamePoint(t *testing.T) {
	p := Coordinate{Lat: 25.033, Lon: 121.565}
	assert.InDelta(t, 0.0, HaversineMeters(p, p), 1e-6)
}

func TestHaversineMetersSymmetric(t *testing.T) {
	a := Coordinate{Lat: 25.033, Lon: 121.565}
	b := Coordinate{Lat: 25.050, Lon: 121.580}
	require.InDelta(t, HaversineMeters(a, b), HaversineMeters(b, a), 1e-9)
}

func TestHaversineMetersKnownDistance(t *testing.T) {
	// Roughly 2.3 km between the two Taipei-area points used in spec scenario S1.
	depot := Coordinate{Lat: 25.033, Lon: 121.565}
	s1 := Coordinate{Lat: 25.050, Lon: 121.580}
	d := HaversineMeters(depot, s1)
	assert.InDelta(t, 2300.0, d, 400.0)
}

func TestTravelMinutesDefaultsWhenSpeedNonPositive(t *testing.T) {
	withDefault := TravelMinutes(30000, 0)
	explicit := TravelMinutes(30000, DefaultAverageSpeedKMH)
	assert.Equal(t, explicit, withDefault)
}

func TestBuildMatricesSymmetricZeroDiagonal(t *testing.T) {
	coords := []Coordinate{
		{Lat: 25.033, Lon: 121.565},
		{Lat: 25.050, Lon: 121.580},
		{Lat: 25.010, Lon: 121.500},
	}
	m := BuildMatrices(coords, 30)

	for i := range coords {
		assert.Equal(t, 0, m.DistanceM[i][i])
		assert.Equal(t, 0, m.TimeMin[i][i])
	}
	for i := range coords {
		for j := range coords {
			assert.Equal(t, m.DistanceM[i][j], m.DistanceM[j][i])
			assert.Equal(t, m.TimeMin[i][j], m.TimeMin[j][i])
		}
	}
}
