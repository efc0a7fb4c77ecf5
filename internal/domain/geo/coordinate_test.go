package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	minneapolis55408 = Coordinate{Latitude: 44.9469, Longitude: -93.2913}
	minneapolis55406 = Coordinate{Latitude: 44.9384, Longitude: -93.2216}
	rochester55901   = Coordinate{Latitude: 44.0654, Longitude: -92.5388}
)

func TestDistanceMiles_Symmetric(t *testing.T) {
	pairs := [][2]Coordinate{
		{minneapolis55408, minneapolis55406},
		{minneapolis55408, rochester55901},
		{{Latitude: 0, Longitude: 0}, {Latitude: -33.87, Longitude: 151.21}},
	}

	for _, p := range pairs {
		assert.InDelta(t, DistanceMiles(p[0], p[1]), DistanceMiles(p[1], p[0]), 1e-9)
	}
}

func TestDistanceMiles_ZeroForSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, DistanceMiles(minneapolis55408, minneapolis55408))
	assert.Equal(t, 0.0, DistanceMiles(Coordinate{}, Coordinate{}))
}

func TestDistanceMiles_KnownDistances(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Coordinate
		expected float64
		delta    float64
	}{
		{
			name:     "neighbouring Minneapolis zipcodes",
			a:        minneapolis55408,
			b:        minneapolis55406,
			expected: 3.5,
			delta:    0.3,
		},
		{
			name:     "Minneapolis to Rochester",
			a:        minneapolis55408,
			b:        rochester55901,
			expected: 72,
			delta:    4,
		},
		{
			name:     "one degree of latitude",
			a:        Coordinate{Latitude: 0, Longitude: 0},
			b:        Coordinate{Latitude: 1, Longitude: 0},
			expected: 69.1,
			delta:    0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DistanceMiles(tt.a, tt.b), tt.delta)
		})
	}
}

func TestWithinRadius(t *testing.T) {
	d := DistanceMiles(minneapolis55408, minneapolis55406)

	assert.True(t, WithinRadius(d, SearchRadiusMiles))
	assert.False(t, WithinRadius(d, 1))
	assert.True(t, WithinRadius(10, 10), "boundary is inclusive")
	assert.False(t, WithinRadius(10.0001, 10))
}

func TestRoundMiles(t *testing.T) {
	assert.Equal(t, 3.5, RoundMiles(3.4567))
	assert.Equal(t, 3.4, RoundMiles(3.4432))
	assert.Equal(t, 0.0, RoundMiles(0.04))
	assert.Equal(t, 10.0, RoundMiles(9.96))
}
