package geo

import "math"

const (
	// EarthRadiusMiles is the mean Earth radius used by the Haversine formula.
	EarthRadiusMiles = 3959.0
	// SearchRadiusMiles is the default inclusion radius for proximity search.
	SearchRadiusMiles = 10.0
)

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMiles returns the great-circle distance between a and b.
func DistanceMiles(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}

// WithinRadius reports whether an unrounded distance falls inside radius.
func WithinRadius(distance, radius float64) bool {
	return distance <= radius
}

// RoundMiles rounds a distance to one decimal place for display.
func RoundMiles(d float64) float64 {
	return math.Round(d*10) / 10
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
