package geo

import (
	"fmt"
	"math"
)

// earthRadiusM is the mean Earth radius used by the Haversine formula.
const earthRadiusM = 6371000.0

// DistanceMeters returns the great-circle distance between two
// coordinates using the Haversine formula.
func DistanceMeters(a, b Coordinate) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusM * c
}

// FormatDistance renders a distance for display: whole meters below one
// kilometer, one-decimal kilometers from 1000 m up.
func FormatDistance(meters float64) string {
	m := math.Round(meters)
	if m >= 1000 {
		return fmt.Sprintf("%.1f km", m/1000)
	}
	return fmt.Sprintf("%d m", int64(m))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
