package geo

import "math"

// Coordinate is a single WGS 84 reading in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Round6 truncates a coordinate to 6 decimal places, the precision the
// punch payload carries on the wire.
func Round6(c Coordinate) Coordinate {
	return Coordinate{
		Latitude:  round6(c.Latitude),
		Longitude: round6(c.Longitude),
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// IsZero reports whether the coordinate is the unset origin value.
func (c Coordinate) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}
