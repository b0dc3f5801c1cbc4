package gps

import (
	"context"
	"errors"
	"time"

	"geopunch/internal/geo"
)

// ErrNotSupported is reported when no location capability is available
// on the device running the agent.
var ErrNotSupported = errors.New("geolocation not supported")

// Position is a raw fix from the location capability.
type Position struct {
	Latitude  float64
	Longitude float64
	AccuracyM float64
	At        time.Time
}

//go:generate mockgen -source=provider.go -destination=mock/provider_mock.go -package=mock
// Provider abstracts the platform geolocation capability. A call is
// expected to honour ctx cancellation; the sampler wraps every call in
// its own timeout.
type Provider interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// StaticProvider always returns a fixed position. Used for development
// boxes without a GPS device.
type StaticProvider struct {
	Position Position
}

func (p StaticProvider) CurrentPosition(ctx context.Context) (Position, error) {
	pos := p.Position
	pos.At = time.Now().UTC()
	return pos, nil
}

// Status is the complete output of one sampling cycle. It is replaced
// wholesale every cycle, never partially updated. A nil AccuracyM is
// the "unknown" sentinel: the device could not supply a position.
type Status struct {
	Latitude  float64
	Longitude float64
	AccuracyM *float64
	Err       string
	SampledAt time.Time
}

// HasFix reports whether this cycle produced a usable device position.
func (s Status) HasFix() bool {
	return s.AccuracyM != nil
}

// Coordinate returns the reading rounded to the 6-decimal wire
// precision.
func (s Status) Coordinate() geo.Coordinate {
	return geo.Round6(geo.Coordinate{Latitude: s.Latitude, Longitude: s.Longitude})
}
