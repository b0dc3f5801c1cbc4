package punch

import (
	"context"

	"geopunch/internal/geo"
)

// UserRef identifies the punching user on the wire.
type UserRef struct {
	ID string `json:"id"`
}

// Payload is the minimal wire contract for both punch endpoints:
// location plus user identifier. Everything else in a Record is
// informative client-side state.
type Payload struct {
	Location geo.Coordinate `json:"location"`
	User     UserRef        `json:"user"`
}

//go:generate mockgen -source=client.go -destination=mock/client_mock.go -package=mock
// Client is the backend attendance API as the punch engine sees it.
type Client interface {
	CurrentStatus(ctx context.Context) (Status, error)
	PunchIn(ctx context.Context, payload Payload) error
	PunchOut(ctx context.Context, payload Payload) error
}
