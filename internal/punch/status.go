package punch

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Status is the server-owned attendance state.
type Status string

const (
	StatusNotPunchedIn Status = "not_punched_in"
	StatusCheckedIn    Status = "checked_in"
	StatusCheckedOut   Status = "checked_out"
)

// Type is the direction of a single punch.
type Type string

const (
	TypeCheckIn  Type = "check_in"
	TypeCheckOut Type = "check_out"
)

// NextType derives the punch direction from the current status: only a
// checked-in user checks out, everyone else checks in.
func NextType(s Status) Type {
	if s == StatusCheckedIn {
		return TypeCheckOut
	}
	return TypeCheckIn
}

// StatusController tracks the attendance state as the backend reports
// it. The controller never flips state on its own; only a Refetch that
// reaches the server updates the value, so the client can never drift
// ahead of the system of record.
type StatusController struct {
	client Client
	logger *zap.Logger

	mu      sync.RWMutex
	current Status
}

func NewStatusController(client Client, logger ...*zap.Logger) *StatusController {
	l := zap.L().Named("punch.status")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("punch.status")
	}
	return &StatusController{
		client:  client,
		logger:  l,
		current: StatusNotPunchedIn,
	}
}

// Refetch re-queries the backend. On failure the prior status is kept;
// the next refetch corrects it.
func (c *StatusController) Refetch(ctx context.Context) error {
	status, err := c.client.CurrentStatus(ctx)
	if err != nil {
		c.logger.Warn("status refetch failed, keeping prior status", zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.current = status
	c.mu.Unlock()

	c.logger.Debug("status refetched", zap.String("status", string(status)))
	return nil
}

func (c *StatusController) Current() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// NextType returns the direction the next punch should take.
func (c *StatusController) NextType() Type {
	return NextType(c.Current())
}
