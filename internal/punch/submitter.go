package punch

import (
	"context"
	"errors"
	"strings"
	"time"

	"geopunch/internal/geo"
	"geopunch/internal/gps"

	"go.uber.org/zap"
)

var (
	// ErrLocationRequired rejects a punch attempt whose GPS status
	// carries the accuracy sentinel. No network call is made.
	ErrLocationRequired = errors.New("GPS location required for attendance")

	// ErrReasonRequired rejects a geofence-violating punch without a
	// justification. No network call is made.
	ErrReasonRequired = errors.New("a reason is required when punching outside the geofence")
)

// Biometric is a placeholder carried in the punch record. Face capture
// is not wired in this milestone and the server does not enforce it.
type Biometric struct {
	Verified   bool    `json:"verified"`
	Similarity float64 `json:"similarity"`
}

// CaptureSession is an active biometric capture. It is torn down after
// every submission attempt, success or failure.
type CaptureSession interface {
	Teardown()
}

// Record is the fully assembled punch. It is built, submitted and
// discarded; the server is the system of record.
type Record struct {
	Type              Type           `json:"type"`
	Timestamp         string         `json:"timestamp"`
	Location          geo.Coordinate `json:"location"`
	DistanceM         float64        `json:"distance"`
	Biometric         Biometric      `json:"biometric"`
	GeofenceViolation bool           `json:"geofenceViolation"`
	ViolationReason   string         `json:"violationReason"`
}

// Attempt is everything the punch screen knows at the moment the user
// presses the button.
type Attempt struct {
	GPS             gps.Status
	DistanceM       float64
	Violation       bool
	ViolationReason string
	Capture         CaptureSession
	Biometric       Biometric
}

// Submitter validates, assembles and submits punch attempts.
type Submitter struct {
	client Client
	status *StatusController
	userID string
	logger *zap.Logger
}

func NewSubmitter(client Client, status *StatusController, userID string, logger ...*zap.Logger) *Submitter {
	l := zap.L().Named("punch.submitter")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("punch.submitter")
	}
	return &Submitter{
		client: client,
		status: status,
		userID: userID,
		logger: l,
	}
}

// Submit runs the preconditions, builds the record and calls the
// endpoint matching the derived punch type. On success the status
// controller refetches from the server; on failure nothing is mutated
// and the server message is returned verbatim, so retry is simply
// pressing the button again.
func (s *Submitter) Submit(ctx context.Context, att Attempt) (Record, error) {
	if att.Capture != nil {
		defer att.Capture.Teardown()
	}

	if !att.GPS.HasFix() {
		return Record{}, ErrLocationRequired
	}
	if att.Violation && strings.TrimSpace(att.ViolationReason) == "" {
		return Record{}, ErrReasonRequired
	}

	typ := s.status.NextType()
	rec := Record{
		Type:              typ,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		Location:          att.GPS.Coordinate(),
		DistanceM:         att.DistanceM,
		Biometric:         att.Biometric,
		GeofenceViolation: att.Violation,
		ViolationReason:   strings.TrimSpace(att.ViolationReason),
	}

	payload := Payload{
		Location: rec.Location,
		User:     UserRef{ID: s.userID},
	}

	var err error
	if typ == TypeCheckIn {
		err = s.client.PunchIn(ctx, payload)
	} else {
		err = s.client.PunchOut(ctx, payload)
	}
	if err != nil {
		s.logger.Warn("punch submission failed",
			zap.String("type", string(typ)),
			zap.Error(err),
		)
		return Record{}, err
	}

	s.logger.Info("punch submitted",
		zap.String("type", string(typ)),
		zap.Float64("distance_m", rec.DistanceM),
		zap.Bool("geofence_violation", rec.GeofenceViolation),
	)

	// Server confirmation drives the state change. A failed refetch
	// keeps the prior status until the next attempt corrects it.
	if refErr := s.status.Refetch(ctx); refErr != nil {
		s.logger.Warn("post-punch status refetch failed", zap.Error(refErr))
	}

	return rec, nil
}
