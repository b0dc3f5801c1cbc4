package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	attendanceerrors "geopunch/internal/attendance/errors"
	"geopunch/internal/events"
	"geopunch/internal/geo"
	kafkaoutbox "geopunch/internal/messaging/kafka"
	"geopunch/internal/punch"
	"geopunch/internal/shared/contextutil"
	"geopunch/internal/worksite"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSource = "AGENT"

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	PunchIn(ctx context.Context, companyID, employeeID string, req PunchRequest) (PunchResponse, error)
	PunchOut(ctx context.Context, companyID, employeeID string, req PunchRequest) (PunchResponse, error)
	CurrentStatus(ctx context.Context, companyID, employeeID string) (StatusResponse, error)
	GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]PunchResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	outbox    kafkaoutbox.OutboxRepository
	worksites worksite.Service
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outbox kafkaoutbox.OutboxRepository,
	worksites worksite.Service,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		outbox:    outbox,
		worksites: worksites,
		logger:    l,
	}
}

func (s *service) PunchIn(ctx context.Context, companyID, employeeID string, req PunchRequest) (PunchResponse, error) {
	return s.punch(ctx, companyID, employeeID, punch.TypeCheckIn, req)
}

func (s *service) PunchOut(ctx context.Context, companyID, employeeID string, req PunchRequest) (PunchResponse, error) {
	return s.punch(ctx, companyID, employeeID, punch.TypeCheckOut, req)
}

func (s *service) punch(ctx context.Context, companyID, employeeID string, punchType punch.Type, req PunchRequest) (PunchResponse, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return PunchResponse{}, attendanceerrors.ErrInvalidCompanyID
	}
	eid, err := uuid.Parse(employeeID)
	if err != nil {
		return PunchResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PunchResponse{}, err
	}
	defer tx.Rollback()

	qtx, err := s.repo.WithTx(tx)
	if err != nil {
		return PunchResponse{}, err
	}

	latest, err := qtx.FindLatestByEmployee(ctx, companyID, employeeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return PunchResponse{}, mapRepositoryError(err)
	}

	checkedIn := latest != nil && latest.Type == string(punch.TypeCheckIn)
	if punchType == punch.TypeCheckIn && checkedIn {
		return PunchResponse{}, attendanceerrors.ErrAlreadyCheckedIn
	}
	if punchType == punch.TypeCheckOut && !checkedIn {
		return PunchResponse{}, attendanceerrors.ErrNotCheckedIn
	}

	loc := geo.Round6(geo.Coordinate{
		Latitude:  req.Location.Latitude,
		Longitude: req.Location.Longitude,
	})

	row := &Punch{
		ID:         uuid.New(),
		CompanyID:  cid,
		EmployeeID: eid,
		Type:       string(punchType),
		PunchedAt:  time.Now().UTC(),
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		AccuracyM:  req.AccuracyM,
		Source:     req.Source,
	}
	if row.Source == "" {
		row.Source = defaultSource
	}
	if rid := contextutil.GetRequestID(ctx); rid != "" {
		row.RequestID = &rid
	}

	// The client gates on the geofence before submitting; the server
	// recomputes from its own worksite settings and records the result
	// so the log cannot be trusted less than the client.
	gf, err := s.worksites.GetGeofence(ctx, companyID)
	if err != nil {
		return PunchResponse{}, err
	}
	if gf.Configured {
		dist := geo.DistanceMeters(gf.Office, loc)
		row.DistanceM = &dist
		row.GeofenceViolation = geo.Violates(dist, gf.RadiusM)
		if row.GeofenceViolation {
			row.ViolationReason = req.ViolationReason
		}
	}

	if err := qtx.Create(ctx, row); err != nil {
		return PunchResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueuePunchedEvent(ctx, tx, row); err != nil {
		return PunchResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PunchResponse{}, err
	}

	s.logger.Info("punch accepted",
		zap.String("punch_id", row.ID.String()),
		zap.String("employee_id", employeeID),
		zap.String("type", row.Type),
		zap.Bool("geofence_violation", row.GeofenceViolation),
	)

	return mapToResponse(*row), nil
}

func (s *service) enqueuePunchedEvent(ctx context.Context, tx *sql.Tx, row *Punch) error {
	event := events.AttendancePunchedEvent{
		EventType:         "attendance.punched",
		RequestID:         contextutil.GetRequestID(ctx),
		PunchID:           row.ID.String(),
		EmployeeID:        row.EmployeeID.String(),
		CompanyID:         row.CompanyID.String(),
		PunchType:         row.Type,
		GeofenceViolation: row.GeofenceViolation,
		OccurredAt:        row.PunchedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	outboxEvent := kafkaoutbox.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     event.RequestID,
		AggregateType: "attendance_punch",
		AggregateID:   event.PunchID,
		EventType:     event.EventType,
		Topic:         events.AttendancePunchedTopic,
		Payload:       payload,
		Status:        kafkaoutbox.OutboxStatusPending,
	}
	if err := kafkaoutbox.ValidateOutboxEvent(outboxEvent); err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, outboxEvent)
}

func (s *service) CurrentStatus(ctx context.Context, companyID, employeeID string) (StatusResponse, error) {
	latest, err := s.repo.FindLatestByEmployee(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatusResponse{Status: string(punch.StatusNotPunchedIn)}, nil
		}
		return StatusResponse{}, err
	}
	return StatusResponse{Status: string(statusOf(latest))}, nil
}

func statusOf(latest *Punch) punch.Status {
	if latest == nil {
		return punch.StatusNotPunchedIn
	}
	if latest.Type == string(punch.TypeCheckIn) {
		return punch.StatusCheckedIn
	}
	return punch.StatusCheckedOut
}

func (s *service) GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]PunchResponse, error) {
	var (
		rows []Punch
		err  error
	)
	if canReadAll {
		rows, err = s.repo.FindAllByCompany(ctx, companyID)
	} else {
		if _, parseErr := uuid.Parse(actorID); parseErr != nil {
			return nil, attendanceerrors.ErrInvalidEmployeeID
		}
		rows, err = s.repo.FindAllByCompanyAndEmployee(ctx, companyID, actorID)
	}
	if err != nil {
		return nil, err
	}
	res := make([]PunchResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func mapToResponse(p Punch) PunchResponse {
	resp := PunchResponse{
		ID:                p.ID.String(),
		CompanyID:         p.CompanyID.String(),
		EmployeeID:        p.EmployeeID.String(),
		Type:              p.Type,
		PunchedAt:         p.PunchedAt.Format(time.RFC3339),
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		AccuracyM:         p.AccuracyM,
		DistanceM:         p.DistanceM,
		GeofenceViolation: p.GeofenceViolation,
		ViolationReason:   p.ViolationReason,
		Source:            p.Source,
		Status:            string(statusOf(&p)),
	}
	if p.DistanceM != nil {
		resp.FormattedDistance = geo.FormatDistance(*p.DistanceM)
	}
	return resp
}
