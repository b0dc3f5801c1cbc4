package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	attendanceerrors "geopunch/internal/attendance/errors"
	"geopunch/internal/events"
	"geopunch/internal/geo"
	kafkaoutbox "geopunch/internal/messaging/kafka"
	"geopunch/internal/punch"
	"geopunch/internal/worksite"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeRepo struct {
	punches []Punch
}

func (f *fakeRepo) WithTx(tx *sql.Tx) (Repository, error) { return f, nil }

func (f *fakeRepo) Create(ctx context.Context, p *Punch) error {
	f.punches = append(f.punches, *p)
	return nil
}

func (f *fakeRepo) FindLatestByEmployee(ctx context.Context, companyID, employeeID string) (*Punch, error) {
	for i := len(f.punches) - 1; i >= 0; i-- {
		if f.punches[i].CompanyID.String() == companyID && f.punches[i].EmployeeID.String() == employeeID {
			p := f.punches[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindAllByCompany(ctx context.Context, companyID string) ([]Punch, error) {
	return f.punches, nil
}

func (f *fakeRepo) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]Punch, error) {
	var rows []Punch
	for _, p := range f.punches {
		if p.EmployeeID.String() == employeeID {
			rows = append(rows, p)
		}
	}
	return rows, nil
}

type fakeOutbox struct {
	created []kafkaoutbox.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafkaoutbox.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, e kafkaoutbox.OutboxEvent) error {
	f.created = append(f.created, e)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafkaoutbox.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error           { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id, reason string) error { return nil }

type failingOutbox struct{}

func (f *failingOutbox) WithTx(tx *sql.Tx) kafkaoutbox.OutboxRepository { return f }
func (f *failingOutbox) Create(ctx context.Context, e kafkaoutbox.OutboxEvent) error {
	return assert.AnError
}
func (f *failingOutbox) ListPending(ctx context.Context, limit int) ([]kafkaoutbox.OutboxEvent, error) {
	return nil, assert.AnError
}
func (f *failingOutbox) MarkSent(ctx context.Context, id string) error           { return assert.AnError }
func (f *failingOutbox) MarkFailed(ctx context.Context, id, reason string) error { return assert.AnError }

type fakeWorksites struct {
	geofence worksite.Geofence
}

func (f *fakeWorksites) Get(ctx context.Context, companyID string) (worksite.WorksiteResponse, error) {
	return worksite.WorksiteResponse{}, nil
}
func (f *fakeWorksites) GetGeofence(ctx context.Context, companyID string) (worksite.Geofence, error) {
	return f.geofence, nil
}
func (f *fakeWorksites) Update(ctx context.Context, companyID string, req worksite.UpdateWorksiteRequest) (worksite.WorksiteResponse, error) {
	return worksite.WorksiteResponse{}, nil
}

func officeGeofence() worksite.Geofence {
	return worksite.Geofence{
		Office:     geo.Coordinate{Latitude: 20.2961, Longitude: 85.8245},
		RadiusM:    300,
		Configured: true,
	}
}

func TestService_PunchInAndOut(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	ctx := context.Background()

	repo := &fakeRepo{}
	outbox := &fakeOutbox{}
	svc := NewService(db, repo, outbox, &fakeWorksites{geofence: officeGeofence()})

	req := PunchRequest{
		Location: LocationPayload{Latitude: 20.2975, Longitude: 85.8260},
		User:     UserPayload{ID: employeeID},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()
	inResp, err := svc.PunchIn(ctx, companyID, employeeID, req)
	assert.NoError(t, err)
	assert.Equal(t, string(punch.TypeCheckIn), inResp.Type)
	assert.Equal(t, string(punch.StatusCheckedIn), inResp.Status)
	assert.False(t, inResp.GeofenceViolation)
	if assert.NotNil(t, inResp.DistanceM) {
		assert.InDelta(t, 220.69, *inResp.DistanceM, 0.1)
	}
	assert.Equal(t, "221 m", inResp.FormattedDistance)

	mock.ExpectBegin()
	mock.ExpectCommit()
	outResp, err := svc.PunchOut(ctx, companyID, employeeID, req)
	assert.NoError(t, err)
	assert.Equal(t, string(punch.TypeCheckOut), outResp.Type)
	assert.Equal(t, string(punch.StatusCheckedOut), outResp.Status)

	// Each accepted punch leaves exactly one outbox event behind.
	if assert.Len(t, outbox.created, 2) {
		assert.Equal(t, events.AttendancePunchedTopic, outbox.created[0].Topic)

		var event events.AttendancePunchedEvent
		assert.NoError(t, json.Unmarshal(outbox.created[0].Payload, &event))
		assert.Equal(t, string(punch.TypeCheckIn), event.PunchType)
		assert.Equal(t, employeeID, event.EmployeeID)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_PunchIn_AlreadyCheckedIn(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New()
	employeeID := uuid.New()
	ctx := context.Background()

	repo := &fakeRepo{punches: []Punch{{
		ID:         uuid.New(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		Type:       string(punch.TypeCheckIn),
	}}}
	svc := NewService(db, repo, &fakeOutbox{}, &fakeWorksites{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.PunchIn(ctx, companyID.String(), employeeID.String(), PunchRequest{})
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_PunchOut_NotCheckedIn(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeRepo{}
	svc := NewService(db, repo, &fakeOutbox{}, &fakeWorksites{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.PunchOut(context.Background(), uuid.New().String(), uuid.New().String(), PunchRequest{})
	assert.ErrorIs(t, err, attendanceerrors.ErrNotCheckedIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Punch_RecordsViolation(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	reason := "client visit"

	repo := &fakeRepo{}
	outbox := &fakeOutbox{}
	svc := NewService(db, repo, outbox, &fakeWorksites{geofence: officeGeofence()})

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.PunchIn(context.Background(), companyID, employeeID, PunchRequest{
		Location:        LocationPayload{Latitude: 20.3100, Longitude: 85.8400},
		User:            UserPayload{ID: employeeID},
		ViolationReason: &reason,
	})
	assert.NoError(t, err)
	assert.True(t, resp.GeofenceViolation)
	if assert.NotNil(t, resp.ViolationReason) {
		assert.Equal(t, "client visit", *resp.ViolationReason)
	}

	var event events.AttendancePunchedEvent
	if assert.Len(t, outbox.created, 1) {
		assert.NoError(t, json.Unmarshal(outbox.created[0].Payload, &event))
		assert.True(t, event.GeofenceViolation)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Punch_ViolationWithoutReasonIsRecorded(t *testing.T) {
	// The wire payload carries no mandatory justification; the client
	// gates on it before submitting. The server records the violation
	// and accepts the punch.
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	repo := &fakeRepo{}
	svc := NewService(db, repo, &fakeOutbox{}, &fakeWorksites{geofence: officeGeofence()})

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.PunchIn(context.Background(), companyID, employeeID, PunchRequest{
		Location: LocationPayload{Latitude: 20.3100, Longitude: 85.8400},
		User:     UserPayload{ID: employeeID},
	})
	assert.NoError(t, err)
	assert.True(t, resp.GeofenceViolation)
	assert.Nil(t, resp.ViolationReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Punch_OutboxFailureLeavesNoPunchRow(t *testing.T) {
	// Real repository over sqlmock: the punch insert and the failed
	// outbox write share one transaction, so the rollback undoes both.
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	assert.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "attendance_punches"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "attendance_punches"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectRollback()

	svc := NewService(db, NewRepository(gdb), &failingOutbox{}, &fakeWorksites{geofence: officeGeofence()})

	employeeID := uuid.New().String()
	_, err = svc.PunchIn(context.Background(), uuid.New().String(), employeeID, PunchRequest{
		Location: LocationPayload{Latitude: 20.2975, Longitude: 85.8260},
		User:     UserPayload{ID: employeeID},
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet(), "insert and rollback must land on the same transaction")
}

func TestService_Punch_NoWorksiteConfigured(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeRepo{}
	svc := NewService(db, repo, &fakeOutbox{}, &fakeWorksites{})

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.PunchIn(context.Background(), uuid.New().String(), uuid.New().String(), PunchRequest{
		Location: LocationPayload{Latitude: 1, Longitude: 1},
	})
	assert.NoError(t, err)
	// Without a worksite there is no distance and no violation to flag.
	assert.Nil(t, resp.DistanceM)
	assert.False(t, resp.GeofenceViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CurrentStatus(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New()
	employeeID := uuid.New()

	repo := &fakeRepo{}
	svc := NewService(db, repo, &fakeOutbox{}, &fakeWorksites{})

	resp, err := svc.CurrentStatus(context.Background(), companyID.String(), employeeID.String())
	assert.NoError(t, err)
	assert.Equal(t, string(punch.StatusNotPunchedIn), resp.Status)

	repo.punches = append(repo.punches, Punch{
		ID:         uuid.New(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		Type:       string(punch.TypeCheckIn),
	})
	resp, err = svc.CurrentStatus(context.Background(), companyID.String(), employeeID.String())
	assert.NoError(t, err)
	assert.Equal(t, string(punch.StatusCheckedIn), resp.Status)
}

func TestService_GetAll_Scoping(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New()
	mine := uuid.New()
	other := uuid.New()

	repo := &fakeRepo{punches: []Punch{
		{ID: uuid.New(), CompanyID: companyID, EmployeeID: mine, Type: string(punch.TypeCheckIn)},
		{ID: uuid.New(), CompanyID: companyID, EmployeeID: other, Type: string(punch.TypeCheckIn)},
	}}
	svc := NewService(db, repo, &fakeOutbox{}, &fakeWorksites{})

	all, err := svc.GetAll(context.Background(), companyID.String(), mine.String(), true)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.GetAll(context.Background(), companyID.String(), mine.String(), false)
	assert.NoError(t, err)
	assert.Len(t, own, 1)

	_, err = svc.GetAll(context.Background(), companyID.String(), "not-a-uuid", false)
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidEmployeeID)
}
