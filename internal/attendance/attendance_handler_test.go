package attendance_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"geopunch/internal/attendance"
	"geopunch/internal/punch"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	punchInFn  func(ctx context.Context, companyID, employeeID string, req attendance.PunchRequest) (attendance.PunchResponse, error)
	punchOutFn func(ctx context.Context, companyID, employeeID string, req attendance.PunchRequest) (attendance.PunchResponse, error)
	statusFn   func(ctx context.Context, companyID, employeeID string) (attendance.StatusResponse, error)
	getAllFn   func(ctx context.Context, companyID, actorID string, canReadAll bool) ([]attendance.PunchResponse, error)
}

func (f *fakeService) PunchIn(ctx context.Context, companyID, employeeID string, req attendance.PunchRequest) (attendance.PunchResponse, error) {
	return f.punchInFn(ctx, companyID, employeeID, req)
}
func (f *fakeService) PunchOut(ctx context.Context, companyID, employeeID string, req attendance.PunchRequest) (attendance.PunchResponse, error) {
	return f.punchOutFn(ctx, companyID, employeeID, req)
}
func (f *fakeService) CurrentStatus(ctx context.Context, companyID, employeeID string) (attendance.StatusResponse, error) {
	return f.statusFn(ctx, companyID, employeeID)
}
func (f *fakeService) GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]attendance.PunchResponse, error) {
	return f.getAllFn(ctx, companyID, actorID, canReadAll)
}

func TestHandler_PunchIn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	svc := &fakeService{
		punchInFn: func(ctx context.Context, cid, eid string, req attendance.PunchRequest) (attendance.PunchResponse, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, employeeID, eid)
			assert.Equal(t, 20.2975, req.Location.Latitude)
			assert.Equal(t, employeeID, req.User.ID)
			return attendance.PunchResponse{
				ID:     uuid.New().String(),
				Type:   string(punch.TypeCheckIn),
				Status: string(punch.StatusCheckedIn),
			}, nil
		},
	}

	h := attendance.NewHandler(svc)

	body := `{"location":{"latitude":20.2975,"longitude":85.8260},"user":{"id":"` + employeeID + `"}}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("company_id", companyID)
	c.Set("employee_id", employeeID)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/punch-in", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.PunchIn(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
	assert.Contains(t, w.Body.String(), "checked_in")
}

func TestHandler_PunchIn_MissingUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		punchInFn: func(ctx context.Context, cid, eid string, req attendance.PunchRequest) (attendance.PunchResponse, error) {
			t.Fatal("service must not be called when binding fails")
			return attendance.PunchResponse{}, nil
		},
	}

	h := attendance.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("company_id", uuid.New().String())
	c.Set("employee_id", uuid.New().String())
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/punch-in", strings.NewReader(`{"location":{"latitude":1,"longitude":1}}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.PunchIn(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_StatusAndGetAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	svc := &fakeService{
		statusFn: func(ctx context.Context, cid, eid string) (attendance.StatusResponse, error) {
			return attendance.StatusResponse{Status: string(punch.StatusCheckedOut)}, nil
		},
		getAllFn: func(ctx context.Context, cid, actorID string, canReadAll bool) ([]attendance.PunchResponse, error) {
			assert.False(t, canReadAll)
			return []attendance.PunchResponse{{ID: uuid.New().String()}, {ID: uuid.New().String()}}, nil
		},
	}

	h := attendance.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("company_id", companyID)
	c.Set("employee_id", employeeID)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendances/status", nil)
	h.Status(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "checked_out")

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Set("company_id", companyID)
	c2.Set("employee_id", employeeID)
	c2.Set("role", "EMPLOYEE")
	c2.Request = httptest.NewRequest(http.MethodGet, "/attendances?page=1&page_size=1", nil)
	h.GetAll(c2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), "\"meta\"")
}
