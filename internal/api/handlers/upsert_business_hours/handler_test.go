package upsert_business_hours

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atsuki-sakai/salon-system-sub000/internal/api/middleware"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule/models"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/logger"
)

type fakeService struct {
	got *models.UpsertBusinessHoursRequest
	err error
}

func (f *fakeService) UpsertBusinessHours(_ context.Context, req *models.UpsertBusinessHoursRequest) (*models.BusinessHoursResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BusinessHoursResponse{
		ID:        9,
		SalonID:   req.SalonID,
		Weekday:   req.Weekday,
		OpenTime:  req.OpenTime.String(),
		CloseTime: req.CloseTime.String(),
	}, nil
}

func put(svc *fakeService, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/salons/{salonId}/business-hours", NewHandler(svc, logger.NewNop()).Handle)

	req := httptest.NewRequest(http.MethodPut, "/salons/1/business-hours", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), 100))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	svc := &fakeService{}

	rec := put(svc, `{"weekday":2,"openTime":"09:00","closeTime":"18:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, svc.got)
	assert.Equal(t, int64(1), svc.got.SalonID)
	assert.Equal(t, int64(100), svc.got.UserID)
	require.NotNil(t, svc.got.Weekday)
	assert.Equal(t, 2, *svc.got.Weekday)

	var resp models.BusinessHoursResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(9), resp.ID)
	assert.Equal(t, "09:00", resp.OpenTime)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "malformed body", body: `{"openTime":`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"opensAt":"09:00"}`, wantStatus: http.StatusBadRequest},
		{name: "validation", body: `{}`, err: schedule.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "salon missing", body: `{}`, err: schedule.ErrSalonNotFound, wantStatus: http.StatusNotFound},
		{name: "not a manager", body: `{}`, err: schedule.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "internal", body: `{}`, err: schedule.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := put(&fakeService{err: tt.err}, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
