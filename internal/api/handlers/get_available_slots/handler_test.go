package get_available_slots

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	getAvailableSlots "github.com/atsuki-sakai/salon-system-sub000/internal/usecase/get_available_slots"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/logger"
)

type fakeUseCase struct {
	got *getAvailableSlots.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &getAvailableSlots.Response{
		Date:            req.Date,
		SalonID:         req.SalonID,
		StaffID:         req.StaffID,
		MenuID:          req.MenuID,
		DurationMinutes: 30,
		Slots: []getAvailableSlots.Slot{
			{StartMinute: 540, EndMinute: 570, StartTime: "09:00", EndTime: "09:30"},
		},
	}, nil
}

func serve(uc *fakeUseCase, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/salons/{salonId}/staff/{staffId}/available-slots", NewHandler(uc, logger.NewNop()).Handle)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle_Success(t *testing.T) {
	uc := &fakeUseCase{}

	rec := serve(uc, "/salons/1/staff/7/available-slots?menuId=3&date=2025-03-11")
	require.Equal(t, http.StatusOK, rec.Code)

	var body AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-03-11", body.Date)
	require.Len(t, body.Slots, 1)
	assert.Equal(t, AvailableSlot{StartTime: "09:00", EndTime: "09:30", StartMinute: 540, EndMinute: 570}, body.Slots[0])

	assert.Equal(t, int64(7), uc.got.StaffID)
	assert.Equal(t, int64(3), uc.got.MenuID)
}

func TestHandle_BadRequest(t *testing.T) {
	tests := []string{
		"/salons/x/staff/7/available-slots?menuId=3&date=2025-03-11",
		"/salons/1/staff/0/available-slots?menuId=3&date=2025-03-11",
		"/salons/1/staff/7/available-slots?date=2025-03-11",
		"/salons/1/staff/7/available-slots?menuId=abc&date=2025-03-11",
		"/salons/1/staff/7/available-slots?menuId=3",
		"/salons/1/staff/7/available-slots?menuId=3&date=11.03.2025",
	}

	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			uc := &fakeUseCase{}
			rec := serve(uc, target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, uc.got)
		})
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{err: getAvailableSlots.ErrStaffNotFound, wantStatus: http.StatusNotFound},
		{err: getAvailableSlots.ErrMenuNotFound, wantStatus: http.StatusNotFound},
		{err: getAvailableSlots.ErrInvalidDate, wantStatus: http.StatusBadRequest},
		{err: getAvailableSlots.ErrDateTooFarInFuture, wantStatus: http.StatusBadRequest},
		{err: fmt.Errorf("%w: overlap", getAvailableSlots.ErrInvalidBookingState), wantStatus: http.StatusServiceUnavailable},
		{err: getAvailableSlots.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := serve(&fakeUseCase{err: tt.err}, "/salons/1/staff/7/available-slots?menuId=3&date=2025-03-11")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
