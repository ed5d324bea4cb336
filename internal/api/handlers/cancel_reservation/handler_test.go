package cancel_reservation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atsuki-sakai/salon-system-sub000/internal/api/middleware"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/reservations"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/reservations/models"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/logger"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/ptr"
)

type fakeService struct {
	got *models.CancelReservationRequest
	err error
}

func (f *fakeService) Cancel(_ context.Context, _ int64, req *models.CancelReservationRequest) error {
	f.got = req
	return f.err
}

func patch(svc *fakeService, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/reservations/{reservationId}/cancel", NewHandler(svc, logger.NewNop()).Handle)

	req := httptest.NewRequest(http.MethodPatch, "/reservations/42/cancel", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), 5))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_WithReason(t *testing.T) {
	svc := &fakeService{}

	rec := patch(svc, `{"cancellationReason":"fever"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(5), svc.got.UserID)
	assert.Equal(t, "fever", ptr.Deref(svc.got.CancellationReason, ""))
}

func TestHandle_EmptyBody(t *testing.T) {
	svc := &fakeService{}

	rec := patch(svc, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, svc.got.CancellationReason)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{err: reservations.ErrReservationNotFound, wantStatus: http.StatusNotFound},
		{err: reservations.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{err: reservations.ErrCannotCancel, wantStatus: http.StatusConflict},
		{err: reservations.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{err: reservations.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := patch(&fakeService{err: tt.err}, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
