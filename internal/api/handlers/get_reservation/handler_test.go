package get_reservation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/atsuki-sakai/salon-system-sub000/internal/api/middleware"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/reservations"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/reservations/models"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/logger"
)

type fakeService struct {
	err error
}

func (f *fakeService) GetByID(_ context.Context, id int64, _ int64) (*models.ReservationResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReservationResponse{ID: id}, nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
	}{
		{name: "ok", path: "/reservations/42", wantStatus: http.StatusOK},
		{name: "bad id", path: "/reservations/abc", wantStatus: http.StatusBadRequest},
		{name: "not found", path: "/reservations/42", err: reservations.ErrReservationNotFound, wantStatus: http.StatusNotFound},
		{name: "forbidden", path: "/reservations/42", err: reservations.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "internal", path: "/reservations/42", err: reservations.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mux.NewRouter()
			r.HandleFunc("/reservations/{reservationId}", NewHandler(&fakeService{err: tt.err}, logger.NewNop()).Handle)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req = req.WithContext(middleware.WithUserID(req.Context(), 5))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
