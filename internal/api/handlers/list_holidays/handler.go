package list_holidays

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers"
	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule/models"
)

const (
	msgInvalidSalonID = "некорректный ID салона"
	msgInvalidStaffID = "некорректный ID мастера"
	msgInvalidPeriod  = "некорректный период: ожидаются параметры from и to в формате YYYY-MM-DD"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleSalon GET /api/v1/salons/{salonId}/holidays?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) HandleSalon(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.PathInt64(r, "salonId")
	if err != nil {
		h.logger.Warn("GET /salons/{salonId}/holidays - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	h.list(w, r, "GET /salons/{salonId}/holidays", &models.ListHolidaysRequest{SalonID: salonID})
}

// HandleStaff GET /api/v1/staff/{staffId}/holidays?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) HandleStaff(w http.ResponseWriter, r *http.Request) {
	staffID, err := handlers.PathInt64(r, "staffId")
	if err != nil {
		h.logger.Warn("GET /staff/{staffId}/holidays - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	h.list(w, r, "GET /staff/{staffId}/holidays", &models.ListHolidaysRequest{StaffID: staffID})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, route string, req *models.ListHolidaysRequest) {
	if err := parsePeriod(r.URL.Query(), req); err != nil {
		h.logger.Warn("%s - Invalid period: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	result, err := h.service.ListHolidays(r.Context(), req)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidInput) {
			h.logger.Warn("%s - Invalid period: %v", route, err)
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		h.logger.Error("%s - Failed to list holidays: error=%v", route, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("%s - Holidays retrieved: salon_id=%d, staff_id=%d, count=%d",
		route, req.SalonID, req.StaffID, len(result.Holidays))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// parsePeriod читает обязательный период [from, to]
func parsePeriod(query url.Values, req *models.ListHolidaysRequest) error {
	from, err := domain.ParseDate(query.Get("from"))
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	to, err := domain.ParseDate(query.Get("to"))
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}

	req.From, req.To = from, to
	return nil
}
