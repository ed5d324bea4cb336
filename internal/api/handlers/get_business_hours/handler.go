package get_business_hours

import (
	"errors"
	"net/http"

	"github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule"
)

const (
	msgInvalidSalonID = "некорректный ID салона"
	msgSalonNotFound  = "салон не найден"
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

// Handle GET /api/v1/salons/{salonId}/business-hours
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.PathInt64(r, "salonId")
	if err != nil {
		h.logger.Warn("GET /salons/{salonId}/business-hours - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	result, err := h.service.GetBusinessHours(r.Context(), salonID)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("GET /salons/{salonId}/business-hours - Invalid salon ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSalonID)
			return
		case errors.Is(err, schedule.ErrSalonNotFound):
			h.logger.Warn("GET /salons/{salonId}/business-hours - Salon not found: salon_id=%d", salonID)
			handlers.RespondNotFound(w, msgSalonNotFound)
			return
		}
		h.logger.Error("GET /salons/{salonId}/business-hours - Failed to get business hours: salon_id=%d, error=%v", salonID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /salons/{salonId}/business-hours - Business hours retrieved: salon_id=%d, count=%d",
		salonID, len(result.BusinessHours))
	handlers.RespondJSON(w, http.StatusOK, result)
}
