package delete_business_hours

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers"
	"github.com/atsuki-sakai/salon-system-sub000/internal/api/middleware"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule/models"
)

const (
	msgInvalidSalonID = "некорректный ID салона"
	msgInvalidWeekday = "некорректный день недели"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgNotFound       = "рабочие часы не найдены"
	msgSalonNotFound  = "салон не найден"
	msgForbidden      = "доступ запрещен: только менеджеры салона могут изменять рабочие часы"
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

// Handle DELETE /api/v1/salons/{salonId}/business-hours?weekday=N
// Без weekday удаляется общее расписание салона
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.PathInt64(r, "salonId")
	if err != nil {
		h.logger.Warn("DELETE /salons/{salonId}/business-hours - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &models.DeleteBusinessHoursRequest{UserID: userID, SalonID: salonID}
	if v := r.URL.Query().Get("weekday"); v != "" {
		weekday, err := strconv.Atoi(v)
		if err != nil {
			h.logger.Warn("DELETE /salons/{salonId}/business-hours - Invalid weekday: %v", err)
			handlers.RespondBadRequest(w, msgInvalidWeekday)
			return
		}
		req.Weekday = &weekday
	}

	if err := h.service.DeleteBusinessHours(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidWeekday)

		case errors.Is(err, schedule.ErrHoursNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedule.ErrSalonNotFound):
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("DELETE /salons/{salonId}/business-hours - Access denied: salon_id=%d, user_id=%d", salonID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /salons/{salonId}/business-hours - Failed to delete business hours: salon_id=%d, error=%v", salonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /salons/{salonId}/business-hours - Business hours deleted: salon_id=%d, user_id=%d", salonID, userID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
