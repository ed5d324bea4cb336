package delete_holiday

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers"
	"github.com/atsuki-sakai/salon-system-sub000/internal/api/middleware"
	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule"
)

const (
	msgInvalidSalonID = "некорректный ID салона"
	msgInvalidStaffID = "некорректный ID мастера"
	msgInvalidDate    = "некорректная дата: ожидается формат YYYY-MM-DD"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgNotFound       = "выходной не найден"
	msgSalonNotFound  = "салон не найден"
	msgStaffNotFound  = "мастер не найден"
	msgForbidden      = "доступ запрещен: только менеджеры салона могут управлять выходными"
)

type deleteFunc func(ctx context.Context, userID, ownerID int64, date time.Time) error

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

// HandleSalon DELETE /api/v1/salons/{salonId}/holidays/{date}
func (h *Handler) HandleSalon(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.PathInt64(r, "salonId")
	if err != nil {
		h.logger.Warn("DELETE /salons/{salonId}/holidays/{date} - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	h.remove(w, r, "DELETE /salons/{salonId}/holidays/{date}", salonID, h.service.DeleteSalonHoliday)
}

// HandleStaff DELETE /api/v1/staff/{staffId}/holidays/{date}
func (h *Handler) HandleStaff(w http.ResponseWriter, r *http.Request) {
	staffID, err := handlers.PathInt64(r, "staffId")
	if err != nil {
		h.logger.Warn("DELETE /staff/{staffId}/holidays/{date} - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	h.remove(w, r, "DELETE /staff/{staffId}/holidays/{date}", staffID, h.service.DeleteStaffHoliday)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request, route string, ownerID int64, del deleteFunc) {
	date, err := domain.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		h.logger.Warn("%s - Invalid date: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := del(r.Context(), userID, ownerID, date); err != nil {
		switch {
		case errors.Is(err, schedule.ErrHolidayNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedule.ErrSalonNotFound):
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, schedule.ErrStaffNotFound):
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: owner_id=%d, user_id=%d", route, ownerID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("%s - Failed to delete holiday: owner_id=%d, error=%v", route, ownerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Holiday deleted: owner_id=%d, date=%s, user_id=%d",
		route, ownerID, date.Format(domain.DateFormat), userID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
