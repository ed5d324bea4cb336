package add_holiday

import (
	"context"
	"errors"
	"net/http"

	"github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers"
	"github.com/atsuki-sakai/salon-system-sub000/internal/api/middleware"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule/models"
)

const (
	msgInvalidSalonID     = "некорректный ID салона"
	msgInvalidStaffID     = "некорректный ID мастера"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidHoliday     = "некорректные данные выходного"
	msgSalonNotFound      = "салон не найден"
	msgStaffNotFound      = "мастер не найден"
	msgForbidden          = "доступ запрещен: только менеджеры салона могут управлять выходными"
)

type addFunc func(ctx context.Context, req *models.AddHolidayRequest) (*models.HolidayResponse, error)

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

// HandleSalon POST /api/v1/salons/{salonId}/holidays
func (h *Handler) HandleSalon(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.PathInt64(r, "salonId")
	if err != nil {
		h.logger.Warn("POST /salons/{salonId}/holidays - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	h.add(w, r, "POST /salons/{salonId}/holidays", h.service.AddSalonHoliday, func(req *models.AddHolidayRequest) {
		req.SalonID = salonID
	})
}

// HandleStaff POST /api/v1/staff/{staffId}/holidays
func (h *Handler) HandleStaff(w http.ResponseWriter, r *http.Request) {
	staffID, err := handlers.PathInt64(r, "staffId")
	if err != nil {
		h.logger.Warn("POST /staff/{staffId}/holidays - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	h.add(w, r, "POST /staff/{staffId}/holidays", h.service.AddStaffHoliday, func(req *models.AddHolidayRequest) {
		req.StaffID = staffID
	})
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request, route string, add addFunc, target func(*models.AddHolidayRequest)) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var body AddHolidayRequest
	if err := handlers.DecodeJSON(r, &body); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	req, err := body.ToServiceRequest(userID)
	if err != nil {
		h.logger.Warn("%s - Invalid date: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidHoliday)
		return
	}
	target(req)

	result, err := add(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("%s - Validation failed: %v", route, err)
			handlers.RespondBadRequest(w, msgInvalidHoliday)

		case errors.Is(err, schedule.ErrSalonNotFound):
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, schedule.ErrStaffNotFound):
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: user_id=%d", route, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("%s - Failed to add holiday: error=%v", route, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Holiday added: id=%d, date=%s, user_id=%d", route, result.ID, result.Date, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
