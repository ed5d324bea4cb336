package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers"
	getAvailableSlots "github.com/atsuki-sakai/salon-system-sub000/internal/usecase/get_available_slots"
)

const (
	msgInvalidSalonID       = "некорректный ID салона"
	msgInvalidStaffID       = "некорректный ID мастера"
	msgInvalidMenuID        = "некорректный ID меню"
	msgMissingMenuID        = "ID меню обязателен"
	msgMissingDate          = "дата обязательна"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgStaffNotFound        = "мастер не найден"
	msgMenuNotFound         = "меню не найдено"
	msgInvalidMenu          = "некорректная длительность меню"
	msgDateInPast           = "дата в прошлом"
	msgDateTooFar           = "дата слишком далеко в будущем"
	msgScheduleInconsistent = "расписание мастера временно недоступно"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/salons/{salonId}/staff/{staffId}/available-slots
// Query params: menuId (required), date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	// Извлекаем salonId из URL
	salonID, err := strconv.ParseInt(vars["salonId"], 10, 64)
	if err != nil || salonID <= 0 {
		h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Invalid salon ID: %s", vars["salonId"])
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	// Извлекаем staffId из URL
	staffID, err := strconv.ParseInt(vars["staffId"], 10, 64)
	if err != nil || staffID <= 0 {
		h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Invalid staff ID: %s", vars["staffId"])
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	// Извлекаем menuId из query параметров
	menuIDStr := r.URL.Query().Get("menuId")
	if menuIDStr == "" {
		h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Missing menu ID")
		handlers.RespondBadRequest(w, msgMissingMenuID)
		return
	}

	menuID, err := strconv.ParseInt(menuIDStr, 10, 64)
	if err != nil || menuID <= 0 {
		h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Invalid menu ID: %s", menuIDStr)
		handlers.RespondBadRequest(w, msgInvalidMenuID)
		return
	}

	// Извлекаем date из query параметров
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(salonID, staffID, menuID, dateStr)
	if err != nil {
		h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrStaffNotFound):
			h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Staff not found: salon_id=%d, staff_id=%d", salonID, staffID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, getAvailableSlots.ErrMenuNotFound):
			h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Menu not found: salon_id=%d, menu_id=%d", salonID, menuID)
			handlers.RespondNotFound(w, msgMenuNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidMenuDuration):
			h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Invalid menu duration: menu_id=%d", menuID)
			handlers.RespondBadRequest(w, msgInvalidMenu)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Date in the past: date=%s", dateStr)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Date too far in future: date=%s", dateStr)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /salons/{id}/staff/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, getAvailableSlots.ErrInvalidBookingState):
			h.logger.Error("GET /salons/{id}/staff/{id}/available-slots - Inconsistent bookings: staff_id=%d, date=%s, error=%v",
				staffID, dateStr, err)
			handlers.RespondServiceUnavailable(w, msgScheduleInconsistent)

		default:
			h.logger.Error("GET /salons/{id}/staff/{id}/available-slots - Failed to get slots: salon_id=%d, staff_id=%d, menu_id=%d, error=%v",
				salonID, staffID, menuID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /salons/{id}/staff/{id}/available-slots - Slots retrieved successfully: salon_id=%d, staff_id=%d, menu_id=%d, slots_count=%d",
		salonID, staffID, menuID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
