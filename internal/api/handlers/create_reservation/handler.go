package create_reservation

import (
	"errors"
	"net/http"

	"github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers"
	"github.com/atsuki-sakai/salon-system-sub000/internal/api/middleware"
	createReservation "github.com/atsuki-sakai/salon-system-sub000/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSlotTaken          = "выбранное время мастера уже занято"
	msgStaffNotFound      = "мастер не найден"
	msgMenuNotFound       = "меню не найдено"
	msgCustomerNotFound   = "клиент не найден"
	msgInvalidMenu        = "некорректная длительность меню"
	msgInvalidDate        = "дата бронирования в прошлом"
	msgDateTooFar         = "дата бронирования слишком далеко в будущем"
	msgTooLateToBook      = "слишком поздно для бронирования этого времени"
	msgInvalidTimeSlot    = "некорректный временной интервал"
	msgHoliday            = "в выбранную дату выходной"
	msgSalonClosed        = "салон закрыт в выбранную дату"
	msgOutsideHours       = "время вне рабочих часов салона"
	msgScheduleBusy       = "расписание мастера занято, повторите попытку"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /reservations - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		h.respondError(w, &req, err)
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%d, staff_id=%d, customer_id=%d",
		result.ID, result.StaffID, result.CustomerID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

func (h *Handler) respondError(w http.ResponseWriter, req *CreateReservationRequest, err error) {
	var conflict *createReservation.ConflictError

	switch {
	case errors.As(err, &conflict):
		h.logger.Warn("POST /reservations - Slot taken: staff_id=%d, date=%s, start=%s: %v",
			req.StaffID, req.Date, req.StartTime, err)
		handlers.RespondJSON(w, http.StatusConflict, FromConflictError(conflict, msgSlotTaken))

	case errors.Is(err, createReservation.ErrStaffNotFound):
		h.logger.Warn("POST /reservations - Staff not found: salon_id=%d, staff_id=%d", req.SalonID, req.StaffID)
		handlers.RespondNotFound(w, msgStaffNotFound)

	case errors.Is(err, createReservation.ErrMenuNotFound):
		h.logger.Warn("POST /reservations - Menu not found: salon_id=%d, menu_id=%d", req.SalonID, req.MenuID)
		handlers.RespondNotFound(w, msgMenuNotFound)

	case errors.Is(err, createReservation.ErrCustomerNotFound):
		h.logger.Warn("POST /reservations - Customer not found: customer_id=%d", req.CustomerID)
		handlers.RespondNotFound(w, msgCustomerNotFound)

	case errors.Is(err, createReservation.ErrInvalidMenuDuration):
		h.logger.Warn("POST /reservations - Invalid menu duration: menu_id=%d", req.MenuID)
		handlers.RespondBadRequest(w, msgInvalidMenu)

	case errors.Is(err, createReservation.ErrInvalidDate):
		handlers.RespondBadRequest(w, msgInvalidDate)

	case errors.Is(err, createReservation.ErrDateTooFarInFuture):
		handlers.RespondBadRequest(w, msgDateTooFar)

	case errors.Is(err, createReservation.ErrTooLateToBook):
		handlers.RespondBadRequest(w, msgTooLateToBook)

	case errors.Is(err, createReservation.ErrInvalidTimeSlot):
		handlers.RespondBadRequest(w, msgInvalidTimeSlot)

	case errors.Is(err, createReservation.ErrHoliday):
		handlers.RespondBadRequest(w, msgHoliday)

	case errors.Is(err, createReservation.ErrSalonClosed):
		handlers.RespondBadRequest(w, msgSalonClosed)

	case errors.Is(err, createReservation.ErrOutsideBusinessHours):
		handlers.RespondBadRequest(w, msgOutsideHours)

	case errors.Is(err, createReservation.ErrInvalidInput):
		h.logger.Warn("POST /reservations - Invalid input: %v", err)
		handlers.RespondBadRequest(w, err.Error())

	case errors.Is(err, createReservation.ErrLockUnavailable),
		errors.Is(err, createReservation.ErrInvalidBookingState):
		h.logger.Warn("POST /reservations - Staff schedule unavailable: staff_id=%d, date=%s: %v", req.StaffID, req.Date, err)
		handlers.RespondServiceUnavailable(w, msgScheduleBusy)

	default:
		h.logger.Error("POST /reservations - Failed to create reservation: salon_id=%d, staff_id=%d, error=%v",
			req.SalonID, req.StaffID, err)
		handlers.RespondInternalError(w)
	}
}
