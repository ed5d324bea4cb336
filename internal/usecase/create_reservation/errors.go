package create_reservation

import (
	"errors"
	"fmt"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/slots"
)

var (
	// ErrStaffNotFound возвращается, когда мастер не найден или работает в другом салоне
	ErrStaffNotFound = errors.New("create_reservation: staff not found")

	// ErrMenuNotFound возвращается, когда меню не найдено
	ErrMenuNotFound = errors.New("create_reservation: menu not found")

	// ErrInvalidMenuDuration возвращается, когда длительность меню не положительна
	ErrInvalidMenuDuration = errors.New("create_reservation: menu duration must be positive")

	// ErrCustomerNotFound возвращается, когда клиент не найден
	ErrCustomerNotFound = errors.New("create_reservation: customer not found")

	// ErrInvalidDate возвращается при дате в прошлом
	ErrInvalidDate = errors.New("create_reservation: invalid reservation date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("create_reservation: date is too far in the future")

	// ErrTooLateToBook возвращается, когда бронирование нарушает minBookingNoticeMinutes
	ErrTooLateToBook = errors.New("create_reservation: too late to book this slot")

	// ErrInvalidTimeSlot возвращается, когда время окончания не совпадает с длительностью меню
	// или бронирование переходит через полночь
	ErrInvalidTimeSlot = errors.New("create_reservation: invalid time slot")

	// ErrHoliday возвращается, когда дата - выходной мастера или салона
	ErrHoliday = errors.New("create_reservation: date is a holiday")

	// ErrSalonClosed возвращается, когда салон не работает в этот день недели
	ErrSalonClosed = errors.New("create_reservation: salon is closed on this date")

	// ErrOutsideBusinessHours возвращается, когда интервал выходит за рабочие часы
	ErrOutsideBusinessHours = errors.New("create_reservation: reservation is outside business hours")

	// ErrConflict возвращается (через *ConflictError), когда время мастера уже занято
	ErrConflict = errors.New("create_reservation: time slot is already taken")

	// ErrLockUnavailable возвращается, когда не удалось дождаться блокировки мастера на дату
	ErrLockUnavailable = errors.New("create_reservation: staff schedule is busy, try again")

	// ErrInvalidBookingState возвращается, когда сохранённые бронирования противоречат друг другу
	ErrInvalidBookingState = slots.ErrInvalidBookingState

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)

// ConflictError описывает пересечение с уже существующим бронированием.
// errors.Is(err, ErrConflict) возвращает true.
type ConflictError struct {
	// Existing бронирование, с которым пересекается запрошенное время.
	// nil, если пересечение обнаружила только БД и запись уже не удалось прочитать.
	Existing *domain.Reservation
}

func (e *ConflictError) Error() string {
	if e.Existing == nil {
		return ErrConflict.Error()
	}

	r := e.Existing
	return fmt.Sprintf("%s: staff %q is booked by %q for %q on %s %s-%s (reservation #%d)",
		ErrConflict.Error(), r.StaffName, r.CustomerName, r.MenuName,
		r.Date.Format(domain.DateFormat), r.StartTime, r.EndTime, r.ID)
}

// Is позволяет сравнивать ConflictError с ErrConflict через errors.Is
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
