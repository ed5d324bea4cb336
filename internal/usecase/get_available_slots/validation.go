package get_available_slots

import (
	"fmt"
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}

	if req.SalonID <= 0 {
		return fmt.Errorf("%w: salonID must be positive", ErrInvalidInput)
	}

	if req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	if req.MenuID <= 0 {
		return fmt.Errorf("%w: menuID must be positive", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}

// validateDuration проверяет длительность меню
func validateDuration(duration int) error {
	if duration <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMenuDuration, duration)
	}
	if duration > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("%w: %d exceeds %d minutes", ErrInvalidMenuDuration, duration, domain.MaxServiceDurationMinutes)
	}
	return nil
}

// validateDate проверяет, что дата подходит для бронирования.
// date и today - календарные даты салона (полночь UTC)
func validateDate(date, today time.Time, advanceBookingDays int) error {
	// Проверяем, что дата не в прошлом
	if date.Before(today) {
		return ErrInvalidDate
	}

	// Если advanceBookingDays = 0, нет ограничений на дату
	if advanceBookingDays <= 0 {
		return nil
	}

	maxDate := today.AddDate(0, 0, advanceBookingDays)
	if date.After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// toBookedIntervals переводит бронирования в интервалы минут для генератора.
// Каждое бронирование должно относиться к запрошенной дате.
func toBookedIntervals(date time.Time, reservations []*domain.Reservation) ([]domain.BookedInterval, error) {
	intervals := make([]domain.BookedInterval, 0, len(reservations))

	for _, r := range reservations {
		// Пропускаем неактивные бронирования
		if !r.IsActive() {
			continue
		}

		if !domain.SameDate(r.Date, date) {
			return nil, fmt.Errorf("%w: reservation %d is on %s, expected %s",
				ErrInvalidBookingState, r.ID, r.Date.Format(domain.DateFormat), date.Format(domain.DateFormat))
		}

		iv, err := r.Interval()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBookingState, err)
		}

		intervals = append(intervals, iv)
	}

	return intervals, nil
}
