package create_reservation

import (
	"fmt"
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
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

	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Проверяем, что время начала указано
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	// Время начала не может быть 24:00
	if _, err := types.ToMinutes(req.StartTime.String()); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if !req.EndTime.IsZero() {
		if err := req.EndTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid endTime format: %v", ErrInvalidInput, err)
		}
		if !req.StartTime.IsBefore(req.EndTime) {
			return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
		}
	}

	if req.Notes != nil && len([]rune(*req.Notes)) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDuration проверяет длительность меню
func validateDuration(duration int) error {
	if duration <= 0 || duration > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("%w: got %d", ErrInvalidMenuDuration, duration)
	}
	return nil
}

// resolveInterval вычисляет [start, end) бронирования по времени начала и длительности меню.
// Явно переданное время окончания должно совпадать с вычисленным.
func resolveInterval(req *Request, duration int) (int, int, error) {
	start, err := types.ToMinutes(req.StartTime.String())
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	end := start + duration
	if end > types.MinutesPerDay {
		return 0, 0, fmt.Errorf("%w: reservation must end by 24:00", ErrInvalidTimeSlot)
	}

	if !req.EndTime.IsZero() {
		requested, err := req.EndTime.Minutes()
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if requested != end {
			return 0, 0, fmt.Errorf("%w: endTime %s does not match menu duration of %d minutes",
				ErrInvalidTimeSlot, req.EndTime, duration)
		}
	}

	return start, end, nil
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

// validateBookingTime проверяет, что бронирование не нарушает minBookingNoticeMinutes
func validateBookingTime(date, today time.Time, nowMinute, startMinute, minBookingNoticeMinutes int) error {
	// Если дата бронирования не сегодня, проверка не нужна
	if !date.Equal(today) {
		return nil
	}

	if startMinute < nowMinute+minBookingNoticeMinutes {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, minBookingNoticeMinutes)
	}

	return nil
}

// findConflict возвращает первое активное бронирование, пересекающееся с intent
func findConflict(intent domain.ReservationIntent, reservations []*domain.Reservation) (*domain.Reservation, error) {
	for _, r := range reservations {
		// Пропускаем неактивные бронирования
		if !r.IsActive() {
			continue
		}

		iv, err := r.Interval()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBookingState, err)
		}

		if intent.ConflictsWith(iv) {
			return r, nil
		}
	}

	return nil, nil
}

// intervalTimes переводит границы интервала в строки HH:MM
func intervalTimes(startMinute, endMinute int) (types.TimeString, types.TimeString, error) {
	start, err := types.NewTimeStringFromMinutes(startMinute)
	if err != nil {
		return "", "", fmt.Errorf("%w: start time: %w", ErrInternal, err)
	}
	end, err := types.NewTimeStringFromMinutes(endMinute)
	if err != nil {
		return "", "", fmt.Errorf("%w: end time: %w", ErrInternal, err)
	}
	return start, end, nil
}

// lockKey ключ блокировки расписания мастера на дату
func lockKey(staffID int64, date time.Time) string {
	return fmt.Sprintf("staff:%d:%s", staffID, date.Format(domain.DateFormat))
}
