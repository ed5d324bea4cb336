package domain

import (
	"fmt"
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	StatusConfirmed           ReservationStatus = "confirmed"
	StatusCancelledByCustomer ReservationStatus = "cancelled_by_customer"
	StatusCancelledBySalon    ReservationStatus = "cancelled_by_salon"
)

// Reservation is a committed booking of one staff member for one menu.
// After creation only the cancellation fields and TrashedAt change.
type Reservation struct {
	ID         int64
	SalonID    int64
	StaffID    int64
	MenuID     int64
	CustomerID int64
	Date       time.Time // salon-local calendar date, midnight UTC
	StartTime  types.TimeString
	EndTime    types.TimeString
	Status     ReservationStatus

	// Denormalized data for conflict messages and history
	CustomerName string
	StaffName    string
	MenuName     string
	Notes        *string

	CancellationReason *string
	CancelledAt        *time.Time
	TrashedAt          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the reservation still occupies the staff's time
func (r *Reservation) IsActive() bool {
	return r.Status == StatusConfirmed && r.TrashedAt == nil
}

// CanBeCancelled returns true if the reservation can be cancelled
func (r *Reservation) CanBeCancelled() bool {
	return r.IsActive()
}

// IsCancelled returns true if the reservation has been cancelled
func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelledByCustomer || r.Status == StatusCancelledBySalon
}

// IsTrashed returns true if the reservation was moved to trash
func (r *Reservation) IsTrashed() bool {
	return r.TrashedAt != nil
}

// DurationMinutes returns the length of the reservation
func (r *Reservation) DurationMinutes() (int, error) {
	iv, err := r.Interval()
	if err != nil {
		return 0, err
	}
	return iv.EndMinute - iv.StartMinute, nil
}

// Interval converts the reservation to minute offsets within its date
func (r *Reservation) Interval() (BookedInterval, error) {
	start, err := types.ToMinutes(string(r.StartTime))
	if err != nil {
		return BookedInterval{}, fmt.Errorf("reservation %d start: %w", r.ID, err)
	}
	end, err := r.EndTime.Minutes()
	if err != nil {
		return BookedInterval{}, fmt.Errorf("reservation %d end: %w", r.ID, err)
	}
	return BookedInterval{
		StartMinute: start,
		EndMinute:   end,
		Label:       fmt.Sprintf("#%d %s", r.ID, r.CustomerName),
	}, nil
}

// ReservationsFilter фильтр для получения бронирований салона
type ReservationsFilter struct {
	SalonID         int64              // Обязательный параметр
	StaffID         *int64             // Фильтр по мастеру (опционально)
	CustomerID      *int64             // Фильтр по клиенту (опционально)
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *ReservationStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли отменённые бронирования
	IncludeTrashed  bool               // Включать ли бронирования из корзины
}

// IsSingleDay returns true if the filter selects exactly one date
func (f ReservationsFilter) IsSingleDay() bool {
	return f.StartDate != nil && f.EndDate != nil && SameDate(*f.StartDate, *f.EndDate)
}
