package slots

import "errors"

var (
	// ErrInvalidBookingState возвращается, когда бронирования не отсортированы, пересекаются или имеют start >= end
	ErrInvalidBookingState = errors.New("slots: invalid booking state")

	// ErrInvalidWindow возвращается, когда рабочие часы нарушают 0 <= open < close <= 1440
	ErrInvalidWindow = errors.New("slots: invalid business hours window")

	// ErrInvalidDuration возвращается, когда длительность услуги не положительна
	ErrInvalidDuration = errors.New("slots: service duration must be positive")
)
