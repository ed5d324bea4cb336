package get_available_slots

import (
	"errors"

	"github.com/atsuki-sakai/salon-system-sub000/internal/service/slots"
)

var (
	// ErrStaffNotFound возвращается, когда мастер не найден или работает в другом салоне
	ErrStaffNotFound = errors.New("get_available_slots: staff not found")

	// ErrMenuNotFound возвращается, когда меню не найдено
	ErrMenuNotFound = errors.New("get_available_slots: menu not found")

	// ErrInvalidMenuDuration возвращается, когда длительность меню не положительна
	ErrInvalidMenuDuration = errors.New("get_available_slots: menu duration must be positive")

	// ErrInvalidDate возвращается при дате в прошлом
	ErrInvalidDate = errors.New("get_available_slots: invalid date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("get_available_slots: date is too far in the future")

	// ErrInvalidBookingState возвращается, когда сохранённые бронирования противоречат друг другу.
	// Это тот же sentinel, что и у генератора слотов, errors.Is работает для обоих.
	ErrInvalidBookingState = slots.ErrInvalidBookingState

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
