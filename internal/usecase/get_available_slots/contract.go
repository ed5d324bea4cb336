package get_available_slots

import (
	"context"
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/internal/integrations/salonservice"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	// ListBookings получает активные бронирования мастера на дату, отсортированные по времени начала
	ListBookings(ctx context.Context, staffID int64, date time.Time) ([]*domain.Reservation, error)
}

// ScheduleRepository интерфейс репозитория рабочих часов и выходных
type ScheduleRepository interface {
	// GetBusinessHours получает рабочие часы с учетом иерархии (день недели -> общее расписание)
	GetBusinessHours(ctx context.Context, salonID int64, weekday time.Weekday) (*domain.BusinessHours, error)
	GetSalonHolidays(ctx context.Context, salonID int64, from, to time.Time) (domain.HolidaySet, error)
	GetStaffHolidays(ctx context.Context, staffID int64, from, to time.Time) (domain.HolidaySet, error)
}

// SalonServiceClient интерфейс клиента справочника салонов
type SalonServiceClient interface {
	GetStaff(ctx context.Context, staffID int64) (*salonservice.Staff, error)
	GetMenu(ctx context.Context, salonID, menuID int64) (*salonservice.Menu, error)
}

// SlotGenerator вычисляет свободные времена начала внутри рабочих часов
type SlotGenerator interface {
	Generate(open, closeMinute int, bookings []domain.BookedInterval, duration int) ([]int, error)
}

// Metrics счетчики запросов слотов
type Metrics interface {
	IncSlotQuery(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
