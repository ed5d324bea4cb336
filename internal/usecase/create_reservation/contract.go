package create_reservation

import (
	"context"
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/internal/integrations/salonservice"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/keylock"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
	ListBookings(ctx context.Context, staffID int64, date time.Time) ([]*domain.Reservation, error)
}

// ScheduleRepository интерфейс репозитория рабочих часов и выходных
type ScheduleRepository interface {
	GetBusinessHours(ctx context.Context, salonID int64, weekday time.Weekday) (*domain.BusinessHours, error)
	GetSalonHolidays(ctx context.Context, salonID int64, from, to time.Time) (domain.HolidaySet, error)
	GetStaffHolidays(ctx context.Context, staffID int64, from, to time.Time) (domain.HolidaySet, error)
}

// SalonServiceClient интерфейс клиента справочника салонов
type SalonServiceClient interface {
	GetStaff(ctx context.Context, staffID int64) (*salonservice.Staff, error)
	GetMenu(ctx context.Context, salonID, menuID int64) (*salonservice.Menu, error)
	GetCustomerWithGracefulDegradation(ctx context.Context, customerID int64) (*salonservice.Customer, error)
}

// Locker выдает эксклюзивную блокировку по ключу (staff, date).
// Реализуется *keylock.Registry и *keylock.RedisLocker.
type Locker interface {
	Acquire(ctx context.Context, key string) (keylock.ReleaseFunc, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики исходов бронирования
type Metrics interface {
	IncReservation(outcome string)
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
