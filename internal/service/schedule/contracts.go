package schedule

import (
	"context"
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/internal/integrations/salonservice"
)

// ScheduleRepository интерфейс репозитория расписания салона
type ScheduleRepository interface {
	ListBusinessHours(ctx context.Context, salonID int64) ([]*domain.BusinessHours, error)
	UpsertBusinessHours(ctx context.Context, hours *domain.BusinessHours) (*domain.BusinessHours, error)
	DeleteBusinessHours(ctx context.Context, salonID int64, weekday *time.Weekday) error

	ListSalonHolidays(ctx context.Context, salonID int64, from, to time.Time) ([]*domain.Holiday, error)
	ListStaffHolidays(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.Holiday, error)
	AddSalonHoliday(ctx context.Context, holiday *domain.Holiday) (*domain.Holiday, error)
	AddStaffHoliday(ctx context.Context, holiday *domain.Holiday) (*domain.Holiday, error)
	DeleteSalonHoliday(ctx context.Context, salonID int64, date time.Time) error
	DeleteStaffHoliday(ctx context.Context, staffID int64, date time.Time) error
}

// SalonServiceClient интерфейс клиента справочника салонов
type SalonServiceClient interface {
	GetSalon(ctx context.Context, salonID int64) (*salonservice.Salon, error)
	GetStaff(ctx context.Context, staffID int64) (*salonservice.Staff, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
