package get_business_hours

import (
	"context"

	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule/models"
)

type ScheduleService interface {
	GetBusinessHours(ctx context.Context, salonID int64) (*models.BusinessHoursListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
