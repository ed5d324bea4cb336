package list_holidays

import (
	"context"

	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule/models"
)

type ScheduleService interface {
	ListHolidays(ctx context.Context, req *models.ListHolidaysRequest) (*models.HolidayListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
