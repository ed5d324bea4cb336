package add_holiday

import (
	"context"

	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule/models"
)

type ScheduleService interface {
	AddSalonHoliday(ctx context.Context, req *models.AddHolidayRequest) (*models.HolidayResponse, error)
	AddStaffHoliday(ctx context.Context, req *models.AddHolidayRequest) (*models.HolidayResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
