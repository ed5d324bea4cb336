package delete_holiday

import (
	"context"
	"time"
)

type ScheduleService interface {
	DeleteSalonHoliday(ctx context.Context, userID, salonID int64, date time.Time) error
	DeleteStaffHoliday(ctx context.Context, userID, staffID int64, date time.Time) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
