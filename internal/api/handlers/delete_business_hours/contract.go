package delete_business_hours

import (
	"context"

	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule/models"
)

type ScheduleService interface {
	DeleteBusinessHours(ctx context.Context, req *models.DeleteBusinessHoursRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
