package upsert_business_hours

import (
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule/models"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
)

// UpsertBusinessHoursRequest тело запроса. Без weekday задаётся общее расписание салона
type UpsertBusinessHoursRequest struct {
	Weekday   *int             `json:"weekday,omitempty"`
	OpenTime  types.TimeString `json:"openTime"`
	CloseTime types.TimeString `json:"closeTime"`
	IsClosed  bool             `json:"isClosed"`
}

func (r *UpsertBusinessHoursRequest) ToServiceRequest(salonID, userID int64) *models.UpsertBusinessHoursRequest {
	return &models.UpsertBusinessHoursRequest{
		UserID:    userID,
		SalonID:   salonID,
		Weekday:   r.Weekday,
		OpenTime:  r.OpenTime,
		CloseTime: r.CloseTime,
		IsClosed:  r.IsClosed,
	}
}
