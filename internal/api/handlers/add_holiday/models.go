package add_holiday

import (
	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule/models"
)

// AddHolidayRequest тело запроса на добавление выходного
type AddHolidayRequest struct {
	Date   string  `json:"date"`
	Reason *string `json:"reason,omitempty"`
}

func (r *AddHolidayRequest) ToServiceRequest(userID int64) (*models.AddHolidayRequest, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &models.AddHolidayRequest{
		UserID: userID,
		Date:   date,
		Reason: r.Reason,
	}, nil
}
