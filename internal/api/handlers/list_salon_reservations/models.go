package list_salon_reservations

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/reservations/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров.
// date задаёт один день, from/to - период; date имеет приоритет
func ToServiceRequest(salonID, userID int64, query url.Values) (*models.GetSalonReservationsRequest, error) {
	req := &models.GetSalonReservationsRequest{
		UserID:  userID,
		SalonID: salonID,
	}

	if v := query.Get("staffId"); v != "" {
		staffID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || staffID <= 0 {
			return nil, fmt.Errorf("invalid staffId %q", v)
		}
		req.StaffID = &staffID
	}

	if v := query.Get("status"); v != "" {
		req.Status = &v
	}

	if v := query.Get("date"); v != "" {
		date, err := domain.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		req.StartDate = &date
		req.EndDate = &date
	} else {
		if v := query.Get("from"); v != "" {
			from, err := domain.ParseDate(v)
			if err != nil {
				return nil, fmt.Errorf("invalid from: %w", err)
			}
			req.StartDate = &from
		}
		if v := query.Get("to"); v != "" {
			to, err := domain.ParseDate(v)
			if err != nil {
				return nil, fmt.Errorf("invalid to: %w", err)
			}
			req.EndDate = &to
		}
	}

	for name, dst := range map[string]*bool{
		"includeInactive": &req.IncludeInactive,
		"includeTrashed":  &req.IncludeTrashed,
	} {
		if v := query.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s value: %w", name, err)
			}
			*dst = b
		}
	}

	return req, nil
}
