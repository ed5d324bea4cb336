package create_reservation

import (
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	createReservation "github.com/atsuki-sakai/salon-system-sub000/internal/usecase/create_reservation"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	SalonID    int64   `json:"salonId"`
	StaffID    int64   `json:"staffId"`
	MenuID     int64   `json:"menuId"`
	CustomerID int64   `json:"customerId,omitempty"` // по умолчанию - текущий пользователь
	Date       string  `json:"date"`                 // "2025-10-15"
	StartTime  string  `json:"startTime"`            // "10:00"
	EndTime    *string `json:"endTime,omitempty"`    // "11:00"
	Notes      *string `json:"notes,omitempty"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID           int64   `json:"id"`
	SalonID      int64   `json:"salonId"`
	StaffID      int64   `json:"staffId"`
	MenuID       int64   `json:"menuId"`
	CustomerID   int64   `json:"customerId"`
	Date         string  `json:"date"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	Status       string  `json:"status"`
	CustomerName string  `json:"customerName"`
	StaffName    string  `json:"staffName"`
	MenuName     string  `json:"menuName"`
	Notes        *string `json:"notes,omitempty"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// ConflictResponse тело ответа 409 с данными занятого времени
type ConflictResponse struct {
	Code     int                  `json:"code"`
	Message  string               `json:"message"`
	Conflict *ConflictReservation `json:"conflict,omitempty"`
}

// ConflictReservation бронирование, с которым пересекается запрос
type ConflictReservation struct {
	ReservationID int64  `json:"reservationId"`
	CustomerName  string `json:"customerName"`
	StaffName     string `json:"staffName"`
	MenuName      string `json:"menuName"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) (*createReservation.Request, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	var endTime types.TimeString
	if r.EndTime != nil {
		endTime, err = types.NewTimeStringFromString(*r.EndTime)
		if err != nil {
			return nil, err
		}
	}

	customerID := r.CustomerID
	if customerID == 0 {
		customerID = userID
	}

	return &createReservation.Request{
		SalonID:    r.SalonID,
		StaffID:    r.StaffID,
		MenuID:     r.MenuID,
		CustomerID: customerID,
		Date:       date,
		StartTime:  startTime,
		EndTime:    endTime,
		Notes:      r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	return &ReservationResponse{
		ID:           resp.ID,
		SalonID:      resp.SalonID,
		StaffID:      resp.StaffID,
		MenuID:       resp.MenuID,
		CustomerID:   resp.CustomerID,
		Date:         resp.Date.Format(domain.DateFormat),
		StartTime:    resp.StartTime.String(),
		EndTime:      resp.EndTime.String(),
		Status:       resp.Status,
		CustomerName: resp.CustomerName,
		StaffName:    resp.StaffName,
		MenuName:     resp.MenuName,
		Notes:        resp.Notes,
		CreatedAt:    resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    resp.UpdatedAt.Format(time.RFC3339),
	}
}

// FromConflictError формирует тело ответа 409
func FromConflictError(conflict *createReservation.ConflictError, message string) *ConflictResponse {
	resp := &ConflictResponse{
		Code:    409,
		Message: message,
	}

	if r := conflict.Existing; r != nil {
		resp.Conflict = &ConflictReservation{
			ReservationID: r.ID,
			CustomerName:  r.CustomerName,
			StaffName:     r.StaffName,
			MenuName:      r.MenuName,
			Date:          r.Date.Format(domain.DateFormat),
			StartTime:     r.StartTime.String(),
			EndTime:       r.EndTime.String(),
		}
	}

	return resp
}
