package models

import (
	"fmt"
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
)

// Request модели

// UpsertBusinessHoursRequest запрос на создание или замену рабочих часов
type UpsertBusinessHoursRequest struct {
	UserID    int64            `json:"userId"`
	SalonID   int64            `json:"salonId"`
	Weekday   *int             `json:"weekday,omitempty"` // NULL = общее расписание, 0 = воскресенье
	OpenTime  types.TimeString `json:"openTime"`
	CloseTime types.TimeString `json:"closeTime"`
	IsClosed  bool             `json:"isClosed"`
}

// ToDomainHours конвертирует запрос в domain модель
func (r *UpsertBusinessHoursRequest) ToDomainHours() (*domain.BusinessHours, error) {
	weekday, err := ToWeekday(r.Weekday)
	if err != nil {
		return nil, err
	}

	return &domain.BusinessHours{
		SalonID:   r.SalonID,
		Weekday:   weekday,
		OpenTime:  r.OpenTime,
		CloseTime: r.CloseTime,
		IsClosed:  r.IsClosed,
	}, nil
}

// DeleteBusinessHoursRequest запрос на удаление рабочих часов
type DeleteBusinessHoursRequest struct {
	UserID  int64 `json:"userId"`
	SalonID int64 `json:"salonId"`
	Weekday *int  `json:"weekday,omitempty"`
}

// AddHolidayRequest запрос на добавление выходного салона или мастера
type AddHolidayRequest struct {
	UserID  int64     `json:"userId"`
	SalonID int64     `json:"salonId,omitempty"`
	StaffID int64     `json:"staffId,omitempty"`
	Date    time.Time `json:"date"`
	Reason  *string   `json:"reason,omitempty"`
}

// ListHolidaysRequest запрос на получение выходных за период
type ListHolidaysRequest struct {
	SalonID int64     `json:"salonId,omitempty"`
	StaffID int64     `json:"staffId,omitempty"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

// Response модели

// BusinessHoursResponse ответ с рабочими часами
type BusinessHoursResponse struct {
	ID        int64     `json:"id"`
	SalonID   int64     `json:"salonId"`
	Weekday   *int      `json:"weekday,omitempty"`
	OpenTime  string    `json:"openTime,omitempty"`
	CloseTime string    `json:"closeTime,omitempty"`
	IsClosed  bool      `json:"isClosed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BusinessHoursListResponse ответ со списком рабочих часов салона
type BusinessHoursListResponse struct {
	BusinessHours []BusinessHoursResponse `json:"businessHours"`
}

// HolidayResponse ответ с выходным
type HolidayResponse struct {
	ID        int64     `json:"id"`
	SalonID   int64     `json:"salonId"`
	StaffID   *int64    `json:"staffId,omitempty"`
	Date      string    `json:"date"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HolidayListResponse ответ со списком выходных
type HolidayListResponse struct {
	Holidays []HolidayResponse `json:"holidays"`
}

// Методы конвертации

// FromDomainHours конвертирует domain модель в DTO
func FromDomainHours(h *domain.BusinessHours) *BusinessHoursResponse {
	if h == nil {
		return nil
	}

	resp := &BusinessHoursResponse{
		ID:        h.ID,
		SalonID:   h.SalonID,
		OpenTime:  h.OpenTime.String(),
		CloseTime: h.CloseTime.String(),
		IsClosed:  h.IsClosed,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
	if h.Weekday != nil {
		weekday := int(*h.Weekday)
		resp.Weekday = &weekday
	}

	return resp
}

// FromDomainHoursList конвертирует список domain моделей в DTO
func FromDomainHoursList(hours []*domain.BusinessHours) *BusinessHoursListResponse {
	resp := &BusinessHoursListResponse{
		BusinessHours: make([]BusinessHoursResponse, 0, len(hours)),
	}

	for _, h := range hours {
		if r := FromDomainHours(h); r != nil {
			resp.BusinessHours = append(resp.BusinessHours, *r)
		}
	}

	return resp
}

// FromDomainHoliday конвертирует domain модель в DTO
func FromDomainHoliday(h *domain.Holiday) *HolidayResponse {
	if h == nil {
		return nil
	}

	return &HolidayResponse{
		ID:        h.ID,
		SalonID:   h.SalonID,
		StaffID:   h.StaffID,
		Date:      h.Date.Format(domain.DateFormat),
		Reason:    h.Reason,
		CreatedAt: h.CreatedAt,
	}
}

// FromDomainHolidayList конвертирует список domain моделей в DTO
func FromDomainHolidayList(holidays []*domain.Holiday) *HolidayListResponse {
	resp := &HolidayListResponse{
		Holidays: make([]HolidayResponse, 0, len(holidays)),
	}

	for _, h := range holidays {
		if r := FromDomainHoliday(h); r != nil {
			resp.Holidays = append(resp.Holidays, *r)
		}
	}

	return resp
}

// ToWeekday конвертирует номер дня недели (0 = воскресенье) в time.Weekday
func ToWeekday(value *int) (*time.Weekday, error) {
	if value == nil {
		return nil, nil
	}
	if *value < int(time.Sunday) || *value > int(time.Saturday) {
		return nil, fmt.Errorf("weekday must be between 0 and 6, got %d", *value)
	}
	weekday := time.Weekday(*value)
	return &weekday, nil
}
