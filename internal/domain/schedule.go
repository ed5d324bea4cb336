package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
)

// ErrInvalidBusinessHours границы нарушают 0 <= open < close <= 1440
var ErrInvalidBusinessHours = errors.New("domain: invalid business hours")

// BusinessHours рабочие часы салона
// Поддерживается иерархия настроек:
// 1. Расписание дня недели (salon_id, weekday)
// 2. Общее расписание (salon_id, NULL)
type BusinessHours struct {
	ID        int64
	SalonID   int64
	Weekday   *time.Weekday // NULL = common schedule for every day
	OpenTime  types.TimeString
	CloseTime types.TimeString
	IsClosed  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCommon true, если часы действуют для всех дней недели без своего расписания
func (h *BusinessHours) IsCommon() bool {
	return h.Weekday == nil
}

// Bounds возвращает открытие и закрытие в минутах от полуночи
func (h *BusinessHours) Bounds() (int, int, error) {
	open, err := types.ToMinutes(string(h.OpenTime))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: open time: %v", ErrInvalidBusinessHours, err)
	}
	closeMinute, err := types.ToCloseMinutes(string(h.CloseTime))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: close time: %v", ErrInvalidBusinessHours, err)
	}
	if open >= closeMinute {
		return 0, 0, fmt.Errorf("%w: open %s is not before close %s", ErrInvalidBusinessHours, h.OpenTime, h.CloseTime)
	}
	return open, closeMinute, nil
}

// Validate проверяет часы. У выходного дня границ нет
func (h *BusinessHours) Validate() error {
	if h.Weekday != nil && (*h.Weekday < time.Sunday || *h.Weekday > time.Saturday) {
		return fmt.Errorf("%w: weekday %d", ErrInvalidBusinessHours, *h.Weekday)
	}
	if h.IsClosed {
		return nil
	}
	_, _, err := h.Bounds()
	return err
}

// Contains проверяет, что [start, end) лежит внутри рабочих часов
func (h *BusinessHours) Contains(start, end int) bool {
	if h.IsClosed {
		return false
	}
	open, closeMinute, err := h.Bounds()
	if err != nil {
		return false
	}
	return start >= open && end <= closeMinute && start < end
}

// HolidaySet множество календарных дат с ключом в формате DateFormat
type HolidaySet map[string]struct{}

// NewHolidaySet строит множество из дат
func NewHolidaySet(dates ...time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set.Add(d)
	}
	return set
}

// Add добавляет дату
func (s HolidaySet) Add(date time.Time) {
	s[date.Format(DateFormat)] = struct{}{}
}

// Contains true, если дата выходная
func (s HolidaySet) Contains(date time.Time) bool {
	_, ok := s[date.Format(DateFormat)]
	return ok
}

// Dates возвращает выходные по возрастанию
func (s HolidaySet) Dates() []time.Time {
	dates := make([]time.Time, 0, len(s))
	for key := range s {
		d, err := ParseDate(key)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// BookingPolicy правила для запросов доступности и бронирования
type BookingPolicy struct {
	SlotGranularityMinutes  int
	AdvanceBookingDays      int // 0 = unlimited
	MinBookingNoticeMinutes int
}

// HasAdvanceBookingLimit true, если горизонт бронирования ограничен
func (p BookingPolicy) HasAdvanceBookingLimit() bool {
	return p.AdvanceBookingDays > 0
}

// DefaultBookingPolicy политика по умолчанию
func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		SlotGranularityMinutes:  DefaultSlotGranularityMinutes,
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
	}
}

// Holiday выходной всего салона (StaffID == nil) или одного мастера
type Holiday struct {
	ID        int64
	SalonID   int64
	StaffID   *int64
	Date      time.Time
	Reason    *string
	CreatedAt time.Time
}
