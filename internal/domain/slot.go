package domain

import (
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
)

// BookedInterval занятый интервал [StartMinute, EndMinute) существующего бронирования
type BookedInterval struct {
	StartMinute int
	EndMinute   int
	Label       string
}

// Overlaps проверяет пересечение [start, end) с интервалом.
// Касание границ пересечением не считается
func (b BookedInterval) Overlaps(start, end int) bool {
	return start < b.EndMinute && b.StartMinute < end
}

// Slot свободное окно для записи. Вычисляется на каждый запрос и не хранится
type Slot struct {
	Date        time.Time
	StartMinute int
	EndMinute   int
}

// StartTime начало слота в формате HH:MM
func (s Slot) StartTime() types.TimeString {
	t, _ := types.NewTimeStringFromMinutes(s.StartMinute)
	return t
}

// EndTime конец слота в формате HH:MM
func (s Slot) EndTime() types.TimeString {
	t, _ := types.NewTimeStringFromMinutes(s.EndMinute)
	return t
}

// ReservationIntent предполагаемое бронирование до проверки конфликтов
type ReservationIntent struct {
	SalonID     int64
	StaffID     int64
	MenuID      int64
	CustomerID  int64
	Date        time.Time
	StartMinute int
	EndMinute   int
	Notes       *string
}

// ConflictsWith проверяет полуоткрытое пересечение с существующим бронированием
func (i ReservationIntent) ConflictsWith(b BookedInterval) bool {
	return b.Overlaps(i.StartMinute, i.EndMinute)
}
