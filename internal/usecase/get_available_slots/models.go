package get_available_slots

import (
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	SalonID int64     // ID салона
	StaffID int64     // ID мастера
	MenuID  int64     // ID меню
	Date    time.Time // Дата в календаре салона (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time // Дата, на которую запрашивались слоты
	SalonID         int64     // ID салона
	StaffID         int64     // ID мастера
	MenuID          int64     // ID меню
	DurationMinutes int       // Длительность меню
	Slots           []Slot    // Список доступных слотов, по возрастанию
}

// Slot модель временного слота
type Slot struct {
	StartMinute int              // Начало в минутах от полуночи
	EndMinute   int              // Конец в минутах от полуночи
	StartTime   types.TimeString // Время начала (например, "10:00")
	EndTime     types.TimeString // Время окончания (например, "10:30")
}
