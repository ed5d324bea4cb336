package create_reservation

import (
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	SalonID    int64            // ID салона
	StaffID    int64            // ID мастера
	MenuID     int64            // ID меню
	CustomerID int64            // ID клиента
	Date       time.Time        // Дата в календаре салона (без времени)
	StartTime  types.TimeString // Время начала (например, "10:00")
	EndTime    types.TimeString // Время окончания (опционально, по умолчанию начало + длительность меню)
	Notes      *string          // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64            // ID созданного бронирования
	SalonID    int64            // ID салона
	StaffID    int64            // ID мастера
	MenuID     int64            // ID меню
	CustomerID int64            // ID клиента
	Date       time.Time        // Дата бронирования
	StartTime  types.TimeString // Время начала
	EndTime    types.TimeString // Время окончания
	Status     string           // Статус бронирования

	// Денормализованные данные
	CustomerName string  // Имя клиента (пустое при недоступности справочника)
	StaffName    string  // Имя мастера
	MenuName     string  // Название меню
	Notes        *string // Заметки

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
