package slots

import (
	"fmt"
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
)

// Generator вычисляет свободные времена начала для услуги заданной длительности
type Generator struct {
	granularity int
}

// NewGenerator создает генератор с шагом granularity минут.
// Неположительное значение заменяется на domain.DefaultSlotGranularityMinutes.
func NewGenerator(granularity int) *Generator {
	if granularity <= 0 {
		granularity = domain.DefaultSlotGranularityMinutes
	}
	return &Generator{granularity: granularity}
}

// Granularity возвращает шаг перебора в минутах
func (g *Generator) Granularity() int {
	return g.granularity
}

// Generate возвращает все t, для которых [t, t+duration) лежит внутри [open, close)
// и не пересекается ни с одним бронированием.
//
// Бронирования должны быть отсортированы по началу и не пересекаться.
// Перебор идёт по промежуткам между ними: до первого, между соседними и после последнего.
// Внутри каждого промежутка шаг отсчитывается от его начала.
// Бронирования, выходящие за рабочие часы, обрезаются по границам окна.
func (g *Generator) Generate(open, closeMinute int, bookings []domain.BookedInterval, duration int) ([]int, error) {
	if open < 0 || closeMinute > types.MinutesPerDay || open >= closeMinute {
		return nil, fmt.Errorf("%w: open=%d close=%d", ErrInvalidWindow, open, closeMinute)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, duration)
	}
	if err := ValidateBookings(bookings); err != nil {
		return nil, err
	}

	starts := make([]int, 0)
	cursor := open

	for _, b := range bookings {
		// Бронирование целиком до открытия
		if b.EndMinute <= open {
			continue
		}
		// Бронирование целиком после закрытия, дальше только такие же
		if b.StartMinute >= closeMinute {
			break
		}

		starts = g.appendGap(starts, cursor, b.StartMinute, duration)
		if b.EndMinute > cursor {
			cursor = b.EndMinute
		}
	}

	starts = g.appendGap(starts, cursor, closeMinute, duration)

	return starts, nil
}

// appendGap добавляет старты внутри промежутка [from, to)
func (g *Generator) appendGap(dst []int, from, to, duration int) []int {
	if to-from < duration {
		return dst
	}
	for t := from; t+duration <= to; t += g.granularity {
		dst = append(dst, t)
	}
	return dst
}

// ValidateBookings проверяет, что start < end, и что список отсортирован без пересечений
func ValidateBookings(bookings []domain.BookedInterval) error {
	for i, b := range bookings {
		if b.StartMinute >= b.EndMinute {
			return fmt.Errorf("%w: booking %q has start %d >= end %d", ErrInvalidBookingState, b.Label, b.StartMinute, b.EndMinute)
		}
		if b.StartMinute < 0 || b.EndMinute > types.MinutesPerDay {
			return fmt.Errorf("%w: booking %q is outside the day [%d, %d)", ErrInvalidBookingState, b.Label, b.StartMinute, b.EndMinute)
		}
		if i > 0 && b.StartMinute < bookings[i-1].EndMinute {
			return fmt.Errorf("%w: booking %q starts at %d before previous %q ends at %d",
				ErrInvalidBookingState, b.Label, b.StartMinute, bookings[i-1].Label, bookings[i-1].EndMinute)
		}
	}
	return nil
}

// FilterNotBefore оставляет только старты не раньше minStart
func FilterNotBefore(starts []int, minStart int) []int {
	filtered := make([]int, 0, len(starts))
	for _, s := range starts {
		if s >= minStart {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// ToSlots превращает старты в слоты на дату date
func ToSlots(date time.Time, starts []int, duration int) []domain.Slot {
	result := make([]domain.Slot, len(starts))
	for i, s := range starts {
		result[i] = domain.Slot{
			Date:        date,
			StartMinute: s,
			EndMinute:   s + duration,
		}
	}
	return result
}
