package domain

import "time"

// ParseDate разбирает YYYY-MM-DD в дату на полночь UTC
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

// DateOf календарная дата t (в её часовом поясе) на полночь UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate true, если a и b приходятся на одну дату
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// MinuteOfDay минуты от полуночи t в её часовом поясе
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
