package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// MinutesPerDay число минут в сутках салона.
// 1440 допустимо для закрытия и окончания ("24:00")
const MinutesPerDay = 24 * 60

var (
	// ErrInvalidTimeFormat строка не является временем "HH:MM"
	ErrInvalidTimeFormat = errors.New("invalid time string format")

	// ErrMinutesOutOfRange смещение вне [0, 1440]
	ErrMinutesOutOfRange = errors.New("minutes out of range")
)

// TimeString время суток в формате "HH:MM"
type TimeString string

// ToMinutes переводит "HH:MM" в минуты от полуночи.
// Часы 0-23, минуты 0-59
func ToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	hours, ok := parseTwoDigits(s[0:2])
	if !ok || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	minutes, ok := parseTwoDigits(s[3:5])
	if !ok || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	return hours*60 + minutes, nil
}

// ToCloseMinutes как ToMinutes, но допускает "24:00" (конец дня)
func ToCloseMinutes(s string) (int, error) {
	if s == "24:00" {
		return MinutesPerDay, nil
	}
	return ToMinutes(s)
}

// ToClockString переводит минуты от полуночи в "HH:MM"
func ToClockString(minutes int) (string, error) {
	if minutes < 0 || minutes > MinutesPerDay {
		return "", fmt.Errorf("%w: %d", ErrMinutesOutOfRange, minutes)
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

func parseTwoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// NewTimeString время суток t с точностью до минуты
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format("15:04"))
}

// NewTimeStringFromString проверяет s и возвращает TimeString
func NewTimeStringFromString(s string) (TimeString, error) {
	if _, err := ToCloseMinutes(s); err != nil {
		return "", err
	}
	return TimeString(s), nil
}

// NewTimeStringFromMinutes переводит смещение в минутах в TimeString
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	s, err := ToClockString(minutes)
	if err != nil {
		return "", err
	}
	return TimeString(s), nil
}

func (t TimeString) String() string {
	return string(t)
}

// IsZero true, если время не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate проверяет формат "HH:MM". "24:00" допустимо
func (t TimeString) Validate() error {
	_, err := ToCloseMinutes(string(t))
	return err
}

// Minutes смещение от полуночи в минутах
func (t TimeString) Minutes() (int, error) {
	return ToCloseMinutes(string(t))
}

// AddMinutes сдвигает время на n минут в пределах тех же суток
func (t TimeString) AddMinutes(n int) (TimeString, error) {
	m, err := t.Minutes()
	if err != nil {
		return "", err
	}
	return NewTimeStringFromMinutes(m + n)
}

// IsBefore true, если t строго раньше other.
// Некорректные значения считаются равными -1
func (t TimeString) IsBefore(other TimeString) bool {
	return t.minutesOrInvalid() < other.minutesOrInvalid()
}

// IsAfter true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.minutesOrInvalid() > other.minutesOrInvalid()
}

func (t TimeString) minutesOrInvalid() int {
	m, err := t.Minutes()
	if err != nil {
		return -1
	}
	return m
}

// Scan реализует sql.Scanner для колонок TIME ("HH:MM:SS" или time.Time)
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("%w: cannot scan %T into TimeString", ErrInvalidTimeFormat, src)
	}
}

func (t *TimeString) scanString(s string) error {
	if len(s) > 5 {
		s = s[:5]
	}
	parsed, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t), nil
}
