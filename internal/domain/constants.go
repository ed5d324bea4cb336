package domain

// Default configuration values
const (
	DefaultSlotGranularityMinutes  = 10
	DefaultAdvanceBookingDays      = 0 // 0 = unlimited
	DefaultMinBookingNoticeMinutes = 0
)

// Business validation constants
const (
	MaxServiceDurationMinutes   = 720 // 12 hours
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, которые не занимают время мастера
var InactiveStatuses = []ReservationStatus{
	StatusCancelledByCustomer,
	StatusCancelledBySalon,
}
