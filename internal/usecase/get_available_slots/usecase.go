package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	scheduleRepo "github.com/atsuki-sakai/salon-system-sub000/internal/infra/storage/schedule"
	salonClient "github.com/atsuki-sakai/salon-system-sub000/internal/integrations/salonservice"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/slots"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/metrics"
)

var tracer = otel.Tracer("salon/usecase/get_available_slots")

// UseCase use case для получения доступных слотов мастера
type UseCase struct {
	reservationRepo ReservationRepository
	scheduleRepo    ScheduleRepository
	salonClient     SalonServiceClient
	generator       SlotGenerator
	policy          domain.BookingPolicy
	location        *time.Location
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// location - часовой пояс салона, в нем определяется "сегодня".
func NewUseCase(
	reservationRepo ReservationRepository,
	scheduleRepo ScheduleRepository,
	salonClient SalonServiceClient,
	generator SlotGenerator,
	policy domain.BookingPolicy,
	location *time.Location,
	slotMetrics Metrics,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}

	return &UseCase{
		reservationRepo: reservationRepo,
		scheduleRepo:    scheduleRepo,
		salonClient:     salonClient,
		generator:       generator,
		policy:          policy,
		location:        location,
		metrics:         slotMetrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов.
// Только читает данные, безопасен для параллельных вызовов.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		uc.recordResult(nil, err)
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "availability.find_slots", trace.WithAttributes(
		attribute.Int64("salon.id", req.SalonID),
		attribute.Int64("staff.id", req.StaffID),
		attribute.Int64("menu.id", req.MenuID),
		attribute.String("date", req.Date.Format(domain.DateFormat)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("slots.count", len(resp.Slots)))
		}
		span.End()
		uc.recordResult(resp, err)
	}()

	date := domain.DateOf(req.Date)

	uc.logger.Info("GetAvailableSlots: salon=%d, staff=%d, menu=%d, date=%s",
		req.SalonID, req.StaffID, req.MenuID, date.Format(domain.DateFormat))

	// 2. Получаем текущее время в часовом поясе салона
	now := uc.timeProvider.Now().In(uc.location)
	today := domain.DateOf(now)

	// 3. Получаем мастера и проверяем, что он работает в этом салоне
	staff, err := uc.salonClient.GetStaff(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, salonClient.ErrStaffNotFound) {
			uc.logger.Warn("GetAvailableSlots: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
	}

	if staff.SalonID != req.SalonID || !staff.IsActive {
		uc.logger.Warn("GetAvailableSlots: staff id=%d is not active in salon id=%d", req.StaffID, req.SalonID)
		return nil, ErrStaffNotFound
	}

	// 4. Получаем меню и его длительность
	menu, err := uc.salonClient.GetMenu(ctx, req.SalonID, req.MenuID)
	if err != nil {
		if errors.Is(err, salonClient.ErrMenuNotFound) {
			uc.logger.Warn("GetAvailableSlots: menu id=%d not found", req.MenuID)
			return nil, ErrMenuNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get menu id=%d: %v", req.MenuID, err)
		return nil, fmt.Errorf("%w: failed to get menu: %v", ErrInternal, err)
	}

	if err := validateDuration(menu.DurationMinutes); err != nil {
		uc.logger.Warn("GetAvailableSlots: menu id=%d: %v", req.MenuID, err)
		return nil, err
	}

	// 5. Валидация даты (прошлое и горизонт бронирования)
	if err := validateDate(date, today, uc.policy.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	empty := uc.newResponse(req, date, menu.DurationMinutes, nil)

	// 6. Выходные мастера и салона
	staffHolidays, err := uc.scheduleRepo.GetStaffHolidays(ctx, req.StaffID, date, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get staff holidays: %v", err)
		return nil, fmt.Errorf("%w: failed to get staff holidays: %v", ErrInternal, err)
	}
	if staffHolidays.Contains(date) {
		uc.logger.Info("GetAvailableSlots: staff id=%d is on holiday %s", req.StaffID, date.Format(domain.DateFormat))
		return empty, nil
	}

	salonHolidays, err := uc.scheduleRepo.GetSalonHolidays(ctx, req.SalonID, date, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get salon holidays: %v", err)
		return nil, fmt.Errorf("%w: failed to get salon holidays: %v", ErrInternal, err)
	}
	if salonHolidays.Contains(date) {
		uc.logger.Info("GetAvailableSlots: salon id=%d is closed for holiday %s", req.SalonID, date.Format(domain.DateFormat))
		return empty, nil
	}

	// 7. Рабочие часы на день недели
	hours, err := uc.scheduleRepo.GetBusinessHours(ctx, req.SalonID, date.Weekday())
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrHoursNotFound) {
			uc.logger.Info("GetAvailableSlots: salon id=%d has no business hours for %s", req.SalonID, date.Weekday())
			return empty, nil
		}
		uc.logger.Error("GetAvailableSlots: failed to get business hours: %v", err)
		return nil, fmt.Errorf("%w: failed to get business hours: %v", ErrInternal, err)
	}

	if hours.IsClosed {
		uc.logger.Info("GetAvailableSlots: salon id=%d is closed on %s", req.SalonID, date.Weekday())
		return empty, nil
	}

	open, closeMinute, err := hours.Bounds()
	if err != nil {
		uc.logger.Error("GetAvailableSlots: salon id=%d has invalid business hours id=%d: %v", req.SalonID, hours.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 8. Текущие бронирования мастера
	reservations, err := uc.reservationRepo.ListBookings(ctx, req.StaffID, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	bookings, err := toBookedIntervals(date, reservations)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: staff id=%d date=%s: %v", req.StaffID, date.Format(domain.DateFormat), err)
		return nil, err
	}

	// 9. Генерируем свободные времена начала
	starts, err := uc.generator.Generate(open, closeMinute, bookings, menu.DurationMinutes)
	if err != nil {
		if errors.Is(err, slots.ErrInvalidBookingState) {
			uc.logger.Error("GetAvailableSlots: staff id=%d date=%s: %v", req.StaffID, date.Format(domain.DateFormat), err)
			return nil, err
		}
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	// 10. Для сегодняшней даты убираем слоты раньше now + minBookingNoticeMinutes
	if date.Equal(today) {
		starts = slots.FilterNotBefore(starts, domain.MinuteOfDay(now)+uc.policy.MinBookingNoticeMinutes)
	}

	uc.logger.Info("GetAvailableSlots: found %d slots for staff=%d, menu=%d, date=%s",
		len(starts), req.StaffID, req.MenuID, date.Format(domain.DateFormat))

	return uc.newResponse(req, date, menu.DurationMinutes, starts), nil
}

// newResponse собирает ответ из списка времен начала
func (uc *UseCase) newResponse(req *Request, date time.Time, duration int, starts []int) *Response {
	result := make([]Slot, 0, len(starts))
	for _, s := range slots.ToSlots(date, starts, duration) {
		result = append(result, Slot{
			StartMinute: s.StartMinute,
			EndMinute:   s.EndMinute,
			StartTime:   s.StartTime(),
			EndTime:     s.EndTime(),
		})
	}

	return &Response{
		Date:            date,
		SalonID:         req.SalonID,
		StaffID:         req.StaffID,
		MenuID:          req.MenuID,
		DurationMinutes: duration,
		Slots:           result,
	}
}

func (uc *UseCase) recordResult(resp *Response, err error) {
	if uc.metrics == nil {
		return
	}

	switch {
	case err != nil:
		uc.metrics.IncSlotQuery(metrics.SlotsError)
	case len(resp.Slots) == 0:
		uc.metrics.IncSlotQuery(metrics.SlotsEmpty)
	default:
		uc.metrics.IncSlotQuery(metrics.SlotsFound)
	}
}
