package create_reservation

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
	reservationRepo "github.com/atsuki-sakai/salon-system-sub000/internal/infra/storage/reservation"
	scheduleRepo "github.com/atsuki-sakai/salon-system-sub000/internal/infra/storage/schedule"
	salonClient "github.com/atsuki-sakai/salon-system-sub000/internal/integrations/salonservice"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/metrics"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/txmanager"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
)

var tracer = otel.Tracer("salon/usecase/create_reservation")

const defaultLockWait = 5 * time.Second

// UseCase use case для создания бронирования с защитой от двойной записи
type UseCase struct {
	reservationRepo ReservationRepository
	scheduleRepo    ScheduleRepository
	salonClient     SalonServiceClient
	locker          Locker
	txManager       TransactionManager
	policy          domain.BookingPolicy
	location        *time.Location
	lockWait        time.Duration
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// lockWait - сколько ждать блокировку мастера на дату, прежде чем вернуть ErrLockUnavailable.
func NewUseCase(
	reservationRepo ReservationRepository,
	scheduleRepo ScheduleRepository,
	salonClient SalonServiceClient,
	locker Locker,
	txManager TransactionManager,
	policy domain.BookingPolicy,
	location *time.Location,
	lockWait time.Duration,
	reservationMetrics Metrics,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	if lockWait <= 0 {
		lockWait = defaultLockWait
	}

	return &UseCase{
		reservationRepo: reservationRepo,
		scheduleRepo:    scheduleRepo,
		salonClient:     salonClient,
		locker:          locker,
		txManager:       txManager,
		policy:          policy,
		location:        location,
		lockWait:        lockWait,
		metrics:         reservationMetrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute проверяет выбранный слот по актуальному состоянию и создает бронирование.
//
// Запись для одной пары (мастер, дата) выполняется строго последовательно:
// блокировка по ключу, затем сериализуемая транзакция с повторной проверкой
// пересечений. После получения блокировки отмена контекста вызывающей стороны
// не прерывает операцию.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		uc.recordOutcome(err)
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "reservations.create", trace.WithAttributes(
		attribute.Int64("salon.id", req.SalonID),
		attribute.Int64("staff.id", req.StaffID),
		attribute.Int64("menu.id", req.MenuID),
		attribute.String("date", req.Date.Format(domain.DateFormat)),
		attribute.String("start_time", req.StartTime.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			if !errors.Is(err, ErrConflict) {
				span.SetStatus(codes.Error, err.Error())
			}
		} else {
			span.SetAttributes(attribute.Int64("reservation.id", resp.ID))
		}
		span.End()
		uc.recordOutcome(err)
	}()

	date := domain.DateOf(req.Date)

	uc.logger.Info("CreateReservation: salon=%d, staff=%d, menu=%d, customer=%d, date=%s, time=%s",
		req.SalonID, req.StaffID, req.MenuID, req.CustomerID, date.Format(domain.DateFormat), req.StartTime)

	// 2. Получаем текущее время в часовом поясе салона
	now := uc.timeProvider.Now().In(uc.location)
	today := domain.DateOf(now)

	// 3. Получаем мастера
	staff, err := uc.salonClient.GetStaff(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, salonClient.ErrStaffNotFound) {
			uc.logger.Warn("CreateReservation: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("CreateReservation: failed to get staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
	}

	if staff.SalonID != req.SalonID || !staff.IsActive {
		uc.logger.Warn("CreateReservation: staff id=%d is not active in salon id=%d", req.StaffID, req.SalonID)
		return nil, ErrStaffNotFound
	}

	// 4. Получаем меню
	menu, err := uc.salonClient.GetMenu(ctx, req.SalonID, req.MenuID)
	if err != nil {
		if errors.Is(err, salonClient.ErrMenuNotFound) {
			uc.logger.Warn("CreateReservation: menu id=%d not found", req.MenuID)
			return nil, ErrMenuNotFound
		}
		uc.logger.Error("CreateReservation: failed to get menu id=%d: %v", req.MenuID, err)
		return nil, fmt.Errorf("%w: failed to get menu: %v", ErrInternal, err)
	}

	if err := validateDuration(menu.DurationMinutes); err != nil {
		uc.logger.Warn("CreateReservation: menu id=%d: %v", req.MenuID, err)
		return nil, err
	}

	// 5. Получаем клиента (graceful degradation: без имени, если справочник недоступен)
	customerName := ""
	customer, err := uc.salonClient.GetCustomerWithGracefulDegradation(ctx, req.CustomerID)
	switch {
	case err == nil:
		customerName = customer.Name
	case errors.Is(err, salonClient.ErrCustomerNotFound):
		uc.logger.Warn("CreateReservation: customer id=%d not found", req.CustomerID)
		return nil, ErrCustomerNotFound
	case errors.Is(err, salonClient.ErrServiceDegraded):
		uc.logger.Warn("CreateReservation: creating reservation without customer name: %v", err)
	default:
		uc.logger.Error("CreateReservation: failed to get customer id=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: failed to get customer: %v", ErrInternal, err)
	}

	// 6. Вычисляем интервал бронирования
	start, end, err := resolveInterval(req, menu.DurationMinutes)
	if err != nil {
		uc.logger.Warn("CreateReservation: %v", err)
		return nil, err
	}

	// 7. Валидация даты и времени с учетом политики салона
	if err := validateDate(date, today, uc.policy.AdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateReservation: date validation failed: %v", err)
		return nil, err
	}

	if err := validateBookingTime(date, today, domain.MinuteOfDay(now), start, uc.policy.MinBookingNoticeMinutes); err != nil {
		uc.logger.Warn("CreateReservation: booking time validation failed: %v", err)
		return nil, err
	}

	intent := domain.ReservationIntent{
		SalonID:     req.SalonID,
		StaffID:     req.StaffID,
		MenuID:      req.MenuID,
		CustomerID:  req.CustomerID,
		Date:        date,
		StartMinute: start,
		EndMinute:   end,
		Notes:       req.Notes,
	}

	// 8. Блокировка расписания мастера на дату
	key := lockKey(req.StaffID, date)

	lockCtx, cancel := context.WithTimeout(ctx, uc.lockWait)
	release, err := uc.locker.Acquire(lockCtx, key)
	cancel()
	if err != nil {
		uc.logger.Warn("CreateReservation: failed to acquire lock %s: %v", key, err)
		return nil, fmt.Errorf("%w: %v", ErrLockUnavailable, err)
	}
	defer func() {
		if relErr := release(); relErr != nil {
			uc.logger.Warn("CreateReservation: failed to release lock %s: %v", key, relErr)
		}
	}()

	// 9. С этого момента операция доводится до конца независимо от отмены запроса
	commitCtx := context.WithoutCancel(ctx)

	var result *domain.Reservation

	// 10. Повторная проверка и запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(commitCtx, func(txCtx context.Context) error {
		// 10.1. Выходные мастера и салона
		if err := uc.checkHolidays(txCtx, intent); err != nil {
			return err
		}

		// 10.2. Рабочие часы
		if err := uc.checkBusinessHours(txCtx, intent); err != nil {
			return err
		}

		// 10.3. Текущие бронирования мастера с блокировкой строк (FOR UPDATE)
		bookings, err := uc.reservationRepo.ListBookings(txCtx, intent.StaffID, intent.Date)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}

		// 10.4. Проверка пересечений [start, end)
		existing, err := findConflict(intent, bookings)
		if err != nil {
			uc.logger.Error("CreateReservation: staff id=%d date=%s: %v", intent.StaffID, date.Format(domain.DateFormat), err)
			return err
		}
		if existing != nil {
			return &ConflictError{Existing: existing}
		}

		// 10.5. Создаем бронирование с денормализацией данных
		startTime, endTime, err := intervalTimes(intent.StartMinute, intent.EndMinute)
		if err != nil {
			uc.logger.Error("CreateReservation: %v", err)
			return err
		}

		reservation := &domain.Reservation{
			SalonID:      intent.SalonID,
			StaffID:      intent.StaffID,
			MenuID:       intent.MenuID,
			CustomerID:   intent.CustomerID,
			Date:         intent.Date,
			StartTime:    startTime,
			EndTime:      endTime,
			Status:       domain.StatusConfirmed,
			CustomerName: customerName,
			StaffName:    staff.Name,
			MenuName:     menu.Name,
			Notes:        intent.Notes,
		}

		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrOverlap) {
				return err
			}
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// БД отклонила запись из-за параллельной транзакции - читаем победителя
		if errors.Is(err, reservationRepo.ErrOverlap) || txmanager.IsSerializationFailure(err) {
			err = uc.resolveConflict(commitCtx, intent, err)
		}

		var conflict *ConflictError
		if errors.As(err, &conflict) {
			uc.logger.Warn("CreateReservation: conflict for staff=%d date=%s %s-%s: %v",
				intent.StaffID, date.Format(domain.DateFormat), req.StartTime, mustClock(intent.EndMinute), conflict)
		}
		return nil, err
	}

	uc.logger.Info("CreateReservation: successfully created reservation id=%d", result.ID)

	return toResponse(result), nil
}

// checkHolidays проверяет выходные мастера и салона
func (uc *UseCase) checkHolidays(ctx context.Context, intent domain.ReservationIntent) error {
	staffHolidays, err := uc.scheduleRepo.GetStaffHolidays(ctx, intent.StaffID, intent.Date, intent.Date)
	if err != nil {
		uc.logger.Error("CreateReservation: failed to get staff holidays: %v", err)
		return fmt.Errorf("%w: failed to get staff holidays: %v", ErrInternal, err)
	}
	if staffHolidays.Contains(intent.Date) {
		uc.logger.Warn("CreateReservation: staff id=%d is on holiday %s", intent.StaffID, intent.Date.Format(domain.DateFormat))
		return ErrHoliday
	}

	salonHolidays, err := uc.scheduleRepo.GetSalonHolidays(ctx, intent.SalonID, intent.Date, intent.Date)
	if err != nil {
		uc.logger.Error("CreateReservation: failed to get salon holidays: %v", err)
		return fmt.Errorf("%w: failed to get salon holidays: %v", ErrInternal, err)
	}
	if salonHolidays.Contains(intent.Date) {
		uc.logger.Warn("CreateReservation: salon id=%d is closed for holiday %s", intent.SalonID, intent.Date.Format(domain.DateFormat))
		return ErrHoliday
	}

	return nil
}

// checkBusinessHours проверяет, что интервал целиком внутри рабочих часов
func (uc *UseCase) checkBusinessHours(ctx context.Context, intent domain.ReservationIntent) error {
	hours, err := uc.scheduleRepo.GetBusinessHours(ctx, intent.SalonID, intent.Date.Weekday())
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrHoursNotFound) {
			uc.logger.Warn("CreateReservation: salon id=%d has no business hours for %s", intent.SalonID, intent.Date.Weekday())
			return ErrSalonClosed
		}
		uc.logger.Error("CreateReservation: failed to get business hours: %v", err)
		return fmt.Errorf("%w: failed to get business hours: %v", ErrInternal, err)
	}

	if hours.IsClosed {
		uc.logger.Warn("CreateReservation: salon id=%d is closed on %s", intent.SalonID, intent.Date.Weekday())
		return ErrSalonClosed
	}

	if _, _, err := hours.Bounds(); err != nil {
		uc.logger.Error("CreateReservation: salon id=%d has invalid business hours id=%d: %v", intent.SalonID, hours.ID, err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if !hours.Contains(intent.StartMinute, intent.EndMinute) {
		uc.logger.Warn("CreateReservation: %s-%s is outside business hours %s-%s",
			mustClock(intent.StartMinute), mustClock(intent.EndMinute), hours.OpenTime, hours.CloseTime)
		return ErrOutsideBusinessHours
	}

	return nil
}

// resolveConflict перечитывает бронирования после отказа БД и возвращает ConflictError с победителем.
// Если пересечения не видно, а причина - конфликт сериализации, запрос можно повторить.
func (uc *UseCase) resolveConflict(ctx context.Context, intent domain.ReservationIntent, cause error) error {
	uc.logger.Warn("CreateReservation: concurrent write detected for staff=%d date=%s: %v",
		intent.StaffID, intent.Date.Format(domain.DateFormat), cause)

	bookings, err := uc.reservationRepo.ListBookings(ctx, intent.StaffID, intent.Date)
	if err != nil {
		uc.logger.Error("CreateReservation: failed to re-read bookings: %v", err)
	} else if existing, _ := findConflict(intent, bookings); existing != nil {
		return &ConflictError{Existing: existing}
	}

	if errors.Is(cause, reservationRepo.ErrOverlap) {
		return &ConflictError{}
	}
	return fmt.Errorf("%w: %v", ErrLockUnavailable, cause)
}

func (uc *UseCase) recordOutcome(err error) {
	if uc.metrics == nil {
		return
	}

	switch {
	case err == nil:
		uc.metrics.IncReservation(metrics.OutcomeCreated)
	case errors.Is(err, ErrConflict):
		uc.metrics.IncReservation(metrics.OutcomeConflict)
	default:
		uc.metrics.IncReservation(metrics.OutcomeFailed)
	}
}

func mustClock(minute int) string {
	s, err := types.ToClockString(minute)
	if err != nil {
		return fmt.Sprintf("%dmin", minute)
	}
	return s
}

func toResponse(r *domain.Reservation) *Response {
	return &Response{
		ID:           r.ID,
		SalonID:      r.SalonID,
		StaffID:      r.StaffID,
		MenuID:       r.MenuID,
		CustomerID:   r.CustomerID,
		Date:         r.Date,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Status:       string(r.Status),
		CustomerName: r.CustomerName,
		StaffName:    r.StaffName,
		MenuName:     r.MenuName,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
