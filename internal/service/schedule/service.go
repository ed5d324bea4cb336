package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	scheduleRepo "github.com/atsuki-sakai/salon-system-sub000/internal/infra/storage/schedule"
	salonClient "github.com/atsuki-sakai/salon-system-sub000/internal/integrations/salonservice"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule/models"
)

// maxHolidayRangeDays ограничивает период выборки выходных
const maxHolidayRangeDays = 366

// Service сервис для управления расписанием салона: рабочие часы и выходные
type Service struct {
	scheduleRepo ScheduleRepository
	salonClient  SalonServiceClient
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	scheduleRepo ScheduleRepository,
	salonClient SalonServiceClient,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		salonClient:  salonClient,
		logger:       logger,
	}
}

// GetBusinessHours получает все уровни рабочих часов салона
// Публичный метод - доступен всем
func (s *Service) GetBusinessHours(ctx context.Context, salonID int64) (*models.BusinessHoursListResponse, error) {
	s.logger.Info("GetBusinessHours: fetching business hours for salon=%d", salonID)

	if salonID <= 0 {
		return nil, fmt.Errorf("%w: salon id must be positive", ErrInvalidInput)
	}

	hours, err := s.scheduleRepo.ListBusinessHours(ctx, salonID)
	if err != nil {
		s.logger.Error("GetBusinessHours: repository error for salon=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: GetBusinessHours - repository error: %v", ErrInternal, err)
	}

	// Пустой список допустим только для существующего салона
	if len(hours) == 0 {
		if err := s.checkSalonExists(ctx, "GetBusinessHours", salonID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("GetBusinessHours: successfully fetched %d entries for salon=%d", len(hours), salonID)
	return models.FromDomainHoursList(hours), nil
}

// UpsertBusinessHours создает или заменяет общее расписание либо расписание дня недели
// Доступно только менеджерам салона
func (s *Service) UpsertBusinessHours(ctx context.Context, req *models.UpsertBusinessHoursRequest) (*models.BusinessHoursResponse, error) {
	s.logger.Info("UpsertBusinessHours: salon=%d, weekday=%v, open=%s, close=%s, closed=%t by user=%d",
		req.SalonID, req.Weekday, req.OpenTime, req.CloseTime, req.IsClosed, req.UserID)

	// 1. Конвертируем и валидируем входные данные
	hours, err := req.ToDomainHours()
	if err != nil {
		s.logger.Warn("UpsertBusinessHours: invalid request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := hours.Validate(); err != nil {
		s.logger.Warn("UpsertBusinessHours: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Проверяем права доступа (только менеджер салона)
	if err := s.checkManagerAccess(ctx, req.SalonID, req.UserID); err != nil {
		return nil, err
	}

	// 3. Сохраняем
	saved, err := s.scheduleRepo.UpsertBusinessHours(ctx, hours)
	if err != nil {
		s.logger.Error("UpsertBusinessHours: repository error for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: UpsertBusinessHours - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertBusinessHours: successfully saved business hours id=%d", saved.ID)
	return models.FromDomainHours(saved), nil
}

// DeleteBusinessHours удаляет общее расписание или расписание дня недели
// Доступно только менеджерам салона
func (s *Service) DeleteBusinessHours(ctx context.Context, req *models.DeleteBusinessHoursRequest) error {
	s.logger.Info("DeleteBusinessHours: salon=%d, weekday=%v by user=%d", req.SalonID, req.Weekday, req.UserID)

	weekday, err := models.ToWeekday(req.Weekday)
	if err != nil {
		s.logger.Warn("DeleteBusinessHours: invalid request: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.checkManagerAccess(ctx, req.SalonID, req.UserID); err != nil {
		return err
	}

	if err := s.scheduleRepo.DeleteBusinessHours(ctx, req.SalonID, weekday); err != nil {
		if errors.Is(err, scheduleRepo.ErrHoursNotFound) {
			s.logger.Warn("DeleteBusinessHours: business hours for salon=%d, weekday=%v not found", req.SalonID, req.Weekday)
			return ErrHoursNotFound
		}
		s.logger.Error("DeleteBusinessHours: repository error for salon=%d: %v", req.SalonID, err)
		return fmt.Errorf("%w: DeleteBusinessHours - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteBusinessHours: successfully deleted business hours for salon=%d", req.SalonID)
	return nil
}

// ListHolidays получает выходные салона или мастера за период [from, to]
// Публичный метод - доступен всем
func (s *Service) ListHolidays(ctx context.Context, req *models.ListHolidaysRequest) (*models.HolidayListResponse, error) {
	s.logger.Info("ListHolidays: salon=%d, staff=%d, period=%s to %s",
		req.SalonID, req.StaffID, req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))

	from, to := domain.DateOf(req.From), domain.DateOf(req.To)
	if to.Before(from) || to.Sub(from) > maxHolidayRangeDays*24*time.Hour {
		return nil, fmt.Errorf("%w: invalid holiday period", ErrInvalidInput)
	}

	var (
		holidays []*domain.Holiday
		err      error
	)
	switch {
	case req.StaffID > 0:
		holidays, err = s.scheduleRepo.ListStaffHolidays(ctx, req.StaffID, from, to)
	case req.SalonID > 0:
		holidays, err = s.scheduleRepo.ListSalonHolidays(ctx, req.SalonID, from, to)
	default:
		return nil, fmt.Errorf("%w: salon or staff id is required", ErrInvalidInput)
	}
	if err != nil {
		s.logger.Error("ListHolidays: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListHolidays - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainHolidayList(holidays), nil
}

// AddSalonHoliday добавляет выходной салона
// Доступно только менеджерам салона
func (s *Service) AddSalonHoliday(ctx context.Context, req *models.AddHolidayRequest) (*models.HolidayResponse, error) {
	s.logger.Info("AddSalonHoliday: salon=%d, date=%s by user=%d", req.SalonID, req.Date.Format(domain.DateFormat), req.UserID)

	if err := validateHoliday(req); err != nil {
		s.logger.Warn("AddSalonHoliday: validation failed: %v", err)
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, req.SalonID, req.UserID); err != nil {
		return nil, err
	}

	holiday, err := s.scheduleRepo.AddSalonHoliday(ctx, &domain.Holiday{
		SalonID: req.SalonID,
		Date:    domain.DateOf(req.Date),
		Reason:  req.Reason,
	})
	if err != nil {
		s.logger.Error("AddSalonHoliday: repository error for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: AddSalonHoliday - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AddSalonHoliday: successfully added holiday id=%d", holiday.ID)
	return models.FromDomainHoliday(holiday), nil
}

// DeleteSalonHoliday удаляет выходной салона
// Доступно только менеджерам салона
func (s *Service) DeleteSalonHoliday(ctx context.Context, userID, salonID int64, date time.Time) error {
	s.logger.Info("DeleteSalonHoliday: salon=%d, date=%s by user=%d", salonID, date.Format(domain.DateFormat), userID)

	if err := s.checkManagerAccess(ctx, salonID, userID); err != nil {
		return err
	}

	if err := s.scheduleRepo.DeleteSalonHoliday(ctx, salonID, domain.DateOf(date)); err != nil {
		return s.mapHolidayError("DeleteSalonHoliday", err)
	}

	s.logger.Info("DeleteSalonHoliday: successfully deleted holiday for salon=%d", salonID)
	return nil
}

// AddStaffHoliday добавляет личный выходной мастера
// Доступно только менеджерам салона, в котором работает мастер
func (s *Service) AddStaffHoliday(ctx context.Context, req *models.AddHolidayRequest) (*models.HolidayResponse, error) {
	s.logger.Info("AddStaffHoliday: staff=%d, date=%s by user=%d", req.StaffID, req.Date.Format(domain.DateFormat), req.UserID)

	if req.StaffID <= 0 {
		return nil, fmt.Errorf("%w: staff id must be positive", ErrInvalidInput)
	}

	// 1. Определяем салон мастера
	staff, err := s.getStaff(ctx, "AddStaffHoliday", req.StaffID)
	if err != nil {
		return nil, err
	}

	req.SalonID = staff.SalonID
	if err := validateHoliday(req); err != nil {
		s.logger.Warn("AddStaffHoliday: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем права доступа
	if err := s.checkManagerAccess(ctx, staff.SalonID, req.UserID); err != nil {
		return nil, err
	}

	// 3. Сохраняем
	staffID := staff.ID
	holiday, err := s.scheduleRepo.AddStaffHoliday(ctx, &domain.Holiday{
		SalonID: staff.SalonID,
		StaffID: &staffID,
		Date:    domain.DateOf(req.Date),
		Reason:  req.Reason,
	})
	if err != nil {
		s.logger.Error("AddStaffHoliday: repository error for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: AddStaffHoliday - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AddStaffHoliday: successfully added holiday id=%d", holiday.ID)
	return models.FromDomainHoliday(holiday), nil
}

// DeleteStaffHoliday удаляет личный выходной мастера
func (s *Service) DeleteStaffHoliday(ctx context.Context, userID, staffID int64, date time.Time) error {
	s.logger.Info("DeleteStaffHoliday: staff=%d, date=%s by user=%d", staffID, date.Format(domain.DateFormat), userID)

	staff, err := s.getStaff(ctx, "DeleteStaffHoliday", staffID)
	if err != nil {
		return err
	}

	if err := s.checkManagerAccess(ctx, staff.SalonID, userID); err != nil {
		return err
	}

	if err := s.scheduleRepo.DeleteStaffHoliday(ctx, staffID, domain.DateOf(date)); err != nil {
		return s.mapHolidayError("DeleteStaffHoliday", err)
	}

	s.logger.Info("DeleteStaffHoliday: successfully deleted holiday for staff=%d", staffID)
	return nil
}

// Вспомогательные методы

func validateHoliday(req *models.AddHolidayRequest) error {
	if req.SalonID <= 0 {
		return fmt.Errorf("%w: salon id must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.Reason != nil && len([]rune(*req.Reason)) > domain.MaxNotesLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	return nil
}

func (s *Service) mapHolidayError(op string, err error) error {
	if errors.Is(err, scheduleRepo.ErrHolidayNotFound) {
		s.logger.Warn("%s: holiday not found", op)
		return ErrHolidayNotFound
	}
	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// getStaff получает мастера из справочника
func (s *Service) getStaff(ctx context.Context, op string, staffID int64) (*salonClient.Staff, error) {
	staff, err := s.salonClient.GetStaff(ctx, staffID)
	if err != nil {
		if errors.Is(err, salonClient.ErrStaffNotFound) {
			s.logger.Warn("%s: staff id=%d not found", op, staffID)
			return nil, ErrStaffNotFound
		}
		s.logger.Error("%s: failed to get staff id=%d: %v", op, staffID, err)
		return nil, fmt.Errorf("%w: %s - failed to get staff: %v", ErrInternal, op, err)
	}
	return staff, nil
}

func (s *Service) checkSalonExists(ctx context.Context, op string, salonID int64) error {
	if _, err := s.salonClient.GetSalon(ctx, salonID); err != nil {
		if errors.Is(err, salonClient.ErrSalonNotFound) {
			s.logger.Warn("%s: salon id=%d not found", op, salonID)
			return ErrSalonNotFound
		}
		s.logger.Error("%s: failed to get salon id=%d: %v", op, salonID, err)
		return fmt.Errorf("%w: %s - failed to get salon: %v", ErrInternal, op, err)
	}
	return nil
}

// checkManagerAccess проверяет, что пользователь является менеджером салона
func (s *Service) checkManagerAccess(ctx context.Context, salonID int64, userID int64) error {
	salon, err := s.salonClient.GetSalon(ctx, salonID)
	if err != nil {
		if errors.Is(err, salonClient.ErrSalonNotFound) {
			s.logger.Warn("checkManagerAccess: salon id=%d not found", salonID)
			return ErrSalonNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get salon id=%d: %v", salonID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get salon: %v", ErrInternal, err)
	}

	if !salon.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of salon=%d", userID, salonID)
		return ErrAccessDenied
	}

	return nil
}
