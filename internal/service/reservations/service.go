package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	reservationRepo "github.com/atsuki-sakai/salon-system-sub000/internal/infra/storage/reservation"
	salonClient "github.com/atsuki-sakai/salon-system-sub000/internal/integrations/salonservice"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/reservations/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	reservationRepo ReservationRepository
	txManager       TransactionManager
	salonClient     SalonServiceClient
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	txManager TransactionManager,
	salonClient SalonServiceClient,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		txManager:       txManager,
		salonClient:     salonClient,
		logger:          logger,
	}
}

// GetByID получает бронирование по ID
// Клиент видит только своё бронирование, менеджер салона - любое бронирование салона
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, userID)

	reservation, err := s.getReservation(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, reservation, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to reservation id=%d", userID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched reservation id=%d", id)
	return models.FromDomainReservation(reservation), nil
}

// GetCustomerReservations получает историю бронирований клиента
// Отменённые бронирования включаются, корзина - нет
func (s *Service) GetCustomerReservations(ctx context.Context, req *models.GetCustomerReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetCustomerReservations: fetching reservations for customer=%d, status=%v", req.UserID, req.Status)

	filter := domain.ReservationsFilter{
		CustomerID:      &req.UserID,
		IncludeInactive: true,
	}

	if req.Status != nil {
		status, err := models.ToDomainReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerReservations: invalid status=%s for customer=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	reservations, err := s.reservationRepo.GetWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetCustomerReservations: repository error for customer=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetCustomerReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerReservations: successfully fetched %d reservations for customer=%d", len(reservations), req.UserID)
	return models.FromDomainReservationList(reservations), nil
}

// GetSalonReservations получает бронирования салона с фильтрацией
// по мастеру, периоду и статусу. Доступно только менеджерам салона
func (s *Service) GetSalonReservations(ctx context.Context, req *models.GetSalonReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetSalonReservations: fetching reservations for salon=%d, user=%d, staff=%v, includeInactive=%t",
		req.SalonID, req.UserID, req.StaffID, req.IncludeInactive)

	// 1. Проверяем права доступа менеджера
	if err := s.checkManagerAccess(ctx, req.SalonID, req.UserID); err != nil {
		return nil, err
	}

	// 2. Конвертируем request в domain фильтр
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetSalonReservations: invalid filter for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 3. Получаем бронирования
	reservations, err := s.reservationRepo.GetWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetSalonReservations: repository error for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: GetSalonReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetSalonReservations: successfully fetched %d reservations for salon=%d", len(reservations), req.SalonID)
	return models.FromDomainReservationList(reservations), nil
}

// Cancel отменяет бронирование
// Клиент отменяет своё бронирование (cancelled_by_customer),
// менеджер салона - любое бронирование салона (cancelled_by_salon)
func (s *Service) Cancel(ctx context.Context, reservationID int64, req *models.CancelReservationRequest) error {
	s.logger.Info("Cancel: cancelling reservation id=%d by user=%d", reservationID, req.UserID)

	// 1. Валидация причины отмены
	if req.CancellationReason != nil && len([]rune(*req.CancellationReason)) > domain.MaxCancellationReasonLength {
		s.logger.Warn("Cancel: cancellation reason is too long for reservation id=%d", reservationID)
		return fmt.Errorf("%w: cancellation reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	// 2-5. Чтение, проверки и отмена в одной транзакции: строка блокируется до commit
	var cancelStatus domain.ReservationStatus
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		reservation, err := s.getReservation(ctx, "Cancel", reservationID)
		if err != nil {
			return err
		}

		// Проверяем, можно ли отменить бронирование
		if !reservation.CanBeCancelled() {
			s.logger.Warn("Cancel: reservation id=%d cannot be cancelled, status=%s", reservationID, reservation.Status)
			return ErrCannotCancel
		}

		// Статус отмены зависит от того, кто отменяет
		if reservation.CustomerID == req.UserID {
			cancelStatus = domain.StatusCancelledByCustomer
		} else {
			if err := s.checkManagerAccess(ctx, reservation.SalonID, req.UserID); err != nil {
				s.logger.Warn("Cancel: access denied for user=%d to cancel reservation id=%d", req.UserID, reservationID)
				return err
			}
			cancelStatus = domain.StatusCancelledBySalon
		}

		// Репозиторий обновляет только подтверждённые записи
		if err := s.reservationRepo.Cancel(ctx, reservationID, cancelStatus, req.CancellationReason); err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				s.logger.Warn("Cancel: reservation id=%d is no longer confirmed", reservationID)
				return ErrCannotCancel
			}
			s.logger.Error("Cancel: repository error for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return s.mapTxError("Cancel", err)
	}

	s.logger.Info("Cancel: successfully cancelled reservation id=%d with status=%s", reservationID, cancelStatus)
	return nil
}

// MoveToTrash переносит бронирование в корзину (мягкое удаление)
// Доступно только менеджерам салона
func (s *Service) MoveToTrash(ctx context.Context, reservationID int64, userID int64) error {
	s.logger.Info("MoveToTrash: trashing reservation id=%d by user=%d", reservationID, userID)

	reservation, err := s.getReservation(ctx, "MoveToTrash", reservationID)
	if err != nil {
		return err
	}

	if err := s.checkManagerAccess(ctx, reservation.SalonID, userID); err != nil {
		return err
	}

	if reservation.IsTrashed() {
		s.logger.Info("MoveToTrash: reservation id=%d is already in trash", reservationID)
		return nil
	}

	if err := s.reservationRepo.MoveToTrash(ctx, reservationID); err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			// Параллельный запрос уже перенёс запись в корзину
			s.logger.Info("MoveToTrash: reservation id=%d was trashed concurrently", reservationID)
			return nil
		}
		s.logger.Error("MoveToTrash: repository error for reservation id=%d: %v", reservationID, err)
		return fmt.Errorf("%w: MoveToTrash - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("MoveToTrash: successfully trashed reservation id=%d", reservationID)
	return nil
}

// Вспомогательные методы

// mapTxError пропускает ошибки сервиса, а сбои транзакции переводит в ErrInternal
func (s *Service) mapTxError(op string, err error) error {
	for _, known := range []error{ErrReservationNotFound, ErrSalonNotFound, ErrAccessDenied, ErrCannotCancel, ErrInvalidInput, ErrInternal} {
		if errors.Is(err, known) {
			return err
		}
	}
	s.logger.Error("%s: transaction error: %v", op, err)
	return fmt.Errorf("%w: %s - transaction error: %v", ErrInternal, op, err)
}

// getReservation получает бронирование и переводит ошибки репозитория в ошибки сервиса
func (s *Service) getReservation(ctx context.Context, op string, id int64) (*domain.Reservation, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: reservation id must be positive", ErrInvalidInput)
	}

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return reservation, nil
}

// checkUserAccess проверяет, что пользователь - клиент бронирования или менеджер салона
func (s *Service) checkUserAccess(ctx context.Context, reservation *domain.Reservation, userID int64) error {
	if reservation.CustomerID == userID {
		return nil
	}
	return s.checkManagerAccess(ctx, reservation.SalonID, userID)
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
