package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/dbmetrics"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/psqlbuilder"
)

const reservationsTable = "reservations"

// PostgreSQL error code for exclusion_violation
const codeExclusionViolation = "23P01"

var reservationColumns = []string{
	"id",
	"salon_id",
	"staff_id",
	"menu_id",
	"customer_id",
	"date",
	"start_time",
	"end_time",
	"status",
	"customer_name",
	"staff_name",
	"menu_name",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"trashed_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями салона
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
//
// Пересечение с другим активным бронированием мастера на ту же дату
// отклоняется ограничением EXCLUDE в БД, в этом случае возвращается ErrOverlap.
func (r *Repository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	interval, err := reservation.Interval()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - %v", ErrInvalidInterval, err)
	}

	query, args, err := psqlbuilder.Insert(reservationsTable).
		Columns(
			"salon_id",
			"staff_id",
			"menu_id",
			"customer_id",
			"date",
			"start_time",
			"end_time",
			"start_minute",
			"end_minute",
			"status",
			"customer_name",
			"staff_name",
			"menu_name",
			"notes",
		).
		Values(
			reservation.SalonID,
			reservation.StaffID,
			reservation.MenuID,
			reservation.CustomerID,
			reservation.Date.Format(domain.DateFormat),
			reservation.StartTime,
			reservation.EndTime,
			interval.StartMinute,
			interval.EndMinute,
			reservation.Status,
			reservation.CustomerName,
			reservation.StaffName,
			reservation.MenuName,
			reservation.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&reservation.ID,
		&createdAt,
		&updatedAt,
	)

	if isExclusionViolation(err) {
		return nil, ErrOverlap
	}
	if err != nil {
		// %w сохраняет pq.Error, чтобы менеджер транзакций распознал конфликт сериализации
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	reservation.Date = domain.DateOf(reservation.Date)
	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return reservation, nil
}

// GetByID получает бронирование по ID (включая отменённые и удалённые в корзину).
// Внутри транзакции строка блокируется (FOR UPDATE) до её завершения.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(reservationsTable).
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	reservation, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return reservation, nil
}

// ListBookings получает активные бронирования мастера на дату, отсортированные по времени начала.
// Внутри транзакции строки блокируются (FOR UPDATE) до её завершения.
func (r *Repository) ListBookings(ctx context.Context, staffID int64, date time.Time) ([]*domain.Reservation, error) {
	return r.GetWithFilter(ctx, domain.ReservationsFilter{
		StaffID:   &staffID,
		StartDate: &date,
		EndDate:   &date,
	})
}

// GetWithFilter получает бронирования с гибкой фильтрацией
// Поддерживает фильтрацию по:
// - Салону (SalonID) - если не ноль
// - Мастеру (StaffID) и клиенту (CustomerID) - опционально
// - Периоду (StartDate, EndDate) - опционально
// - Статусу (Status) - опционально
// - Включению отменённых (IncludeInactive) и удалённых в корзину (IncludeTrashed)
//
// Примеры использования:
//
// 1. Все активные бронирования салона:
//    filter := domain.ReservationsFilter{SalonID: 1}
//
// 2. Бронирования мастера на конкретную дату:
//    date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
//    filter := domain.ReservationsFilter{SalonID: 1, StaffID: &staffID, StartDate: &date, EndDate: &date}
//
// 3. История клиента вместе с отменёнными:
//    filter := domain.ReservationsFilter{SalonID: 1, CustomerID: &customerID, IncludeInactive: true}
func (r *Repository) GetWithFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(reservationsTable)

	if filter.SalonID != 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"salon_id": filter.SalonID})
	}
	if filter.StaffID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": *filter.StaffID})
	}
	if filter.CustomerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	// Фильтрация по периоду
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"date": filter.StartDate.Format(domain.DateFormat)})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"date": filter.EndDate.Format(domain.DateFormat)})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		// Если не указан конкретный статус и не нужны неактивные - исключаем их
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	if !filter.IncludeTrashed {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"trashed_at": nil})
	}

	// Для конкретной даты сортируем по времени начала, для периода - сначала новые
	if filter.IsSingleDay() {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("date DESC", "start_time DESC")
	}

	// В транзакции блокируем строки одного дня (для usecase создания бронирования)
	if dbmetrics.IsInTransaction(ctx) && filter.IsSingleDay() {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	reservations := make([]*domain.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetWithFilter - scan row: %v", ErrScanRow, err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - rows error: %v", ErrScanRow, err)
	}

	return reservations, nil
}

// Cancel отменяет активное бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, status domain.ReservationStatus, reason *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(reservationsTable).
		Set("status", status).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.StatusConfirmed}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execUpdate(ctx, executor, "Cancel", query, args)
}

// MoveToTrash помечает бронирование удалённым в корзину. История сохраняется.
func (r *Repository) MoveToTrash(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(reservationsTable).
		Set("trashed_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "trashed_at": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MoveToTrash - build update query: %v", ErrBuildQuery, err)
	}

	return r.execUpdate(ctx, executor, "MoveToTrash", query, args)
}

func (r *Repository) execUpdate(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanReservation сканирует одну строку reservations
func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		reservation          domain.Reservation
		notes, reason        sql.NullString
		cancelledAt, trashed sql.NullTime
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&reservation.ID,
		&reservation.SalonID,
		&reservation.StaffID,
		&reservation.MenuID,
		&reservation.CustomerID,
		&reservation.Date,
		&reservation.StartTime,
		&reservation.EndTime,
		&reservation.Status,
		&reservation.CustomerName,
		&reservation.StaffName,
		&reservation.MenuName,
		&notes,
		&reason,
		&cancelledAt,
		&trashed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	reservation.Date = domain.DateOf(reservation.Date)
	if notes.Valid {
		reservation.Notes = &notes.String
	}
	if reason.Valid {
		reservation.CancellationReason = &reason.String
	}
	if cancelledAt.Valid {
		reservation.CancelledAt = &cancelledAt.Time
	}
	if trashed.Valid {
		reservation.TrashedAt = &trashed.Time
	}
	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return &reservation, nil
}

// isExclusionViolation сообщает, что вставка нарушила EXCLUDE-ограничение
func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == codeExclusionViolation
}
