package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/dbmetrics"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/psqlbuilder"
)

const businessHoursTable = "salon_business_hours"

var businessHoursColumns = []string{
	"id",
	"salon_id",
	"weekday",
	"open_time",
	"close_time",
	"is_closed",
	"created_at",
	"updated_at",
}

// Repository репозиторий рабочих часов и выходных салона
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBusinessHoursByWeekday получает рабочие часы ровно одного уровня:
// weekday == nil - общее расписание салона, иначе - переопределение для дня недели
func (r *Repository) GetBusinessHoursByWeekday(ctx context.Context, salonID int64, weekday *time.Weekday) (*domain.BusinessHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(businessHoursColumns...).
		From(businessHoursTable).
		Where(squirrel.Eq{"salon_id": salonID})

	// Фильтрация по weekday (NULL или конкретное значение)
	if weekday == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"weekday": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"weekday": int(*weekday)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHoursByWeekday - build select query: %v", ErrBuildQuery, err)
	}

	hours, err := scanBusinessHours(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHoursNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHoursByWeekday - scan hours: %v", ErrScanRow, err)
	}

	return hours, nil
}

// GetBusinessHours получает рабочие часы на день недели с учетом иерархии:
// 1. Переопределение для дня недели (salon_id, weekday)
// 2. Общее расписание салона (salon_id, NULL)
//
// Если не найдено ни на одном уровне, возвращает ErrHoursNotFound
func (r *Repository) GetBusinessHours(ctx context.Context, salonID int64, weekday time.Weekday) (*domain.BusinessHours, error) {
	// 1. Пробуем получить переопределение для дня недели
	hours, err := r.GetBusinessHoursByWeekday(ctx, salonID, &weekday)
	if err == nil {
		return hours, nil
	}
	if !errors.Is(err, ErrHoursNotFound) {
		return nil, fmt.Errorf("%w: GetBusinessHours - level 1 (weekday): %v", ErrExecQuery, err)
	}

	// 2. Пробуем получить общее расписание
	hours, err = r.GetBusinessHoursByWeekday(ctx, salonID, nil)
	if err == nil {
		return hours, nil
	}
	if !errors.Is(err, ErrHoursNotFound) {
		return nil, fmt.Errorf("%w: GetBusinessHours - level 2 (common): %v", ErrExecQuery, err)
	}

	return nil, ErrHoursNotFound
}

// ListBusinessHours получает все уровни расписания салона (общее первым)
func (r *Repository) ListBusinessHours(ctx context.Context, salonID int64) ([]*domain.BusinessHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(businessHoursColumns...).
		From(businessHoursTable).
		Where(squirrel.Eq{"salon_id": salonID}).
		OrderBy("weekday ASC NULLS FIRST").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListBusinessHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBusinessHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.BusinessHours, 0)
	for rows.Next() {
		hours, err := scanBusinessHours(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListBusinessHours - scan row: %v", ErrScanRow, err)
		}
		result = append(result, hours)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBusinessHours - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// UpsertBusinessHours создает или заменяет расписание уровня (salon_id, weekday)
func (r *Repository) UpsertBusinessHours(ctx context.Context, hours *domain.BusinessHours) (*domain.BusinessHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var weekday interface{}
	if hours.Weekday != nil {
		weekday = int(*hours.Weekday)
	}

	query, args, err := psqlbuilder.Insert(businessHoursTable).
		Columns(
			"salon_id",
			"weekday",
			"open_time",
			"close_time",
			"is_closed",
		).
		Values(
			hours.SalonID,
			weekday,
			hours.OpenTime,
			hours.CloseTime,
			hours.IsClosed,
		).
		Suffix(`ON CONFLICT (salon_id, (COALESCE(weekday, -1))) DO UPDATE SET
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			is_closed = EXCLUDED.is_closed,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertBusinessHours - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&hours.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertBusinessHours - execute insert: %v", ErrExecQuery, err)
	}

	hours.CreatedAt = createdAt.Time
	hours.UpdatedAt = updatedAt.Time

	return hours, nil
}

// DeleteBusinessHours удаляет расписание уровня (salon_id, weekday)
func (r *Repository) DeleteBusinessHours(ctx context.Context, salonID int64, weekday *time.Weekday) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteBuilder := psqlbuilder.Delete(businessHoursTable).
		Where(squirrel.Eq{"salon_id": salonID})

	if weekday == nil {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"weekday": nil})
	} else {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"weekday": int(*weekday)})
	}

	query, args, err := deleteBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteBusinessHours - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteBusinessHours - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteBusinessHours - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrHoursNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBusinessHours сканирует одну строку salon_business_hours
func scanBusinessHours(row rowScanner) (*domain.BusinessHours, error) {
	var (
		hours                domain.BusinessHours
		weekday              sql.NullInt16
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&hours.ID,
		&hours.SalonID,
		&weekday,
		&hours.OpenTime,
		&hours.CloseTime,
		&hours.IsClosed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if weekday.Valid {
		wd := time.Weekday(weekday.Int16)
		hours.Weekday = &wd
	}
	hours.CreatedAt = createdAt.Time
	hours.UpdatedAt = updatedAt.Time

	return &hours, nil
}
