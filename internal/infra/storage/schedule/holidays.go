package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/dbmetrics"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/psqlbuilder"
)

const (
	salonHolidaysTable = "salon_holidays"
	staffHolidaysTable = "staff_holidays"
)

// ListSalonHolidays получает выходные салона в диапазоне [from, to]
func (r *Repository) ListSalonHolidays(ctx context.Context, salonID int64, from, to time.Time) ([]*domain.Holiday, error) {
	builder := psqlbuilder.Select("id", "salon_id", "NULL::bigint", "date", "reason", "created_at").
		From(salonHolidaysTable).
		Where(squirrel.Eq{"salon_id": salonID}).
		Where(squirrel.GtOrEq{"date": from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"date": to.Format(domain.DateFormat)}).
		OrderBy("date ASC")

	return r.listHolidays(ctx, "ListSalonHolidays", builder)
}

// ListStaffHolidays получает выходные мастера в диапазоне [from, to]
func (r *Repository) ListStaffHolidays(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.Holiday, error) {
	builder := psqlbuilder.Select("id", "salon_id", "staff_id", "date", "reason", "created_at").
		From(staffHolidaysTable).
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.GtOrEq{"date": from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"date": to.Format(domain.DateFormat)}).
		OrderBy("date ASC")

	return r.listHolidays(ctx, "ListStaffHolidays", builder)
}

// GetSalonHolidays возвращает выходные салона в виде множества дат
func (r *Repository) GetSalonHolidays(ctx context.Context, salonID int64, from, to time.Time) (domain.HolidaySet, error) {
	holidays, err := r.ListSalonHolidays(ctx, salonID, from, to)
	if err != nil {
		return nil, err
	}
	return toHolidaySet(holidays), nil
}

// GetStaffHolidays возвращает выходные мастера в виде множества дат
func (r *Repository) GetStaffHolidays(ctx context.Context, staffID int64, from, to time.Time) (domain.HolidaySet, error) {
	holidays, err := r.ListStaffHolidays(ctx, staffID, from, to)
	if err != nil {
		return nil, err
	}
	return toHolidaySet(holidays), nil
}

// AddSalonHoliday добавляет выходной салона. Повторное добавление той же даты обновляет причину.
func (r *Repository) AddSalonHoliday(ctx context.Context, holiday *domain.Holiday) (*domain.Holiday, error) {
	query, args, err := psqlbuilder.Insert(salonHolidaysTable).
		Columns("salon_id", "date", "reason").
		Values(holiday.SalonID, holiday.Date.Format(domain.DateFormat), holiday.Reason).
		Suffix("ON CONFLICT (salon_id, date) DO UPDATE SET reason = EXCLUDED.reason RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: AddSalonHoliday - build insert query: %v", ErrBuildQuery, err)
	}

	return r.insertHoliday(ctx, "AddSalonHoliday", query, args, holiday)
}

// AddStaffHoliday добавляет личный выходной мастера
func (r *Repository) AddStaffHoliday(ctx context.Context, holiday *domain.Holiday) (*domain.Holiday, error) {
	if holiday.StaffID == nil {
		return nil, fmt.Errorf("%w: AddStaffHoliday - staff id is required", ErrBuildQuery)
	}

	query, args, err := psqlbuilder.Insert(staffHolidaysTable).
		Columns("salon_id", "staff_id", "date", "reason").
		Values(holiday.SalonID, *holiday.StaffID, holiday.Date.Format(domain.DateFormat), holiday.Reason).
		Suffix("ON CONFLICT (staff_id, date) DO UPDATE SET reason = EXCLUDED.reason RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: AddStaffHoliday - build insert query: %v", ErrBuildQuery, err)
	}

	return r.insertHoliday(ctx, "AddStaffHoliday", query, args, holiday)
}

// DeleteSalonHoliday удаляет выходной салона
func (r *Repository) DeleteSalonHoliday(ctx context.Context, salonID int64, date time.Time) error {
	query, args, err := psqlbuilder.Delete(salonHolidaysTable).
		Where(squirrel.Eq{"salon_id": salonID, "date": date.Format(domain.DateFormat)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteSalonHoliday - build delete query: %v", ErrBuildQuery, err)
	}

	return r.deleteHoliday(ctx, "DeleteSalonHoliday", query, args)
}

// DeleteStaffHoliday удаляет выходной мастера
func (r *Repository) DeleteStaffHoliday(ctx context.Context, staffID int64, date time.Time) error {
	query, args, err := psqlbuilder.Delete(staffHolidaysTable).
		Where(squirrel.Eq{"staff_id": staffID, "date": date.Format(domain.DateFormat)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteStaffHoliday - build delete query: %v", ErrBuildQuery, err)
	}

	return r.deleteHoliday(ctx, "DeleteStaffHoliday", query, args)
}

func (r *Repository) listHolidays(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.Holiday, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	holidays := make([]*domain.Holiday, 0)
	for rows.Next() {
		var (
			h         domain.Holiday
			staffID   sql.NullInt64
			reason    sql.NullString
			createdAt sql.NullTime
		)

		if err := rows.Scan(&h.ID, &h.SalonID, &staffID, &h.Date, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}

		if staffID.Valid {
			h.StaffID = &staffID.Int64
		}
		if reason.Valid {
			h.Reason = &reason.String
		}
		h.Date = domain.DateOf(h.Date)
		h.CreatedAt = createdAt.Time

		holidays = append(holidays, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return holidays, nil
}

func (r *Repository) insertHoliday(ctx context.Context, op, query string, args []interface{}, holiday *domain.Holiday) (*domain.Holiday, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&holiday.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: %s - execute insert: %v", ErrExecQuery, op, err)
	}

	holiday.Date = domain.DateOf(holiday.Date)
	holiday.CreatedAt = createdAt.Time

	return holiday, nil
}

func (r *Repository) deleteHoliday(ctx context.Context, op, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute delete: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrHolidayNotFound
	}

	return nil
}

func toHolidaySet(holidays []*domain.Holiday) domain.HolidaySet {
	set := make(domain.HolidaySet, len(holidays))
	for _, h := range holidays {
		set.Add(h.Date)
	}
	return set
}
