package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) DefaultSchedule(ctx context.Context, tenantID string) (*Schedule, error) {
	var sch Schedule
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, start_time, end_time, grace_minutes, work_days, is_default, created_at
    FROM work_schedules
    WHERE tenant_id = $1 AND is_default
  `, tenantID).Scan(&sch.ID, &sch.Name, &sch.StartTime, &sch.EndTime, &sch.GraceMinutes, &sch.WorkDays, &sch.IsDefault, &sch.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sch, nil
}

func (s *Store) ListSchedules(ctx context.Context, tenantID string) ([]Schedule, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_time, end_time, grace_minutes, work_days, is_default, created_at
    FROM work_schedules
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Schedule
	for rows.Next() {
		var sch Schedule
		if err := rows.Scan(&sch.ID, &sch.Name, &sch.StartTime, &sch.EndTime, &sch.GraceMinutes, &sch.WorkDays, &sch.IsDefault, &sch.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sch)
	}
	return out, nil
}

func (s *Store) CreateSchedule(ctx context.Context, tenantID string, sch Schedule) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO work_schedules (tenant_id, name, start_time, end_time, grace_minutes, work_days, is_default)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, tenantID, sch.Name, sch.StartTime, sch.EndTime, sch.GraceMinutes, sch.WorkDays, sch.IsDefault).Scan(&id)
	return id, err
}

func (s *Store) ListHolidays(ctx context.Context, tenantID string, year int) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, date, name, created_at
    FROM holidays
    WHERE tenant_id = $1 AND EXTRACT(YEAR FROM date) = $2
    ORDER BY date
  `, tenantID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (s *Store) CreateHoliday(ctx context.Context, tenantID string, date time.Time, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (tenant_id, date, name)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenantID, date, name).Scan(&id)
	return id, err
}

func (s *Store) DeleteHoliday(ctx context.Context, tenantID, holidayID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM holidays WHERE tenant_id = $1 AND id = $2", tenantID, holidayID)
	return err
}

func (s *Store) EntryForDay(ctx context.Context, tenantID, employeeID string, day time.Time) (*Entry, error) {
	var e Entry
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, date, check_in, check_out, status, late_minutes, created_at
    FROM attendance_entries
    WHERE tenant_id = $1 AND employee_id = $2 AND date = $3
  `, tenantID, employeeID, day).Scan(&e.ID, &e.EmployeeID, &e.Date, &e.CheckIn, &e.CheckOut, &e.Status, &e.LateMinutes, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) InsertCheckIn(ctx context.Context, tenantID, employeeID string, day, checkIn time.Time, status string, lateMinutes int) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance_entries (tenant_id, employee_id, date, check_in, status, late_minutes)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, tenantID, employeeID, day, checkIn, status, lateMinutes).Scan(&id)
	return id, err
}

func (s *Store) SetCheckOut(ctx context.Context, tenantID, entryID string, checkOut time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance_entries SET check_out = $1
    WHERE tenant_id = $2 AND id = $3 AND check_out IS NULL
  `, checkOut, tenantID, entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotCheckedIn
	}
	return nil
}

func (s *Store) ListEntries(ctx context.Context, tenantID, employeeID string, from, to time.Time) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, date, check_in, check_out, status, late_minutes, created_at
    FROM attendance_entries
    WHERE tenant_id = $1 AND employee_id = $2 AND date BETWEEN $3 AND $4
    ORDER BY date DESC
  `, tenantID, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Date, &e.CheckIn, &e.CheckOut, &e.Status, &e.LateMinutes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// MarkAbsences inserts absent rows for active employees with no entry on the
// given day. Days already marked are skipped, so the sweep can rerun safely.
func (s *Store) MarkAbsences(ctx context.Context, tenantID string, day time.Time) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO attendance_entries (tenant_id, employee_id, date, status)
    SELECT e.tenant_id, e.id, $2, $3
    FROM employees e
    WHERE e.tenant_id = $1 AND e.status = 'active'
      AND NOT EXISTS (
        SELECT 1 FROM attendance_entries a
        WHERE a.tenant_id = e.tenant_id AND a.employee_id = e.id AND a.date = $2
      )
  `, tenantID, day, StatusAbsent)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) Summarize(ctx context.Context, tenantID, employeeID string, year, month int) (MonthlySummary, error) {
	summary := MonthlySummary{EmployeeID: employeeID, Year: year, Month: month}
	err := s.DB.QueryRow(ctx, `
    SELECT
      COUNT(1) FILTER (WHERE status = $4),
      COUNT(1) FILTER (WHERE status = $5),
      COUNT(1) FILTER (WHERE status = $6),
      COALESCE(SUM(EXTRACT(EPOCH FROM (check_out - check_in)) / 3600) FILTER (WHERE check_out IS NOT NULL), 0),
      COALESCE(SUM(late_minutes), 0)
    FROM attendance_entries
    WHERE tenant_id = $1 AND employee_id = $2
      AND EXTRACT(YEAR FROM date) = $3 AND EXTRACT(MONTH FROM date) = $7
  `, tenantID, employeeID, year, StatusPresent, StatusLate, StatusAbsent, month).Scan(
		&summary.PresentDays, &summary.LateDays, &summary.AbsentDays, &summary.WorkedHours, &summary.TotalLateMin,
	)
	return summary, err
}
