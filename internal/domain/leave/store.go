package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/workflow"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// balanceMove names the ledger side effect a status transition carries.
type balanceMove int

const (
	moveNone    balanceMove = iota
	movePend                // submit: pending += days
	moveRelease             // reject/cancel: pending -= days
	moveConsume             // final approval: pending -= days, used += days
)

func (s *Store) ListTypes(ctx context.Context, tenantID string) ([]LeaveType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, annual_days, carry_over_limit, is_paid, created_at
    FROM leave_types
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []LeaveType
	for rows.Next() {
		var t LeaveType
		if err := rows.Scan(&t.ID, &t.Name, &t.AnnualDays, &t.CarryOverLimit, &t.IsPaid, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func (s *Store) GetType(ctx context.Context, tenantID, typeID string) (*LeaveType, error) {
	var t LeaveType
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, annual_days, carry_over_limit, is_paid, created_at
    FROM leave_types
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, typeID).Scan(&t.ID, &t.Name, &t.AnnualDays, &t.CarryOverLimit, &t.IsPaid, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) CreateType(ctx context.Context, tenantID string, payload LeaveType) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_types (tenant_id, name, annual_days, carry_over_limit, is_paid)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, tenantID, payload.Name, payload.AnnualDays, payload.CarryOverLimit, payload.IsPaid).Scan(&id)
	return id, err
}

func (s *Store) UpdateType(ctx context.Context, tenantID, typeID string, payload LeaveType) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_types SET name = $1, annual_days = $2, carry_over_limit = $3, is_paid = $4
    WHERE tenant_id = $5 AND id = $6
  `, payload.Name, payload.AnnualDays, payload.CarryOverLimit, payload.IsPaid, tenantID, typeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTypeNotFound
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, tenantID, requestID string) (*Request, error) {
	var req Request
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, leave_type_id, start_date, end_date, start_half, end_half,
           days, COALESCE(reason, ''), status, version, created_at, updated_at
    FROM leave_requests
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID).Scan(
		&req.ID, &req.EmployeeID, &req.LeaveTypeID, &req.StartDate, &req.EndDate,
		&req.StartHalf, &req.EndHalf, &req.Days, &req.Reason, &req.Status, &req.Version,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Store) ListDecisions(ctx context.Context, tenantID, requestID string) ([]Decision, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, stage, actor_user_id, action, COALESCE(reason, ''), created_at
    FROM leave_decisions
    WHERE tenant_id = $1 AND leave_request_id = $2
    ORDER BY created_at ASC
  `, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		var d Decision
		if err := rows.Scan(&d.ID, &d.Stage, &d.ActorID, &d.Action, &d.Reason, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Store) CountRequests(ctx context.Context, tenantID string, filter RequestFilter) (int, error) {
	query, args := buildRequestQuery("SELECT COUNT(1)", tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListRequests(ctx context.Context, tenantID string, filter RequestFilter, limit, offset int) ([]Request, error) {
	query, args := buildRequestQuery(`
    SELECT id, employee_id, leave_type_id, start_date, end_date, start_half, end_half,
           days, COALESCE(reason, ''), status, version, created_at, updated_at`, tenantID, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(
			&req.ID, &req.EmployeeID, &req.LeaveTypeID, &req.StartDate, &req.EndDate,
			&req.StartHalf, &req.EndHalf, &req.Days, &req.Reason, &req.Status, &req.Version,
			&req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func buildRequestQuery(prefix, tenantID string, filter RequestFilter) (string, []any) {
	query := prefix + " FROM leave_requests WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.EmployeeID != "" {
		query += fmt.Sprintf(" AND employee_id = $%d", len(args)+1)
		args = append(args, filter.EmployeeID)
	}
	if len(filter.EmployeeIDs) > 0 {
		query += fmt.Sprintf(" AND employee_id = ANY($%d)", len(args)+1)
		args = append(args, filter.EmployeeIDs)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, string(filter.Status))
	}
	if filter.LeaveTypeID != "" {
		query += fmt.Sprintf(" AND leave_type_id = $%d", len(args)+1)
		args = append(args, filter.LeaveTypeID)
	}
	return query, args
}

func (s *Store) HasOverlap(ctx context.Context, tenantID, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_requests
    WHERE tenant_id = $1 AND employee_id = $2
      AND status NOT IN ('REJECTED', 'CANCELLED')
      AND id::text <> $3
      AND start_date <= $5 AND end_date >= $4
  `, tenantID, employeeID, excludeID, start, end).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateDraft(ctx context.Context, tenantID string, req Request) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (tenant_id, employee_id, leave_type_id, start_date, end_date, start_half, end_half, days, reason, status, version)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,1)
    RETURNING id
  `, tenantID, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate,
		req.StartHalf, req.EndHalf, req.Days, req.Reason, string(workflow.StatusDraft)).Scan(&id)
	return id, err
}

func (s *Store) UpdateDraft(ctx context.Context, tenantID string, req Request) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET leave_type_id = $1, start_date = $2, end_date = $3, start_half = $4, end_half = $5,
        days = $6, reason = $7, version = version + 1, updated_at = now()
    WHERE tenant_id = $8 AND id = $9 AND status = $10 AND version = $11
  `, req.LeaveTypeID, req.StartDate, req.EndDate, req.StartHalf, req.EndHalf,
		req.Days, req.Reason, tenantID, req.ID, string(workflow.StatusDraft), req.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.staleError(ctx, tenantID, req.ID)
	}
	return nil
}

func (s *Store) DeleteDraft(ctx context.Context, tenantID, requestID string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM leave_requests
    WHERE tenant_id = $1 AND id = $2 AND status = $3
  `, tenantID, requestID, string(workflow.StatusDraft))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := s.GetRequest(ctx, tenantID, requestID); getErr != nil {
			return getErr
		}
		return ErrNotDraft
	}
	return nil
}

// ApplyTransition persists one approved workflow step: the compare-and-swap
// status update, the decision row, and the paired ledger move run in a single
// transaction so the books can never drift from the document status.
func (s *Store) ApplyTransition(ctx context.Context, tenantID string, req *Request, next workflow.Status, actorUserID string, action workflow.Action, reason string, move balanceMove, requireBalance bool) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, version = version + 1, updated_at = now()
    WHERE tenant_id = $2 AND id = $3 AND version = $4
  `, string(next), tenantID, req.ID, req.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.staleError(ctx, tenantID, req.ID)
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO leave_decisions (tenant_id, leave_request_id, stage, actor_user_id, action, reason)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, tenantID, req.ID, string(req.Status), actorUserID, string(action), nullIfEmpty(reason)); err != nil {
		return err
	}

	year := req.StartDate.Year()
	switch move {
	case movePend:
		cond := ""
		if requireBalance {
			cond = " AND total_days + carried_over_days + adjusted_days - used_days - pending_days >= $5"
		}
		tag, err := tx.Exec(ctx, `
    UPDATE leave_balances
    SET pending_days = pending_days + $5, updated_at = now()
    WHERE tenant_id = $1 AND employee_id = $2 AND leave_type_id = $3 AND year = $4`+cond,
			tenantID, req.EmployeeID, req.LeaveTypeID, year, req.Days)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrInsufficientBalance
		}
	case moveRelease:
		if _, err := tx.Exec(ctx, `
    UPDATE leave_balances
    SET pending_days = pending_days - $5, updated_at = now()
    WHERE tenant_id = $1 AND employee_id = $2 AND leave_type_id = $3 AND year = $4
  `, tenantID, req.EmployeeID, req.LeaveTypeID, year, req.Days); err != nil {
			return err
		}
	case moveConsume:
		if _, err := tx.Exec(ctx, `
    UPDATE leave_balances
    SET pending_days = pending_days - $5, used_days = used_days + $5, updated_at = now()
    WHERE tenant_id = $1 AND employee_id = $2 AND leave_type_id = $3 AND year = $4
  `, tenantID, req.EmployeeID, req.LeaveTypeID, year, req.Days); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	req.Status = next
	req.Version++
	return nil
}

func (s *Store) staleError(ctx context.Context, tenantID, requestID string) error {
	if _, err := s.GetRequest(ctx, tenantID, requestID); err != nil {
		return err
	}
	return workflow.ErrVersionConflict
}

func (s *Store) EnsureBalance(ctx context.Context, tenantID, employeeID, leaveTypeID string, year int, annualDays float64) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (tenant_id, employee_id, leave_type_id, year, total_days)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (tenant_id, employee_id, leave_type_id, year) DO NOTHING
  `, tenantID, employeeID, leaveTypeID, year, annualDays)
	return err
}

func (s *Store) ListBalances(ctx context.Context, tenantID, employeeID string, year int) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT b.id, b.employee_id, b.leave_type_id, t.name, b.year,
           b.total_days, b.carried_over_days, b.adjusted_days, b.used_days, b.pending_days, b.updated_at
    FROM leave_balances b
    JOIN leave_types t ON b.leave_type_id = t.id
    WHERE b.tenant_id = $1 AND b.employee_id = $2 AND b.year = $3
    ORDER BY t.name
  `, tenantID, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.LeaveTypeName, &b.Year,
			&b.TotalDays, &b.CarriedOverDays, &b.AdjustedDays, &b.UsedDays, &b.PendingDays, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// AdjustBalance applies a signed HR correction and records who made it.
func (s *Store) AdjustBalance(ctx context.Context, tenantID, employeeID, leaveTypeID string, year int, amount float64, reason, createdBy string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE leave_balances
    SET adjusted_days = adjusted_days + $5, updated_at = now()
    WHERE tenant_id = $1 AND employee_id = $2 AND leave_type_id = $3 AND year = $4
  `, tenantID, employeeID, leaveTypeID, year, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO leave_balance_adjustments (tenant_id, employee_id, leave_type_id, year, amount, reason, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, tenantID, employeeID, leaveTypeID, year, amount, reason, createdBy); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) ListAdjustments(ctx context.Context, tenantID, employeeID string, year int) ([]Adjustment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, leave_type_id, year, amount, reason, created_by, created_at
    FROM leave_balance_adjustments
    WHERE tenant_id = $1 AND employee_id = $2 AND year = $3
    ORDER BY created_at DESC
  `, tenantID, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Adjustment
	for rows.Next() {
		var a Adjustment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.LeaveTypeID, &a.Year, &a.Amount, &a.Reason, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

type SweepResult struct {
	Activated int `json:"activated"`
	Completed int `json:"completed"`
}

// Sweep moves approved leave into and out of its active window. Both edges
// are date driven; no user action can take them.
func (s *Store) Sweep(ctx context.Context, tenantID string, now time.Time) (SweepResult, error) {
	var result SweepResult

	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, version = version + 1, updated_at = now()
    WHERE tenant_id = $2 AND status = $3 AND start_date <= $4
  `, string(workflow.StatusInProgress), tenantID, string(workflow.StatusApproved), now)
	if err != nil {
		return result, err
	}
	result.Activated = int(tag.RowsAffected())

	tag, err = s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, version = version + 1, updated_at = now()
    WHERE tenant_id = $2 AND status = $3 AND end_date < $4
  `, string(workflow.StatusCompleted), tenantID, string(workflow.StatusInProgress), now)
	if err != nil {
		return result, err
	}
	result.Completed = int(tag.RowsAffected())

	return result, nil
}

// CarryOverRow pairs a prior-year balance's remaining days with the leave
// type's carry-over limit and entitlement for the new year's row.
type CarryOverRow struct {
	EmployeeID  string
	LeaveTypeID string
	Remaining   float64
	Limit       float64
	AnnualDays  float64
}

func (s *Store) CarryOverCandidates(ctx context.Context, tenantID string, year int) ([]CarryOverRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT b.employee_id, b.leave_type_id,
           b.total_days + b.carried_over_days + b.adjusted_days - b.used_days - b.pending_days,
           t.carry_over_limit, t.annual_days
    FROM leave_balances b
    JOIN leave_types t ON b.leave_type_id = t.id
    JOIN employees e ON b.employee_id = e.id
    WHERE b.tenant_id = $1 AND b.year = $2 AND t.carry_over_limit > 0 AND e.status = 'active'
  `, tenantID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CarryOverRow
	for rows.Next() {
		var row CarryOverRow
		if err := rows.Scan(&row.EmployeeID, &row.LeaveTypeID, &row.Remaining, &row.Limit, &row.AnnualDays); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// ApplyCarryOver writes the carried figure onto the target year's ledger row,
// creating it with the type's entitlement when it does not exist yet. The
// figure is set, not added, so re-running a sweep never doubles it.
func (s *Store) ApplyCarryOver(ctx context.Context, tenantID, employeeID, leaveTypeID string, year int, annualDays, carried float64) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (tenant_id, employee_id, leave_type_id, year, total_days, carried_over_days)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (tenant_id, employee_id, leave_type_id, year)
    DO UPDATE SET carried_over_days = EXCLUDED.carried_over_days, updated_at = now()
  `, tenantID, employeeID, leaveTypeID, year, annualDays, carried)
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
