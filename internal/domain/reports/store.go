package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/workflow"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) PendingLeaveCount(ctx context.Context, tenantID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests WHERE tenant_id = $1 AND status IN ($2,$3)",
		tenantID, string(workflow.StatusPendingManager), string(workflow.StatusPendingHR)).Scan(&total)
	return total, err
}

func (s *Store) PendingRequestCount(ctx context.Context, tenantID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employee_requests WHERE tenant_id = $1 AND status IN ($2,$3)",
		tenantID, string(workflow.StatusPendingManager), string(workflow.StatusPendingHR)).Scan(&total)
	return total, err
}

func (s *Store) OpenEvaluationCount(ctx context.Context, tenantID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM evaluation_forms WHERE tenant_id = $1 AND status <> $2",
		tenantID, string(workflow.StatusCompleted)).Scan(&total)
	return total, err
}

func (s *Store) ActiveEmployeeCount(ctx context.Context, tenantID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1 AND status = 'active'", tenantID).Scan(&total)
	return total, err
}

func (s *Store) PeriodName(ctx context.Context, tenantID, periodID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, "SELECT name FROM evaluation_periods WHERE tenant_id = $1 AND id = $2",
		tenantID, periodID).Scan(&name)
	return name, err
}

// EvaluationRow is one line of the period results export.
type EvaluationRow struct {
	EmployeeNumber string
	FirstName      string
	LastName       string
	Department     string
	Status         string
	GMStatus       string
	SelfTotal      *float64
	ManagerTotal   *float64
	FinalScore     *float64
}

func (s *Store) EvaluationResults(ctx context.Context, tenantID, periodID string) ([]EvaluationRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT COALESCE(e.employee_number, ''), e.first_name, e.last_name,
           COALESCE(d.name, ''), f.status, COALESCE(f.gm_status, ''),
           f.self_total, f.manager_total, f.final_score
    FROM evaluation_forms f
    JOIN employees e ON f.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE f.tenant_id = $1 AND f.period_id = $2
    ORDER BY e.last_name, e.first_name
  `, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EvaluationRow
	for rows.Next() {
		var r EvaluationRow
		if err := rows.Scan(&r.EmployeeNumber, &r.FirstName, &r.LastName, &r.Department,
			&r.Status, &r.GMStatus, &r.SelfTotal, &r.ManagerTotal, &r.FinalScore); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// BalanceRow is one line of the tenant-wide leave balance export.
type BalanceRow struct {
	EmployeeNumber string
	FirstName      string
	LastName       string
	LeaveType      string
	Year           int
	TotalDays      float64
	CarriedOver    float64
	Adjusted       float64
	Used           float64
	Pending        float64
}

func (r BalanceRow) Remaining() float64 {
	return r.TotalDays + r.CarriedOver + r.Adjusted - r.Used - r.Pending
}

func (s *Store) LeaveBalances(ctx context.Context, tenantID string, year int) ([]BalanceRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT COALESCE(e.employee_number, ''), e.first_name, e.last_name, t.name, b.year,
           b.total_days, b.carried_over_days, b.adjusted_days, b.used_days, b.pending_days
    FROM leave_balances b
    JOIN employees e ON b.employee_id = e.id
    JOIN leave_types t ON b.leave_type_id = t.id
    WHERE b.tenant_id = $1 AND b.year = $2
    ORDER BY e.last_name, e.first_name, t.name
  `, tenantID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalanceRow
	for rows.Next() {
		var r BalanceRow
		if err := rows.Scan(&r.EmployeeNumber, &r.FirstName, &r.LastName, &r.LeaveType, &r.Year,
			&r.TotalDays, &r.CarriedOver, &r.Adjusted, &r.Used, &r.Pending); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) ListJobRuns(ctx context.Context, tenantID, jobType string, limit, offset int) ([]map[string]any, error) {
	query := `
    SELECT id, job_type, status, details_json, created_at, completed_at
    FROM job_runs
    WHERE tenant_id = $1`
	args := []any{tenantID}
	if jobType != "" {
		query += " AND job_type = $2"
		args = append(args, jobType)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var id, runType, status string
		var detailsJSON []byte
		var createdAt time.Time
		var completedAt *time.Time
		if err := rows.Scan(&id, &runType, &status, &detailsJSON, &createdAt, &completedAt); err != nil {
			return nil, err
		}
		var details any
		if len(detailsJSON) > 0 {
			_ = json.Unmarshal(detailsJSON, &details)
		}
		out = append(out, map[string]any{
			"id":          id,
			"jobType":     runType,
			"status":      status,
			"details":     details,
			"createdAt":   createdAt,
			"completedAt": completedAt,
		})
	}
	return out, nil
}
