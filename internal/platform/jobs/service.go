package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/config"
)

const (
	JobLeaveSweep       = "leave_sweep"
	JobLeaveCarryOver   = "leave_carry_over"
	JobAttendanceAlerts = "attendance_alerts"
)

// TenantTask is one unit of scheduled per-tenant work. The returned details
// are stored as JSON on the job_runs row.
type TenantTask func(ctx context.Context, tenantID string, now time.Time) (any, error)

type Service struct {
	DB    *pgxpool.Pool
	Cfg   config.Config
	queue chan job

	leaveSweep      TenantTask
	leaveCarryOver  TenantTask
	attendanceAlert TenantTask
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config) *Service {
	return &Service{
		DB:    db,
		Cfg:   cfg,
		queue: make(chan job, 128),
	}
}

// RegisterLeaveSweep installs the task that activates and completes approved
// leave as its dates pass. Registered by the leave service at startup.
func (s *Service) RegisterLeaveSweep(task TenantTask) {
	s.leaveSweep = task
}

// RegisterLeaveCarryOver installs the year-end task that rolls unused leave
// into the new year's ledger, capped per leave type.
func (s *Service) RegisterLeaveCarryOver(task TenantTask) {
	s.leaveCarryOver = task
}

func (s *Service) RegisterAttendanceAlerts(task TenantTask) {
	s.attendanceAlert = task
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.LeaveSweepInterval > 0 && s.leaveSweep != nil {
		go s.schedule(ctx, JobLeaveSweep, s.Cfg.LeaveSweepInterval, s.leaveSweep)
	}
	if s.Cfg.LeaveCarryOverInterval > 0 && s.leaveCarryOver != nil {
		go s.schedule(ctx, JobLeaveCarryOver, s.Cfg.LeaveCarryOverInterval, s.leaveCarryOver)
	}
	if s.Cfg.AttendanceAlertInterval > 0 && s.attendanceAlert != nil {
		go s.schedule(ctx, JobAttendanceAlerts, s.Cfg.AttendanceAlertInterval, s.attendanceAlert)
	}
}

func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
	}
}

// RunNow executes a job inline, bypassing the queue. Used by the admin
// trigger endpoints so operators can force a sweep without waiting a tick.
func (s *Service) RunNow(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, TenantID: tenantID, Run: run})
}

func (s *Service) Task(jobType string) TenantTask {
	switch jobType {
	case JobLeaveSweep:
		return s.leaveSweep
	case JobLeaveCarryOver:
		return s.leaveCarryOver
	case JobAttendanceAlerts:
		return s.attendanceAlert
	}
	return nil
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, j.TenantID, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, jobType string, interval time.Duration, task TenantTask) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tenants, err := s.listTenants(ctx)
			if err != nil {
				slog.Warn("scheduler tenant lookup failed", "jobType", jobType, "err", err)
				continue
			}
			for _, tenantID := range tenants {
				tenant := tenantID
				s.Enqueue(jobType, tenant, func(ctx context.Context) (any, error) {
					return task(ctx, tenant, time.Now())
				})
			}
		}
	}
}

func (s *Service) listTenants(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id FROM tenants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
