package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

func (s *Store) Get(ctx context.Context, tenantID, requestID string) (*Request, error) {
	var req Request
	var detailsJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, type, details_json, COALESCE(reason, ''), status, version, created_at, updated_at
    FROM employee_requests
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID).Scan(
		&req.ID, &req.EmployeeID, &req.Type, &detailsJSON, &req.Reason,
		&req.Status, &req.Version, &req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(detailsJSON, &req.Details); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Store) ListDecisions(ctx context.Context, tenantID, requestID string) ([]Decision, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, stage, actor_user_id, action, COALESCE(reason, ''), created_at
    FROM request_decisions
    WHERE tenant_id = $1 AND request_id = $2
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

func (s *Store) Count(ctx context.Context, tenantID string, filter Filter) (int, error) {
	query, args := buildQuery("SELECT COUNT(1)", tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) List(ctx context.Context, tenantID string, filter Filter, limit, offset int) ([]Request, error) {
	query, args := buildQuery(`
    SELECT id, employee_id, type, details_json, COALESCE(reason, ''), status, version, created_at, updated_at`, tenantID, filter)
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
		var detailsJSON []byte
		if err := rows.Scan(
			&req.ID, &req.EmployeeID, &req.Type, &detailsJSON, &req.Reason,
			&req.Status, &req.Version, &req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(detailsJSON, &req.Details); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func buildQuery(prefix, tenantID string, filter Filter) (string, []any) {
	query := prefix + " FROM employee_requests WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.EmployeeID != "" {
		query += fmt.Sprintf(" AND employee_id = $%d", len(args)+1)
		args = append(args, filter.EmployeeID)
	}
	if len(filter.EmployeeIDs) > 0 {
		query += fmt.Sprintf(" AND employee_id = ANY($%d)", len(args)+1)
		args = append(args, filter.EmployeeIDs)
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", len(args)+1)
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, string(filter.Status))
	}
	return query, args
}

func (s *Store) CreateDraft(ctx context.Context, tenantID string, req Request) (string, error) {
	detailsJSON, err := json.Marshal(req.Details)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO employee_requests (tenant_id, employee_id, type, details_json, reason, status, version)
    VALUES ($1,$2,$3,$4,$5,$6,1)
    RETURNING id
  `, tenantID, req.EmployeeID, req.Type, detailsJSON, req.Reason, string(workflow.StatusDraft)).Scan(&id)
	return id, err
}

func (s *Store) UpdateDraft(ctx context.Context, tenantID string, req Request) error {
	detailsJSON, err := json.Marshal(req.Details)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE employee_requests
    SET type = $1, details_json = $2, reason = $3, version = version + 1, updated_at = now()
    WHERE tenant_id = $4 AND id = $5 AND status = $6 AND version = $7
  `, req.Type, detailsJSON, req.Reason, tenantID, req.ID, string(workflow.StatusDraft), req.Version)
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
    DELETE FROM employee_requests
    WHERE tenant_id = $1 AND id = $2 AND status = $3
  `, tenantID, requestID, string(workflow.StatusDraft))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := s.Get(ctx, tenantID, requestID); getErr != nil {
			return getErr
		}
		return ErrNotDraft
	}
	return nil
}

// ApplyTransition persists one workflow step: the compare-and-swap status
// update and the decision row in a single transaction.
func (s *Store) ApplyTransition(ctx context.Context, tenantID string, req *Request, next workflow.Status, actorUserID string, action workflow.Action, reason string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE employee_requests
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
    INSERT INTO request_decisions (tenant_id, request_id, stage, actor_user_id, action, reason)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, tenantID, req.ID, string(req.Status), actorUserID, string(action), nullIfEmpty(reason)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	req.Status = next
	req.Version++
	return nil
}

func (s *Store) staleError(ctx context.Context, tenantID, requestID string) error {
	if _, err := s.Get(ctx, tenantID, requestID); err != nil {
		return err
	}
	return workflow.ErrVersionConflict
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
