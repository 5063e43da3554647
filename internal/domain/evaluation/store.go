package evaluation

import (
	"context"
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

func (s *Store) ListPeriods(ctx context.Context, tenantID string) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_date, end_date, status, created_at
    FROM evaluation_periods
    WHERE tenant_id = $1
    ORDER BY start_date DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Period
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) GetPeriod(ctx context.Context, tenantID, periodID string) (*Period, error) {
	var p Period
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, start_date, end_date, status, created_at
    FROM evaluation_periods
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, periodID).Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPeriodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePeriod(ctx context.Context, tenantID string, p Period) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_periods (tenant_id, name, start_date, end_date, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, tenantID, p.Name, p.StartDate, p.EndDate, PeriodOpen).Scan(&id)
	return id, err
}

func (s *Store) ClosePeriod(ctx context.Context, tenantID, periodID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_periods SET status = $1
    WHERE tenant_id = $2 AND id = $3
  `, PeriodClosed, tenantID, periodID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

func (s *Store) ListCriteria(ctx context.Context, tenantID string) ([]Criterion, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(description, ''), max_score, sort_order
    FROM evaluation_criteria
    WHERE tenant_id = $1
    ORDER BY sort_order, name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Criterion
	for rows.Next() {
		var c Criterion
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.MaxScore, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) CreateCriterion(ctx context.Context, tenantID string, c Criterion) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_criteria (tenant_id, name, description, max_score, sort_order)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, tenantID, c.Name, c.Description, c.MaxScore, c.SortOrder).Scan(&id)
	return id, err
}

func (s *Store) UpdateCriterion(ctx context.Context, tenantID, criterionID string, c Criterion) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_criteria SET name = $1, description = $2, max_score = $3, sort_order = $4
    WHERE tenant_id = $5 AND id = $6
  `, c.Name, c.Description, c.MaxScore, c.SortOrder, tenantID, criterionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownCriterion
	}
	return nil
}

const formColumns = `
    id, period_id, employee_id, status, gm_status, COALESCE(gm_comment, ''),
    self_total, manager_total, final_score, COALESCE(hr_comment, ''),
    version, created_at, updated_at`

func (s *Store) scanForm(row pgx.Row) (*Form, error) {
	var f Form
	var gmStatus *string
	err := row.Scan(
		&f.ID, &f.PeriodID, &f.EmployeeID, &f.Status, &gmStatus, &f.GMComment,
		&f.SelfTotal, &f.ManagerTotal, &f.FinalScore, &f.HRComment,
		&f.Version, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if gmStatus != nil {
		status := workflow.GMStatus(*gmStatus)
		f.GMStatus = &status
	}
	return &f, nil
}

func (s *Store) GetForm(ctx context.Context, tenantID, formID string) (*Form, error) {
	return s.scanForm(s.DB.QueryRow(ctx, `
    SELECT`+formColumns+`
    FROM evaluation_forms
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, formID))
}

func (s *Store) ListScores(ctx context.Context, tenantID, formID string) ([]Score, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT s.id, s.criterion_id, fs.name, fs.max_score, s.stage, s.score, COALESCE(s.comment, '')
    FROM evaluation_scores s
    JOIN evaluation_form_sections fs ON fs.form_id = s.form_id AND fs.criterion_id = s.criterion_id
    WHERE s.tenant_id = $1 AND s.form_id = $2
    ORDER BY fs.sort_order, fs.name, s.stage
  `, tenantID, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Score
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.ID, &sc.CriterionID, &sc.Criterion, &sc.MaxScore, &sc.Stage, &sc.Score, &sc.Comment); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

func (s *Store) CountForms(ctx context.Context, tenantID string, filter FormFilter) (int, error) {
	query, args := buildFormQuery("SELECT COUNT(1)", tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListForms(ctx context.Context, tenantID string, filter FormFilter, limit, offset int) ([]Form, error) {
	query, args := buildFormQuery("SELECT"+formColumns, tenantID, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Form
	for rows.Next() {
		form, err := s.scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *form)
	}
	return out, nil
}

func buildFormQuery(prefix, tenantID string, filter FormFilter) (string, []any) {
	query := prefix + " FROM evaluation_forms WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.PeriodID != "" {
		query += fmt.Sprintf(" AND period_id = $%d", len(args)+1)
		args = append(args, filter.PeriodID)
	}
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
	return query, args
}

// GenerateForms creates missing draft forms for the period, one per employee,
// and snapshots the current criteria as each new form's section set. The
// sections are fixed from then on; later criteria edits do not reach the form.
// Re-running generation is safe: existing forms are left untouched.
func (s *Store) GenerateForms(ctx context.Context, tenantID, periodID string, employeeIDs []string) (int, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	created := 0
	for _, employeeID := range employeeIDs {
		var formID string
		err := tx.QueryRow(ctx, `
    INSERT INTO evaluation_forms (tenant_id, period_id, employee_id, status, version)
    VALUES ($1,$2,$3,$4,1)
    ON CONFLICT (tenant_id, period_id, employee_id) DO NOTHING
    RETURNING id
  `, tenantID, periodID, employeeID, string(workflow.StatusDraft)).Scan(&formID)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return created, err
		}

		if _, err := tx.Exec(ctx, `
    INSERT INTO evaluation_form_sections (tenant_id, form_id, criterion_id, name, description, max_score, sort_order)
    SELECT $1, $2, c.id, c.name, c.description, c.max_score, c.sort_order
    FROM evaluation_criteria c
    WHERE c.tenant_id = $1
  `, tenantID, formID); err != nil {
			return created, err
		}
		created++
	}

	if err := tx.Commit(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// ListFormSections returns the criteria snapshot taken when the form was
// generated. Score validation and totals ceiling run against this set, not
// the live catalogue.
func (s *Store) ListFormSections(ctx context.Context, tenantID, formID string) ([]Criterion, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT criterion_id, name, COALESCE(description, ''), max_score, sort_order
    FROM evaluation_form_sections
    WHERE tenant_id = $1 AND form_id = $2
    ORDER BY sort_order, name
  `, tenantID, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Criterion
	for rows.Next() {
		var c Criterion
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.MaxScore, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// LaunchForms moves every draft form of the period into self evaluation.
func (s *Store) LaunchForms(ctx context.Context, tenantID, periodID string) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_forms
    SET status = $1, version = version + 1, updated_at = now()
    WHERE tenant_id = $2 AND period_id = $3 AND status = $4
  `, string(workflow.StatusSelfEvaluation), tenantID, periodID, string(workflow.StatusDraft))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// SaveScores upserts one stage's section without advancing the form.
func (s *Store) SaveScores(ctx context.Context, tenantID, formID, stage string, inputs []ScoreInput) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, in := range inputs {
		if _, err := tx.Exec(ctx, `
    INSERT INTO evaluation_scores (tenant_id, form_id, criterion_id, stage, score, comment)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (form_id, criterion_id, stage) DO UPDATE
      SET score = EXCLUDED.score, comment = EXCLUDED.comment, updated_at = now()
  `, tenantID, formID, in.CriterionID, stage, in.Score, nullIfEmpty(in.Comment)); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// AdvanceUpdate carries the fields frozen alongside a status transition.
// Nil fields are left untouched.
type AdvanceUpdate struct {
	SelfTotal    *float64
	ManagerTotal *float64
	FinalScore   *float64
	HRComment    *string
	GMStatus     *workflow.GMStatus
	GMComment    *string
}

// AdvanceForm performs the compare-and-swap status transition together with
// the stage's frozen totals and sub-status fields.
func (s *Store) AdvanceForm(ctx context.Context, tenantID string, form *Form, next workflow.Status, upd AdvanceUpdate) error {
	query := "UPDATE evaluation_forms SET status = $1, version = version + 1, updated_at = now()"
	args := []any{string(next)}

	if upd.SelfTotal != nil {
		query += fmt.Sprintf(", self_total = $%d", len(args)+1)
		args = append(args, *upd.SelfTotal)
	}
	if upd.ManagerTotal != nil {
		query += fmt.Sprintf(", manager_total = $%d", len(args)+1)
		args = append(args, *upd.ManagerTotal)
	}
	if upd.FinalScore != nil {
		query += fmt.Sprintf(", final_score = $%d", len(args)+1)
		args = append(args, *upd.FinalScore)
	}
	if upd.HRComment != nil {
		query += fmt.Sprintf(", hr_comment = $%d", len(args)+1)
		args = append(args, nullIfEmpty(*upd.HRComment))
	}
	if upd.GMStatus != nil {
		query += fmt.Sprintf(", gm_status = $%d", len(args)+1)
		args = append(args, string(*upd.GMStatus))
	}
	if upd.GMComment != nil {
		query += fmt.Sprintf(", gm_comment = $%d", len(args)+1)
		args = append(args, nullIfEmpty(*upd.GMComment))
	}

	query += fmt.Sprintf(" WHERE tenant_id = $%d AND id = $%d AND version = $%d", len(args)+1, len(args)+2, len(args)+3)
	args = append(args, tenantID, form.ID, form.Version)

	tag, err := s.DB.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := s.GetForm(ctx, tenantID, form.ID); getErr != nil {
			return getErr
		}
		return workflow.ErrVersionConflict
	}
	form.Status = next
	form.Version++
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
