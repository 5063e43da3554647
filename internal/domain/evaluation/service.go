package evaluation

import (
	"context"
	"errors"
	"time"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/core"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/workflow"
)

type Service struct {
	Store *Store
	Core  *core.Store

	def workflow.Definition
}

func NewService(store *Store, coreStore *core.Store) *Service {
	return &Service{Store: store, Core: coreStore, def: workflow.ForKind(workflow.KindEvaluation)}
}

func (s *Service) Definition() workflow.Definition {
	return s.def
}

func (s *Service) ListPeriods(ctx context.Context, tenantID string) ([]Period, error) {
	return s.Store.ListPeriods(ctx, tenantID)
}

func (s *Service) CreatePeriod(ctx context.Context, tenantID string, p Period) (string, error) {
	if p.EndDate.Before(p.StartDate) {
		return "", errors.New("end date before start date")
	}
	return s.Store.CreatePeriod(ctx, tenantID, p)
}

func (s *Service) ClosePeriod(ctx context.Context, tenantID, periodID string) error {
	return s.Store.ClosePeriod(ctx, tenantID, periodID)
}

func (s *Service) ListCriteria(ctx context.Context, tenantID string) ([]Criterion, error) {
	return s.Store.ListCriteria(ctx, tenantID)
}

func (s *Service) CreateCriterion(ctx context.Context, tenantID string, c Criterion) (string, error) {
	if c.MaxScore <= 0 {
		return "", ErrScoreOutOfRange
	}
	return s.Store.CreateCriterion(ctx, tenantID, c)
}

func (s *Service) UpdateCriterion(ctx context.Context, tenantID, criterionID string, c Criterion) error {
	if c.MaxScore <= 0 {
		return ErrScoreOutOfRange
	}
	return s.Store.UpdateCriterion(ctx, tenantID, criterionID, c)
}

type LaunchResult struct {
	Generated       int      `json:"generated"`
	Launched        int      `json:"launched"`
	EmployeeUserIDs []string `json:"-"`
}

// Launch creates the period's forms for every active employee and opens the
// self-evaluation stage. Idempotent: employees who already have a form past
// draft are not touched.
func (s *Service) Launch(ctx context.Context, tenantID, periodID string) (LaunchResult, error) {
	var result LaunchResult

	period, err := s.Store.GetPeriod(ctx, tenantID, periodID)
	if err != nil {
		return result, err
	}
	if period.Status != PeriodOpen {
		return result, ErrPeriodClosed
	}

	criteria, err := s.Store.ListCriteria(ctx, tenantID)
	if err != nil {
		return result, err
	}
	if len(criteria) == 0 {
		return result, ErrNoCriteria
	}

	employeeIDs, err := s.activeEmployeeIDs(ctx, tenantID)
	if err != nil {
		return result, err
	}

	result.Generated, err = s.Store.GenerateForms(ctx, tenantID, periodID, employeeIDs)
	if err != nil {
		return result, err
	}
	result.Launched, err = s.Store.LaunchForms(ctx, tenantID, periodID)
	if err != nil {
		return result, err
	}

	result.EmployeeUserIDs, _ = s.formUserIDs(ctx, tenantID, periodID)
	return result, nil
}

func (s *Service) activeEmployeeIDs(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := s.Store.DB.Query(ctx, `
    SELECT id FROM employees WHERE tenant_id = $1 AND status = 'active'
  `, tenantID)
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

func (s *Service) formUserIDs(ctx context.Context, tenantID, periodID string) ([]string, error) {
	rows, err := s.Store.DB.Query(ctx, `
    SELECT DISTINCT e.user_id::text
    FROM evaluation_forms f
    JOIN employees e ON f.employee_id = e.id
    WHERE f.tenant_id = $1 AND f.period_id = $2 AND e.user_id IS NOT NULL
  `, tenantID, periodID)
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

// Get loads a form with its scores, filtered to what the actor may see: the
// subject does not see manager scores until the form completes.
func (s *Service) Get(ctx context.Context, tenantID, formID string, user auth.UserContext) (*Form, error) {
	form, err := s.Store.GetForm(ctx, tenantID, formID)
	if err != nil {
		return nil, err
	}
	scores, err := s.Store.ListScores(ctx, tenantID, formID)
	if err != nil {
		return nil, err
	}
	sections, err := s.Store.ListFormSections(ctx, tenantID, formID)
	if err != nil {
		return nil, err
	}

	actor, err := s.resolveActor(ctx, tenantID, user, form)
	if err != nil {
		return nil, err
	}
	if actor.IsOwner && form.Status != workflow.StatusCompleted {
		visible := scores[:0]
		for _, sc := range scores {
			if sc.Stage == StageSelf {
				visible = append(visible, sc)
			}
		}
		scores = visible
		form.ManagerTotal = nil
		form.FinalScore = nil
	}

	form.Sections = sections
	form.Scores = scores
	form.Allowed = s.def.AllowedActions(form.Status, actor)
	return form, nil
}

type FormListResult struct {
	Forms []Form
	Total int
}

func (s *Service) List(ctx context.Context, tenantID, roleName, employeeID string, filter FormFilter, limit, offset int) (FormListResult, error) {
	switch roleName {
	case auth.RoleEmployee:
		filter.EmployeeID = employeeID
	case auth.RoleManager:
		teamIDs, err := s.Core.TeamEmployeeIDs(ctx, tenantID, employeeID)
		if err != nil {
			return FormListResult{}, err
		}
		filter.EmployeeIDs = append(teamIDs, employeeID)
		filter.EmployeeID = ""
	}

	total, err := s.Store.CountForms(ctx, tenantID, filter)
	if err != nil {
		return FormListResult{}, err
	}
	forms, err := s.Store.ListForms(ctx, tenantID, filter, limit, offset)
	if err != nil {
		return FormListResult{}, err
	}
	return FormListResult{Forms: forms, Total: total}, nil
}

func (s *Service) resolveActor(ctx context.Context, tenantID string, user auth.UserContext, form *Form) (workflow.Actor, error) {
	actorEmployeeID, err := s.Core.EmployeeIDByUserID(ctx, tenantID, user.UserID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return workflow.Actor{}, err
	}
	return workflow.Actor{
		Role:    user.RoleName,
		IsOwner: actorEmployeeID != "" && actorEmployeeID == form.EmployeeID,
	}, nil
}

func (s *Service) stageFor(status workflow.Status) string {
	if status == workflow.StatusManagerEvaluation {
		return StageManager
	}
	return StageSelf
}

// SaveScores writes one section as a draft without advancing the form. Only
// the stage's owner may write, and only while the form sits in that stage.
func (s *Service) SaveScores(ctx context.Context, tenantID, formID string, user auth.UserContext, inputs []ScoreInput) error {
	form, err := s.Store.GetForm(ctx, tenantID, formID)
	if err != nil {
		return err
	}

	actor, err := s.resolveActor(ctx, tenantID, user, form)
	if err != nil {
		return err
	}
	if !s.def.PayloadWritable(form.Status, form.Status, actor) {
		return workflow.ErrForbidden
	}
	if err := s.requireManagerRelation(ctx, tenantID, user, actor, form); err != nil {
		return err
	}

	sections, err := s.Store.ListFormSections(ctx, tenantID, formID)
	if err != nil {
		return err
	}
	if err := ValidateScores(inputs, sections, false); err != nil {
		return err
	}

	return s.Store.SaveScores(ctx, tenantID, formID, s.stageFor(form.Status), inputs)
}

func (s *Service) requireManagerRelation(ctx context.Context, tenantID string, user auth.UserContext, actor workflow.Actor, form *Form) error {
	if user.RoleName != auth.RoleManager || actor.IsOwner {
		return nil
	}
	actorEmployeeID, err := s.Core.EmployeeIDByUserID(ctx, tenantID, user.UserID)
	if err != nil {
		return err
	}
	isManager, err := s.Core.IsManagerOf(ctx, tenantID, actorEmployeeID, form.EmployeeID)
	if err != nil {
		return err
	}
	if !isManager {
		return workflow.ErrForbidden
	}
	return nil
}

// SubmitStage closes the current scoring stage. Every criterion must be
// scored; the section total freezes, and after the manager stage it becomes
// the initial final score.
func (s *Service) SubmitStage(ctx context.Context, tenantID, formID string, user auth.UserContext, version int) (*Form, error) {
	form, err := s.Store.GetForm(ctx, tenantID, formID)
	if err != nil {
		return nil, err
	}
	if version != 0 && version != form.Version {
		return nil, workflow.ErrVersionConflict
	}

	actor, err := s.resolveActor(ctx, tenantID, user, form)
	if err != nil {
		return nil, err
	}
	if err := s.requireManagerRelation(ctx, tenantID, user, actor, form); err != nil {
		return nil, err
	}

	next, err := s.def.Transition(form.Status, actor, workflow.ActionSubmit, "")
	if err != nil {
		return nil, err
	}

	stage := s.stageFor(form.Status)
	scores, err := s.Store.ListScores(ctx, tenantID, formID)
	if err != nil {
		return nil, err
	}
	sections, err := s.Store.ListFormSections(ctx, tenantID, formID)
	if err != nil {
		return nil, err
	}

	var inputs []ScoreInput
	for _, sc := range scores {
		if sc.Stage == stage {
			inputs = append(inputs, ScoreInput{CriterionID: sc.CriterionID, Score: sc.Score})
		}
	}
	if err := ValidateScores(inputs, sections, true); err != nil {
		return nil, err
	}

	total := Total(scores, stage)
	upd := AdvanceUpdate{}
	if stage == StageSelf {
		upd.SelfTotal = &total
	} else {
		upd.ManagerTotal = &total
		upd.FinalScore = &total
	}

	if err := s.Store.AdvanceForm(ctx, tenantID, form, next, upd); err != nil {
		return nil, err
	}
	if upd.SelfTotal != nil {
		form.SelfTotal = upd.SelfTotal
	}
	if upd.ManagerTotal != nil {
		form.ManagerTotal = upd.ManagerTotal
		form.FinalScore = upd.FinalScore
	}
	return form, nil
}

// HRSubmit finishes the HR review and hands the form to the GM. HR may
// override the final score within the criteria ceiling.
func (s *Service) HRSubmit(ctx context.Context, tenantID, formID string, user auth.UserContext, version int, finalOverride *float64, comment string) (*Form, error) {
	form, err := s.Store.GetForm(ctx, tenantID, formID)
	if err != nil {
		return nil, err
	}
	if version != 0 && version != form.Version {
		return nil, workflow.ErrVersionConflict
	}

	actor, err := s.resolveActor(ctx, tenantID, user, form)
	if err != nil {
		return nil, err
	}
	next, err := s.def.Transition(form.Status, actor, workflow.ActionSubmit, "")
	if err != nil {
		return nil, err
	}

	upd := AdvanceUpdate{HRComment: &comment}
	if finalOverride != nil {
		sections, err := s.Store.ListFormSections(ctx, tenantID, formID)
		if err != nil {
			return nil, err
		}
		if *finalOverride < 0 || *finalOverride > MaxTotal(sections) {
			return nil, ErrFinalOutOfRange
		}
		upd.FinalScore = finalOverride
	}

	if err := s.Store.AdvanceForm(ctx, tenantID, form, next, upd); err != nil {
		return nil, err
	}
	form.HRComment = comment
	if upd.FinalScore != nil {
		form.FinalScore = upd.FinalScore
	}
	return form, nil
}

// GMDecide records the final approve/reject. Either way the form completes;
// the decision survives as a sub-status on the completed form.
func (s *Service) GMDecide(ctx context.Context, tenantID, formID string, user auth.UserContext, action workflow.Action, version int, comment string) (*Form, error) {
	form, err := s.Store.GetForm(ctx, tenantID, formID)
	if err != nil {
		return nil, err
	}
	if version != 0 && version != form.Version {
		return nil, workflow.ErrVersionConflict
	}

	actor, err := s.resolveActor(ctx, tenantID, user, form)
	if err != nil {
		return nil, err
	}
	next, err := s.def.Transition(form.Status, actor, action, comment)
	if err != nil {
		return nil, err
	}

	gmStatus := workflow.GMApproved
	if action == workflow.ActionReject {
		gmStatus = workflow.GMRejected
	}
	upd := AdvanceUpdate{GMStatus: &gmStatus, GMComment: &comment}

	if err := s.Store.AdvanceForm(ctx, tenantID, form, next, upd); err != nil {
		return nil, err
	}
	form.GMStatus = &gmStatus
	form.GMComment = comment
	return form, nil
}

// SubjectUserID resolves the evaluated employee's login account for
// notification fan-out.
func (s *Service) SubjectUserID(ctx context.Context, tenantID string, form *Form) string {
	userID, err := s.Core.UserIDByEmployeeID(ctx, tenantID, form.EmployeeID)
	if err != nil {
		return ""
	}
	return userID
}

// PeriodWindow reports whether now falls inside the period's date range.
func PeriodWindow(p Period, now time.Time) bool {
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}
