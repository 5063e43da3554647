package leave

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
	return &Service{Store: store, Core: coreStore, def: workflow.ForKind(workflow.KindLeave)}
}

func (s *Service) Definition() workflow.Definition {
	return s.def
}

func (s *Service) ListTypes(ctx context.Context, tenantID string) ([]LeaveType, error) {
	return s.Store.ListTypes(ctx, tenantID)
}

func (s *Service) CreateType(ctx context.Context, tenantID string, payload LeaveType) (string, error) {
	return s.Store.CreateType(ctx, tenantID, payload)
}

func (s *Service) UpdateType(ctx context.Context, tenantID, typeID string, payload LeaveType) error {
	return s.Store.UpdateType(ctx, tenantID, typeID, payload)
}

type DraftInput struct {
	LeaveTypeID string
	StartDate   time.Time
	EndDate     time.Time
	StartHalf   bool
	EndHalf     bool
	Reason      string
}

func (s *Service) CreateDraft(ctx context.Context, tenantID, employeeID string, in DraftInput) (*Request, error) {
	days, err := CalculateRequestDays(in.StartDate, in.EndDate, in.StartHalf, in.EndHalf)
	if err != nil {
		return nil, err
	}

	leaveType, err := s.Store.GetType(ctx, tenantID, in.LeaveTypeID)
	if err != nil {
		return nil, err
	}

	overlap, err := s.Store.HasOverlap(ctx, tenantID, employeeID, in.StartDate, in.EndDate, "")
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrOverlap
	}

	if err := s.Store.EnsureBalance(ctx, tenantID, employeeID, in.LeaveTypeID, in.StartDate.Year(), leaveType.AnnualDays); err != nil {
		return nil, err
	}

	req := Request{
		EmployeeID:  employeeID,
		LeaveTypeID: in.LeaveTypeID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		StartHalf:   in.StartHalf,
		EndHalf:     in.EndHalf,
		Days:        days,
		Reason:      in.Reason,
	}
	id, err := s.Store.CreateDraft(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	return s.Store.GetRequest(ctx, tenantID, id)
}

func (s *Service) UpdateDraft(ctx context.Context, tenantID, employeeID, requestID string, version int, in DraftInput) (*Request, error) {
	current, err := s.Store.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if current.EmployeeID != employeeID {
		return nil, workflow.ErrForbidden
	}
	if current.Status != workflow.StatusDraft {
		return nil, ErrNotDraft
	}

	days, err := CalculateRequestDays(in.StartDate, in.EndDate, in.StartHalf, in.EndHalf)
	if err != nil {
		return nil, err
	}
	overlap, err := s.Store.HasOverlap(ctx, tenantID, employeeID, in.StartDate, in.EndDate, requestID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrOverlap
	}

	updated := Request{
		ID:          requestID,
		LeaveTypeID: in.LeaveTypeID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		StartHalf:   in.StartHalf,
		EndHalf:     in.EndHalf,
		Days:        days,
		Reason:      in.Reason,
		Version:     version,
	}
	if err := s.Store.UpdateDraft(ctx, tenantID, updated); err != nil {
		return nil, err
	}
	return s.Store.GetRequest(ctx, tenantID, requestID)
}

func (s *Service) DeleteDraft(ctx context.Context, tenantID, employeeID, requestID string) error {
	current, err := s.Store.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return err
	}
	if current.EmployeeID != employeeID {
		return workflow.ErrForbidden
	}
	return s.Store.DeleteDraft(ctx, tenantID, requestID)
}

func (s *Service) Get(ctx context.Context, tenantID, requestID string) (*Request, error) {
	req, err := s.Store.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	decisions, err := s.Store.ListDecisions(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	req.Decisions = decisions
	return req, nil
}

type ListResult struct {
	Requests []Request
	Total    int
}

// List scopes requests by role: employees see their own, managers their
// team's plus their own, HR and the GM the whole tenant.
func (s *Service) List(ctx context.Context, tenantID, roleName, employeeID string, filter RequestFilter, limit, offset int) (ListResult, error) {
	switch roleName {
	case auth.RoleEmployee:
		filter.EmployeeID = employeeID
	case auth.RoleManager:
		teamIDs, err := s.Core.TeamEmployeeIDs(ctx, tenantID, employeeID)
		if err != nil {
			return ListResult{}, err
		}
		filter.EmployeeIDs = append(teamIDs, employeeID)
		filter.EmployeeID = ""
	}

	total, err := s.Store.CountRequests(ctx, tenantID, filter)
	if err != nil {
		return ListResult{}, err
	}
	requests, err := s.Store.ListRequests(ctx, tenantID, filter, limit, offset)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Requests: requests, Total: total}, nil
}

// DecisionResult carries the transition outcome plus the notification
// recipients the transport layer fans out to.
type DecisionResult struct {
	Request        *Request
	EmployeeUserID string
	ManagerUserID  string
	HRUserIDs      []string
}

// Decide runs one workflow action against a request. The transition table
// decides legality; this layer resolves actor identity, enforces the manager
// relationship, and pairs the status change with its ledger move.
func (s *Service) Decide(ctx context.Context, tenantID, requestID string, user auth.UserContext, action workflow.Action, version int, reason string) (DecisionResult, error) {
	req, err := s.Store.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return DecisionResult{}, err
	}
	if version != 0 && version != req.Version {
		return DecisionResult{}, workflow.ErrVersionConflict
	}

	actorEmployeeID, err := s.Core.EmployeeIDByUserID(ctx, tenantID, user.UserID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return DecisionResult{}, err
	}
	actor := workflow.Actor{
		Role:    user.RoleName,
		IsOwner: actorEmployeeID != "" && actorEmployeeID == req.EmployeeID,
	}

	// Managers may only decide for their own reports.
	if user.RoleName == auth.RoleManager && !actor.IsOwner && req.Status == workflow.StatusPendingManager {
		isManager, err := s.Core.IsManagerOf(ctx, tenantID, actorEmployeeID, req.EmployeeID)
		if err != nil {
			return DecisionResult{}, err
		}
		if !isManager {
			return DecisionResult{}, workflow.ErrForbidden
		}
	}

	next, err := s.def.Transition(req.Status, actor, action, reason)
	if err != nil {
		return DecisionResult{}, err
	}

	move := moveNone
	requireBalance := false
	switch {
	case req.Status == workflow.StatusDraft && action == workflow.ActionSubmit:
		move = movePend
		leaveType, typeErr := s.Store.GetType(ctx, tenantID, req.LeaveTypeID)
		if typeErr != nil {
			return DecisionResult{}, typeErr
		}
		requireBalance = leaveType.IsPaid
	case next == workflow.StatusRejected || next == workflow.StatusCancelled:
		move = moveRelease
	case next == workflow.StatusApproved:
		move = moveConsume
	}

	if err := s.Store.ApplyTransition(ctx, tenantID, req, next, user.UserID, action, reason, move, requireBalance); err != nil {
		return DecisionResult{}, err
	}

	return s.buildDecisionResult(ctx, tenantID, req), nil
}

func (s *Service) buildDecisionResult(ctx context.Context, tenantID string, req *Request) DecisionResult {
	result := DecisionResult{Request: req}

	if userID, err := s.Core.UserIDByEmployeeID(ctx, tenantID, req.EmployeeID); err == nil {
		result.EmployeeUserID = userID
	}
	if managerID, err := s.Core.ManagerIDByEmployeeID(ctx, tenantID, req.EmployeeID); err == nil && managerID != "" {
		if managerUserID, err := s.Core.UserIDByEmployeeID(ctx, tenantID, managerID); err == nil {
			result.ManagerUserID = managerUserID
		}
	}
	if hrUsers, err := s.Core.UserIDsByRole(ctx, tenantID, auth.RoleHR); err == nil {
		result.HRUserIDs = hrUsers
	}
	return result
}

func (s *Service) ListBalances(ctx context.Context, tenantID, employeeID string, year int) ([]Balance, error) {
	types, err := s.Store.ListTypes(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		if err := s.Store.EnsureBalance(ctx, tenantID, employeeID, t.ID, year, t.AnnualDays); err != nil {
			return nil, err
		}
	}
	return s.Store.ListBalances(ctx, tenantID, employeeID, year)
}

func (s *Service) AdjustBalance(ctx context.Context, tenantID, employeeID, leaveTypeID string, year int, amount float64, reason, createdBy string) error {
	leaveType, err := s.Store.GetType(ctx, tenantID, leaveTypeID)
	if err != nil {
		return err
	}
	if err := s.Store.EnsureBalance(ctx, tenantID, employeeID, leaveTypeID, year, leaveType.AnnualDays); err != nil {
		return err
	}
	return s.Store.AdjustBalance(ctx, tenantID, employeeID, leaveTypeID, year, amount, reason, createdBy)
}

func (s *Service) ListAdjustments(ctx context.Context, tenantID, employeeID string, year int) ([]Adjustment, error) {
	return s.Store.ListAdjustments(ctx, tenantID, employeeID, year)
}

func (s *Service) Sweep(ctx context.Context, tenantID string, now time.Time) (SweepResult, error) {
	return s.Store.Sweep(ctx, tenantID, now)
}

type CarryOverResult struct {
	FromYear int `json:"fromYear"`
	Rolled   int `json:"rolled"`
}

// CarryOverSweep rolls each active employee's unused previous-year balance
// into the current year's ledger, capped per leave type. Safe to run on a
// schedule: the carried figure is recomputed, never accumulated.
func (s *Service) CarryOverSweep(ctx context.Context, tenantID string, now time.Time) (CarryOverResult, error) {
	result := CarryOverResult{FromYear: now.Year() - 1}
	rows, err := s.Store.CarryOverCandidates(ctx, tenantID, result.FromYear)
	if err != nil {
		return result, err
	}
	for _, row := range rows {
		carried := CarryOver(row.Remaining, row.Limit)
		if carried == 0 {
			continue
		}
		if err := s.Store.ApplyCarryOver(ctx, tenantID, row.EmployeeID, row.LeaveTypeID, result.FromYear+1, row.AnnualDays, carried); err != nil {
			return result, err
		}
		result.Rolled++
	}
	return result, nil
}
