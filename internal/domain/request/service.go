package request

import (
	"context"
	"errors"

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
	return &Service{Store: store, Core: coreStore, def: workflow.ForKind(workflow.KindRequest)}
}

func (s *Service) Definition() workflow.Definition {
	return s.def
}

func (s *Service) CreateDraft(ctx context.Context, tenantID, employeeID string, details Details, reason string) (*Request, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}

	req := Request{
		EmployeeID: employeeID,
		Type:       details.Type,
		Details:    details,
		Reason:     reason,
	}
	id, err := s.Store.CreateDraft(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, tenantID, id)
}

func (s *Service) UpdateDraft(ctx context.Context, tenantID, employeeID, requestID string, version int, details Details, reason string) (*Request, error) {
	current, err := s.Store.Get(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if current.EmployeeID != employeeID {
		return nil, workflow.ErrForbidden
	}
	if current.Status != workflow.StatusDraft {
		return nil, ErrNotDraft
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}

	updated := Request{
		ID:      requestID,
		Type:    details.Type,
		Details: details,
		Reason:  reason,
		Version: version,
	}
	if err := s.Store.UpdateDraft(ctx, tenantID, updated); err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, tenantID, requestID)
}

func (s *Service) DeleteDraft(ctx context.Context, tenantID, employeeID, requestID string) error {
	current, err := s.Store.Get(ctx, tenantID, requestID)
	if err != nil {
		return err
	}
	if current.EmployeeID != employeeID {
		return workflow.ErrForbidden
	}
	return s.Store.DeleteDraft(ctx, tenantID, requestID)
}

func (s *Service) Get(ctx context.Context, tenantID, requestID string) (*Request, error) {
	req, err := s.Store.Get(ctx, tenantID, requestID)
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

func (s *Service) List(ctx context.Context, tenantID, roleName, employeeID string, filter Filter, limit, offset int) (ListResult, error) {
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

	total, err := s.Store.Count(ctx, tenantID, filter)
	if err != nil {
		return ListResult{}, err
	}
	requests, err := s.Store.List(ctx, tenantID, filter, limit, offset)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Requests: requests, Total: total}, nil
}

type DecisionResult struct {
	Request        *Request
	EmployeeUserID string
	ManagerUserID  string
	HRUserIDs      []string
}

// Decide runs one workflow action against a request, mirroring the leave
// chain without the ledger: approval at the HR stage is terminal.
func (s *Service) Decide(ctx context.Context, tenantID, requestID string, user auth.UserContext, action workflow.Action, version int, reason string) (DecisionResult, error) {
	req, err := s.Store.Get(ctx, tenantID, requestID)
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

	if err := s.Store.ApplyTransition(ctx, tenantID, req, next, user.UserID, action, reason); err != nil {
		return DecisionResult{}, err
	}

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
	return result, nil
}
