package leavehandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/audit"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/core"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/leave"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/notifications"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/workflow"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/api"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/middleware"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Core    *core.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *leave.Service, coreSvc *core.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Core: coreSvc, Perms: perms, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/types", h.handleListTypes)
		r.With(middleware.RequirePermission(auth.PermLeaveAdjust, h.Perms)).Post("/types", h.handleCreateType)
		r.With(middleware.RequirePermission(auth.PermLeaveAdjust, h.Perms)).Put("/types/{typeID}", h.handleUpdateType)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balances", h.handleListBalances)
		r.With(middleware.RequirePermission(auth.PermLeaveAdjust, h.Perms)).Post("/balances/adjust", h.handleAdjustBalance)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balances/adjustments", h.handleListAdjustments)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/requests", h.handleListRequests)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/requests", h.handleCreateDraft)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Put("/requests/{requestID}", h.handleUpdateDraft)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Delete("/requests/{requestID}", h.handleDeleteDraft)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/requests/{requestID}/submit", h.action(workflow.ActionSubmit))
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/approve", h.action(workflow.ActionApprove))
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/reject", h.action(workflow.ActionReject))
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/requests/{requestID}/cancel", h.action(workflow.ActionCancel))
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	types, err := h.Service.ListTypes(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to list leave types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload leave.LeaveType
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.NonNegative("annualDays", payload.AnnualDays)
	v.NonNegative("carryOverLimit", payload.CarryOverLimit)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateType(r.Context(), user.TenantID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_type_create_failed", "failed to create leave type", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "leave.type.create", "leave_type", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateType(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	typeID := chi.URLParam(r, "typeID")

	var payload leave.LeaveType
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.UpdateType(r.Context(), user.TenantID, typeID, payload); err != nil {
		if errors.Is(err, leave.ErrTypeNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "leave type not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_type_update_failed", "failed to update leave type", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "leave.type.update", "leave_type", typeID, nil, payload)
	api.Success(w, map[string]string{"id": typeID}, middleware.GetRequestID(r.Context()))
}

type draftPayload struct {
	LeaveTypeID string `json:"leaveTypeId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	StartHalf   bool   `json:"startHalf"`
	EndHalf     bool   `json:"endHalf"`
	Reason      string `json:"reason"`
	Version     int    `json:"version"`
}

func (h *Handler) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	user, employeeID, ok := h.identify(w, r)
	if !ok {
		return
	}

	input, ok := h.draftInput(w, r)
	if !ok {
		return
	}

	req, err := h.Service.CreateDraft(r.Context(), user.TenantID, employeeID, input)
	if err != nil {
		h.failDraft(w, r, err)
		return
	}
	h.record(r, user, "leave.request.create", "leave_request", req.ID, nil, req)
	api.Created(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	user, employeeID, ok := h.identify(w, r)
	if !ok {
		return
	}
	requestID := chi.URLParam(r, "requestID")

	var payload draftPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	input, ok2 := h.validateDraft(w, r, payload)
	if !ok2 {
		return
	}

	req, err := h.Service.UpdateDraft(r.Context(), user.TenantID, employeeID, requestID, payload.Version, input)
	if err != nil {
		h.failDraft(w, r, err)
		return
	}
	h.record(r, user, "leave.request.update", "leave_request", req.ID, nil, req)
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	user, employeeID, ok := h.identify(w, r)
	if !ok {
		return
	}
	requestID := chi.URLParam(r, "requestID")

	if err := h.Service.DeleteDraft(r.Context(), user.TenantID, employeeID, requestID); err != nil {
		h.failDraft(w, r, err)
		return
	}
	h.record(r, user, "leave.request.delete", "leave_request", requestID, nil, nil)
	api.Success(w, map[string]string{"id": requestID, "status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	requestID := chi.URLParam(r, "requestID")

	req, err := h.Service.Get(r.Context(), user.TenantID, requestID)
	if err != nil {
		if errors.Is(err, leave.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_request_failed", "failed to load leave request", middleware.GetRequestID(r.Context()))
		return
	}
	req.Allowed = h.allowedFor(r, user, req)
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter := leave.RequestFilter{
		EmployeeID:  r.URL.Query().Get("employeeId"),
		LeaveTypeID: r.URL.Query().Get("leaveTypeId"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := workflow.Canonical(workflow.KindLeave, raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown status filter", middleware.GetRequestID(r.Context()))
			return
		}
		filter.Status = status
	}

	employeeID := h.employeeIDFor(r, user)
	page := shared.ParsePagination(r, 50, 200)
	result, err := h.Service.List(r.Context(), user.TenantID, user.RoleName, employeeID, filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_requests_failed", "failed to list leave requests", middleware.GetRequestID(r.Context()))
		return
	}
	shared.SetTotal(w, result.Total)
	api.Success(w, result.Requests, middleware.GetRequestID(r.Context()))
}

type actionPayload struct {
	Version int    `json:"version"`
	Reason  string `json:"reason"`
}

func (h *Handler) action(act workflow.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUser(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
			return
		}
		requestID := chi.URLParam(r, "requestID")

		var payload actionPayload
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
				return
			}
		}

		result, err := h.Service.Decide(r.Context(), user.TenantID, requestID, user, act, payload.Version, payload.Reason)
		if err != nil {
			failWorkflow(w, r, err)
			return
		}

		h.record(r, user, "leave.request."+string(act), "leave_request", requestID, nil, result.Request)
		h.notifyDecision(r, user, act, result)
		api.Success(w, result.Request, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) notifyDecision(r *http.Request, user auth.UserContext, act workflow.Action, result leave.DecisionResult) {
	if h.Notify == nil || result.Request == nil {
		return
	}
	ctx := r.Context()
	switch act {
	case workflow.ActionSubmit:
		if result.ManagerUserID != "" {
			if err := h.Notify.Notify(ctx, user.TenantID, result.ManagerUserID, notifications.TypeLeaveSubmitted,
				"Leave request awaiting approval", "A leave request from your team needs your decision."); err != nil {
				slog.Warn("notify leave submit failed", "err", err)
			}
		}
	case workflow.ActionApprove:
		if result.Request.Status == workflow.StatusPendingHR {
			h.Notify.NotifyAll(ctx, user.TenantID, result.HRUserIDs, notifications.TypeLeaveSubmitted,
				"Leave request awaiting HR approval", "A manager-approved leave request needs HR review.")
			return
		}
		if err := h.Notify.Notify(ctx, user.TenantID, result.EmployeeUserID, notifications.TypeLeaveApproved,
			"Leave request approved", "Your leave request has been approved."); err != nil {
			slog.Warn("notify leave approve failed", "err", err)
		}
	case workflow.ActionReject:
		if err := h.Notify.Notify(ctx, user.TenantID, result.EmployeeUserID, notifications.TypeLeaveRejected,
			"Leave request rejected", "Your leave request was rejected."); err != nil {
			slog.Warn("notify leave reject failed", "err", err)
		}
	case workflow.ActionCancel:
		if result.ManagerUserID != "" {
			if err := h.Notify.Notify(ctx, user.TenantID, result.ManagerUserID, notifications.TypeLeaveCancelled,
				"Leave request cancelled", "A pending leave request was cancelled by its owner."); err != nil {
				slog.Warn("notify leave cancel failed", "err", err)
			}
		}
	}
}

func (h *Handler) handleListBalances(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := r.URL.Query().Get("employeeId")
	own := h.employeeIDFor(r, user)
	if employeeID == "" {
		employeeID = own
	}
	// Employees can only read their own ledger.
	if user.RoleName == auth.RoleEmployee && employeeID != own {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot read another employee's balances", middleware.GetRequestID(r.Context()))
		return
	}
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_employee", "employeeId is required", middleware.GetRequestID(r.Context()))
		return
	}

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			year = v
		}
	}

	balances, err := h.Service.ListBalances(r.Context(), user.TenantID, employeeID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_balances_failed", "failed to list balances", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}

type adjustPayload struct {
	EmployeeID  string  `json:"employeeId"`
	LeaveTypeID string  `json:"leaveTypeId"`
	Year        int     `json:"year"`
	Amount      float64 `json:"amount"`
	Reason      string  `json:"reason"`
}

func (h *Handler) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload adjustPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employeeId is required")
	v.Required("leaveTypeId", payload.LeaveTypeID, "leaveTypeId is required")
	v.Required("reason", payload.Reason, "reason is required")
	if payload.Amount == 0 {
		v.Add("amount", "must not be zero")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if payload.Year == 0 {
		payload.Year = time.Now().Year()
	}

	if err := h.Service.AdjustBalance(r.Context(), user.TenantID, payload.EmployeeID, payload.LeaveTypeID, payload.Year, payload.Amount, payload.Reason, user.UserID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "balance_adjust_failed", "failed to adjust balance", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "leave.balance.adjust", "leave_balance", payload.EmployeeID, nil, payload)

	if h.Notify != nil {
		if userID, err := h.Core.UserIDByEmployeeID(r.Context(), user.TenantID, payload.EmployeeID); err == nil {
			if err := h.Notify.Notify(r.Context(), user.TenantID, userID, notifications.TypeBalanceAdjusted,
				"Leave balance adjusted", "Your leave balance was adjusted by HR: "+payload.Reason); err != nil {
				slog.Warn("notify balance adjust failed", "err", err)
			}
		}
	}
	api.Success(w, map[string]string{"status": "adjusted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAdjustments(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	employeeID := r.URL.Query().Get("employeeId")
	if user.RoleName == auth.RoleEmployee {
		employeeID = h.employeeIDFor(r, user)
	}
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			year = v
		}
	}
	adjustments, err := h.Service.ListAdjustments(r.Context(), user.TenantID, employeeID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "adjustments_failed", "failed to list adjustments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, adjustments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) draftInput(w http.ResponseWriter, r *http.Request) (leave.DraftInput, bool) {
	var payload draftPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return leave.DraftInput{}, false
	}
	return h.validateDraft(w, r, payload)
}

func (h *Handler) validateDraft(w http.ResponseWriter, r *http.Request, payload draftPayload) (leave.DraftInput, bool) {
	v := shared.NewValidator()
	v.Required("leaveTypeId", payload.LeaveTypeID, "leaveTypeId is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return leave.DraftInput{}, false
	}
	return leave.DraftInput{
		LeaveTypeID: payload.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		StartHalf:   payload.StartHalf,
		EndHalf:     payload.EndHalf,
		Reason:      payload.Reason,
	}, true
}

func (h *Handler) failDraft(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", reqID)
	case errors.Is(err, leave.ErrTypeNotFound):
		api.Fail(w, http.StatusBadRequest, "unknown_leave_type", "leave type not found", reqID)
	case errors.Is(err, leave.ErrNotDraft):
		api.Fail(w, http.StatusConflict, "not_draft", "request is no longer a draft", reqID)
	case errors.Is(err, leave.ErrOverlap):
		api.Fail(w, http.StatusConflict, "overlapping_request", "an overlapping leave request already exists", reqID)
	case errors.Is(err, workflow.ErrVersionConflict):
		api.Fail(w, http.StatusConflict, "version_conflict", "request was modified concurrently, reload and retry", reqID)
	case errors.Is(err, workflow.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not the owner of this request", reqID)
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_request", err.Error(), reqID)
	}
}

func failWorkflow(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", reqID)
	case errors.Is(err, workflow.ErrVersionConflict):
		api.Fail(w, http.StatusConflict, "version_conflict", "request was modified concurrently, reload and retry", reqID)
	case errors.Is(err, workflow.ErrSelfApproval):
		api.Fail(w, http.StatusForbidden, "self_approval", "approvers cannot act on their own requests", reqID)
	case errors.Is(err, workflow.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "role cannot perform this action here", reqID)
	case errors.Is(err, workflow.ErrReasonRequired):
		api.Fail(w, http.StatusBadRequest, "reason_required", "a reason is required for this action", reqID)
	case errors.Is(err, workflow.ErrTerminalStatus):
		api.Fail(w, http.StatusConflict, "terminal_status", "request is in a terminal status", reqID)
	case errors.Is(err, workflow.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", "action is not valid in the current status", reqID)
	case errors.Is(err, leave.ErrInsufficientBalance):
		api.Fail(w, http.StatusConflict, "insufficient_balance", "not enough leave balance for this request", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "workflow_failed", "failed to process action", reqID)
	}
}

// identify resolves the caller's employee record; every draft operation is
// owner-scoped.
func (h *Handler) identify(w http.ResponseWriter, r *http.Request) (auth.UserContext, string, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, "", false
	}
	employeeID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "no_employee_record", "caller has no employee record", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, "", false
	}
	return user, employeeID, true
}

func (h *Handler) employeeIDFor(r *http.Request, user auth.UserContext) string {
	employeeID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		return ""
	}
	return employeeID
}

func (h *Handler) allowedFor(r *http.Request, user auth.UserContext, req *leave.Request) []workflow.Action {
	employeeID := h.employeeIDFor(r, user)
	actor := workflow.Actor{Role: user.RoleName, IsOwner: employeeID != "" && employeeID == req.EmployeeID}
	return h.Service.Definition().AllowedActions(req.Status, actor)
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID,
		middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}
