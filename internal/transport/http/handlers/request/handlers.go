package requesthandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/audit"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/core"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/notifications"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/request"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/workflow"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/api"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/middleware"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/shared"
)

type Handler struct {
	Service *request.Service
	Core    *core.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *request.Service, coreSvc *core.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Core: coreSvc, Perms: perms, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermRequestsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermRequestsWrite, h.Perms)).Post("/", h.handleCreateDraft)
		r.With(middleware.RequirePermission(auth.PermRequestsRead, h.Perms)).Get("/{requestID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermRequestsWrite, h.Perms)).Put("/{requestID}", h.handleUpdateDraft)
		r.With(middleware.RequirePermission(auth.PermRequestsWrite, h.Perms)).Delete("/{requestID}", h.handleDeleteDraft)
		r.With(middleware.RequirePermission(auth.PermRequestsWrite, h.Perms)).Post("/{requestID}/submit", h.action(workflow.ActionSubmit))
		r.With(middleware.RequirePermission(auth.PermRequestsApprove, h.Perms)).Post("/{requestID}/approve", h.action(workflow.ActionApprove))
		r.With(middleware.RequirePermission(auth.PermRequestsApprove, h.Perms)).Post("/{requestID}/reject", h.action(workflow.ActionReject))
		r.With(middleware.RequirePermission(auth.PermRequestsWrite, h.Perms)).Post("/{requestID}/cancel", h.action(workflow.ActionCancel))
	})
}

type draftPayload struct {
	Details request.Details `json:"details"`
	Reason  string          `json:"reason"`
	Version int             `json:"version"`
}

func (h *Handler) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	user, employeeID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var payload draftPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	req, err := h.Service.CreateDraft(r.Context(), user.TenantID, employeeID, payload.Details, payload.Reason)
	if err != nil {
		h.failDraft(w, r, err)
		return
	}
	h.record(r, user, "request.create", "employee_request", req.ID, nil, req)
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

	req, err := h.Service.UpdateDraft(r.Context(), user.TenantID, employeeID, requestID, payload.Version, payload.Details, payload.Reason)
	if err != nil {
		h.failDraft(w, r, err)
		return
	}
	h.record(r, user, "request.update", "employee_request", req.ID, nil, req)
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
	h.record(r, user, "request.delete", "employee_request", requestID, nil, nil)
	api.Success(w, map[string]string{"id": requestID, "status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	requestID := chi.URLParam(r, "requestID")

	req, err := h.Service.Get(r.Context(), user.TenantID, requestID)
	if err != nil {
		if errors.Is(err, request.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "request not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "request_failed", "failed to load request", middleware.GetRequestID(r.Context()))
		return
	}
	employeeID := h.employeeIDFor(r, user)
	actor := workflow.Actor{Role: user.RoleName, IsOwner: employeeID != "" && employeeID == req.EmployeeID}
	req.Allowed = h.Service.Definition().AllowedActions(req.Status, actor)
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter := request.Filter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Type:       r.URL.Query().Get("type"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := workflow.Canonical(workflow.KindRequest, raw)
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
		api.Fail(w, http.StatusInternalServerError, "requests_failed", "failed to list requests", middleware.GetRequestID(r.Context()))
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
			h.failWorkflow(w, r, err)
			return
		}

		h.record(r, user, "request."+string(act), "employee_request", requestID, nil, result.Request)
		h.notifyDecision(r, user, act, result)
		api.Success(w, result.Request, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) notifyDecision(r *http.Request, user auth.UserContext, act workflow.Action, result request.DecisionResult) {
	if h.Notify == nil || result.Request == nil {
		return
	}
	ctx := r.Context()
	switch act {
	case workflow.ActionSubmit:
		if result.ManagerUserID != "" {
			if err := h.Notify.Notify(ctx, user.TenantID, result.ManagerUserID, notifications.TypeRequestSubmitted,
				"Request awaiting approval", "An employee request from your team needs your decision."); err != nil {
				slog.Warn("notify request submit failed", "err", err)
			}
		}
	case workflow.ActionApprove:
		if result.Request.Status == workflow.StatusPendingHR {
			h.Notify.NotifyAll(ctx, user.TenantID, result.HRUserIDs, notifications.TypeRequestSubmitted,
				"Request awaiting HR approval", "A manager-approved request needs HR review.")
			return
		}
		if err := h.Notify.Notify(ctx, user.TenantID, result.EmployeeUserID, notifications.TypeRequestApproved,
			"Request approved", "Your request has been approved."); err != nil {
			slog.Warn("notify request approve failed", "err", err)
		}
	case workflow.ActionReject:
		if err := h.Notify.Notify(ctx, user.TenantID, result.EmployeeUserID, notifications.TypeRequestRejected,
			"Request rejected", "Your request was rejected."); err != nil {
			slog.Warn("notify request reject failed", "err", err)
		}
	case workflow.ActionCancel:
		if result.ManagerUserID != "" {
			if err := h.Notify.Notify(ctx, user.TenantID, result.ManagerUserID, notifications.TypeRequestCancelled,
				"Request cancelled", "A pending request was cancelled by its owner."); err != nil {
				slog.Warn("notify request cancel failed", "err", err)
			}
		}
	}
}

func (h *Handler) failDraft(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, request.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", reqID)
	case errors.Is(err, request.ErrNotDraft):
		api.Fail(w, http.StatusConflict, "not_draft", "request is no longer a draft", reqID)
	case errors.Is(err, request.ErrUnknownType), errors.Is(err, request.ErrInvalidDetails):
		api.Fail(w, http.StatusBadRequest, "invalid_details", err.Error(), reqID)
	case errors.Is(err, workflow.ErrVersionConflict):
		api.Fail(w, http.StatusConflict, "version_conflict", "request was modified concurrently, reload and retry", reqID)
	case errors.Is(err, workflow.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not the owner of this request", reqID)
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_request", err.Error(), reqID)
	}
}

func (h *Handler) failWorkflow(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, request.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", reqID)
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
	default:
		api.Fail(w, http.StatusInternalServerError, "workflow_failed", "failed to process action", reqID)
	}
}

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

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID,
		middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}
