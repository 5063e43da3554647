package evaluationhandler

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
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/evaluation"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/notifications"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/workflow"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/api"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/middleware"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/shared"
)

type Handler struct {
	Service *evaluation.Service
	Core    *core.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *evaluation.Service, coreSvc *core.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Core: coreSvc, Perms: perms, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEvaluationRead, h.Perms)).Get("/periods", h.handleListPeriods)
		r.With(middleware.RequirePermission(auth.PermEvaluationReview, h.Perms)).Post("/periods", h.handleCreatePeriod)
		r.With(middleware.RequirePermission(auth.PermEvaluationReview, h.Perms)).Post("/periods/{periodID}/close", h.handleClosePeriod)
		r.With(middleware.RequirePermission(auth.PermEvaluationReview, h.Perms)).Post("/periods/{periodID}/launch", h.handleLaunch)
		r.With(middleware.RequirePermission(auth.PermEvaluationRead, h.Perms)).Get("/criteria", h.handleListCriteria)
		r.With(middleware.RequirePermission(auth.PermEvaluationReview, h.Perms)).Post("/criteria", h.handleCreateCriterion)
		r.With(middleware.RequirePermission(auth.PermEvaluationReview, h.Perms)).Put("/criteria/{criterionID}", h.handleUpdateCriterion)
		r.With(middleware.RequirePermission(auth.PermEvaluationRead, h.Perms)).Get("/forms", h.handleListForms)
		r.With(middleware.RequirePermission(auth.PermEvaluationRead, h.Perms)).Get("/forms/{formID}", h.handleGetForm)
		r.With(middleware.RequirePermission(auth.PermEvaluationWrite, h.Perms)).Put("/forms/{formID}/scores", h.handleSaveScores)
		r.With(middleware.RequirePermission(auth.PermEvaluationWrite, h.Perms)).Post("/forms/{formID}/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermEvaluationReview, h.Perms)).Post("/forms/{formID}/hr-review", h.handleHRReview)
		r.With(middleware.RequirePermission(auth.PermEvaluationFinalize, h.Perms)).Post("/forms/{formID}/gm-decision", h.handleGMDecision)
	})
}

func (h *Handler) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	periods, err := h.Service.ListPeriods(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "periods_failed", "failed to list periods", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, periods, middleware.GetRequestID(r.Context()))
}

type periodPayload struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (h *Handler) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload periodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreatePeriod(r.Context(), user.TenantID, evaluation.Period{
		Name:      payload.Name,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_create_failed", "failed to create period", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "evaluation.period.create", "evaluation_period", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleClosePeriod(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	periodID := chi.URLParam(r, "periodID")
	if err := h.Service.ClosePeriod(r.Context(), user.TenantID, periodID); err != nil {
		if errors.Is(err, evaluation.ErrPeriodNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "period not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "period_close_failed", "failed to close period", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "evaluation.period.close", "evaluation_period", periodID, nil, nil)
	api.Success(w, map[string]string{"id": periodID, "status": evaluation.PeriodClosed}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLaunch(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	periodID := chi.URLParam(r, "periodID")

	result, err := h.Service.Launch(r.Context(), user.TenantID, periodID)
	if err != nil {
		switch {
		case errors.Is(err, evaluation.ErrPeriodNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "period not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, evaluation.ErrPeriodClosed):
			api.Fail(w, http.StatusConflict, "period_closed", "period is closed", middleware.GetRequestID(r.Context()))
		case errors.Is(err, evaluation.ErrNoCriteria):
			api.Fail(w, http.StatusConflict, "no_criteria", "define evaluation criteria before launching", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "launch_failed", "failed to launch evaluations", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.record(r, user, "evaluation.period.launch", "evaluation_period", periodID, nil, result)
	if h.Notify != nil {
		h.Notify.NotifyAll(r.Context(), user.TenantID, result.EmployeeUserIDs, notifications.TypeEvaluationLaunched,
			"Evaluation started", "Your self-evaluation form is ready. Complete your scores to begin the cycle.")
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListCriteria(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	criteria, err := h.Service.ListCriteria(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "criteria_failed", "failed to list criteria", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, criteria, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCriterion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload evaluation.Criterion
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.CreateCriterion(r.Context(), user.TenantID, payload)
	if err != nil {
		if errors.Is(err, evaluation.ErrScoreOutOfRange) {
			api.Fail(w, http.StatusBadRequest, "invalid_max_score", "maxScore must be positive", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "criterion_create_failed", "failed to create criterion", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "evaluation.criterion.create", "evaluation_criterion", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateCriterion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	criterionID := chi.URLParam(r, "criterionID")

	var payload evaluation.Criterion
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.UpdateCriterion(r.Context(), user.TenantID, criterionID, payload); err != nil {
		switch {
		case errors.Is(err, evaluation.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "criterion not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, evaluation.ErrScoreOutOfRange):
			api.Fail(w, http.StatusBadRequest, "invalid_max_score", "maxScore must be positive", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "criterion_update_failed", "failed to update criterion", middleware.GetRequestID(r.Context()))
		}
		return
	}
	h.record(r, user, "evaluation.criterion.update", "evaluation_criterion", criterionID, nil, payload)
	api.Success(w, map[string]string{"id": criterionID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListForms(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter := evaluation.FormFilter{
		PeriodID:   r.URL.Query().Get("periodId"),
		EmployeeID: r.URL.Query().Get("employeeId"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := workflow.Canonical(workflow.KindEvaluation, raw)
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
		api.Fail(w, http.StatusInternalServerError, "forms_failed", "failed to list evaluation forms", middleware.GetRequestID(r.Context()))
		return
	}
	shared.SetTotal(w, result.Total)
	api.Success(w, result.Forms, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetForm(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	formID := chi.URLParam(r, "formID")

	form, err := h.Service.Get(r.Context(), user.TenantID, formID, user)
	if err != nil {
		if errors.Is(err, evaluation.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "evaluation form not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "form_failed", "failed to load evaluation form", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, form, middleware.GetRequestID(r.Context()))
}

type scoresPayload struct {
	Scores []evaluation.ScoreInput `json:"scores"`
}

func (h *Handler) handleSaveScores(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	formID := chi.URLParam(r, "formID")

	var payload scoresPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.Scores) == 0 {
		api.Fail(w, http.StatusBadRequest, "empty_scores", "at least one score is required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.SaveScores(r.Context(), user.TenantID, formID, user, payload.Scores); err != nil {
		h.failForm(w, r, err)
		return
	}
	h.record(r, user, "evaluation.form.scores", "evaluation_form", formID, nil, payload)
	api.Success(w, map[string]string{"status": "saved"}, middleware.GetRequestID(r.Context()))
}

type versionPayload struct {
	Version int `json:"version"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	formID := chi.URLParam(r, "formID")

	var payload versionPayload
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}
	}

	form, err := h.Service.SubmitStage(r.Context(), user.TenantID, formID, user, payload.Version)
	if err != nil {
		h.failForm(w, r, err)
		return
	}

	h.record(r, user, "evaluation.form.submit", "evaluation_form", formID, nil, form)
	h.notifyStage(r, user, form)
	api.Success(w, form, middleware.GetRequestID(r.Context()))
}

type hrReviewPayload struct {
	Version    int      `json:"version"`
	FinalScore *float64 `json:"finalScore"`
	Comment    string   `json:"comment"`
}

func (h *Handler) handleHRReview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	formID := chi.URLParam(r, "formID")

	var payload hrReviewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	form, err := h.Service.HRSubmit(r.Context(), user.TenantID, formID, user, payload.Version, payload.FinalScore, payload.Comment)
	if err != nil {
		h.failForm(w, r, err)
		return
	}

	h.record(r, user, "evaluation.form.hr_review", "evaluation_form", formID, nil, form)
	h.notifyStage(r, user, form)
	api.Success(w, form, middleware.GetRequestID(r.Context()))
}

type gmDecisionPayload struct {
	Version  int    `json:"version"`
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

func (h *Handler) handleGMDecision(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	formID := chi.URLParam(r, "formID")

	var payload gmDecisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	var act workflow.Action
	switch payload.Decision {
	case "approve":
		act = workflow.ActionApprove
	case "reject":
		act = workflow.ActionReject
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_decision", "decision must be approve or reject", middleware.GetRequestID(r.Context()))
		return
	}

	form, err := h.Service.GMDecide(r.Context(), user.TenantID, formID, user, act, payload.Version, payload.Comment)
	if err != nil {
		h.failForm(w, r, err)
		return
	}

	h.record(r, user, "evaluation.form.gm_"+payload.Decision, "evaluation_form", formID, nil, form)
	if h.Notify != nil {
		if subject := h.Service.SubjectUserID(r.Context(), user.TenantID, form); subject != "" {
			if err := h.Notify.Notify(r.Context(), user.TenantID, subject, notifications.TypeEvaluationCompleted,
				"Evaluation completed", "Your evaluation cycle is complete."); err != nil {
				slog.Warn("notify evaluation complete failed", "err", err)
			}
		}
	}
	api.Success(w, form, middleware.GetRequestID(r.Context()))
}

// notifyStage tells the next stage's owner that the form moved.
func (h *Handler) notifyStage(r *http.Request, user auth.UserContext, form *evaluation.Form) {
	if h.Notify == nil || form == nil {
		return
	}
	ctx := r.Context()
	switch form.Status {
	case workflow.StatusManagerEvaluation:
		managerEmpID, err := h.Core.ManagerIDByEmployeeID(ctx, user.TenantID, form.EmployeeID)
		if err != nil || managerEmpID == "" {
			return
		}
		managerUserID, err := h.Core.UserIDByEmployeeID(ctx, user.TenantID, managerEmpID)
		if err != nil {
			return
		}
		if err := h.Notify.Notify(ctx, user.TenantID, managerUserID, notifications.TypeEvaluationStageMoved,
			"Evaluation awaiting manager scores", "A team member submitted their self-evaluation."); err != nil {
			slog.Warn("notify evaluation stage failed", "err", err)
		}
	case workflow.StatusHRReview:
		hrIDs, err := h.Core.UserIDsByRole(ctx, user.TenantID, auth.RoleHR)
		if err != nil {
			return
		}
		h.Notify.NotifyAll(ctx, user.TenantID, hrIDs, notifications.TypeEvaluationStageMoved,
			"Evaluation awaiting HR review", "A manager submitted an evaluation for HR review.")
	case workflow.StatusGMApproval:
		gmIDs, err := h.Core.UserIDsByRole(ctx, user.TenantID, auth.RoleGM)
		if err != nil {
			return
		}
		h.Notify.NotifyAll(ctx, user.TenantID, gmIDs, notifications.TypeEvaluationStageMoved,
			"Evaluation awaiting GM decision", "An evaluation passed HR review and needs the final decision.")
	}
}

func (h *Handler) failForm(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, evaluation.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation form not found", reqID)
	case errors.Is(err, workflow.ErrVersionConflict):
		api.Fail(w, http.StatusConflict, "version_conflict", "form was modified concurrently, reload and retry", reqID)
	case errors.Is(err, workflow.ErrSelfApproval):
		api.Fail(w, http.StatusForbidden, "self_approval", "reviewers cannot act on their own form", reqID)
	case errors.Is(err, workflow.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "role cannot act at this stage", reqID)
	case errors.Is(err, workflow.ErrReasonRequired):
		api.Fail(w, http.StatusBadRequest, "comment_required", "a comment is required to reject", reqID)
	case errors.Is(err, workflow.ErrTerminalStatus):
		api.Fail(w, http.StatusConflict, "terminal_status", "form is in a terminal status", reqID)
	case errors.Is(err, workflow.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", "action is not valid at the current stage", reqID)
	case errors.Is(err, evaluation.ErrScoreOutOfRange):
		api.Fail(w, http.StatusBadRequest, "score_out_of_range", "a score is outside its criterion bounds", reqID)
	case errors.Is(err, evaluation.ErrUnknownCriterion):
		api.Fail(w, http.StatusBadRequest, "unknown_criterion", "score references an unknown criterion", reqID)
	case errors.Is(err, evaluation.ErrIncompleteScores):
		api.Fail(w, http.StatusConflict, "incomplete_scores", "every criterion must be scored before submitting", reqID)
	case errors.Is(err, evaluation.ErrFinalOutOfRange):
		api.Fail(w, http.StatusBadRequest, "final_out_of_range", "final score override is outside the valid range", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "evaluation_failed", "failed to process evaluation action", reqID)
	}
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
