package reportshandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/reports"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/api"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/middleware"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/evaluations/{periodID}/export", h.handleEvaluationExport)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/leave-balances/export", h.handleBalancesExport)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/job-runs", h.handleJobRuns)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	dashboard, err := h.Service.Dashboard(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, dashboard, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEvaluationExport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	periodID := chi.URLParam(r, "periodID")

	switch r.URL.Query().Get("format") {
	case "pdf":
		data, err := h.Service.EvaluationResultsPDF(r.Context(), user.TenantID, periodID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export evaluation results", middleware.GetRequestID(r.Context()))
			return
		}
		serve(w, data, "application/pdf", "evaluation-results.pdf")
	default:
		data, err := h.Service.EvaluationResultsCSV(r.Context(), user.TenantID, periodID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export evaluation results", middleware.GetRequestID(r.Context()))
			return
		}
		serve(w, data, "text/csv", "evaluation-results.csv")
	}
}

func (h *Handler) handleBalancesExport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			year = v
		}
	}

	switch r.URL.Query().Get("format") {
	case "pdf":
		data, err := h.Service.LeaveBalancesPDF(r.Context(), user.TenantID, year)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export leave balances", middleware.GetRequestID(r.Context()))
			return
		}
		serve(w, data, "application/pdf", "leave-balances.pdf")
	default:
		data, err := h.Service.LeaveBalancesCSV(r.Context(), user.TenantID, year)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export leave balances", middleware.GetRequestID(r.Context()))
			return
		}
		serve(w, data, "text/csv", "leave-balances.csv")
	}
}

func (h *Handler) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	runs, err := h.Service.ListJobRuns(r.Context(), user.TenantID, r.URL.Query().Get("jobType"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list job runs", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

func serve(w http.ResponseWriter, data []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
