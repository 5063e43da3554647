package adminhandler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/audit"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/jobs"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/metrics"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/api"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/middleware"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/shared"
)

type Handler struct {
	Jobs      *jobs.Service
	Collector *metrics.Collector
	Perms     middleware.PermissionStore
	Audit     *audit.Service
}

func NewHandler(jobService *jobs.Service, collector *metrics.Collector, perms middleware.PermissionStore, auditService *audit.Service) *Handler {
	return &Handler{Jobs: jobService, Collector: collector, Perms: perms, Audit: auditService}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms)).Get("/metrics", h.handleMetrics)
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms)).Post("/jobs/{jobType}/run", h.handleRunJob)
	})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.Collector == nil {
		api.Fail(w, http.StatusNotFound, "metrics_disabled", "metrics collection is disabled", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, h.Collector.Snapshot(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRunJob(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	jobType := chi.URLParam(r, "jobType")
	task := h.Jobs.Task(jobType)
	if task == nil {
		api.Fail(w, http.StatusNotFound, "unknown_job", "no job registered under that type", middleware.GetRequestID(r.Context()))
		return
	}

	details, err := h.Jobs.RunNow(r.Context(), jobType, user.TenantID, func(ctx context.Context) (any, error) {
		return task(ctx, user.TenantID, time.Now())
	})
	if h.Audit != nil {
		if auditErr := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "job.trigger", "job", jobType,
			middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]any{"jobType": jobType}); auditErr != nil {
			slog.Warn("audit job.trigger failed", "err", auditErr)
		}
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_failed", "job run failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"jobType": jobType, "status": "completed", "details": details}, middleware.GetRequestID(r.Context()))
}
