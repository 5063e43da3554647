package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/audit"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/api"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/middleware"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/events", h.handleList)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/trail/{entityType}/{entityID}", h.handleTrail)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		EntityID:   r.URL.Query().Get("entityId"),
		ActorUser:  r.URL.Query().Get("actorId"),
	}
	includeDetails := r.URL.Query().Get("details") == "true"
	page := shared.ParsePagination(r, 50, 200)

	total, err := h.Service.Count(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to count audit events", middleware.GetRequestID(r.Context()))
		return
	}
	events, err := h.Service.List(r.Context(), user.TenantID, filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	shared.SetTotal(w, total)
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTrail(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityID")

	events, err := h.Service.Trail(r.Context(), user.TenantID, entityType, entityID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to load audit trail", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}
