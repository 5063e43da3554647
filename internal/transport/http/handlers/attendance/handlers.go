package attendancehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/attendance"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/audit"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/core"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/api"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/middleware"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
	Core    *core.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *attendance.Service, coreSvc *core.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Core: coreSvc, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms)).Post("/check-in", h.handleCheckIn)
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms)).Post("/check-out", h.handleCheckOut)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/entries", h.handleListEntries)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/summary", h.handleSummary)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/schedules", h.handleListSchedules)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Post("/schedules", h.handleCreateSchedule)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/holidays", h.handleListHolidays)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Post("/holidays", h.handleCreateHoliday)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Delete("/holidays/{holidayID}", h.handleDeleteHoliday)
	})
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	user, employeeID, ok := h.identify(w, r)
	if !ok {
		return
	}

	entry, err := h.Service.CheckIn(r.Context(), user.TenantID, employeeID, time.Now())
	if err != nil {
		h.failAttendance(w, r, err)
		return
	}
	h.record(r, user, "attendance.check_in", "attendance_entry", entry.ID, nil, entry)
	api.Created(w, entry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	user, employeeID, ok := h.identify(w, r)
	if !ok {
		return
	}

	entry, err := h.Service.CheckOut(r.Context(), user.TenantID, employeeID, time.Now())
	if err != nil {
		h.failAttendance(w, r, err)
		return
	}
	h.record(r, user, "attendance.check_out", "attendance_entry", entry.ID, nil, entry)
	api.Success(w, entry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEntries(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := r.URL.Query().Get("employeeId")
	own := h.employeeIDFor(r, user)
	if employeeID == "" || user.RoleName == auth.RoleEmployee {
		employeeID = own
	}
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_employee", "employeeId is required", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	from, _ := v.Date("from", r.URL.Query().Get("from"))
	to, _ := v.Date("to", r.URL.Query().Get("to"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	entries, err := h.Service.ListEntries(r.Context(), user.TenantID, employeeID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entries_failed", "failed to list attendance entries", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" || user.RoleName == auth.RoleEmployee {
		employeeID = h.employeeIDFor(r, user)
	}
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if raw := r.URL.Query().Get("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			year = v
		}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 && v <= 12 {
			month = v
		}
	}

	summary, err := h.Service.Summarize(r.Context(), user.TenantID, employeeID, year, month)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to build attendance summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	schedules, err := h.Service.ListSchedules(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "schedules_failed", "failed to list schedules", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, schedules, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload attendance.Schedule
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	start, startOK := v.Clock("startTime", payload.StartTime)
	end, endOK := v.Clock("endTime", payload.EndTime)
	if startOK && endOK && !end.After(start) {
		v.Add("endTime", "must be after startTime")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	id, err := h.Service.CreateSchedule(r.Context(), user.TenantID, payload)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_schedule", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "attendance.schedule.create", "work_schedule", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
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
	holidays, err := h.Service.ListHolidays(r.Context(), user.TenantID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holidays_failed", "failed to list holidays", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, holidays, middleware.GetRequestID(r.Context()))
}

type holidayPayload struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	date, _ := v.Date("date", payload.Date)
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateHoliday(r.Context(), user.TenantID, date, payload.Name)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_create_failed", "failed to create holiday", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "attendance.holiday.create", "holiday", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	holidayID := chi.URLParam(r, "holidayID")
	if err := h.Service.DeleteHoliday(r.Context(), user.TenantID, holidayID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_delete_failed", "failed to delete holiday", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "attendance.holiday.delete", "holiday", holidayID, nil, nil)
	api.Success(w, map[string]string{"id": holidayID, "status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failAttendance(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, attendance.ErrScheduleNotFound):
		api.Fail(w, http.StatusConflict, "no_schedule", "no default work schedule configured", reqID)
	case errors.Is(err, attendance.ErrNotWorkDay):
		api.Fail(w, http.StatusConflict, "not_work_day", "today is not a working day", reqID)
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		api.Fail(w, http.StatusConflict, "already_checked_in", "already checked in today", reqID)
	case errors.Is(err, attendance.ErrNotCheckedIn):
		api.Fail(w, http.StatusConflict, "not_checked_in", "no open check-in for today", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to record attendance", reqID)
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
