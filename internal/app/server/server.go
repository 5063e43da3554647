package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/attendance"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/audit"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/core"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/evaluation"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/leave"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/notifications"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/reports"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/request"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/config"
	cryptoutil "github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/crypto"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/jobs"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/metrics"
	adminhandler "github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/handlers/admin"
	attendancehandler "github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/handlers/attendance"
	audithandler "github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/handlers/audit"
	authhandler "github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/handlers/auth"
	corehandler "github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/handlers/core"
	evaluationhandler "github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/handlers/evaluation"
	leavehandler "github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/handlers/leave"
	notificationshandler "github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/handlers/notifications"
	reportshandler "github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/handlers/reports"
	requesthandler "github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/handlers/request"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/middleware"
)

// Services bundles the constructed domain services that the router wires
// into handlers. Everything here is built once in main and shared.
type Services struct {
	Auth          *auth.Store
	Crypto        *cryptoutil.Service
	Core          *core.Service
	Leave         *leave.Service
	Evaluation    *evaluation.Service
	Request       *request.Service
	Attendance    *attendance.Service
	Notifications *notifications.Service
	Audit         *audit.Service
	Reports       *reports.Service
	Jobs          *jobs.Service
	Collector     *metrics.Collector
}

func New(cfg config.Config, pool *pgxpool.Pool, svcs Services) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.Logger(svcs.Collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(chimw.Timeout(cfg.RequestTimeout))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Idempotency(middleware.NewIdempotencyStore(pool)))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	perms := svcs.Auth

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(svcs.Auth, cfg.JWTSecret, svcs.Crypto, svcs.Notifications, "").RegisterRoutes(r)
		corehandler.NewHandler(svcs.Core, svcs.Auth, perms, svcs.Audit).RegisterRoutes(r)
		leavehandler.NewHandler(svcs.Leave, svcs.Core, perms, svcs.Notifications, svcs.Audit).RegisterRoutes(r)
		evaluationhandler.NewHandler(svcs.Evaluation, svcs.Core, perms, svcs.Notifications, svcs.Audit).RegisterRoutes(r)
		requesthandler.NewHandler(svcs.Request, svcs.Core, perms, svcs.Notifications, svcs.Audit).RegisterRoutes(r)
		attendancehandler.NewHandler(svcs.Attendance, svcs.Core, perms, svcs.Audit).RegisterRoutes(r)
		notificationshandler.NewHandler(svcs.Notifications, perms).RegisterRoutes(r)
		audithandler.NewHandler(svcs.Audit, perms).RegisterRoutes(r)
		reportshandler.NewHandler(svcs.Reports, perms).RegisterRoutes(r)

		var collector *metrics.Collector
		if cfg.MetricsEnabled {
			collector = svcs.Collector
		}
		adminhandler.NewHandler(svcs.Jobs, collector, perms, svcs.Audit).RegisterRoutes(r)
	})

	return router
}
