package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/app/server"
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
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/db"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/email"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/jobs"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/metrics"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			slog.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		slog.Error("encryption key invalid", "err", err)
		os.Exit(1)
	}

	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom)
	authStore := auth.NewStore(pool)
	coreStore := core.NewStore(pool, cryptoSvc)
	coreSvc := core.NewService(coreStore)
	leaveSvc := leave.NewService(leave.NewStore(pool), coreStore)
	evaluationSvc := evaluation.NewService(evaluation.NewStore(pool), coreStore)
	requestSvc := request.NewService(request.NewStore(pool), coreStore)
	attendanceSvc := attendance.NewService(attendance.NewStore(pool))
	auditSvc := audit.New(pool)
	reportsSvc := reports.NewService(reports.NewStore(pool))
	collector := metrics.New()

	jobSvc := jobs.New(pool, cfg)
	jobSvc.RegisterLeaveSweep(func(ctx context.Context, tenantID string, now time.Time) (any, error) {
		return leaveSvc.Sweep(ctx, tenantID, now)
	})
	jobSvc.RegisterLeaveCarryOver(func(ctx context.Context, tenantID string, now time.Time) (any, error) {
		return leaveSvc.CarryOverSweep(ctx, tenantID, now)
	})
	jobSvc.RegisterAttendanceAlerts(func(ctx context.Context, tenantID string, now time.Time) (any, error) {
		return attendanceSvc.RunAlerts(ctx, tenantID, now)
	})
	jobSvc.Start(ctx)

	handler := server.New(cfg, pool, server.Services{
		Auth:          authStore,
		Crypto:        cryptoSvc,
		Core:          coreSvc,
		Leave:         leaveSvc,
		Evaluation:    evaluationSvc,
		Request:       requestSvc,
		Attendance:    attendanceSvc,
		Notifications: notifySvc,
		Audit:         auditSvc,
		Reports:       reportsSvc,
		Jobs:          jobSvc,
		Collector:     collector,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "err", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	}
}
