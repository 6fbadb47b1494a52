package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carepoint/scheduling-api/internal/api"
	"github.com/carepoint/scheduling-api/internal/api/handler"
	"github.com/carepoint/scheduling-api/internal/api/metrics"
	"github.com/carepoint/scheduling-api/internal/api/middleware"
	"github.com/carepoint/scheduling-api/internal/core/ports"
	"github.com/carepoint/scheduling-api/internal/core/service"
	"github.com/carepoint/scheduling-api/internal/infrastructure/db/redis"
	"github.com/carepoint/scheduling-api/internal/infrastructure/queue"
	"github.com/carepoint/scheduling-api/internal/infrastructure/sanitize"
	"github.com/carepoint/scheduling-api/pkg/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer st.close(log)

	sanitizer := sanitize.NewText()
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)

	var denylist ports.TokenDenylist
	checks := []handler.DependencyCheck{handler.MongoCheck(st.db)}
	if st.redis != nil {
		denylist = redis.NewTokenDenylist(st.redis)
		checks = append(checks, handler.RedisCheck(st.redis))
	}

	seeder := service.NewSeeder(st.users, st.doctors, st.patients, log).WithEmailRegistry(st.emails)
	if err := seeder.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	// Audit dispatcher outlives the HTTP server so queued events are written
	// before the process exits.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	auditLog := logger.Component("audit")
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(st.audit, auditLog), auditLog)
	dispatcher.Start(auditCtx)
	defer func() {
		stopAudit()
		dispatcher.Wait()
		log.Info().Msg("audit dispatcher drained")
	}()

	recorder := metrics.Recorder{}
	appointments := service.NewAppointmentService(st.appointments, st.patients, st.doctors, st.audit, sanitizer, loc, log).
		WithPublisher(dispatcher).
		WithMetrics(recorder)
	if st.redis != nil {
		appointments = appointments.WithSlotLocker(redis.NewSlotLocker(st.redis, cfg.Redis.SlotLockTTL))
	}

	auth := service.NewAuthService(st.users, st.doctors, st.patients, tokens, denylist, sanitizer, log).
		WithEmailRegistry(st.emails).
		WithMetrics(recorder)
	patients := service.NewPatientService(st.patients, st.appointments, st.doctors, st.users, sanitizer, log).
		WithEmailRegistry(st.emails)
	doctors := service.NewDoctorService(st.doctors, st.availability, st.appointments, st.patients, st.users, sanitizer, log).
		WithEmailRegistry(st.emails)

	e := api.NewRouter(api.Deps{
		Auth:           auth,
		Patients:       patients,
		Doctors:        doctors,
		Appointments:   appointments,
		HealthChecks:   checks,
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
		AuthRateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RPS,
			Burst:             cfg.RateLimit.Burst,
		},
		Metrics: true,
	})

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
