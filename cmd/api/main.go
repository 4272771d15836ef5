package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	reportService "github.com/cmlabs-hris/hris-attendance-go/internal/service/report"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.PoolOptions())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	resolver, err := cfg.Resolver()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	tx := postgresql.NewTransactor(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	locks := keylock.New()
	hub := sse.NewHub()

	attendanceSvc := attendanceService.NewAttendanceService(tx, attendanceRepo, employeeRepo, resolver, locks, m, hub)
	autoLogoutSvc := attendanceService.NewAutoLogoutService(
		tx,
		attendanceRepo,
		employeeRepo,
		resolver,
		locks,
		attendanceService.AutoLogoutConfig{
			Policy:  cfg.RetryPolicy(),
			Workers: cfg.Attendance.Workers,
		},
		m,
		hub,
	)
	reportSvc := reportService.NewReportService(reportRepo, resolver)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			Version:        version,
			CORSOrigins:    cfg.App.CORSOrigins,
			CronSecret:     cfg.Attendance.CronSecret,
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
			LogLevel:       cfg.LogLevel(),
		},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc, JWTService, hub),
		appHTTP.NewReportHandler(reportSvc),
		appHTTP.NewCronHandler(autoLogoutSvc),
	)

	scheduler := cron.NewScheduler(loc)
	if err := cron.NewAttendanceJobs(autoLogoutSvc, cfg.Attendance.AutoLogoutCron).RegisterJobs(scheduler); err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}
	scheduler.Start()
	slog.Info("auto-logout scheduled", "next_run", scheduler.NextRun(cron.JobAutoLogout), "timezone", loc.String())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", srv.Addr, "env", cfg.App.Env, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		scheduler.Stop()
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// A cancelled reconciliation reports its undispatched records as failed.
	scheduler.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
