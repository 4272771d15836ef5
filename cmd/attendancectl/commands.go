package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	reportService "github.com/cmlabs-hris/hris-attendance-go/internal/service/report"
)

// errRunFailed makes the process exit non-zero after the summary is printed.
var errRunFailed = errors.New("auto-logout did not complete")

// app holds the services a command needs, built against the configured database.
type app struct {
	cfg        *config.Config
	db         *database.DB
	autoLogout attendance.AutoLogoutService
	reports    report.ReportService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.PoolOptions())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	tx := postgresql.NewTransactor(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)

	return &app{
		cfg: cfg,
		db:  db,
		autoLogout: attendanceService.NewAutoLogoutService(
			tx,
			attendanceRepo,
			employeeRepo,
			resolver,
			keylock.New(),
			attendanceService.AutoLogoutConfig{Policy: cfg.RetryPolicy(), Workers: cfg.Attendance.Workers},
			nil,
			nil,
		),
		reports: reportService.NewReportService(postgresql.NewReportRepository(db), resolver),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runAutoLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-auto-logout",
		Short: "Close every attendance record still open for today at the cutoff",
		Long: `Run one end-of-day reconciliation pass and print its summary as JSON.

Exits non-zero when the scan fails or no record could be closed. A run
where only some records failed prints the summary and exits zero.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, runErr := a.autoLogout.RunAutoLogout(ctx)
			if err := printJSON(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}
			if summary.Status == attendance.RunFailure {
				return errRunFailed
			}
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var req report.CronLogsRequest

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print auto-logout activity over a trailing window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.reports.GenerateCronLogs(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVarP(&req.Days, "days", "d", report.DefaultDays, "Window length in days, ending today")
	cmd.Flags().IntVarP(&req.TopN, "top", "n", report.DefaultTopN, "Number of top offenders to list")

	return cmd
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show when the auto-logout job fires next",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			scheduler := cron.NewScheduler(loc)
			noop := func(ctx context.Context) error { return nil }
			if err := scheduler.AddJob(cron.JobAutoLogout, cfg.Attendance.AutoLogoutCron, noop); err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
				cron.JobAutoLogout, cfg.Attendance.AutoLogoutCron, scheduler.NextRun(cron.JobAutoLogout).Format("2006-01-02 15:04:05 -07:00"))
			return nil
		},
	}
}
