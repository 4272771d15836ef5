package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

// JobAutoLogout is the scheduler name of the end-of-day reconciliation.
const JobAutoLogout = "auto_logout"

type AttendanceJobs struct {
	autoLogout attendance.AutoLogoutService
	schedule   string
}

func NewAttendanceJobs(autoLogout attendance.AutoLogoutService, schedule string) *AttendanceJobs {
	return &AttendanceJobs{
		autoLogout: autoLogout,
		schedule:   schedule,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob(JobAutoLogout, j.schedule, j.AutoLogout)
}

// AutoLogout runs one reconciliation pass. A run that closed some records
// but not others is logged and not treated as a job failure.
func (j *AttendanceJobs) AutoLogout(ctx context.Context) error {
	summary, err := j.autoLogout.RunAutoLogout(ctx)
	if err != nil {
		if errors.Is(err, attendance.ErrScanFailed) {
			return fmt.Errorf("auto-logout scan: %w", err)
		}
		return err
	}

	for _, failed := range summary.FailedEmployees {
		slog.Warn("Cron: Auto-logout left attendance open",
			"employee_id", failed.EmployeeID,
			"attendance_id", failed.AttendanceID,
			"attempts", failed.Attempts,
			"reason", failed.Reason,
		)
	}
	if summary.Status == attendance.RunFailure {
		return fmt.Errorf("auto-logout failed for %d of %d records", summary.RecordsFailed, summary.RecordsFound)
	}
	return nil
}
