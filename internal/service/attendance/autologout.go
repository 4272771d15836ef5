package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/retry"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workday"
)

const (
	outcomeProcessed = "processed"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
)

// AutoLogoutConfig tunes the reconciliation job.
type AutoLogoutConfig struct {
	Policy  retry.Policy
	Workers int
}

type AutoLogoutServiceImpl struct {
	tx             database.Transactor
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	resolver       *workday.Resolver
	locks          *keylock.Locker
	policy         retry.Policy
	workers        int
	metrics        *metrics.Metrics
	hub            *sse.Hub
}

func NewAutoLogoutService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	resolver *workday.Resolver,
	locks *keylock.Locker,
	cfg AutoLogoutConfig,
	m *metrics.Metrics,
	hub *sse.Hub,
) attendance.AutoLogoutService {
	policy := cfg.Policy
	if policy.MaxAttempts < 1 {
		policy = retry.DefaultPolicy()
	}
	if policy.Retryable == nil {
		policy.Retryable = isRetryable
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	return &AutoLogoutServiceImpl{
		tx:             tx,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		resolver:       resolver,
		locks:          locks,
		policy:         policy,
		workers:        workers,
		metrics:        m,
		hub:            hub,
	}
}

// isRetryable rejects errors that another attempt cannot fix.
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, attendance.ErrAlreadyClosed),
		errors.Is(err, attendance.ErrInvalidState),
		errors.Is(err, attendance.ErrInvalidStatus),
		errors.Is(err, attendance.ErrLogoutBeforeLogin),
		errors.Is(err, attendance.ErrBreakEndBeforeStart):
		return false
	}
	return true
}

// recordResult is the outcome of closing one record.
type recordResult struct {
	outcome    string
	name       string
	attempts   int
	failure    attendance.FailedEmployee
	syncFailed bool
}

// RunAutoLogout implements attendance.AutoLogoutService.
func (s *AutoLogoutServiceImpl) RunAutoLogout(ctx context.Context) (attendance.AutoLogoutSummary, error) {
	started := time.Now()
	today := s.resolver.Today()
	cutoff := s.resolver.CutoffInstant(today)

	summary := attendance.AutoLogoutSummary{
		Date:               s.resolver.FormatDate(today),
		Cutoff:             cutoff,
		ProcessedEmployees: []string{},
		FailedEmployees:    []attendance.FailedEmployee{},
		StartedAt:          started,
	}

	slog.Info("Cron: Starting auto-logout job", "date", summary.Date, "cutoff", cutoff)

	records, err := s.attendanceRepo.FindOpenByDate(ctx, today)
	if err != nil {
		summary.Error = err.Error()
		s.finish(&summary, started, true)
		slog.Error("Cron: Auto-logout scan failed", "date", summary.Date, "error", err)
		return summary, fmt.Errorf("%w: %v", attendance.ErrScanFailed, err)
	}
	summary.RecordsFound = len(records)

	var mu sync.Mutex
	collect := func(r recordResult) {
		mu.Lock()
		defer mu.Unlock()

		switch r.outcome {
		case outcomeProcessed:
			summary.RecordsProcessed++
			summary.ProcessedEmployees = append(summary.ProcessedEmployees, r.name)
			if r.syncFailed {
				summary.StatusSyncFailures = append(summary.StatusSyncFailures, r.name)
			}
		case outcomeSkipped:
			summary.RecordsSkipped++
		default:
			summary.RecordsFailed++
			summary.FailedEmployees = append(summary.FailedEmployees, r.failure)
		}
	}

	// Dispatched records finish even if the run is cancelled.
	workCtx := context.WithoutCancel(ctx)

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, rec := range records {
		if ctx.Err() != nil {
			summary.Cancelled = true
			for _, pending := range records[i:] {
				collect(recordResult{
					outcome: outcomeFailed,
					failure: attendance.FailedEmployee{
						EmployeeID:   pending.EmployeeID,
						EmployeeName: nameOf(pending, nil),
						AttendanceID: pending.ID,
						Reason:       "run cancelled before processing",
					},
				})
			}
			break
		}

		g.Go(func() error {
			collect(s.processRecord(workCtx, rec, today, cutoff))
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(summary.ProcessedEmployees)
	sort.Slice(summary.FailedEmployees, func(i, j int) bool {
		return summary.FailedEmployees[i].EmployeeID < summary.FailedEmployees[j].EmployeeID
	})

	s.finish(&summary, started, false)

	slog.Info("Cron: Auto-logout job finished",
		"status", summary.Status,
		"found", summary.RecordsFound,
		"processed", summary.RecordsProcessed,
		"failed", summary.RecordsFailed,
		"skipped", summary.RecordsSkipped,
		"duration", summary.ExecutionTime,
	)
	return summary, nil
}

func (s *AutoLogoutServiceImpl) finish(summary *attendance.AutoLogoutSummary, started time.Time, scanFailed bool) {
	elapsed := time.Since(started)
	summary.FinishedAt = started.Add(elapsed)
	summary.ExecutionTime = elapsed.Round(time.Millisecond).String()
	summary.ExecutionTimeMs = elapsed.Milliseconds()
	summary.ResolveStatus(scanFailed)
	s.metrics.ObserveAutoLogoutRun(string(summary.Status), elapsed)
}

// processRecord force-closes one record with bounded retries. Each attempt
// takes the key lock and the row lock, so a concurrent manual logout either
// wins (the record is skipped) or waits.
func (s *AutoLogoutServiceImpl) processRecord(ctx context.Context, rec attendance.Attendance, date, cutoff time.Time) recordResult {
	var (
		emp      employee.Employee
		resolved bool
		closed   attendance.Attendance
		skipped  bool
	)

	attempts, err := s.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			slog.Warn("Cron: Retrying auto-logout",
				"attendance_id", rec.ID,
				"employee_id", rec.EmployeeID,
				"attempt", attempt,
			)
		}

		if !resolved {
			e, err := s.employeeRepo.GetByID(ctx, rec.EmployeeID)
			if err != nil {
				return err
			}
			emp, resolved = e, true
		}

		unlock := s.locks.Lock(lockKey(rec.EmployeeID, date))
		defer unlock()

		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			current, err := s.attendanceRepo.GetByIDForUpdate(ctx, rec.ID)
			if err != nil {
				return err
			}
			if !current.IsOpen() {
				skipped = true
				return nil
			}

			if err := current.ForceLogout(cutoff, expectedHours(emp)); err != nil {
				return err
			}
			if err := s.attendanceRepo.Update(ctx, current); err != nil {
				return err
			}

			closed = current
			return nil
		})
	})

	name := nameOf(rec, nil)
	if resolved {
		name = nameOf(rec, &emp)
	}

	if err != nil {
		slog.Error("Cron: Failed to auto-logout attendance",
			"attendance_id", rec.ID,
			"employee_id", rec.EmployeeID,
			"attempts", attempts,
			"error", err,
		)
		s.metrics.ObserveAutoLogoutRecord(outcomeFailed, attempts)
		return recordResult{
			outcome:  outcomeFailed,
			name:     name,
			attempts: attempts,
			failure: attendance.FailedEmployee{
				EmployeeID:   rec.EmployeeID,
				EmployeeName: name,
				AttendanceID: rec.ID,
				Reason:       err.Error(),
				Attempts:     attempts,
			},
		}
	}

	if skipped {
		slog.Info("Cron: Attendance already closed, skipping", "attendance_id", rec.ID, "employee_id", rec.EmployeeID)
		s.metrics.ObserveAutoLogoutRecord(outcomeSkipped, attempts)
		return recordResult{outcome: outcomeSkipped, name: name, attempts: attempts}
	}

	result := recordResult{outcome: outcomeProcessed, name: name, attempts: attempts}

	// Status sync is best effort; the record is already closed.
	if emp.Status == employee.StatusActive || emp.Status == employee.StatusOnBreak {
		if err := s.employeeRepo.UpdateStatus(ctx, emp.ID, employee.StatusInactive); err != nil {
			slog.Warn("Cron: Failed to update employee status after auto-logout",
				"employee_id", emp.ID,
				"error", err,
			)
			result.syncFailed = true
		}
	}

	s.metrics.ObserveAutoLogoutRecord(outcomeProcessed, attempts)

	closed.EmployeeName = &emp.FullName
	closed.EmployeeDepartment = emp.Department
	s.hub.Publish(sse.Event{
		EmployeeID: closed.EmployeeID,
		Event:      sse.EventAttendanceAutoClosed,
		Data:       mapAttendanceToResponse(closed, s.resolver.Location(), s.resolver.IsCutoffSignature),
	})

	return result
}

func nameOf(rec attendance.Attendance, emp *employee.Employee) string {
	if emp != nil {
		return emp.DisplayName()
	}
	if rec.EmployeeName != nil && *rec.EmployeeName != "" {
		return *rec.EmployeeName
	}
	return rec.EmployeeID
}
