package attendance

import (
	"context"
	"time"
)

// RunStatus is the overall outcome of an auto-logout run.
type RunStatus string

const (
	RunSuccess        RunStatus = "success"
	RunPartialSuccess RunStatus = "partial_success"
	RunFailure        RunStatus = "failure"
)

// FailedEmployee is a record the job gave up on.
type FailedEmployee struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	AttendanceID string `json:"attendance_id"`
	Reason       string `json:"reason"`
	Attempts     int    `json:"attempts"`
}

// AutoLogoutSummary is the operator report of one reconciliation run.
type AutoLogoutSummary struct {
	Status             RunStatus        `json:"status"`
	Date               string           `json:"date"`
	Cutoff             time.Time        `json:"cutoff"`
	RecordsFound       int              `json:"records_found"`
	RecordsProcessed   int              `json:"records_processed"`
	RecordsFailed      int              `json:"records_failed"`
	RecordsSkipped     int              `json:"records_skipped"`
	ProcessedEmployees []string         `json:"processed_employees"`
	FailedEmployees    []FailedEmployee `json:"failed_employees"`
	StatusSyncFailures []string         `json:"status_sync_failures,omitempty"`
	Cancelled          bool             `json:"cancelled,omitempty"`
	Error              string           `json:"error,omitempty"`
	StartedAt          time.Time        `json:"started_at"`
	FinishedAt         time.Time        `json:"finished_at"`
	ExecutionTime      string           `json:"execution_time"`
	ExecutionTimeMs    int64            `json:"execution_time_ms"`
}

// ResolveStatus derives Status from the counters. A failed scan is a
// failure regardless of counts.
func (s *AutoLogoutSummary) ResolveStatus(scanFailed bool) RunStatus {
	switch {
	case scanFailed:
		s.Status = RunFailure
	case s.RecordsFailed == 0:
		s.Status = RunSuccess
	case s.RecordsProcessed == 0:
		s.Status = RunFailure
	default:
		s.Status = RunPartialSuccess
	}
	return s.Status
}

// AutoLogoutService force-closes the records left open at the end of the day.
type AutoLogoutService interface {
	// RunAutoLogout processes today's open records. The returned summary is
	// always populated; err is set only when the scan itself failed.
	RunAutoLogout(ctx context.Context) (AutoLogoutSummary, error)
}
