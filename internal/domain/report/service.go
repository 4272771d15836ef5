package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// GenerateCronLogs summarises auto-logout activity over a trailing window
	GenerateCronLogs(ctx context.Context, req CronLogsRequest) (CronLogsReport, error)
}
