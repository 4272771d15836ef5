package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workday"
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	resolver   *workday.Resolver
}

func NewReportService(reportRepo report.ReportRepository, resolver *workday.Resolver) report.ReportService {
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		resolver:   resolver,
	}
}

// GenerateCronLogs summarises auto-logout activity over the trailing
// req.Days civil days, today included.
func (s *ReportServiceImpl) GenerateCronLogs(ctx context.Context, req report.CronLogsRequest) (report.CronLogsReport, error) {
	// Validate request
	if err := req.Validate(); err != nil {
		return report.CronLogsReport{}, err
	}

	periodEnd := s.resolver.Today()
	periodStart := s.resolver.AddDays(periodEnd, -(req.Days - 1))

	records, err := s.reportRepo.ListAttendanceByDateRange(ctx, periodStart, periodEnd)
	if err != nil {
		return report.CronLogsReport{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	daily, offenders, health := report.Aggregate(records, periodStart, periodEnd, s.resolver.IsCutoffSignature, req.TopN)

	return report.CronLogsReport{
		PeriodStart:  s.resolver.FormatDate(periodStart),
		PeriodEnd:    s.resolver.FormatDate(periodEnd),
		Days:         req.Days,
		GeneratedAt:  s.resolver.Now().Format(time.RFC3339),
		Daily:        daily,
		TopOffenders: offenders,
		Health:       health,
	}, nil
}
