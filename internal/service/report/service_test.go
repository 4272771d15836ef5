package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	records  []attendance.Attendance
	err      error
	from, to time.Time
}

func (f *fakeReportRepo) ListAttendanceByDateRange(ctx context.Context, from, to time.Time) ([]attendance.Attendance, error) {
	f.from, f.to = from, to
	return f.records, f.err
}

func newResolver(t *testing.T) *workday.Resolver {
	t.Helper()
	loc, err := workday.FixedZone("IST", "+05:30")
	require.NoError(t, err)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, loc)
	return workday.NewResolver(loc, 23, 59, workday.ClockFunc(func() time.Time { return now }))
}

func TestGenerateCronLogs_DefaultWindow(t *testing.T) {
	resolver := newResolver(t)
	repo := &fakeReportRepo{}
	svc := NewReportService(repo, resolver)

	got, err := svc.GenerateCronLogs(context.Background(), report.CronLogsRequest{})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-09", got.PeriodStart)
	assert.Equal(t, "2024-03-15", got.PeriodEnd)
	assert.Equal(t, 7, got.Days)
	assert.Len(t, got.Daily, 7)
	assert.Empty(t, got.TopOffenders)
	assert.Zero(t, got.Health.TotalAutoLogouts)
	assert.Equal(t, "2024-03-09", repo.from.Format(workday.DateLayout))
	assert.Equal(t, "2024-03-15", repo.to.Format(workday.DateLayout))
}

func TestGenerateCronLogs_DetectsCutoffSignature(t *testing.T) {
	resolver := newResolver(t)
	date := resolver.Today()
	rec := attendance.NewPresent("emp-1", date, "Friday", time.Date(2024, 3, 15, 3, 30, 0, 0, time.UTC), nil)
	require.NoError(t, rec.ForceLogout(resolver.CutoffInstant(date), 8*time.Hour))

	svc := NewReportService(&fakeReportRepo{records: []attendance.Attendance{rec}}, resolver)

	got, err := svc.GenerateCronLogs(context.Background(), report.CronLogsRequest{Days: 1})
	require.NoError(t, err)

	require.Len(t, got.Daily, 1)
	assert.Equal(t, 1, got.Daily[0].AutoClosed)
	require.Len(t, got.TopOffenders, 1)
	assert.Equal(t, "emp-1", got.TopOffenders[0].EmployeeName)
	require.NotNil(t, got.Health.MostRecentDayProcessed)
	assert.Equal(t, "2024-03-15", *got.Health.MostRecentDayProcessed)
}

func TestGenerateCronLogs_Errors(t *testing.T) {
	resolver := newResolver(t)

	svc := NewReportService(&fakeReportRepo{err: errors.New("connection refused")}, resolver)
	_, err := svc.GenerateCronLogs(context.Background(), report.CronLogsRequest{})
	assert.ErrorIs(t, err, report.ErrReportGenerationFailed)

	_, err = svc.GenerateCronLogs(context.Background(), report.CronLogsRequest{Days: -1})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, report.ErrReportGenerationFailed)
}
