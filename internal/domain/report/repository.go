package report

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// ListAttendanceByDateRange returns every record whose date of working
	// falls in [from, to], employee name joined.
	ListAttendanceByDateRange(ctx context.Context, from, to time.Time) ([]attendance.Attendance, error)
}
