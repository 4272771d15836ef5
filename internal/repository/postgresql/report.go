package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// ListAttendanceByDateRange retrieves every attendance record in [from, to]
// with the employee name joined, oldest day first.
func (r *reportRepositoryImpl) ListAttendanceByDateRange(ctx context.Context, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.date_of_working >= $1 AND a.date_of_working <= $2
		ORDER BY a.date_of_working, a.employee_id
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, translateError(fmt.Errorf("failed to query attendance report: %w", err))
	}
	defer rows.Close()

	return collectAttendances(rows)
}
