package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.employee_id, a.date_of_working, a.day_of_week,
	a.login_time, a.logout_time, a.break_start_time, a.break_end_time, a.break_duration_ms,
	a.start_latitude, a.start_longitude, a.end_latitude, a.end_longitude,
	a.working_hours_completed, a.status, a.created_at, a.updated_at,
	e.full_name AS employee_name, e.department AS employee_department`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// scanAttendance reads one row selected with attendanceColumns.
func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		att                      attendance.Attendance
		status                   string
		breakMs                  int64
		startLat, startLng       *float64
		endLat, endLng           *float64
		employeeName, department *string
	)
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.DateOfWorking, &att.DayOfWeek,
		&att.LoginTime, &att.LogoutTime, &att.BreakStartTime, &att.BreakEndTime, &breakMs,
		&startLat, &startLng, &endLat, &endLng,
		&att.WorkingHoursCompleted, &status, &att.CreatedAt, &att.UpdatedAt,
		&employeeName, &department,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	att.Status = attendance.Status(status)
	att.BreakDuration = time.Duration(breakMs) * time.Millisecond
	att.StartLocation = toLocation(startLat, startLng)
	att.EndLocation = toLocation(endLat, endLng)
	att.EmployeeName = employeeName
	att.EmployeeDepartment = department
	att.DateOfWorking = civilDate(att.DateOfWorking)
	return att, nil
}

func toLocation(lat, lng *float64) *attendance.Location {
	if lat == nil || lng == nil {
		return nil
	}
	return &attendance.Location{Latitude: *lat, Longitude: *lng}
}

func fromLocation(l *attendance.Location) (lat, lng *float64) {
	if l == nil {
		return nil, nil
	}
	return &l.Latitude, &l.Longitude
}

// civilDate normalises a date column to midnight UTC.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (a *attendanceRepository) getOne(ctx context.Context, where string, lock bool, args ...any) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE ` + where
	if lock {
		query += ` FOR UPDATE OF a`
	}

	att, err := scanAttendance(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, translateError(fmt.Errorf("failed to get attendance: %w", err))
	}
	return att, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}
	newAttendance.ID = id.String()

	startLat, startLng := fromLocation(newAttendance.StartLocation)
	endLat, endLng := fromLocation(newAttendance.EndLocation)

	query := `
		INSERT INTO attendances (
			id, employee_id, date_of_working, day_of_week,
			login_time, logout_time, break_start_time, break_end_time, break_duration_ms,
			start_latitude, start_longitude, end_latitude, end_longitude,
			working_hours_completed, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.EmployeeID,
		newAttendance.DateOfWorking,
		newAttendance.DayOfWeek,
		newAttendance.LoginTime,
		newAttendance.LogoutTime,
		newAttendance.BreakStartTime,
		newAttendance.BreakEndTime,
		newAttendance.BreakDuration.Milliseconds(),
		startLat, startLng, endLat, endLng,
		newAttendance.WorkingHoursCompleted,
		string(newAttendance.Status),
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, translateError(fmt.Errorf("failed to create attendance: %w", err))
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a.getOne(ctx, "a.id = $1", false, id)
}

// GetByIDForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByIDForUpdate(ctx context.Context, id string) (attendance.Attendance, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a.getOne(ctx, "a.id = $1", true, id)
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a.getOne(ctx, "a.employee_id = $1 AND a.date_of_working = $2", false, employeeID, date)
}

// GetByEmployeeAndDateForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a.getOne(ctx, "a.employee_id = $1 AND a.date_of_working = $2", true, employeeID, date)
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	startLat, startLng := fromLocation(att.StartLocation)
	endLat, endLng := fromLocation(att.EndLocation)

	query := `
		UPDATE attendances SET
			login_time = $2,
			logout_time = $3,
			break_start_time = $4,
			break_end_time = $5,
			break_duration_ms = $6,
			start_latitude = $7,
			start_longitude = $8,
			end_latitude = $9,
			end_longitude = $10,
			working_hours_completed = $11,
			status = $12,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		att.LoginTime,
		att.LogoutTime,
		att.BreakStartTime,
		att.BreakEndTime,
		att.BreakDuration.Milliseconds(),
		startLat, startLng, endLat, endLng,
		att.WorkingHoursCompleted,
		string(att.Status),
	)
	if err != nil {
		return translateError(fmt.Errorf("failed to update attendance: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	// Employee ID filter
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		if _, err := uuid.Parse(*filter.EmployeeID); err != nil {
			return []attendance.Attendance{}, 0, nil
		}
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Department filter
	if filter.Department != nil && *filter.Department != "" {
		baseWhere += fmt.Sprintf(" AND e.department ILIKE $%d", argIdx)
		args = append(args, *filter.Department)
		argIdx++
	}

	// Date filter
	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND a.date_of_working = $%d::date", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date_of_working >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date_of_working <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	// Status filter
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, translateError(fmt.Errorf("failed to count attendances: %w", err))
	}

	// Build ORDER BY
	orderByField := "a.date_of_working"
	switch filter.SortBy {
	case "employee_name":
		orderByField = "e.full_name"
	case "login_time":
		orderByField = "a.login_time"
	case "logout_time":
		orderByField = "a.logout_time"
	case "status":
		orderByField = "a.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY %s %s, a.login_time DESC, a.id
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := max(filter.Page, 1)
	offset := (page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, translateError(fmt.Errorf("failed to query attendances: %w", err))
	}
	defer rows.Close()

	attendances, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, err
	}

	return attendances, total, nil
}

// FindOpenByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindOpenByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	statuses := make([]string, 0, len(attendance.OpenStatuses))
	for _, s := range attendance.OpenStatuses {
		statuses = append(statuses, string(s))
	}

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.date_of_working = $1
		  AND a.logout_time IS NULL
		  AND a.status = ANY($2)
		ORDER BY a.login_time, a.id
	`

	rows, err := q.Query(ctx, query, date, statuses)
	if err != nil {
		return nil, translateError(fmt.Errorf("failed to query open attendances: %w", err))
	}
	defer rows.Close()

	return collectAttendances(rows)
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	attendances := []attendance.Attendance{}
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(fmt.Errorf("failed to iterate attendances: %w", err))
	}
	return attendances, nil
}
