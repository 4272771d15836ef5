package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// MarkLogin opens the employee's record for the day
	MarkLogin(ctx context.Context, req MarkRequest) (AttendanceResponse, error)

	// MarkLeave records a zero-duration leave day
	MarkLeave(ctx context.Context, req MarkRequest) (AttendanceResponse, error)

	// MarkAbsent records a zero-duration absence
	MarkAbsent(ctx context.Context, req MarkRequest) (AttendanceResponse, error)

	// MarkLogout closes the open record and recomputes completion
	MarkLogout(ctx context.Context, req LogoutRequest) (AttendanceResponse, error)

	StartBreak(ctx context.Context, req BreakRequest) (AttendanceResponse, error)
	EndBreak(ctx context.Context, req BreakRequest) (AttendanceResponse, error)

	// UpdateAttendance updates an attendance record (admin/manager) - for fixing wrong data
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)

	// GetAttendance retrieves a single attendance record by ID
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters (admin/manager)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetMyAttendance retrieves attendance records for one employee
	GetMyAttendance(ctx context.Context, employeeID string, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// GetTodayStatus reports today's record and the allowed next actions
	GetTodayStatus(ctx context.Context, employeeID string) (AttendanceStatusResponse, error)
}
