package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Methods called with a transaction context join that transaction.
type AttendanceRepository interface {
	// Create inserts a record. A second record for the same employee and
	// date fails with ErrDuplicateRecord.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByIDForUpdate is GetByID holding a row lock until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Attendance, error)

	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)

	// GetByEmployeeAndDateForUpdate locks the (employee, date) record for a
	// read-modify-write.
	GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)

	Update(ctx context.Context, attendance Attendance) error

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// FindOpenByDate returns the records of date whose logout is unset and
	// whose status is one of OpenStatuses.
	FindOpenByDate(ctx context.Context, date time.Time) ([]Attendance, error)
}
