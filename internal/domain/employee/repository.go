package employee

import "context"

// EmployeeRepository is the slice of the employee directory the attendance
// engine depends on.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
