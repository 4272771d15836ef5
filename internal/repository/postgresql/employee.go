package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}

	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, full_name, department, status, working_hours, created_at, updated_at
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	var (
		found  employee.Employee
		status string
	)
	err := q.QueryRow(ctx, query, id).
		Scan(
			&found.ID, &found.FullName, &found.Department, &status,
			&found.WorkingHours, &found.CreatedAt, &found.UpdatedAt,
		)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, translateError(fmt.Errorf("failed to get employee: %w", err))
	}
	found.Status = employee.Status(status)

	return found, nil
}

// UpdateStatus implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateStatus(ctx context.Context, id string, status employee.Status) error {
	if _, err := uuid.Parse(id); err != nil {
		return employee.ErrEmployeeNotFound
	}

	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, string(status), id).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return translateError(fmt.Errorf("failed to update employee status: %w", err))
	}

	return nil
}
