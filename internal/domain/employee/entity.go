package employee

import (
	"time"
)

// Employee is the directory record the attendance engine reads working hours
// from and projects presence status onto. Profile data is owned elsewhere.
type Employee struct {
	ID           string
	FullName     string
	Department   *string
	Status       Status
	WorkingHours *string // "HH:MM"; nil or unusable means the 8h default
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusOnLeave  Status = "on_leave"
	StatusOnBreak  Status = "on_break"
)

// DisplayName falls back to the ID when the directory has no name.
func (e Employee) DisplayName() string {
	if e.FullName != "" {
		return e.FullName
	}
	return e.ID
}
