package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can correct attendance and read reports
	RoleEmployee Role = "employee" // Regular employee
	RolePending  Role = "pending"  // Still in onboarding
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleEmployee, RolePending:
		return true
	}
	return false
}

// IsManager checks if the role is manager or owner
func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleOwner
}

// Claims is the caller identity carried by an access token.
type Claims struct {
	UserID     string
	EmployeeID string // empty for accounts without an employee record
	Role       Role
}

// CanActFor reports whether the caller may record attendance for employeeID.
func (c Claims) CanActFor(employeeID string) bool {
	return c.Role.IsManager() || (c.EmployeeID != "" && c.EmployeeID == employeeID)
}
