package user

import "slices"

type Permission string

const (
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceApprove Permission = "attendance.approve"

	PermissionReportsView Permission = "reports.view"
)

var (
	employeePermissions = []Permission{
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
	}

	// Managers correct records and read reports on top of what employees do.
	managerPermissions = append(slices.Clone(employeePermissions),
		PermissionAttendanceViewAll,
		PermissionAttendanceApprove,
		PermissionReportsView,
	)
)

// RolePermissions maps roles to their permissions. Pending accounts have none.
var RolePermissions = map[Role][]Permission{
	RoleOwner:    managerPermissions,
	RoleManager:  managerPermissions,
	RoleEmployee: employeePermissions,
	RolePending:  nil,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	return slices.Contains(RolePermissions[role], permission)
}
