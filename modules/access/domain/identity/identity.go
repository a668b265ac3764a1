package identity

import "slices"

// Role is the access level resolved for an external (Telegram) user.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleManager    Role = "manager"
	RoleEmployee   Role = "employee"
	RoleUnknown    Role = "unknown"
)

// Roles lists every role, most privileged first.
var Roles = []Role{RoleSuperAdmin, RoleManager, RoleEmployee, RoleUnknown}

func (r Role) String() string {
	return string(r)
}

// Identity is the resolved caller. DepartmentIDs is the manager scope; EmployeeID is
// the bound employee for managers and employees and zero otherwise.
type Identity struct {
	ExternalID    int64
	Role          Role
	DepartmentIDs []int64
	EmployeeID    int64
}

func Unknown(externalID int64) Identity {
	return Identity{ExternalID: externalID, Role: RoleUnknown}
}

func (i Identity) IsSuperAdmin() bool {
	return i.Role == RoleSuperAdmin
}

func (i Identity) IsManager() bool {
	return i.Role == RoleManager
}

func (i Identity) IsEmployee() bool {
	return i.Role == RoleEmployee
}

func (i Identity) IsKnown() bool {
	return i.Role != RoleUnknown && i.Role != ""
}

// Manages reports whether departmentID is inside the manager scope.
func (i Identity) Manages(departmentID int64) bool {
	return i.Role == RoleManager && slices.Contains(i.DepartmentIDs, departmentID)
}

// PrimaryDepartment is the department a manager adds employees to.
func (i Identity) PrimaryDepartment() (int64, bool) {
	if i.Role != RoleManager || len(i.DepartmentIDs) == 0 {
		return 0, false
	}
	return i.DepartmentIDs[0], true
}
