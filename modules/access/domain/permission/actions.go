package permission

import (
	"github.com/iota-uz/payroll-bot/modules/access/domain/identity"
	"github.com/iota-uz/payroll-bot/pkg/authz"
)

type Action string

const (
	DepartmentCreate     Action = "department.create"
	DepartmentView       Action = "department.view"
	EmployeeCreate       Action = "employee.create"
	EmployeeListAll      Action = "employee.list_all"
	EmployeeListOwn      Action = "employee.list_own"
	EmployeeView         Action = "employee.view"
	EmployeeBindIdentity Action = "employee.bind_identity"
	EmployeePromote      Action = "employee.promote"
	EmployeeDeactivate   Action = "employee.deactivate"
	AccrualSalary        Action = "accrual.salary"
	AccrualBonus         Action = "accrual.bonus"
	AccrualDeduction     Action = "accrual.deduction"
	AccrualAdvance       Action = "accrual.advance"
	SalarySet            Action = "salary.set"
	AdvanceGive          Action = "advance.give"
	PayoutGive           Action = "payout.give"
	BalanceViewOwn       Action = "balance.view_own"
)

func (a Action) String() string {
	return string(a)
}

var (
	superAdmin = []identity.Role{identity.RoleSuperAdmin}
	managers   = []identity.Role{identity.RoleSuperAdmin, identity.RoleManager}
)

// Table is the single source of truth for which roles may perform an action.
// Actions missing from the table are denied to everyone.
var Table = map[Action][]identity.Role{
	DepartmentCreate:     superAdmin,
	DepartmentView:       superAdmin,
	EmployeeCreate:       managers,
	EmployeeListAll:      superAdmin,
	EmployeeListOwn:      {identity.RoleManager},
	EmployeeView:         managers,
	EmployeeBindIdentity: superAdmin,
	EmployeePromote:      superAdmin,
	EmployeeDeactivate:   superAdmin,
	AccrualSalary:        managers,
	AccrualBonus:         managers,
	AccrualDeduction:     managers,
	AccrualAdvance:       superAdmin,
	SalarySet:            managers,
	AdvanceGive:          superAdmin,
	PayoutGive:           superAdmin,
	BalanceViewOwn:       {identity.RoleEmployee},
}

// Policy converts Table into the authz policy format.
func Policy() authz.Policy {
	p := make(authz.Policy, len(Table))
	for action, roles := range Table {
		subjects := make([]string, 0, len(roles))
		for _, r := range roles {
			subjects = append(subjects, r.String())
		}
		p[action.String()] = subjects
	}
	return p
}
