package permission

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/payroll-bot/modules/access/domain/identity"
)

func TestTableCoversEveryAction(t *testing.T) {
	actions := []Action{
		DepartmentCreate, DepartmentView, EmployeeCreate, EmployeeListAll, EmployeeListOwn,
		EmployeeView, EmployeeBindIdentity, EmployeePromote, EmployeeDeactivate, AccrualSalary,
		AccrualBonus, AccrualDeduction, AccrualAdvance, SalarySet, AdvanceGive, PayoutGive, BalanceViewOwn,
	}
	require.Len(t, Table, len(actions))
	for _, a := range actions {
		roles, ok := Table[a]
		require.True(t, ok, a)
		require.NotEmpty(t, roles, a)
		require.NotContains(t, roles, identity.RoleUnknown, a)
	}
}

func TestPolicy(t *testing.T) {
	p := Policy()
	require.Equal(t, []string{"superadmin"}, p["department.create"])
	require.ElementsMatch(t, []string{"superadmin", "manager"}, p["employee.create"])
	require.Equal(t, []string{"employee"}, p["balance.view_own"])
	require.Equal(t, []string{"superadmin"}, p["accrual.advance"])
}
