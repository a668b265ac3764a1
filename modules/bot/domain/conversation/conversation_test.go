package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
)

func TestContext_Navigation(t *testing.T) {
	c := New(5)
	require.True(t, c.Empty())

	c.PinDepartment(3)
	c.PinEmployee(7)
	c.Start(&RecordAccrualFlow{Step: StepAmount, AccrualKind: accrual.KindBonus, EmployeeID: 7})
	require.True(t, c.InFlow())
	require.Equal(t, FlowRecordAccrual, c.Flow.Kind())
	require.Equal(t, StepAmount, c.Flow.Current())

	c.ClearFlow()
	require.False(t, c.InFlow())
	require.Equal(t, Pinned{DepartmentID: 3, EmployeeID: 7}, c.Pinned)

	c.Start(&SetSalaryFlow{Step: StepAmount})
	c.ClearEmployee()
	require.False(t, c.InFlow())
	require.Equal(t, Pinned{DepartmentID: 3}, c.Pinned)

	c.Start(&AddDepartmentFlow{Step: StepName})
	c.Reset()
	require.True(t, c.Empty())
}

func TestContext_Fail(t *testing.T) {
	c := New(1)
	c.Start(&AddDepartmentFlow{Step: StepName})
	for i := 0; i < 4; i++ {
		require.False(t, c.Fail(5))
	}
	require.True(t, c.Fail(5))

	c.Start(&AddEmployeeFlow{Step: StepName})
	require.Zero(t, c.Retries, "a new flow starts with a fresh counter")
	require.True(t, c.Fail(1))
}

func TestPinDepartmentDropsEmployee(t *testing.T) {
	c := New(1)
	c.PinEmployee(9)
	c.PinDepartment(2)
	require.Equal(t, Pinned{DepartmentID: 2}, c.Pinned)
}
