package persistence_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
	"github.com/iota-uz/payroll-bot/modules/directory/infrastructure/persistence"
	"github.com/iota-uz/payroll-bot/pkg/itf"
)

func TestPgRepositories(t *testing.T) {
	ctx, _ := itf.NewPool(t)
	departments := persistence.NewDepartmentRepository()
	employees := persistence.NewEmployeeRepository()

	sales, err := departments.Create(ctx, department.Department{Name: "Sales", Emoji: "🧾"})
	require.NoError(t, err)

	_, err = departments.Create(ctx, department.Department{Name: "Sales"})
	require.ErrorIs(t, err, department.ErrDepartmentExists)

	n, err := departments.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	tg := int64(555)
	anna, err := employees.Create(ctx, employee.Employee{
		FullName: "Anna", DepartmentID: sales.ID, Role: employee.RoleManager,
		Position: "Head", ExternalID: &tg, Salary: decimal.RequireFromString("1500.50"),
	})
	require.NoError(t, err)
	require.True(t, anna.Salary.Equal(decimal.RequireFromString("1500.50")))

	_, err = employees.Create(ctx, employee.Employee{
		FullName: "Boris", DepartmentID: sales.ID, Role: employee.RoleEmployee, ExternalID: &tg,
	})
	require.ErrorIs(t, err, employee.ErrExternalIDTaken)

	_, err = employees.Create(ctx, employee.Employee{FullName: "Ghost", DepartmentID: 999, Role: employee.RoleEmployee})
	require.ErrorIs(t, err, department.ErrDepartmentNotFound)

	ids, err := employees.ManagedDepartmentIDs(ctx, tg)
	require.NoError(t, err)
	require.Equal(t, []int64{sales.ID}, ids)

	found, err := employees.FindActiveByName(ctx, "👔 anna", employee.FindParams{})
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, employees.UpdateSalary(ctx, anna.ID, decimal.NewFromInt(2000)))
	require.NoError(t, employees.Deactivate(ctx, anna.ID))
	require.ErrorIs(t, employees.Deactivate(ctx, anna.ID), employee.ErrEmployeeNotFound)

	_, err = employees.FindActiveByExternalID(ctx, tg)
	require.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	boris, err := employees.Create(ctx, employee.Employee{
		FullName: "Boris", DepartmentID: sales.ID, Role: employee.RoleEmployee, ExternalID: &tg,
	})
	require.NoError(t, err, "deactivation frees the external id")
	require.True(t, boris.BoundTo(tg))
}
