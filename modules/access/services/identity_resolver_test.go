package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/payroll-bot/modules/access/domain/identity"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
)

type fakeLookup struct {
	byExternal map[int64]employee.Employee
	managed    map[int64][]int64
	err        error
}

func (f *fakeLookup) FindActiveByExternalID(ctx context.Context, externalID int64) (employee.Employee, error) {
	if f.err != nil {
		return employee.Employee{}, f.err
	}
	e, ok := f.byExternal[externalID]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeLookup) ManagedDepartmentIDs(ctx context.Context, externalID int64) ([]int64, error) {
	return f.managed[externalID], nil
}

func ptr(v int64) *int64 { return &v }

func newLookup() *fakeLookup {
	return &fakeLookup{
		byExternal: map[int64]employee.Employee{
			100: {ID: 1, FullName: "Boss", ExternalID: ptr(100), DepartmentID: 3, Role: employee.RoleManager, IsActive: true},
			200: {ID: 2, FullName: "Worker", ExternalID: ptr(200), DepartmentID: 3, Role: employee.RoleEmployee, IsActive: true},
			300: {ID: 9, FullName: "Owner", ExternalID: ptr(300), DepartmentID: 4, Role: employee.RoleManager, IsActive: true},
		},
		managed: map[int64][]int64{100: {3, 5}, 300: {4}},
	}
}

func TestIdentityResolver_Resolve(t *testing.T) {
	r := NewIdentityResolver([]int64{300, 1}, newLookup(), nil)
	ctx := context.Background()

	admin := r.Resolve(ctx, 300)
	require.Equal(t, identity.RoleSuperAdmin, admin.Role, "allow-list wins over the employee binding")
	require.Empty(t, admin.DepartmentIDs)

	require.Equal(t, identity.RoleSuperAdmin, r.Resolve(ctx, 1).Role)

	m := r.Resolve(ctx, 100)
	require.Equal(t, identity.RoleManager, m.Role)
	require.Equal(t, []int64{3, 5}, m.DepartmentIDs)
	require.Equal(t, int64(1), m.EmployeeID)

	e := r.Resolve(ctx, 200)
	require.Equal(t, identity.RoleEmployee, e.Role)
	require.Equal(t, int64(2), e.EmployeeID)
	require.Empty(t, e.DepartmentIDs)

	u := r.Resolve(ctx, 999)
	require.Equal(t, identity.Unknown(999), u)
}

func TestIdentityResolver_LookupFailureIsUnknown(t *testing.T) {
	logger, hook := test.NewNullLogger()
	lookup := newLookup()
	lookup.err = errors.New("connection refused")
	r := NewIdentityResolver(nil, lookup, logger)

	got := r.Resolve(context.Background(), 100)
	require.Equal(t, identity.RoleUnknown, got.Role)
	require.NotNil(t, hook.LastEntry())
	require.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
