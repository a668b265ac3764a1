package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentity_Manages(t *testing.T) {
	m := Identity{ExternalID: 10, Role: RoleManager, DepartmentIDs: []int64{3, 5}}
	require.True(t, m.Manages(3))
	require.False(t, m.Manages(4))

	dep, ok := m.PrimaryDepartment()
	require.True(t, ok)
	require.Equal(t, int64(3), dep)

	admin := Identity{Role: RoleSuperAdmin, DepartmentIDs: []int64{3}}
	require.False(t, admin.Manages(3), "only managers carry a department scope")
	_, ok = admin.PrimaryDepartment()
	require.False(t, ok)
}

func TestUnknown(t *testing.T) {
	u := Unknown(42)
	require.Equal(t, int64(42), u.ExternalID)
	require.False(t, u.IsKnown())
	require.False(t, Identity{}.IsKnown())
	require.True(t, Identity{Role: RoleEmployee}.IsKnown())
}
