package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRole(t *testing.T) {
	for _, r := range Roles() {
		assert.True(t, ValidRole(r), "role %s should be valid", r)
	}
	assert.False(t, ValidRole(Role("owner")))
	assert.False(t, ValidRole(Role("")))
	assert.False(t, ValidRole(Role("ADMIN")), "role comparison is case sensitive")
}

func TestRoleRankOrdering(t *testing.T) {
	roles := Roles()
	for i := 1; i < len(roles); i++ {
		assert.Greater(t, roles[i].Rank(), roles[i-1].Rank(),
			"%s should outrank %s", roles[i], roles[i-1])
	}
	assert.Equal(t, -1, Role("nonsense").Rank())
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleSuperAdmin.AtLeast(RoleViewer))
	assert.True(t, RoleSuperAdmin.AtLeast(RoleSuperAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleAnalyst))
	assert.False(t, RoleAnalyst.AtLeast(RoleAdmin))
	assert.False(t, RoleViewer.AtLeast(RoleAnalyst))

	// Unknown roles never pass a gate
	assert.False(t, Role("owner").AtLeast(RoleViewer))
}
