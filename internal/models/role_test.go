package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilityTable(t *testing.T) {
	affirmative := Capabilities{
		Post: true, Comment: true, Reply: true,
		EditPosts: true, EditComments: true, EditSelf: true,
		AnonymisePosts: true, AnonymiseComments: true,
	}
	moderator := affirmative
	moderator.DeletePosts, moderator.DeleteComments = true, true
	admin := moderator
	admin.Admin = true

	tests := []struct {
		role Role
		want Capabilities
	}{
		{RoleAdmin, admin},
		{RoleMod, moderator},
		{RoleMember, affirmative},
		{RoleBanned, Capabilities{}},
		{RoleUnverified, Capabilities{}},
		{Role("Superuser"), Capabilities{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Capabilities())
		})
	}
}

func TestOnlyAdminCanAdmin(t *testing.T) {
	for _, r := range Roles {
		assert.Equal(t, r == RoleAdmin, r.Capabilities().Admin, r)
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, ok := ParseRole(string(r))
		assert.True(t, ok)
		assert.Equal(t, r, got)
	}

	_, ok := ParseRole("admin")
	assert.False(t, ok)
	assert.Equal(t, RoleUnverified, DefaultRole)
}

func TestAssignable(t *testing.T) {
	assert.False(t, RoleAdmin.Assignable())
	assert.False(t, RoleUnverified.Assignable())
	assert.True(t, RoleMod.Assignable())
	assert.True(t, RoleMember.Assignable())
	assert.True(t, RoleBanned.Assignable())
}
