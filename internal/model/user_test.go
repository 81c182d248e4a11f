package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_EffectiveRoles(t *testing.T) {
	u := &User{}
	assert.Equal(t, []string{"ROLE_USER"}, u.EffectiveRoles())

	u.Roles = []string{"ROLE_ADMIN", "ROLE_ADMIN"}
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER"}, u.EffectiveRoles())
	assert.True(t, u.HasRole("ROLE_USER"))
	assert.True(t, u.HasRole("ROLE_ADMIN"))
	assert.False(t, u.HasRole("ROLE_SUPER_ADMIN"))

	u.Roles = []string{"ROLE_USER", "ROLE_SUPER_ADMIN"}
	assert.Equal(t, []string{"ROLE_USER", "ROLE_SUPER_ADMIN"}, u.EffectiveRoles())
}
