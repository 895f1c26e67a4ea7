package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleParticipant.Valid())
	assert.True(t, RoleStaff.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("MANAGER").Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("admin").Valid())
}

func TestRole_HasRole(t *testing.T) {
	assert.True(t, RoleStaff.HasRole(RoleStaff, RoleAdmin))
	assert.True(t, RoleAdmin.HasRole(RoleStaff, RoleAdmin))
	assert.False(t, RoleParticipant.HasRole(RoleStaff, RoleAdmin))
	assert.False(t, RoleAdmin.HasRole())
}

func TestRole_AtLeast(t *testing.T) {
	tests := []struct {
		name string
		role Role
		min  Role
		want bool
	}{
		{"participant meets participant", RoleParticipant, RoleParticipant, true},
		{"participant below staff", RoleParticipant, RoleStaff, false},
		{"participant below admin", RoleParticipant, RoleAdmin, false},
		{"staff meets participant", RoleStaff, RoleParticipant, true},
		{"staff meets staff", RoleStaff, RoleStaff, true},
		{"staff below admin", RoleStaff, RoleAdmin, false},
		{"admin meets everything", RoleAdmin, RoleParticipant, true},
		{"admin meets admin", RoleAdmin, RoleAdmin, true},
		{"unknown role meets nothing", Role("GUEST"), RoleParticipant, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.min))
		})
	}
}

func TestUser_FullName(t *testing.T) {
	u := &User{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", u.FullName())
}
