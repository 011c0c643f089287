package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	require.NoError(t, base.BeforeCreate(nil))
	require.NotEmpty(t, base.ID)

	kept := BaseModel{ID: "fixed"}
	require.NoError(t, kept.BeforeCreate(nil))
	require.Equal(t, "fixed", kept.ID)
}

func TestEmbeddedModelsUseBaseBeforeCreate(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"user", func() *BaseModel { return &(&User{}).BaseModel }},
		{"profile", func() *BaseModel { return &(&Profile{}).BaseModel }},
		{"permission", func() *BaseModel { return &(&Permission{}).BaseModel }},
		{"role", func() *BaseModel { return &(&Role{}).BaseModel }},
		{"role_assignment", func() *BaseModel { return &(&RoleAssignment{}).BaseModel }},
		{"direct_grant", func() *BaseModel { return &(&DirectGrant{}).BaseModel }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := tc.model()
			require.NoError(t, model.BeforeCreate(nil))
			require.NotEmpty(t, model.ID)
		})
	}
}

func TestAuditLogBeforeCreate(t *testing.T) {
	entry := &AuditLog{}
	require.NoError(t, entry.BeforeCreate(nil))
	require.NotEmpty(t, entry.ID)
}

func TestProfileActive(t *testing.T) {
	var missing *Profile
	require.False(t, missing.Active())
	require.False(t, (&Profile{}).Active())
	require.True(t, (&Profile{IsActive: true}).Active())
}

func TestPermissionKeyAndActions(t *testing.T) {
	perm := Permission{Resource: "app_grades", Codename: "edit_grade"}
	require.Equal(t, "app_grades.edit_grade", perm.Key())

	for _, action := range Actions {
		require.True(t, ValidAction(action))
	}
	require.False(t, ValidAction("publish"))
}
