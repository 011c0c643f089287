package permissions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecoles/schoolmanager/internal/models"
)

func TestRegisterIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	registry, err := NewRegistry(store)
	require.NoError(t, err)
	ctx := context.Background()

	def := Definition{Codename: "manage_permissions", Name: "Manage Permissions", Resource: ResourceConfig, Action: models.ActionManage}
	first, created, err := registry.Register(ctx, def, false)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := registry.Register(ctx, def, false)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)

	perms, err := registry.FindActive(ctx, "manage_permissions", ResourceConfig)
	require.NoError(t, err)
	require.Len(t, perms, 1)
}

func TestRegisterForceRefreshesAndReactivates(t *testing.T) {
	registry, err := NewRegistry(NewMemoryStore())
	require.NoError(t, err)
	ctx := context.Background()

	def := Definition{Codename: "view_grade", Name: "View Grade", Resource: ResourceGrades, Action: models.ActionView}
	_, _, err = registry.Register(ctx, def, false)
	require.NoError(t, err)
	_, err = registry.Deactivate(ctx, ResourceGrades, models.ActionView, "view_grade")
	require.NoError(t, err)

	def.Name = "Read Grades"
	perm, _, err := registry.Register(ctx, def, false)
	require.NoError(t, err)
	require.Equal(t, "View Grade", perm.Name)
	require.False(t, perm.IsActive)

	perm, created, err := registry.Register(ctx, def, true)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "Read Grades", perm.Name)
	require.True(t, perm.IsActive)
}

func TestRegisterRejectsInvalidDefinitions(t *testing.T) {
	registry, err := NewRegistry(NewMemoryStore())
	require.NoError(t, err)
	ctx := context.Background()

	cases := map[string]Definition{
		"empty codename": {Resource: ResourceGrades, Action: models.ActionView},
		"bad resource":   {Codename: "view_grade", Resource: "App Grades", Action: models.ActionView},
		"bad action":     {Codename: "view_grade", Resource: ResourceGrades, Action: "publish"},
	}
	for name, def := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := registry.Register(ctx, def, false)
			require.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
}

func TestFindActiveAcrossResources(t *testing.T) {
	registry, err := NewRegistry(NewMemoryStore())
	require.NoError(t, err)
	ctx := context.Background()

	for _, resource := range []string{ResourceGrades, ResourceAttendance} {
		_, _, err := registry.Register(ctx, Definition{Codename: "view_report", Resource: resource, Action: models.ActionView}, false)
		require.NoError(t, err)
	}

	perms, err := registry.FindActive(ctx, "view_report", "")
	require.NoError(t, err)
	require.Len(t, perms, 2)

	perm, err := registry.Resolve(ctx, "view_report", ResourceAttendance)
	require.NoError(t, err)
	require.Equal(t, ResourceAttendance, perm.Resource)

	_, err = registry.Resolve(ctx, "view_report", "")
	require.ErrorIs(t, err, ErrAmbiguousPermission)

	grouped := GroupByResource(perms)
	require.Len(t, grouped, 2)
}

func TestRolesUpsertAndKinds(t *testing.T) {
	roles, err := NewRoles(NewMemoryStore())
	require.NoError(t, err)
	ctx := context.Background()

	role, created, err := roles.CreateOrUpdateRole(ctx, RoleDefinition{Codename: "registrar", Name: "Registrar"}, false)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, models.RoleKindCustom, role.Kind)
	require.True(t, role.IsActive)

	role, created, err = roles.CreateOrUpdateRole(ctx, RoleDefinition{Codename: "registrar", Name: "Head Registrar", Kind: models.RoleKindSystem}, false)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "Registrar", role.Name)

	role, _, err = roles.CreateOrUpdateRole(ctx, RoleDefinition{Codename: "registrar", Name: "Head Registrar", Kind: models.RoleKindSystem}, true)
	require.NoError(t, err)
	require.Equal(t, "Head Registrar", role.Name)
	require.Equal(t, models.RoleKindSystem, role.Kind)

	_, _, err = roles.CreateOrUpdateRole(ctx, RoleDefinition{Codename: "registrar", Kind: "global"}, true)
	require.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = roles.SetRolePermissions(ctx, "unknown", []string{"view_grade"})
	require.ErrorIs(t, err, ErrRoleNotFound)
}
