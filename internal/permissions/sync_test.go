package permissions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecoles/schoolmanager/internal/models"
)

func TestSeedCatalog(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	report, err := Seed(ctx, store, false)
	require.NoError(t, err)
	require.Equal(t, len(CatalogPermissions), report.PermissionsCreated)
	require.Equal(t, len(CatalogRoles), report.RolesCreated)
	require.Equal(t, len(CatalogPermissions), report.RoleGrants[models.RoleAdmin])
	require.Equal(t, 13, report.RoleGrants["student"])

	again, err := Seed(ctx, store, false)
	require.NoError(t, err)
	require.Zero(t, again.PermissionsCreated)
	require.Zero(t, again.PermissionsUpdated)
	require.Zero(t, again.RolesCreated)

	forced, err := Seed(ctx, store, true)
	require.NoError(t, err)
	require.Equal(t, len(CatalogPermissions), forced.PermissionsUpdated)
	require.Equal(t, len(CatalogRoles), forced.RolesUpdated)

	perms, err := store.ListPermissions(ctx, true)
	require.NoError(t, err)
	require.Len(t, perms, len(CatalogPermissions))
}

func TestCatalogIsWellFormed(t *testing.T) {
	seen := make(map[string]struct{})
	for _, def := range CatalogPermissions {
		_, err := normaliseDefinition(def)
		require.NoError(t, err, def.Codename)
		key := def.Resource + "." + def.Action + "." + def.Codename
		_, dup := seen[key]
		require.False(t, dup, key)
		seen[key] = struct{}{}
	}

	codenames := make(map[string]struct{}, len(CatalogPermissions))
	for _, def := range CatalogPermissions {
		codenames[def.Codename] = struct{}{}
	}
	for _, role := range CatalogRoles {
		for _, codename := range role.Permissions {
			_, ok := codenames[codename]
			require.True(t, ok, "%s references %s", role.Codename, codename)
		}
	}
}
