package permissions

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ecoles/schoolmanager/pkg/logger"
)

// SeedReport summarises a seeding run.
type SeedReport struct {
	PermissionsCreated int
	PermissionsUpdated int
	RolesCreated       int
	RolesUpdated       int
	// RoleGrants maps role codename to the number of permissions it holds after seeding.
	RoleGrants map[string]int
}

// Seed registers the catalog into store. Existing records are refreshed only with force.
// Role permission sets are always replaced.
func Seed(ctx context.Context, store Store, force bool) (*SeedReport, error) {
	if store == nil {
		return nil, errors.New("permission seed: store is required")
	}
	registry, _ := NewRegistry(store)
	roles, _ := NewRoles(store)
	log := logger.WithModule("permissions")

	report := &SeedReport{RoleGrants: make(map[string]int, len(CatalogRoles))}
	all := make([]string, 0, len(CatalogPermissions))

	for _, def := range CatalogPermissions {
		_, created, err := registry.Register(ctx, def, force)
		if err != nil {
			return nil, fmt.Errorf("permission seed: register %s: %w", def.Codename, err)
		}
		switch {
		case created:
			report.PermissionsCreated++
		case force:
			report.PermissionsUpdated++
		}
		all = append(all, def.Codename)
	}

	for _, seed := range CatalogRoles {
		_, created, err := roles.CreateOrUpdateRole(ctx, seed.RoleDefinition, force)
		if err != nil {
			return nil, fmt.Errorf("permission seed: role %s: %w", seed.Codename, err)
		}
		switch {
		case created:
			report.RolesCreated++
		case force:
			report.RolesUpdated++
		}

		codenames := seed.Permissions
		if seed.AllPermissions {
			codenames = all
		}
		role, err := roles.SetRolePermissions(ctx, seed.Codename, codenames)
		if err != nil {
			return nil, fmt.Errorf("permission seed: role %s permissions: %w", seed.Codename, err)
		}
		report.RoleGrants[seed.Codename] = len(role.Permissions)
	}

	log.Info("permission catalog seeded",
		zap.Int("permissions_created", report.PermissionsCreated),
		zap.Int("permissions_updated", report.PermissionsUpdated),
		zap.Int("roles_created", report.RolesCreated),
		zap.Int("roles_updated", report.RolesUpdated),
	)
	return report, nil
}
