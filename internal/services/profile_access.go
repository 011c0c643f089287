package services

import (
	"context"
	"errors"

	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/permissions"
)

// ProfileAccess decides who may read or change a profile. The owner always may; an
// administrator always may; anybody else needs the matching app_profile permission.
type ProfileAccess struct {
	resolver *permissions.Resolver
}

// NewProfileAccess constructs the rules over resolver.
func NewProfileAccess(resolver *permissions.Resolver) (*ProfileAccess, error) {
	if resolver == nil {
		return nil, errors.New("profile access: resolver is required")
	}
	return &ProfileAccess{resolver: resolver}, nil
}

// CanView reports whether viewer may read target.
func (a *ProfileAccess) CanView(ctx context.Context, viewer, target *models.Profile) (bool, error) {
	return a.allowed(ctx, viewer, target, viewPermission(target))
}

// CanEdit reports whether viewer may change target.
func (a *ProfileAccess) CanEdit(ctx context.Context, viewer, target *models.Profile) (bool, error) {
	return a.allowed(ctx, viewer, target, permissions.PermEditProfile)
}

func (a *ProfileAccess) allowed(ctx context.Context, viewer, target *models.Profile, codename string) (bool, error) {
	if viewer == nil || target == nil {
		return false, nil
	}
	if viewer.ID == target.ID {
		return true, nil
	}

	admin, err := a.resolver.IsAdmin(ctx, viewer)
	if err != nil || admin {
		return admin, err
	}
	return a.resolver.HasPermission(ctx, viewer, codename, permissions.ResourceProfile)
}

// viewPermission picks the kind-specific read permission for target.
func viewPermission(target *models.Profile) string {
	if target == nil {
		return permissions.PermViewProfile
	}
	switch target.Kind {
	case models.ProfileKindStudent:
		return permissions.PermViewStudent
	case models.ProfileKindTeacher:
		return permissions.PermViewTeacher
	case models.ProfileKindParent:
		return permissions.PermViewParent
	default:
		return permissions.PermViewProfile
	}
}
