package permissions

import (
	"context"

	"github.com/ecoles/schoolmanager/internal/models"
)

// Store is the persistence contract of the authorization engine. Unless a method says
// otherwise, lookups only consider active records.
type Store interface {
	ProfileFinder

	// UpsertPermission inserts the permission keyed by (resource, action, codename) or returns
	// the stored record. With force the stored name and description are refreshed and the
	// permission reactivated. The bool reports whether a row was inserted.
	UpsertPermission(ctx context.Context, perm models.Permission, force bool) (*models.Permission, bool, error)
	// FindPermissions returns active permissions with codename. An empty resource matches any.
	FindPermissions(ctx context.Context, codename, resource string) ([]models.Permission, error)
	// ListPermissions returns the catalog ordered by resource then codename.
	ListPermissions(ctx context.Context, activeOnly bool) ([]models.Permission, error)
	// SetPermissionActive toggles the active flag of the permission with the exact key.
	SetPermissionActive(ctx context.Context, resource, action, codename string, active bool) (*models.Permission, error)

	// UpsertRole mirrors UpsertPermission for roles keyed by codename.
	UpsertRole(ctx context.Context, role models.Role, force bool) (*models.Role, bool, error)
	// FindRole returns the role with codename whatever its state, with its permissions loaded.
	FindRole(ctx context.Context, codename string) (*models.Role, error)
	// ListRoles returns every role with its active permissions loaded.
	ListRoles(ctx context.Context) ([]models.Role, error)
	// ReplaceRolePermissions swaps the role's permission set atomically.
	ReplaceRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error

	// ListActiveRoleAssignments returns the profile's active assignments to active roles,
	// each role carrying only its active permissions.
	ListActiveRoleAssignments(ctx context.Context, profileID string) ([]models.RoleAssignment, error)
	// UpsertRoleAssignment creates or reactivates the (profile, role) assignment.
	UpsertRoleAssignment(ctx context.Context, profileID, roleID string, assignedBy *string) (*models.RoleAssignment, error)
	// DeactivateRoleAssignment reports whether an active assignment was deactivated.
	DeactivateRoleAssignment(ctx context.Context, profileID, roleID string) (bool, error)

	// ListActiveDirectGrants returns the profile's active grant records with the given
	// polarity. Permissions are loaded whatever their state.
	ListActiveDirectGrants(ctx context.Context, profileID string, granted bool) ([]models.DirectGrant, error)
	// AddDirectGrant appends perm to the oldest active record with the given polarity,
	// creating the record when none exists.
	AddDirectGrant(ctx context.Context, profileID string, granted bool, perm models.Permission, grantedBy *string) (*models.DirectGrant, error)
	// RemoveDirectPermission drops the permission from every active record of the profile and
	// deactivates records left empty. It returns the number of records touched.
	RemoveDirectPermission(ctx context.Context, profileID, permissionID string) (int, error)
	// DeactivateEmptyDirectGrants deactivates active records that cover no permission.
	DeactivateEmptyDirectGrants(ctx context.Context) (int64, error)
}

// ProfileFinder resolves principals.
type ProfileFinder interface {
	FindProfile(ctx context.Context, id string) (*models.Profile, error)
	FindProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
}
