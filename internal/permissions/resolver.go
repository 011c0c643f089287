package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecoles/schoolmanager/internal/models"
)

// Reason explains why a decision was reached.
type Reason string

const (
	ReasonInactivePrincipal Reason = "inactive_principal"
	ReasonExplicitDeny      Reason = "explicit_deny"
	ReasonDirectGrant       Reason = "direct_grant"
	ReasonRoleGrant         Reason = "role_grant"
	ReasonDefaultDeny       Reason = "default_deny"
)

// Decision is the outcome of a single permission evaluation.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Reason   Reason `json:"reason"`
	Codename string `json:"codename"`
	Resource string `json:"resource,omitempty"`
	// Role is the codename of the first role that granted the permission.
	Role string `json:"role,omitempty"`
}

// Resolver computes the permissions a principal holds.
//
// Evaluation order is fixed: an explicit deny beats an explicit grant, which beats a role
// grant; anything else is denied. Only active permissions ever match.
type Resolver struct {
	store    Store
	registry *Registry
	roles    *Roles
}

// NewResolver wires a resolver over the same store used by the registries.
func NewResolver(store Store) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("grant resolver: store is required")
	}
	registry, _ := NewRegistry(store)
	roles, _ := NewRoles(store)
	return &Resolver{store: store, registry: registry, roles: roles}, nil
}

// Registry returns the permission registry sharing the resolver's store.
func (r *Resolver) Registry() *Registry { return r.registry }

// Roles returns the role registry sharing the resolver's store.
func (r *Resolver) Roles() *Roles { return r.roles }

// HasPermission reports whether profile holds codename. An empty resource matches any
// resource. Access-denied outcomes are reported as false, never as errors.
func (r *Resolver) HasPermission(ctx context.Context, profile *models.Profile, codename, resource string) (bool, error) {
	decision, err := r.Explain(ctx, profile, codename, resource)
	if err != nil {
		return false, err
	}
	return decision.Allowed, nil
}

// Explain evaluates codename for profile and reports the rule that decided it.
func (r *Resolver) Explain(ctx context.Context, profile *models.Profile, codename, resource string) (Decision, error) {
	codename = strings.TrimSpace(codename)
	resource = strings.TrimSpace(resource)
	decision := Decision{Codename: codename, Resource: resource}

	if !profile.Active() {
		decision.Reason = ReasonInactivePrincipal
		return decision, nil
	}

	matches := func(perm models.Permission) bool {
		return perm.IsActive && perm.Codename == codename && (resource == "" || perm.Resource == resource)
	}

	denied, err := r.directMatch(ctx, profile.ID, false, matches)
	if err != nil {
		return decision, err
	}
	if denied {
		decision.Reason = ReasonExplicitDeny
		return decision, nil
	}

	granted, err := r.directMatch(ctx, profile.ID, true, matches)
	if err != nil {
		return decision, err
	}
	if granted {
		decision.Allowed, decision.Reason = true, ReasonDirectGrant
		return decision, nil
	}

	assignments, err := r.store.ListActiveRoleAssignments(ctx, profile.ID)
	if err != nil {
		return decision, err
	}
	for _, assignment := range assignments {
		for _, perm := range assignment.Role.Permissions {
			if matches(perm) {
				decision.Allowed, decision.Reason, decision.Role = true, ReasonRoleGrant, assignment.Role.Codename
				return decision, nil
			}
		}
	}

	decision.Reason = ReasonDefaultDeny
	return decision, nil
}

func (r *Resolver) directMatch(ctx context.Context, profileID string, granted bool, matches func(models.Permission) bool) (bool, error) {
	grants, err := r.store.ListActiveDirectGrants(ctx, profileID, granted)
	if err != nil {
		return false, err
	}
	for _, grant := range grants {
		for _, perm := range grant.Permissions {
			if matches(perm) {
				return true, nil
			}
		}
	}
	return false, nil
}

// EffectivePermissions returns (role-derived ∪ direct-granted) − direct-denied, restricted to
// active permissions. Permissions are compared by (resource, codename) so that membership
// agrees with HasPermission for every active permission.
func (r *Resolver) EffectivePermissions(ctx context.Context, profile *models.Profile) ([]models.Permission, error) {
	if !profile.Active() {
		return []models.Permission{}, nil
	}

	allowed := make(map[string]struct{})
	denied := make(map[string]struct{})
	collect := func(into map[string]struct{}, perms []models.Permission) {
		for _, perm := range perms {
			if perm.IsActive {
				into[perm.Key()] = struct{}{}
			}
		}
	}

	assignments, err := r.store.ListActiveRoleAssignments(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	for _, assignment := range assignments {
		collect(allowed, assignment.Role.Permissions)
	}

	for _, granted := range []bool{true, false} {
		grants, err := r.store.ListActiveDirectGrants(ctx, profile.ID, granted)
		if err != nil {
			return nil, err
		}
		for _, grant := range grants {
			if granted {
				collect(allowed, grant.Permissions)
			} else {
				collect(denied, grant.Permissions)
			}
		}
	}

	if len(allowed) == 0 {
		return []models.Permission{}, nil
	}

	catalog, err := r.store.ListPermissions(ctx, true)
	if err != nil {
		return nil, err
	}
	effective := make([]models.Permission, 0, len(allowed))
	for _, perm := range catalog {
		key := perm.Key()
		if _, ok := allowed[key]; !ok {
			continue
		}
		if _, ok := denied[key]; ok {
			continue
		}
		effective = append(effective, perm)
	}
	return effective, nil
}

// HasRole reports whether profile holds the active role codename.
func (r *Resolver) HasRole(ctx context.Context, profile *models.Profile, codename string) (bool, error) {
	return r.roles.HasRole(ctx, profile, codename)
}

// IsAdmin is HasRole(profile, "admin"). It is not consulted by HasPermission; callers that
// want an administrator override apply it themselves.
func (r *Resolver) IsAdmin(ctx context.Context, profile *models.Profile) (bool, error) {
	return r.roles.HasRole(ctx, profile, models.RoleAdmin)
}

// AssignPermission adds codename to the profile's active grant record of the requested
// polarity, creating the record when needed.
func (r *Resolver) AssignPermission(ctx context.Context, profile *models.Profile, codename, resource string, granted bool, grantedBy *string) (*models.DirectGrant, error) {
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	perm, err := r.registry.Resolve(ctx, codename, resource)
	if err != nil {
		return nil, err
	}
	return r.store.AddDirectGrant(ctx, profile.ID, granted, *perm, grantedBy)
}

// RevokePermission removes codename from every active grant record of the profile, allow and
// deny alike. Records left empty are deactivated.
func (r *Resolver) RevokePermission(ctx context.Context, profile *models.Profile, codename, resource string) error {
	if profile == nil {
		return ErrProfileNotFound
	}
	perm, err := r.registry.Resolve(ctx, codename, resource)
	if err != nil {
		return err
	}

	touched, err := r.store.RemoveDirectPermission(ctx, profile.ID, perm.ID)
	if err != nil {
		return err
	}
	if touched == 0 {
		return fmt.Errorf("%w: %s", ErrGrantNotFound, perm.Key())
	}
	return nil
}

// AssignRole creates or reactivates the profile's assignment to an active role.
func (r *Resolver) AssignRole(ctx context.Context, profile *models.Profile, roleCodename string, assignedBy *string) (*models.RoleAssignment, error) {
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	role, err := r.roles.Find(ctx, roleCodename)
	if err != nil {
		return nil, err
	}
	if !role.IsActive {
		return nil, fmt.Errorf("%w: %s is inactive", ErrRoleNotFound, role.Codename)
	}
	return r.store.UpsertRoleAssignment(ctx, profile.ID, role.ID, assignedBy)
}

// RemoveRole deactivates the profile's active assignment to roleCodename. It reports false,
// without error, when there was nothing to remove.
func (r *Resolver) RemoveRole(ctx context.Context, profile *models.Profile, roleCodename string) (bool, error) {
	if profile == nil {
		return false, nil
	}
	role, err := r.roles.Find(ctx, roleCodename)
	if errors.Is(err, ErrRoleNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return r.store.DeactivateRoleAssignment(ctx, profile.ID, role.ID)
}
