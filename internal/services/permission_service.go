package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ecoles/schoolmanager/internal/auditctx"
	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/pkg/metrics"
)

// PermissionService exposes the authorization engine to administrators. Every mutation is
// audited with the actor found in the request context.
type PermissionService struct {
	store    permissions.Store
	resolver *permissions.Resolver
	audit    *AuditService
}

// NewPermissionService constructs the service over the engine's store and resolver.
func NewPermissionService(store permissions.Store, resolver *permissions.Resolver, audit *AuditService) (*PermissionService, error) {
	if store == nil {
		return nil, errors.New("permission service: store is required")
	}
	if resolver == nil {
		return nil, errors.New("permission service: resolver is required")
	}
	return &PermissionService{store: store, resolver: resolver, audit: audit}, nil
}

// RoleInput describes a role to create or update.
type RoleInput struct {
	Codename    string
	Name        string
	Kind        string
	Description string
}

// PermissionView summarises what a profile holds.
type PermissionView struct {
	Profile   *models.Profile      `json:"profile"`
	IsAdmin   bool                 `json:"is_admin"`
	Roles     []models.Role        `json:"roles"`
	Granted   []models.DirectGrant `json:"granted"`
	Denied    []models.DirectGrant `json:"denied"`
	Effective []models.Permission  `json:"effective"`
}

// Catalog returns active permissions grouped by resource.
func (s *PermissionService) Catalog(ctx context.Context) (map[string][]models.Permission, error) {
	perms, err := s.resolver.Registry().List(ensureContext(ctx), true)
	if err != nil {
		return nil, err
	}
	return permissions.GroupByResource(perms), nil
}

// ListRoles returns every role with its active permissions.
func (s *PermissionService) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.resolver.Roles().List(ensureContext(ctx))
}

// SaveRole creates the role or overwrites an existing one with the same codename.
func (s *PermissionService) SaveRole(ctx context.Context, input RoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)
	role, created, err := s.resolver.Roles().CreateOrUpdateRole(ctx, permissions.RoleDefinition{
		Codename:    input.Codename,
		Name:        input.Name,
		Kind:        input.Kind,
		Description: input.Description,
	}, true)
	if err != nil && isUniqueConstraintError(err) {
		err = errRoleNameTaken
	}

	s.record(ctx, "role.save", input.Codename, err, map[string]any{
		"name":    input.Name,
		"kind":    input.Kind,
		"created": created,
	})
	return role, err
}

// SetRolePermissions replaces the role's permission set.
func (s *PermissionService) SetRolePermissions(ctx context.Context, roleCodename string, codenames []string) (*models.Role, error) {
	ctx = ensureContext(ctx)
	codenames = normaliseCodenames(codenames)

	role, err := s.resolver.Roles().SetRolePermissions(ctx, roleCodename, codenames)
	s.record(ctx, "role.permissions.set", roleCodename, err, map[string]any{"permissions": codenames})
	return role, err
}

// GrantPermission records an explicit allow (granted=true) or deny for the profile.
func (s *PermissionService) GrantPermission(ctx context.Context, profileID, codename, resource string, granted bool) (*models.DirectGrant, error) {
	ctx = ensureContext(ctx)
	profile, err := s.store.FindProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	grant, err := s.resolver.AssignPermission(ctx, profile, codename, resource, granted, actorProfileID(ctx))
	operation := "permission.grant"
	if !granted {
		operation = "permission.deny"
	}
	s.record(ctx, operation, profileID, err, map[string]any{"codename": codename, "resource": resource})
	return grant, err
}

// RevokePermission drops an explicit allow or deny from the profile.
func (s *PermissionService) RevokePermission(ctx context.Context, profileID, codename, resource string) error {
	ctx = ensureContext(ctx)
	profile, err := s.store.FindProfile(ctx, profileID)
	if err != nil {
		return err
	}

	err = s.resolver.RevokePermission(ctx, profile, codename, resource)
	s.record(ctx, "permission.revoke", profileID, err, map[string]any{"codename": codename, "resource": resource})
	return err
}

// AssignRole attaches the role to the profile.
func (s *PermissionService) AssignRole(ctx context.Context, profileID, roleCodename string) (*models.RoleAssignment, error) {
	ctx = ensureContext(ctx)
	profile, err := s.store.FindProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.resolver.AssignRole(ctx, profile, roleCodename, actorProfileID(ctx))
	s.record(ctx, "role.assign", profileID, err, map[string]any{"role": roleCodename})
	return assignment, err
}

// RemoveRole detaches the role from the profile. It reports false when nothing was removed.
func (s *PermissionService) RemoveRole(ctx context.Context, profileID, roleCodename string) (bool, error) {
	ctx = ensureContext(ctx)
	profile, err := s.store.FindProfile(ctx, profileID)
	if err != nil {
		return false, err
	}

	removed, err := s.resolver.RemoveRole(ctx, profile, roleCodename)
	s.record(ctx, "role.remove", profileID, err, map[string]any{"role": roleCodename, "removed": removed})
	return removed, err
}

// ProfilePermissions builds the permission view of the profile with the given ID.
func (s *PermissionService) ProfilePermissions(ctx context.Context, profileID string) (*PermissionView, error) {
	ctx = ensureContext(ctx)
	profile, err := s.store.FindProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.View(ctx, profile)
}

// View builds the permission view of profile.
func (s *PermissionService) View(ctx context.Context, profile *models.Profile) (*PermissionView, error) {
	ctx = ensureContext(ctx)
	if profile == nil {
		return nil, permissions.ErrProfileNotFound
	}

	assignments, err := s.store.ListActiveRoleAssignments(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	granted, err := s.store.ListActiveDirectGrants(ctx, profile.ID, true)
	if err != nil {
		return nil, err
	}
	denied, err := s.store.ListActiveDirectGrants(ctx, profile.ID, false)
	if err != nil {
		return nil, err
	}
	effective, err := s.resolver.EffectivePermissions(ctx, profile)
	if err != nil {
		return nil, err
	}
	isAdmin, err := s.resolver.IsAdmin(ctx, profile)
	if err != nil {
		return nil, err
	}

	roles := make([]models.Role, 0, len(assignments))
	for _, assignment := range assignments {
		roles = append(roles, assignment.Role)
	}

	return &PermissionView{
		Profile:   profile,
		IsAdmin:   isAdmin,
		Roles:     roles,
		Granted:   granted,
		Denied:    denied,
		Effective: effective,
	}, nil
}

// Explain reports how a decision for profile was reached.
func (s *PermissionService) Explain(ctx context.Context, profile *models.Profile, codename, resource string) (permissions.Decision, error) {
	return s.resolver.Explain(ensureContext(ctx), profile, codename, resource)
}

func (s *PermissionService) record(ctx context.Context, operation, resource string, err error, metadata map[string]any) {
	if err == nil {
		metrics.GrantMutations.WithLabelValues(operation).Inc()
	} else {
		metadata["error"] = err.Error()
	}
	recordAudit(s.audit, ctx, AuditEntry{
		Action:   operation,
		Resource: strings.TrimSpace(resource),
		Result:   auditResult(err),
		Metadata: metadata,
	})
}

func actorProfileID(ctx context.Context) *string {
	actor, ok := auditctx.FromContext(ctx)
	if !ok || actor.ProfileID == "" {
		return nil
	}
	id := actor.ProfileID
	return &id
}
