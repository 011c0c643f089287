package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/pkg/validator"
)

// RoleDefinition describes a role to create or refresh.
type RoleDefinition struct {
	Codename    string
	Name        string
	Kind        string
	Description string
}

// Roles manages role definitions and their permission membership.
type Roles struct {
	store Store
}

// NewRoles constructs the role registry over store.
func NewRoles(store Store) (*Roles, error) {
	if store == nil {
		return nil, errors.New("role registry: store is required")
	}
	return &Roles{store: store}, nil
}

// CreateOrUpdateRole upserts by codename. With force the stored name, kind and description
// are overwritten and the role reactivated.
func (r *Roles) CreateOrUpdateRole(ctx context.Context, def RoleDefinition, force bool) (*models.Role, bool, error) {
	def.Codename = strings.TrimSpace(def.Codename)
	def.Name = strings.TrimSpace(def.Name)
	def.Kind = strings.TrimSpace(def.Kind)
	if !validator.IsCodename(def.Codename) {
		return nil, false, fmt.Errorf("%w: role codename %q", ErrInvalidDefinition, def.Codename)
	}
	if def.Name == "" {
		def.Name = def.Codename
	}
	switch def.Kind {
	case "":
		def.Kind = models.RoleKindCustom
	case models.RoleKindSystem, models.RoleKindCustom:
	default:
		return nil, false, fmt.Errorf("%w: role kind %q", ErrInvalidDefinition, def.Kind)
	}

	return r.store.UpsertRole(ctx, models.Role{
		Codename:    def.Codename,
		Name:        def.Name,
		Kind:        def.Kind,
		Description: strings.TrimSpace(def.Description),
	}, force)
}

// SetRolePermissions replaces the role's permission set with the active permissions whose
// codename is listed. Unknown codenames are skipped. The swap is atomic.
func (r *Roles) SetRolePermissions(ctx context.Context, roleCodename string, codenames []string) (*models.Role, error) {
	role, err := r.store.FindRole(ctx, roleCodename)
	if err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]struct{})
	for _, codename := range codenames {
		perms, err := r.store.FindPermissions(ctx, strings.TrimSpace(codename), "")
		if err != nil {
			return nil, err
		}
		for _, perm := range perms {
			if _, ok := seen[perm.ID]; ok {
				continue
			}
			seen[perm.ID] = struct{}{}
			ids = append(ids, perm.ID)
		}
	}

	if err := r.store.ReplaceRolePermissions(ctx, role.ID, ids); err != nil {
		return nil, err
	}
	return r.store.FindRole(ctx, roleCodename)
}

// Find returns the role with codename whatever its state.
func (r *Roles) Find(ctx context.Context, codename string) (*models.Role, error) {
	return r.store.FindRole(ctx, strings.TrimSpace(codename))
}

// List returns all roles with their active permissions.
func (r *Roles) List(ctx context.Context) ([]models.Role, error) {
	return r.store.ListRoles(ctx)
}

// HasRole reports whether the active profile holds an active assignment to the active role
// codename. Inactive profiles hold no roles.
func (r *Roles) HasRole(ctx context.Context, profile *models.Profile, codename string) (bool, error) {
	if !profile.Active() {
		return false, nil
	}
	assignments, err := r.store.ListActiveRoleAssignments(ctx, profile.ID)
	if err != nil {
		return false, err
	}
	for _, assignment := range assignments {
		if assignment.Role.Codename == codename {
			return true, nil
		}
	}
	return false, nil
}
