package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/pkg/validator"
)

// Definition describes a permission to register.
type Definition struct {
	Codename    string
	Name        string
	Resource    string
	Action      string
	Description string
}

// Registry is the permission catalog.
type Registry struct {
	store Store
}

// NewRegistry constructs a registry over store.
func NewRegistry(store Store) (*Registry, error) {
	if store == nil {
		return nil, errors.New("permission registry: store is required")
	}
	return &Registry{store: store}, nil
}

// Register upserts a permission keyed by (resource, action, codename). An existing record is
// returned untouched unless force is set, in which case name and description are refreshed
// and the permission reactivated.
func (r *Registry) Register(ctx context.Context, def Definition, force bool) (*models.Permission, bool, error) {
	def, err := normaliseDefinition(def)
	if err != nil {
		return nil, false, err
	}

	return r.store.UpsertPermission(ctx, models.Permission{
		Name:        def.Name,
		Codename:    def.Codename,
		Resource:    def.Resource,
		Action:      def.Action,
		Description: def.Description,
	}, force)
}

// FindActive returns the active permissions with codename. An empty resource matches every
// resource.
func (r *Registry) FindActive(ctx context.Context, codename, resource string) ([]models.Permission, error) {
	return r.store.FindPermissions(ctx, strings.TrimSpace(codename), strings.TrimSpace(resource))
}

// Resolve returns the single active permission named by codename and resource. An
// unqualified codename shared by several resources is rejected.
func (r *Registry) Resolve(ctx context.Context, codename, resource string) (*models.Permission, error) {
	perms, err := r.FindActive(ctx, codename, resource)
	if err != nil {
		return nil, err
	}

	switch {
	case len(perms) == 0:
		return nil, fmt.Errorf("%w: %s", ErrPermissionNotFound, describe(codename, resource))
	case len(perms) > 1 && resource == "":
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousPermission, codename)
	}
	return &perms[0], nil
}

// List returns the catalog, optionally restricted to active permissions.
func (r *Registry) List(ctx context.Context, activeOnly bool) ([]models.Permission, error) {
	return r.store.ListPermissions(ctx, activeOnly)
}

// GroupByResource buckets permissions by resource, preserving order.
func GroupByResource(perms []models.Permission) map[string][]models.Permission {
	grouped := make(map[string][]models.Permission)
	for _, perm := range perms {
		grouped[perm.Resource] = append(grouped[perm.Resource], perm)
	}
	return grouped
}

// Deactivate switches a permission off. It stops matching in every query.
func (r *Registry) Deactivate(ctx context.Context, resource, action, codename string) (*models.Permission, error) {
	return r.store.SetPermissionActive(ctx, resource, action, codename, false)
}

// Activate reverses Deactivate.
func (r *Registry) Activate(ctx context.Context, resource, action, codename string) (*models.Permission, error) {
	return r.store.SetPermissionActive(ctx, resource, action, codename, true)
}

func normaliseDefinition(def Definition) (Definition, error) {
	def.Codename = strings.TrimSpace(def.Codename)
	def.Resource = strings.TrimSpace(def.Resource)
	def.Action = strings.TrimSpace(def.Action)
	def.Name = strings.TrimSpace(def.Name)
	def.Description = strings.TrimSpace(def.Description)

	if !validator.IsCodename(def.Codename) {
		return def, fmt.Errorf("%w: codename %q", ErrInvalidDefinition, def.Codename)
	}
	if !validator.IsCodename(def.Resource) {
		return def, fmt.Errorf("%w: resource %q", ErrInvalidDefinition, def.Resource)
	}
	if !models.ValidAction(def.Action) {
		return def, fmt.Errorf("%w: action %q", ErrInvalidDefinition, def.Action)
	}
	if def.Name == "" {
		def.Name = def.Codename
	}
	return def, nil
}

func describe(codename, resource string) string {
	if resource == "" {
		return codename
	}
	return models.PermissionKey(resource, codename)
}
