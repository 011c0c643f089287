package permissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecoles/schoolmanager/internal/models"
)

// GormStore implements Store on top of GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a store backed by the provided database.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("permission store: db is required")
	}
	return &GormStore{db: db}, nil
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) UpsertPermission(ctx context.Context, perm models.Permission, force bool) (*models.Permission, bool, error) {
	tx := s.db.WithContext(ensureContext(ctx))
	key := map[string]any{"resource": perm.Resource, "action": perm.Action, "codename": perm.Codename}

	var existing models.Permission
	err := tx.Where(key).First(&existing).Error
	switch {
	case err == nil:
		if !force {
			return &existing, false, nil
		}
		updates := map[string]any{"name": perm.Name, "description": perm.Description, "is_active": true}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return nil, false, fmt.Errorf("permission store: refresh %s: %w", perm.Key(), err)
		}
		existing.Name, existing.Description, existing.IsActive = perm.Name, perm.Description, true
		return &existing, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("permission store: load %s: %w", perm.Key(), err)
	}

	perm.ID = ""
	perm.IsActive = true
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource"}, {Name: "action"}, {Name: "codename"}},
		DoNothing: true,
	}).Create(&perm)
	if res.Error != nil {
		return nil, false, fmt.Errorf("permission store: create %s: %w", perm.Key(), res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost a concurrent insert; return the winner.
		if err := tx.Where(key).First(&existing).Error; err != nil {
			return nil, false, fmt.Errorf("permission store: reload %s: %w", perm.Key(), err)
		}
		return &existing, false, nil
	}
	return &perm, true, nil
}

func (s *GormStore) FindPermissions(ctx context.Context, codename, resource string) ([]models.Permission, error) {
	query := s.db.WithContext(ensureContext(ctx)).
		Where("codename = ? AND is_active = ?", codename, true)
	if resource != "" {
		query = query.Where("resource = ?", resource)
	}

	var perms []models.Permission
	if err := query.Order("resource, action").Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("permission store: find %s: %w", codename, err)
	}
	return perms, nil
}

func (s *GormStore) ListPermissions(ctx context.Context, activeOnly bool) ([]models.Permission, error) {
	query := s.db.WithContext(ensureContext(ctx)).Order("resource, codename")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var perms []models.Permission
	if err := query.Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("permission store: list permissions: %w", err)
	}
	return perms, nil
}

func (s *GormStore) SetPermissionActive(ctx context.Context, resource, action, codename string, active bool) (*models.Permission, error) {
	tx := s.db.WithContext(ensureContext(ctx))

	var perm models.Permission
	err := tx.Where(map[string]any{"resource": resource, "action": action, "codename": codename}).First(&perm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionNotFound, models.PermissionKey(resource, codename))
	}
	if err != nil {
		return nil, fmt.Errorf("permission store: load permission: %w", err)
	}

	if err := tx.Model(&perm).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("permission store: toggle permission: %w", err)
	}
	perm.IsActive = active
	return &perm, nil
}

func (s *GormStore) UpsertRole(ctx context.Context, role models.Role, force bool) (*models.Role, bool, error) {
	tx := s.db.WithContext(ensureContext(ctx))

	var existing models.Role
	err := tx.Where("codename = ?", role.Codename).First(&existing).Error
	switch {
	case err == nil:
		if !force {
			return &existing, false, nil
		}
		updates := map[string]any{
			"name":        role.Name,
			"kind":        role.Kind,
			"description": role.Description,
			"is_active":   true,
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return nil, false, fmt.Errorf("permission store: refresh role %s: %w", role.Codename, err)
		}
		existing.Name, existing.Kind, existing.Description, existing.IsActive = role.Name, role.Kind, role.Description, true
		return &existing, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("permission store: load role %s: %w", role.Codename, err)
	}

	role.ID = ""
	role.IsActive = true
	role.Permissions = nil
	if err := tx.Create(&role).Error; err != nil {
		return nil, false, fmt.Errorf("permission store: create role %s: %w", role.Codename, err)
	}
	return &role, true, nil
}

func (s *GormStore) FindRole(ctx context.Context, codename string) (*models.Role, error) {
	var role models.Role
	err := s.db.WithContext(ensureContext(ctx)).
		Preload("Permissions", func(db *gorm.DB) *gorm.DB { return db.Order("resource, codename") }).
		Where("codename = ?", codename).
		First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, codename)
	}
	if err != nil {
		return nil, fmt.Errorf("permission store: load role %s: %w", codename, err)
	}
	return &role, nil
}

func (s *GormStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.WithContext(ensureContext(ctx)).
		Preload("Permissions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("resource, codename")
		}).
		Order("codename").
		Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("permission store: list roles: %w", err)
	}
	return roles, nil
}

func (s *GormStore) ReplaceRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	return s.db.WithContext(ensureContext(ctx)).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, "id = ?", roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("permission store: load role: %w", err)
		}

		if len(permissionIDs) == 0 {
			return tx.Model(&role).Association("Permissions").Clear()
		}

		var perms []models.Permission
		if err := tx.Where("id IN ?", permissionIDs).Find(&perms).Error; err != nil {
			return fmt.Errorf("permission store: load permissions: %w", err)
		}
		if len(perms) != len(permissionIDs) {
			return fmt.Errorf("%w: %d of %d ids resolved", ErrPermissionNotFound, len(perms), len(permissionIDs))
		}

		if err := tx.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("permission store: replace role permissions: %w", err)
		}
		return nil
	})
}

func (s *GormStore) ListActiveRoleAssignments(ctx context.Context, profileID string) ([]models.RoleAssignment, error) {
	tx := s.db.WithContext(ensureContext(ctx))
	activeRoles := tx.Model(&models.Role{}).Select("id").Where("is_active = ?", true)

	var assignments []models.RoleAssignment
	err := tx.
		Preload("Role").
		Preload("Role.Permissions", "is_active = ?", true).
		Where("profile_id = ? AND is_active = ?", profileID, true).
		Where("role_id IN (?)", activeRoles).
		Order("created_at").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("permission store: list role assignments: %w", err)
	}
	return assignments, nil
}

func (s *GormStore) UpsertRoleAssignment(ctx context.Context, profileID, roleID string, assignedBy *string) (*models.RoleAssignment, error) {
	var assignment models.RoleAssignment
	err := s.db.WithContext(ensureContext(ctx)).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("profile_id = ? AND role_id = ?", profileID, roleID).First(&assignment).Error
		switch {
		case err == nil:
			updates := map[string]any{"is_active": true, "assigned_by_id": assignedBy}
			if err := tx.Model(&assignment).Updates(updates).Error; err != nil {
				return fmt.Errorf("permission store: reactivate assignment: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			assignment = models.RoleAssignment{
				ProfileID:    profileID,
				RoleID:       roleID,
				IsActive:     true,
				AssignedByID: assignedBy,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return fmt.Errorf("permission store: create assignment: %w", err)
			}
		default:
			return fmt.Errorf("permission store: load assignment: %w", err)
		}
		return tx.Preload("Role").First(&assignment, "id = ?", assignment.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (s *GormStore) DeactivateRoleAssignment(ctx context.Context, profileID, roleID string) (bool, error) {
	res := s.db.WithContext(ensureContext(ctx)).
		Model(&models.RoleAssignment{}).
		Where("profile_id = ? AND role_id = ? AND is_active = ?", profileID, roleID, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, fmt.Errorf("permission store: deactivate assignment: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) ListActiveDirectGrants(ctx context.Context, profileID string, granted bool) ([]models.DirectGrant, error) {
	var grants []models.DirectGrant
	err := s.db.WithContext(ensureContext(ctx)).
		Preload("Permissions").
		Where("profile_id = ? AND granted = ? AND is_active = ?", profileID, granted, true).
		Order("created_at").
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("permission store: list direct grants: %w", err)
	}
	return grants, nil
}

func (s *GormStore) AddDirectGrant(ctx context.Context, profileID string, granted bool, perm models.Permission, grantedBy *string) (*models.DirectGrant, error) {
	var grant models.DirectGrant
	err := s.db.WithContext(ensureContext(ctx)).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("profile_id = ? AND granted = ? AND is_active = ?", profileID, granted, true).
			Order("created_at").
			First(&grant).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			grant = models.DirectGrant{
				ProfileID:   profileID,
				Granted:     granted,
				IsActive:    true,
				GrantedByID: grantedBy,
			}
			err = tx.Create(&grant).Error
		}
		if err != nil {
			return fmt.Errorf("permission store: resolve direct grant: %w", err)
		}

		if err := tx.Model(&grant).Association("Permissions").Append(&perm); err != nil {
			return fmt.Errorf("permission store: append permission: %w", err)
		}
		return tx.Preload("Permissions").First(&grant, "id = ?", grant.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (s *GormStore) RemoveDirectPermission(ctx context.Context, profileID, permissionID string) (int, error) {
	touched := 0
	err := s.db.WithContext(ensureContext(ctx)).Transaction(func(tx *gorm.DB) error {
		var grants []models.DirectGrant
		if err := tx.Preload("Permissions").
			Where("profile_id = ? AND is_active = ?", profileID, true).
			Find(&grants).Error; err != nil {
			return fmt.Errorf("permission store: list direct grants: %w", err)
		}

		for i := range grants {
			grant := &grants[i]
			if !containsPermissionID(grant.Permissions, permissionID) {
				continue
			}
			touched++
			emptied := len(grant.Permissions) == 1

			perm := models.Permission{BaseModel: models.BaseModel{ID: permissionID}}
			if err := tx.Model(grant).Association("Permissions").Delete(&perm); err != nil {
				return fmt.Errorf("permission store: remove permission: %w", err)
			}
			if emptied {
				if err := tx.Model(grant).Update("is_active", false).Error; err != nil {
					return fmt.Errorf("permission store: deactivate direct grant: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return touched, nil
}

func (s *GormStore) DeactivateEmptyDirectGrants(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ensureContext(ctx)).
		Model(&models.DirectGrant{}).
		Where("is_active = ?", true).
		Where("NOT EXISTS (SELECT 1 FROM direct_grant_permissions dgp WHERE dgp.direct_grant_id = direct_grants.id)").
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("permission store: prune direct grants: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) FindProfile(ctx context.Context, id string) (*models.Profile, error) {
	return s.findProfile(ctx, "id = ?", id)
}

func (s *GormStore) FindProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return s.findProfile(ctx, "user_id = ?", userID)
}

func (s *GormStore) findProfile(ctx context.Context, cond string, value string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ensureContext(ctx)).Where(cond, value).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("permission store: load profile: %w", err)
	}
	return &profile, nil
}

func containsPermissionID(perms []models.Permission, id string) bool {
	for _, perm := range perms {
		if perm.ID == id {
			return true
		}
	}
	return false
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
