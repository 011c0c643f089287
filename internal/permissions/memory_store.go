package permissions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecoles/schoolmanager/internal/models"
)

// MemoryStore is an in-process Store. It backs dry-run seeding and resolver tests.
type MemoryStore struct {
	mu          sync.RWMutex
	permissions map[string]*models.Permission
	roles       map[string]*memoryRole
	assignments []*models.RoleAssignment
	grants      []*memoryGrant
	profiles    map[string]*models.Profile
}

type memoryRole struct {
	role    models.Role
	permIDs []string
}

type memoryGrant struct {
	grant   models.DirectGrant
	permIDs []string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		permissions: make(map[string]*models.Permission),
		roles:       make(map[string]*memoryRole),
		profiles:    make(map[string]*models.Profile),
	}
}

var _ Store = (*MemoryStore)(nil)

// PutProfile stores a copy of profile, assigning an ID when missing.
func (s *MemoryStore) PutProfile(profile *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	cp := *profile
	s.profiles[cp.ID] = &cp
}

func (s *MemoryStore) UpsertPermission(_ context.Context, perm models.Permission, force bool) (*models.Permission, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.permissions {
		if existing.Resource == perm.Resource && existing.Action == perm.Action && existing.Codename == perm.Codename {
			if force {
				existing.Name, existing.Description, existing.IsActive = perm.Name, perm.Description, true
				existing.UpdatedAt = time.Now()
			}
			cp := *existing
			return &cp, false, nil
		}
	}

	perm.BaseModel = newBase()
	perm.IsActive = true
	perm.Roles = nil
	s.permissions[perm.ID] = &perm
	cp := perm
	return &cp, true, nil
}

func (s *MemoryStore) FindPermissions(_ context.Context, codename, resource string) ([]models.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Permission
	for _, perm := range s.permissions {
		if perm.IsActive && perm.Codename == codename && (resource == "" || perm.Resource == resource) {
			out = append(out, *perm)
		}
	}
	sortPermissions(out)
	return out, nil
}

func (s *MemoryStore) ListPermissions(_ context.Context, activeOnly bool) ([]models.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Permission, 0, len(s.permissions))
	for _, perm := range s.permissions {
		if activeOnly && !perm.IsActive {
			continue
		}
		out = append(out, *perm)
	}
	sortPermissions(out)
	return out, nil
}

func (s *MemoryStore) SetPermissionActive(_ context.Context, resource, action, codename string, active bool) (*models.Permission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, perm := range s.permissions {
		if perm.Resource == resource && perm.Action == action && perm.Codename == codename {
			perm.IsActive = active
			cp := *perm
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPermissionNotFound, models.PermissionKey(resource, codename))
}

func (s *MemoryStore) UpsertRole(_ context.Context, role models.Role, force bool) (*models.Role, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.roles {
		if existing.role.Codename != role.Codename {
			continue
		}
		if force {
			existing.role.Name = role.Name
			existing.role.Kind = role.Kind
			existing.role.Description = role.Description
			existing.role.IsActive = true
		}
		cp := existing.role
		return &cp, false, nil
	}

	role.BaseModel = newBase()
	role.IsActive = true
	role.Permissions = nil
	s.roles[role.ID] = &memoryRole{role: role}
	cp := role
	return &cp, true, nil
}

func (s *MemoryStore) FindRole(_ context.Context, codename string) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.roles {
		if entry.role.Codename == codename {
			role := s.materialiseRole(entry, false)
			return &role, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, codename)
}

func (s *MemoryStore) ListRoles(_ context.Context) ([]models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Role, 0, len(s.roles))
	for _, entry := range s.roles {
		out = append(out, s.materialiseRole(entry, true))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codename < out[j].Codename })
	return out, nil
}

func (s *MemoryStore) ReplaceRolePermissions(_ context.Context, roleID string, permissionIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.roles[roleID]
	if !ok {
		return ErrRoleNotFound
	}
	for _, id := range permissionIDs {
		if _, ok := s.permissions[id]; !ok {
			return fmt.Errorf("%w: %s", ErrPermissionNotFound, id)
		}
	}
	entry.permIDs = dedupe(permissionIDs)
	return nil
}

func (s *MemoryStore) ListActiveRoleAssignments(_ context.Context, profileID string) ([]models.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.RoleAssignment
	for _, assignment := range s.assignments {
		if assignment.ProfileID != profileID || !assignment.IsActive {
			continue
		}
		entry, ok := s.roles[assignment.RoleID]
		if !ok || !entry.role.IsActive {
			continue
		}
		cp := *assignment
		cp.Role = s.materialiseRole(entry, true)
		out = append(out, cp)
	}
	return out, nil
}

func (s *MemoryStore) UpsertRoleAssignment(_ context.Context, profileID, roleID string, assignedBy *string) (*models.RoleAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.roles[roleID]
	if !ok {
		return nil, ErrRoleNotFound
	}

	var assignment *models.RoleAssignment
	for _, candidate := range s.assignments {
		if candidate.ProfileID == profileID && candidate.RoleID == roleID {
			assignment = candidate
			break
		}
	}
	if assignment == nil {
		assignment = &models.RoleAssignment{BaseModel: newBase(), ProfileID: profileID, RoleID: roleID}
		s.assignments = append(s.assignments, assignment)
	}
	assignment.IsActive = true
	assignment.AssignedByID = assignedBy
	assignment.UpdatedAt = time.Now()

	cp := *assignment
	cp.Role = entry.role
	return &cp, nil
}

func (s *MemoryStore) DeactivateRoleAssignment(_ context.Context, profileID, roleID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, assignment := range s.assignments {
		if assignment.ProfileID == profileID && assignment.RoleID == roleID && assignment.IsActive {
			assignment.IsActive = false
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListActiveDirectGrants(_ context.Context, profileID string, granted bool) ([]models.DirectGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.DirectGrant
	for _, entry := range s.grants {
		if entry.grant.ProfileID == profileID && entry.grant.Granted == granted && entry.grant.IsActive {
			out = append(out, s.materialiseGrant(entry))
		}
	}
	return out, nil
}

func (s *MemoryStore) AddDirectGrant(_ context.Context, profileID string, granted bool, perm models.Permission, grantedBy *string) (*models.DirectGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.permissions[perm.ID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrPermissionNotFound, perm.Key())
	}

	var target *memoryGrant
	for _, entry := range s.grants {
		if entry.grant.ProfileID == profileID && entry.grant.Granted == granted && entry.grant.IsActive {
			target = entry
			break
		}
	}
	if target == nil {
		target = &memoryGrant{grant: models.DirectGrant{
			BaseModel:   newBase(),
			ProfileID:   profileID,
			Granted:     granted,
			IsActive:    true,
			GrantedByID: grantedBy,
		}}
		s.grants = append(s.grants, target)
	}
	target.permIDs = dedupe(append(target.permIDs, perm.ID))

	grant := s.materialiseGrant(target)
	return &grant, nil
}

func (s *MemoryStore) RemoveDirectPermission(_ context.Context, profileID, permissionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := 0
	for _, entry := range s.grants {
		if entry.grant.ProfileID != profileID || !entry.grant.IsActive {
			continue
		}
		kept := entry.permIDs[:0]
		for _, id := range entry.permIDs {
			if id != permissionID {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(entry.permIDs) {
			continue
		}
		touched++
		entry.permIDs = kept
		if len(kept) == 0 {
			entry.grant.IsActive = false
		}
	}
	return touched, nil
}

func (s *MemoryStore) DeactivateEmptyDirectGrants(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, entry := range s.grants {
		if entry.grant.IsActive && len(entry.permIDs) == 0 {
			entry.grant.IsActive = false
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) FindProfile(_ context.Context, id string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if profile, ok := s.profiles[id]; ok {
		cp := *profile
		return &cp, nil
	}
	return nil, ErrProfileNotFound
}

func (s *MemoryStore) FindProfileByUserID(_ context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, profile := range s.profiles {
		if profile.UserID == userID {
			cp := *profile
			return &cp, nil
		}
	}
	return nil, ErrProfileNotFound
}

// materialiseRole copies a role with its permissions. Caller holds the lock.
func (s *MemoryStore) materialiseRole(entry *memoryRole, activeOnly bool) models.Role {
	role := entry.role
	role.Permissions = s.collect(entry.permIDs, activeOnly)
	return role
}

func (s *MemoryStore) materialiseGrant(entry *memoryGrant) models.DirectGrant {
	grant := entry.grant
	grant.Permissions = s.collect(entry.permIDs, false)
	return grant
}

func (s *MemoryStore) collect(ids []string, activeOnly bool) []models.Permission {
	perms := make([]models.Permission, 0, len(ids))
	for _, id := range ids {
		perm, ok := s.permissions[id]
		if !ok || (activeOnly && !perm.IsActive) {
			continue
		}
		perms = append(perms, *perm)
	}
	sortPermissions(perms)
	return perms
}

func newBase() models.BaseModel {
	now := time.Now()
	return models.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}

func sortPermissions(perms []models.Permission) {
	sort.Slice(perms, func(i, j int) bool {
		if perms[i].Resource != perms[j].Resource {
			return perms[i].Resource < perms[j].Resource
		}
		if perms[i].Codename != perms[j].Codename {
			return perms[i].Codename < perms[j].Codename
		}
		return perms[i].Action < perms[j].Action
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
