package models

// Role kinds.
const (
	RoleKindSystem = "system"
	RoleKindCustom = "custom"
)

// RoleAdmin is the codename of the administrator role.
const RoleAdmin = "admin"

// Role is a named, reusable bundle of permissions.
type Role struct {
	BaseModel

	Codename    string `gorm:"uniqueIndex;not null" json:"codename"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Kind        string `gorm:"not null" json:"kind"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"not null;index" json:"is_active"`

	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

// RoleAssignment links a profile to a role. At most one row exists per (profile, role); removal
// deactivates it.
type RoleAssignment struct {
	BaseModel

	ProfileID    string  `gorm:"type:uuid;not null;uniqueIndex:idx_profile_role" json:"profile_id"`
	RoleID       string  `gorm:"type:uuid;not null;uniqueIndex:idx_profile_role" json:"role_id"`
	Role         Role    `gorm:"foreignKey:RoleID" json:"role"`
	IsActive     bool    `gorm:"not null;index" json:"is_active"`
	AssignedByID *string `gorm:"type:uuid" json:"assigned_by_id,omitempty"`
}

// DirectGrant is an explicit allow (Granted=true) or deny (Granted=false) of a set of
// permissions for one profile, bypassing roles.
type DirectGrant struct {
	BaseModel

	ProfileID   string  `gorm:"type:uuid;not null;index:idx_direct_grant_lookup" json:"profile_id"`
	Granted     bool    `gorm:"not null;index:idx_direct_grant_lookup" json:"granted"`
	IsActive    bool    `gorm:"not null;index:idx_direct_grant_lookup" json:"is_active"`
	GrantedByID *string `gorm:"type:uuid" json:"granted_by_id,omitempty"`

	Permissions []Permission `gorm:"many2many:direct_grant_permissions;" json:"permissions"`
}
