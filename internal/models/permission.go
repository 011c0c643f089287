package models

import "fmt"

// Actions a permission may authorise.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionVerify = "verify"
	ActionManage = "manage"
)

// Actions lists every supported action in display order.
var Actions = []string{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionVerify, ActionManage}

// ValidAction reports whether action is one of the supported actions.
func ValidAction(action string) bool {
	for _, candidate := range Actions {
		if candidate == action {
			return true
		}
	}
	return false
}

// Permission identifies one allowed action on one resource category. The triple
// (resource, action, codename) is unique. Permissions are deactivated, never deleted.
type Permission struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	Codename    string `gorm:"not null;index;uniqueIndex:idx_permission_key,priority:3" json:"codename"`
	Resource    string `gorm:"not null;uniqueIndex:idx_permission_key,priority:1" json:"resource"`
	Action      string `gorm:"not null;uniqueIndex:idx_permission_key,priority:2" json:"action"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"not null;index" json:"is_active"`

	Roles []Role `gorm:"many2many:role_permissions;" json:"-"`
}

// Key returns the resource-qualified codename, e.g. "app_grades.edit_grade".
func (p Permission) Key() string {
	return PermissionKey(p.Resource, p.Codename)
}

// PermissionKey joins a resource and codename the same way Permission.Key does.
func PermissionKey(resource, codename string) string {
	return fmt.Sprintf("%s.%s", resource, codename)
}
