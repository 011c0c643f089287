package models

// Profile kinds mirror the school populations that own accounts.
const (
	ProfileKindStaff   = "staff"
	ProfileKindStudent = "student"
	ProfileKindTeacher = "teacher"
	ProfileKindParent  = "parent"
)

// Profile is the principal every permission decision is evaluated for. There is at most one
// profile per user account.
type Profile struct {
	BaseModel

	UserID   string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	FullName string `json:"full_name"`
	Kind     string `gorm:"not null;index" json:"kind"`
	Phone    string `json:"phone"`
	IsActive bool   `gorm:"not null" json:"is_active"`
}

// Active reports whether the profile can hold permissions. A nil profile is never active.
func (p *Profile) Active() bool {
	return p != nil && p.IsActive
}
