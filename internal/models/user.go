package models

import "time"

// User is an account able to authenticate. Authorization never looks at the user directly;
// every grant is indexed by the linked Profile.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"index" json:"email"`
	Password string `gorm:"not null" json:"-"`
	IsActive bool   `gorm:"not null" json:"is_active"`

	LastLoginAt *time.Time `json:"last_login_at"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}
