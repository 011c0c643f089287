package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/pkg/crypto"
	apperrors "github.com/ecoles/schoolmanager/pkg/errors"
)

// ErrUserNotFound indicates the requested account does not exist.
var ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)

// CreateUserInput describes a new account and its profile.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Kind     string
}

// ProfileUpdate carries the editable display fields of a profile.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
}

// UserService manages local accounts and their profiles.
type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewUserService constructs a UserService using the provided database handle.
func NewUserService(db *gorm.DB, audit *AuditService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, audit: audit}, nil
}

// Create stores a user and its active profile in one transaction.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, apperrors.NewBadRequest("username and password are required")
	}
	kind := strings.TrimSpace(input.Kind)
	switch kind {
	case "":
		kind = models.ProfileKindStaff
	case models.ProfileKindStaff, models.ProfileKindStudent, models.ProfileKindTeacher, models.ProfileKindParent:
	default:
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown profile kind %q", kind))
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    strings.TrimSpace(input.Email),
		Password: hashed,
		IsActive: true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		user.Profile = &models.Profile{
			UserID:   user.ID,
			FullName: strings.TrimSpace(input.FullName),
			Kind:     kind,
			IsActive: true,
		}
		return tx.Create(user.Profile).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		Action:   "user.create",
		Resource: user.ID,
		Result:   AuditResultSuccess,
		Metadata: map[string]any{"username": user.Username, "kind": kind},
	})
	return user, nil
}

// Authenticate checks credentials and records the login time.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Preload("Profile").Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("user service: record login: %w", err)
	}
	user.LastLoginAt = &now
	return &user, nil
}

// GetByID returns the user with its profile.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ensureContext(ctx)).Preload("Profile").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// GetByUsername returns the user with its profile.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ensureContext(ctx)).Preload("Profile").First(&user, "username = ?", strings.TrimSpace(username)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of update.
func (s *UserService) UpdateProfile(ctx context.Context, profileID string, update ProfileUpdate) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load profile: %w", err)
	}

	updates := map[string]any{}
	if update.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*update.FullName)
	}
	if update.Phone != nil {
		updates["phone"] = strings.TrimSpace(*update.Phone)
	}
	if len(updates) == 0 {
		return &profile, nil
	}

	if err := s.db.WithContext(ctx).Model(&profile).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: update profile: %w", err)
	}
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", profileID).Error; err != nil {
		return nil, fmt.Errorf("user service: reload profile: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		Action:   "profile.update",
		Resource: profileID,
		Result:   AuditResultSuccess,
	})
	return &profile, nil
}

// SetProfileActive toggles whether a profile can hold permissions.
func (s *UserService) SetProfileActive(ctx context.Context, profileID string, active bool) error {
	ctx = ensureContext(ctx)
	res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", profileID).Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("user service: toggle profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
