package permissions

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired indicates no authenticated principal was supplied.
	ErrAuthenticationRequired = errors.New("permission: authentication required")
	// ErrProfileNotFound indicates the authenticated user has no profile.
	ErrProfileNotFound = errors.New("permission: profile not found")
	// ErrPermissionDenied is matched by every *PermissionDeniedError.
	ErrPermissionDenied = errors.New("permission: denied")

	// ErrNotFound is the parent of every lookup failure raised by mutations.
	ErrNotFound            = errors.New("permission: not found")
	ErrPermissionNotFound  = fmt.Errorf("%w: permission", ErrNotFound)
	ErrRoleNotFound        = fmt.Errorf("%w: role", ErrNotFound)
	ErrGrantNotFound       = fmt.Errorf("%w: direct grant", ErrNotFound)
	ErrAmbiguousPermission = errors.New("permission: codename matches several resources")
	ErrInvalidDefinition   = errors.New("permission: invalid definition")
)

// PermissionDeniedError names the permission a principal was missing.
type PermissionDeniedError struct {
	Codename string
	Resource string
}

func (e *PermissionDeniedError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("permission: denied (%s)", e.Codename)
	}
	return fmt.Sprintf("permission: denied (%s on %s)", e.Codename, e.Resource)
}

// Is lets errors.Is(err, ErrPermissionDenied) match.
func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}
