package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoles/schoolmanager/internal/middleware"
	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/internal/services"
	"github.com/ecoles/schoolmanager/pkg/errors"
	"github.com/ecoles/schoolmanager/pkg/response"
)

// ProfileHandler exposes profile details behind the profile access rules.
type ProfileHandler struct {
	profiles permissions.ProfileFinder
	users    *services.UserService
	access   *services.ProfileAccess
}

func NewProfileHandler(profiles permissions.ProfileFinder, users *services.UserService, access *services.ProfileAccess) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, users: users, access: access}
}

type updateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}

// GET /api/profiles/:id
func (h *ProfileHandler) Get(c *gin.Context) {
	target, ok := h.authorize(c, h.access.CanView)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, target)
}

// PATCH /api/profiles/:id
func (h *ProfileHandler) Update(c *gin.Context) {
	target, ok := h.authorize(c, h.access.CanEdit)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	updated, err := h.users.UpdateProfile(requestContext(c), target.ID, services.ProfileUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated)
}

type accessRule func(ctx context.Context, viewer, target *models.Profile) (bool, error)

// authorize loads the target profile and applies rule for the viewer resolved by the guard.
func (h *ProfileHandler) authorize(c *gin.Context, rule accessRule) (*models.Profile, bool) {
	ctx := requestContext(c)

	target, err := h.profiles.FindProfile(ctx, c.Param("id"))
	if err != nil {
		respondTargetError(c, err)
		return nil, false
	}

	allowed, err := rule(ctx, middleware.Profile(c), target)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !allowed {
		response.Error(c, errors.ErrForbidden)
		return nil, false
	}
	return target, true
}
