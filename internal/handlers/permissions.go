package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ecoles/schoolmanager/internal/middleware"
	"github.com/ecoles/schoolmanager/internal/services"
	"github.com/ecoles/schoolmanager/pkg/errors"
	"github.com/ecoles/schoolmanager/pkg/response"
)

// PermissionHandler serves the permission administration screens.
type PermissionHandler struct {
	svc *services.PermissionService
}

func NewPermissionHandler(svc *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{svc: svc}
}

type saveRoleRequest struct {
	Codename    string `json:"codename" validate:"required,codename,max=100"`
	Name        string `json:"name" validate:"required,max=150"`
	Kind        string `json:"kind" validate:"omitempty,oneof=system custom"`
	Description string `json:"description" validate:"max=500"`
}

type rolePermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"dive,codename"`
}

type grantRequest struct {
	ProfileID string `json:"profile_id" validate:"required"`
	Codename  string `json:"codename" validate:"required,codename"`
	Resource  string `json:"resource"`
	Granted   *bool  `json:"granted" validate:"required"`
}

type revokeRequest struct {
	ProfileID string `json:"profile_id" validate:"required"`
	Codename  string `json:"codename" validate:"required,codename"`
	Resource  string `json:"resource"`
}

type assignmentRequest struct {
	ProfileID string `json:"profile_id" validate:"required"`
	Role      string `json:"role" validate:"required,codename"`
}

// GET /api/permissions/my
func (h *PermissionHandler) My(c *gin.Context) {
	view, err := h.svc.View(requestContext(c), middleware.Profile(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// GET /api/permissions/check?codename=&resource=
func (h *PermissionHandler) Check(c *gin.Context) {
	codename := strings.TrimSpace(c.Query("codename"))
	if codename == "" {
		response.Error(c, errors.NewBadRequest("codename is required"))
		return
	}

	decision, err := h.svc.Explain(requestContext(c), middleware.Profile(c), codename, strings.TrimSpace(c.Query("resource")))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, decision)
}

// GET /api/permissions/catalog
func (h *PermissionHandler) Catalog(c *gin.Context) {
	catalog, err := h.svc.Catalog(requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, catalog)
}

// GET /api/permissions/roles
func (h *PermissionHandler) ListRoles(c *gin.Context) {
	roles, err := h.svc.ListRoles(requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// POST /api/permissions/roles
func (h *PermissionHandler) SaveRole(c *gin.Context) {
	var req saveRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.svc.SaveRole(requestContext(c), services.RoleInput{
		Codename:    req.Codename,
		Name:        req.Name,
		Kind:        req.Kind,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// PUT /api/permissions/roles/:codename/permissions
func (h *PermissionHandler) SetRolePermissions(c *gin.Context) {
	var req rolePermissionsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.svc.SetRolePermissions(requestContext(c), c.Param("codename"), req.Permissions)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/permissions/grants
func (h *PermissionHandler) Grant(c *gin.Context) {
	var req grantRequest
	if !bindAndValidate(c, &req) {
		return
	}

	grant, err := h.svc.GrantPermission(requestContext(c), req.ProfileID, req.Codename, req.Resource, *req.Granted)
	if err != nil {
		respondTargetError(c, err)
		return
	}
	response.Success(c, http.StatusOK, grant)
}

// DELETE /api/permissions/grants
func (h *PermissionHandler) Revoke(c *gin.Context) {
	var req revokeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.svc.RevokePermission(requestContext(c), req.ProfileID, req.Codename, req.Resource); err != nil {
		respondTargetError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// POST /api/permissions/assignments
func (h *PermissionHandler) AssignRole(c *gin.Context) {
	var req assignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.svc.AssignRole(requestContext(c), req.ProfileID, req.Role)
	if err != nil {
		respondTargetError(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignment)
}

// DELETE /api/permissions/assignments
func (h *PermissionHandler) RemoveRole(c *gin.Context) {
	var req assignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	removed, err := h.svc.RemoveRole(requestContext(c), req.ProfileID, req.Role)
	if err != nil {
		respondTargetError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}

// GET /api/profiles/:id/permissions
func (h *PermissionHandler) ProfilePermissions(c *gin.Context) {
	view, err := h.svc.ProfilePermissions(requestContext(c), c.Param("id"))
	if err != nil {
		respondTargetError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}
