package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecoles/schoolmanager/internal/handlers/testutil"
	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/internal/services"
)

func effectiveCodenames(view services.PermissionView) []string {
	names := make([]string, 0, len(view.Effective))
	for _, perm := range view.Effective {
		names = append(names, perm.Codename)
	}
	return names
}

func TestPermissionHandler_My(t *testing.T) {
	env := testutil.NewEnv(t)
	student := env.CreateUser(models.ProfileKindStudent, "student")

	w := env.Request(http.MethodGet, "/api/permissions/my", nil, env.Token(student))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view services.PermissionView
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &view)
	require.False(t, view.IsAdmin)
	require.Len(t, view.Roles, 1)
	require.Equal(t, "student", view.Roles[0].Codename)
	require.Len(t, view.Effective, 13)
	require.Contains(t, effectiveCodenames(view), "view_grade")
	require.NotContains(t, effectiveCodenames(view), "edit_grade")
}

func TestPermissionHandler_Check(t *testing.T) {
	env := testutil.NewEnv(t)
	teacher := env.CreateUser(models.ProfileKindTeacher, "teacher")
	token := env.Token(teacher)

	w := env.Request(http.MethodGet, "/api/permissions/check?codename=edit_grade&resource=app_grades", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var decision permissions.Decision
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &decision)
	require.True(t, decision.Allowed)
	require.Equal(t, permissions.ReasonRoleGrant, decision.Reason)
	require.Equal(t, "teacher", decision.Role)

	missing := env.Request(http.MethodGet, "/api/permissions/check", nil, token)
	require.Equal(t, http.StatusBadRequest, missing.Code)

	unknown := env.Request(http.MethodGet, "/api/permissions/check?codename=fly_to_moon", nil, token)
	require.Equal(t, http.StatusOK, unknown.Code)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, unknown).Data, &decision)
	require.False(t, decision.Allowed)
	require.Equal(t, permissions.ReasonDefaultDeny, decision.Reason)
}

func TestPermissionHandler_AdministrationRequiresPermission(t *testing.T) {
	env := testutil.NewEnv(t)
	student := env.CreateUser(models.ProfileKindStudent, "student")

	w := env.Request(http.MethodGet, "/api/permissions/roles", nil, env.Token(student))
	require.Equal(t, http.StatusForbidden, w.Code)

	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, "FORBIDDEN", resp.Error.Code)
	require.Equal(t, permissions.PermAssignRolePermissions, resp.Error.Details["codename"])
	require.Equal(t, permissions.ResourceConfig, resp.Error.Details["resource"])

	catalog := env.Request(http.MethodGet, "/api/permissions/catalog", nil, env.Token(student))
	require.Equal(t, http.StatusForbidden, catalog.Code)
}

func TestPermissionHandler_ProfileWithoutProfileRecord(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser(models.ProfileKindStaff)
	require.NoError(t, env.DB.Delete(user.Profile).Error)

	w := env.Request(http.MethodGet, "/api/permissions/my", nil, env.Token(user))
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "PROFILE_NOT_FOUND", testutil.DecodeResponse(t, w).Error.Code)
}

func TestPermissionHandler_ManageGrantsAndRoles(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateUser(models.ProfileKindStaff, models.RoleAdmin)
	teacher := env.CreateUser(models.ProfileKindTeacher, "teacher")
	adminToken := env.Token(admin)
	teacherToken := env.Token(teacher)

	roles := env.Request(http.MethodGet, "/api/permissions/roles", nil, adminToken)
	require.Equal(t, http.StatusOK, roles.Code, roles.Body.String())

	catalog := env.Request(http.MethodGet, "/api/permissions/catalog", nil, adminToken)
	require.Equal(t, http.StatusOK, catalog.Code)
	var grouped map[string][]models.Permission
	testutil.DecodeInto(t, testutil.DecodeResponse(t, catalog).Data, &grouped)
	require.Len(t, grouped[permissions.ResourceConfig], 4)

	// An explicit deny beats the teacher role.
	deny := env.Request(http.MethodPost, "/api/permissions/grants", map[string]any{
		"profile_id": teacher.Profile.ID,
		"codename":   "edit_grade",
		"resource":   permissions.ResourceGrades,
		"granted":    false,
	}, adminToken)
	require.Equal(t, http.StatusOK, deny.Code, deny.Body.String())

	check := env.Request(http.MethodGet, "/api/permissions/check?codename=edit_grade", nil, teacherToken)
	var decision permissions.Decision
	testutil.DecodeInto(t, testutil.DecodeResponse(t, check).Data, &decision)
	require.False(t, decision.Allowed)
	require.Equal(t, permissions.ReasonExplicitDeny, decision.Reason)

	revoke := env.Request(http.MethodDelete, "/api/permissions/grants", map[string]any{
		"profile_id": teacher.Profile.ID,
		"codename":   "edit_grade",
		"resource":   permissions.ResourceGrades,
	}, adminToken)
	require.Equal(t, http.StatusOK, revoke.Code, revoke.Body.String())

	again := env.Request(http.MethodDelete, "/api/permissions/grants", map[string]any{
		"profile_id": teacher.Profile.ID,
		"codename":   "edit_grade",
	}, adminToken)
	require.Equal(t, http.StatusNotFound, again.Code)

	check = env.Request(http.MethodGet, "/api/permissions/check?codename=edit_grade", nil, teacherToken)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, check).Data, &decision)
	require.True(t, decision.Allowed)

	// Role assignment and removal.
	assign := env.Request(http.MethodPost, "/api/permissions/assignments", map[string]any{
		"profile_id": teacher.Profile.ID,
		"role":       "grades_manager",
	}, adminToken)
	require.Equal(t, http.StatusOK, assign.Code, assign.Body.String())

	remove := env.Request(http.MethodDelete, "/api/permissions/assignments", map[string]any{
		"profile_id": teacher.Profile.ID,
		"role":       "teacher",
	}, adminToken)
	require.Equal(t, http.StatusOK, remove.Code)
	var removed map[string]bool
	testutil.DecodeInto(t, testutil.DecodeResponse(t, remove).Data, &removed)
	require.True(t, removed["removed"])

	view := env.Request(http.MethodGet, "/api/profiles/"+teacher.Profile.ID+"/permissions", nil, adminToken)
	require.Equal(t, http.StatusOK, view.Code)
	var pv services.PermissionView
	testutil.DecodeInto(t, testutil.DecodeResponse(t, view).Data, &pv)
	require.Len(t, pv.Roles, 1)
	require.Equal(t, "grades_manager", pv.Roles[0].Codename)
	require.Contains(t, effectiveCodenames(pv), "manage_grades")

	var audits int64
	require.NoError(t, env.DB.Model(&models.AuditLog{}).Where("actor_id = ?", admin.ID).Count(&audits).Error)
	require.EqualValues(t, 5, audits)

	unknown := env.Request(http.MethodPost, "/api/permissions/assignments", map[string]any{
		"profile_id": "00000000-0000-0000-0000-000000000000",
		"role":       "teacher",
	}, adminToken)
	require.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestPermissionHandler_SaveRoleAndPermissions(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateUser(models.ProfileKindStaff, models.RoleAdmin)
	token := env.Token(admin)

	invalid := env.Request(http.MethodPost, "/api/permissions/roles", map[string]any{
		"codename": "Not Valid",
		"name":     "Librarian",
	}, token)
	require.Equal(t, http.StatusBadRequest, invalid.Code)

	created := env.Request(http.MethodPost, "/api/permissions/roles", map[string]any{
		"codename": "librarian",
		"name":     "Librarian",
	}, token)
	require.Equal(t, http.StatusOK, created.Code, created.Body.String())

	var role models.Role
	testutil.DecodeInto(t, testutil.DecodeResponse(t, created).Data, &role)
	require.Equal(t, models.RoleKindCustom, role.Kind)

	set := env.Request(http.MethodPut, "/api/permissions/roles/librarian/permissions", map[string]any{
		"permissions": []string{"view_class", "view_subject"},
	}, token)
	require.Equal(t, http.StatusOK, set.Code, set.Body.String())
	testutil.DecodeInto(t, testutil.DecodeResponse(t, set).Data, &role)
	require.Len(t, role.Permissions, 2)

	// Unknown codenames are skipped, so the set is replaced by nothing.
	unknownPerm := env.Request(http.MethodPut, "/api/permissions/roles/librarian/permissions", map[string]any{
		"permissions": []string{"view_unicorn"},
	}, token)
	require.Equal(t, http.StatusOK, unknownPerm.Code)
	var emptied models.Role
	testutil.DecodeInto(t, testutil.DecodeResponse(t, unknownPerm).Data, &emptied)
	require.Empty(t, emptied.Permissions)

	unknownRole := env.Request(http.MethodPut, "/api/permissions/roles/ghost/permissions", map[string]any{
		"permissions": []string{"view_class"},
	}, token)
	require.Equal(t, http.StatusNotFound, unknownRole.Code)
}
