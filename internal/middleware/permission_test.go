package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ecoles/schoolmanager/internal/permissions"
)

func serveGuarded(env *guardEnv, userID string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/grades", withUser(userID), handler, func(c *gin.Context) {
		c.String(http.StatusOK, Profile(c).ID)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades", nil))
	return w
}

func TestRequirePermissionWithoutAuth(t *testing.T) {
	env := newGuardEnv(t)
	w := serveGuarded(env, "", RequirePermission(env.guard, "view_grade", permissions.ResourceGrades))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermissionUnknownProfile(t *testing.T) {
	env := newGuardEnv(t)
	w := serveGuarded(env, "ghost", RequirePermission(env.guard, "view_grade", permissions.ResourceGrades))
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "PROFILE_NOT_FOUND", decodeResponse(t, w).Error.Code)
}

func TestRequirePermissionDenied(t *testing.T) {
	env := newGuardEnv(t)
	w := serveGuarded(env, env.profile.UserID, RequirePermission(env.guard, "view_grade", permissions.ResourceGrades))

	require.Equal(t, http.StatusForbidden, w.Code)
	body := decodeResponse(t, w)
	require.Equal(t, "FORBIDDEN", body.Error.Code)
	require.Equal(t, "view_grade", body.Error.Details["codename"])
	require.Equal(t, permissions.ResourceGrades, body.Error.Details["resource"])
}

func TestRequirePermissionAllowed(t *testing.T) {
	env := newGuardEnv(t)
	_, err := env.resolver.AssignPermission(context.Background(), env.profile, "view_grade", permissions.ResourceGrades, true, nil)
	require.NoError(t, err)

	w := serveGuarded(env, env.profile.UserID, RequirePermission(env.guard, "view_grade", permissions.ResourceGrades))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, env.profile.ID, w.Body.String())
}

func TestRequireAnyPermission(t *testing.T) {
	env := newGuardEnv(t)
	_, err := env.resolver.AssignPermission(context.Background(), env.profile, "view_grade", permissions.ResourceGrades, true, nil)
	require.NoError(t, err)

	handler := RequireAnyPermission(env.guard,
		permissions.Require("edit_grade", permissions.ResourceGrades),
		permissions.Require("view_grade", permissions.ResourceGrades),
	)
	w := serveGuarded(env, env.profile.UserID, handler)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireProfile(t *testing.T) {
	env := newGuardEnv(t)

	w := serveGuarded(env, env.profile.UserID, RequireProfile(env.guard))
	require.Equal(t, http.StatusOK, w.Code)

	w = serveGuarded(env, "", RequireProfile(env.guard))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
