package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type guardEnv struct {
	store    *permissions.MemoryStore
	resolver *permissions.Resolver
	guard    *permissions.Guard
	profile  *models.Profile
}

func newGuardEnv(t *testing.T) *guardEnv {
	t.Helper()
	ctx := context.Background()

	store := permissions.NewMemoryStore()
	resolver, err := permissions.NewResolver(store)
	require.NoError(t, err)
	guard, err := permissions.NewGuard(resolver, nil)
	require.NoError(t, err)

	_, _, err = resolver.Registry().Register(ctx, permissions.Definition{
		Codename: "view_grade",
		Resource: permissions.ResourceGrades,
		Action:   models.ActionView,
	}, false)
	require.NoError(t, err)

	profile := &models.Profile{UserID: "user-1", Kind: models.ProfileKindStudent, IsActive: true}
	store.PutProfile(profile)

	return &guardEnv{store: store, resolver: resolver, guard: guard, profile: profile}
}

// withUser simulates Auth having run.
func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(CtxUserIDKey, userID)
		}
		c.Next()
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
