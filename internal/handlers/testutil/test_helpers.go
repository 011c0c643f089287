package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ecoles/schoolmanager/internal/api"
	"github.com/ecoles/schoolmanager/internal/app"
	iauth "github.com/ecoles/schoolmanager/internal/auth"
	sharedtestutil "github.com/ecoles/schoolmanager/internal/database/testutil"
	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/internal/services"
	"github.com/ecoles/schoolmanager/pkg/response"
)

// DefaultPassword is the password of every account created through the Env.
const DefaultPassword = "StrongPassw0rd!"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	JWT      *iauth.JWTService
	Store    *permissions.GormStore
	Resolver *permissions.Resolver
	Users    *services.UserService
}

// NewEnv provisions a fresh handler test environment with migrations and the seed catalog applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	store, err := permissions.NewGormStore(db)
	require.NoError(t, err)
	_, err = permissions.Seed(context.Background(), store, false)
	require.NoError(t, err)
	resolver, err := permissions.NewResolver(store)
	require.NoError(t, err)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "test-suite-super-secret-key-32-bytes!!",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	router, err := api.NewRouter(api.Dependencies{DB: db, JWT: jwtSvc, Config: &app.Config{}})
	require.NoError(t, err)

	audit, err := services.NewAuditService(db)
	require.NoError(t, err)
	users, err := services.NewUserService(db, audit)
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Router:   router,
		JWT:      jwtSvc,
		Store:    store,
		Resolver: resolver,
		Users:    users,
	}
}

// CreateUser inserts an active account of the given profile kind holding roles.
func (e *Env) CreateUser(kind string, roles ...string) *models.User {
	e.T.Helper()
	ctx := context.Background()

	username := kind + "-" + uuid.NewString()[:8]
	user, err := e.Users.Create(ctx, services.CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: DefaultPassword,
		FullName: username,
		Kind:     kind,
	})
	require.NoError(e.T, err)

	for _, role := range roles {
		_, err := e.Resolver.AssignRole(ctx, user.Profile, role, nil)
		require.NoError(e.T, err)
	}
	return user
}

// LoginResult captures the JSON payload of POST /api/auth/login.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// Login authenticates and returns the access token.
func (e *Env) Login(username, password string) LoginResult {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result LoginResult
	DecodeInto(e.T, resp.Data, &result)
	require.NotEmpty(e.T, result.AccessToken)
	require.Equal(e.T, "Bearer", result.TokenType)
	require.Equal(e.T, username, result.User.Username)
	return result
}

// Token issues an access token for user without going through the login endpoint.
func (e *Env) Token(user *models.User) string {
	e.T.Helper()
	token, err := e.JWT.Issue(user.ID, user.Username)
	require.NoError(e.T, err)
	return token.AccessToken
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.T, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
