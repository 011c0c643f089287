package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecoles/schoolmanager/internal/app"
	"github.com/ecoles/schoolmanager/internal/database/testutil"
	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/internal/services"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()

	cfg := &app.Config{}
	cfg.Server.LogLevel = "error"
	cfg.Server.RateLimit.Requests = 100
	cfg.Server.RateLimit.Window = time.Minute
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "schoolmanager.sqlite")
	cfg.Auth.JWT.Secret = "bootstrap-test-secret"
	cfg.Auth.JWT.Issuer = "schoolmanager"
	cfg.Bootstrap.SeedPermissions = true
	cfg.Maintenance.AuditRetentionDays = 30
	cfg.Maintenance.AuditSchedule = "@daily"
	cfg.Maintenance.GrantSchedule = "@hourly"
	return cfg
}

func TestBootstrapRuntimeServesHealth(t *testing.T) {
	cfg := testConfig(t)

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.NotNil(t, stack.DB)
	require.NotNil(t, stack.Router)
	require.NotNil(t, stack.RateStore)
	require.Nil(t, stack.Redis)

	rec := httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, stack.DB.Model(&models.Permission{}).Count(&count).Error)
	require.Equal(t, int64(len(permissions.CatalogPermissions)), count)
}

func TestBootstrapRuntimeSkipsSeedWhenDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bootstrap.SeedPermissions = false

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	var count int64
	require.NoError(t, stack.DB.Model(&models.Permission{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestBootstrapRuntimeUsesRedisWhenAvailable(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Cache.Redis.Enabled = true
	cfg.Cache.Redis.Address = mr.Addr()

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.NotNil(t, stack.Redis)

	rec := httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, mr.Keys())
}

func TestBootstrapRuntimeFallsBackWithoutRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Redis.Enabled = true
	cfg.Cache.Redis.Address = "127.0.0.1:1"
	cfg.Cache.Redis.Timeout = 200 * time.Millisecond

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.Nil(t, stack.Redis)
	require.NotNil(t, stack.RateStore)
}

func TestBootstrapRuntimeRejectsBadSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Maintenance.GrantSchedule = "not a schedule"

	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestShutdownNilStack(t *testing.T) {
	var stack *runtimeStack
	stack.Shutdown(context.Background(), zap.NewNop())
}

func TestRunInitPermissionsDryRun(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"init-permissions", "--dry-run"}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "permissions:")
	require.Contains(t, out.String(), models.RoleAdmin)
}

func TestRunUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"explode"}, &out)
	require.Error(t, err)
	require.Contains(t, out.String(), "Commands:")
}

func TestRunCreateUserRequiresCredentials(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"create-user", "--username", "ada"}, &out)
	require.ErrorContains(t, err, "--password")
}

func TestAdminServicesAssignRoles(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := permissions.NewGormStore(db)
	require.NoError(t, err)
	_, err = permissions.Seed(context.Background(), store, false)
	require.NoError(t, err)

	svcs, err := newAdminServices(db)
	require.NoError(t, err)

	user, err := svcs.users.Create(context.Background(), services.CreateUserInput{
		Username: "mr.smith",
		Password: "s3cret-pass",
		Kind:     models.ProfileKindTeacher,
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, svcs.assignRoles(context.Background(), &out, user.Profile.ID, []string{"teacher"}))
	require.Contains(t, out.String(), "assigned role teacher")

	view, err := svcs.permissions.ProfilePermissions(context.Background(), user.Profile.ID)
	require.NoError(t, err)
	require.NotEmpty(t, view.Effective)

	err = svcs.assignRoles(context.Background(), &out, user.Profile.ID, []string{"ghost"})
	require.Error(t, err)
}
