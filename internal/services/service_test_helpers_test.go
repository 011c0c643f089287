package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ecoles/schoolmanager/internal/database/testutil"
	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/permissions"
)

type serviceEnv struct {
	db       *gorm.DB
	store    *permissions.GormStore
	resolver *permissions.Resolver
	audit    *AuditService
	users    *UserService
	perms    *PermissionService
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := permissions.NewGormStore(db)
	require.NoError(t, err)
	_, err = permissions.Seed(context.Background(), store, false)
	require.NoError(t, err)

	resolver, err := permissions.NewResolver(store)
	require.NoError(t, err)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	users, err := NewUserService(db, audit)
	require.NoError(t, err)
	perms, err := NewPermissionService(store, resolver, audit)
	require.NoError(t, err)

	return &serviceEnv{db: db, store: store, resolver: resolver, audit: audit, users: users, perms: perms}
}

func (e *serviceEnv) createUser(t *testing.T, username, kind string) *models.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), CreateUserInput{
		Username: username,
		Password: "correct horse",
		FullName: username,
		Kind:     kind,
	})
	require.NoError(t, err)
	require.NotNil(t, user.Profile)
	return user
}
