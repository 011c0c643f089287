package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/internal/services"
	"github.com/ecoles/schoolmanager/pkg/logger"
)

func runInitPermissions(ctx context.Context, args []string, out io.Writer) error {
	var (
		configPath string
		force      bool
		dryRun     bool
	)
	fs := newFlagSet("init-permissions", out, &configPath)
	fs.BoolVar(&force, "force", false, "refresh descriptions and flags of existing entries")
	fs.BoolVar(&dryRun, "dry-run", false, "seed into memory and report what would be registered")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if dryRun {
		report, err := permissions.Seed(ctx, permissions.NewMemoryStore(), force)
		if err != nil {
			return err
		}
		printSeedReport(out, report)
		return nil
	}

	cfg, _, err := prepareConfig(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync() // best effort

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, logger.WithModule("bootstrap"))

	store, err := permissions.NewGormStore(db)
	if err != nil {
		return err
	}
	report, err := permissions.Seed(ctx, store, force)
	if err != nil {
		return err
	}
	printSeedReport(out, report)
	return nil
}

func printSeedReport(out io.Writer, report *permissions.SeedReport) {
	fmt.Fprintf(out, "permissions: %d created, %d updated\n", report.PermissionsCreated, report.PermissionsUpdated)
	fmt.Fprintf(out, "roles: %d created, %d updated\n", report.RolesCreated, report.RolesUpdated)

	roles := make([]string, 0, len(report.RoleGrants))
	for codename := range report.RoleGrants {
		roles = append(roles, codename)
	}
	sort.Strings(roles)
	for _, codename := range roles {
		fmt.Fprintf(out, "  %-28s %d permissions\n", codename, report.RoleGrants[codename])
	}
}

func runCreateUser(ctx context.Context, args []string, out io.Writer) error {
	var (
		configPath string
		input      services.CreateUserInput
		roles      []string
	)
	fs := newFlagSet("create-user", out, &configPath)
	fs.StringVar(&input.Username, "username", "", "login name (required)")
	fs.StringVar(&input.Password, "password", "", "initial password (required)")
	fs.StringVar(&input.Email, "email", "", "contact email")
	fs.StringVar(&input.FullName, "full-name", "", "display name of the profile")
	fs.StringVar(&input.Kind, "kind", models.ProfileKindStaff, "profile kind: staff, teacher, student or parent")
	fs.StringSliceVar(&roles, "role", nil, "role codename to assign (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		fs.Usage()
		return fmt.Errorf("--username and --password are required")
	}

	return withAdminServices(ctx, configPath, func(a *adminServices) error {
		user, err := a.users.Create(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "created user %s (profile %s)\n", user.Username, user.Profile.ID)
		return a.assignRoles(ctx, out, user.Profile.ID, roles)
	})
}

func runAssignRole(ctx context.Context, args []string, out io.Writer) error {
	var (
		configPath string
		username   string
		roles      []string
	)
	fs := newFlagSet("assign-role", out, &configPath)
	fs.StringVar(&username, "username", "", "account to update (required)")
	fs.StringSliceVar(&roles, "role", nil, "role codename to assign (repeatable, required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(username) == "" || len(roles) == 0 {
		fs.Usage()
		return fmt.Errorf("--username and --role are required")
	}

	return withAdminServices(ctx, configPath, func(a *adminServices) error {
		user, err := a.users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if user.Profile == nil {
			return fmt.Errorf("user %s has no profile", user.Username)
		}
		return a.assignRoles(ctx, out, user.Profile.ID, roles)
	})
}

type adminServices struct {
	users       *services.UserService
	permissions *services.PermissionService
}

func (a *adminServices) assignRoles(ctx context.Context, out io.Writer, profileID string, roles []string) error {
	for _, role := range roles {
		if _, err := a.permissions.AssignRole(ctx, profileID, role); err != nil {
			return fmt.Errorf("assign role %s: %w", role, err)
		}
		fmt.Fprintf(out, "assigned role %s\n", role)
	}
	return nil
}

// withAdminServices opens the configured database and runs fn against the account services.
func withAdminServices(ctx context.Context, configPath string, fn func(*adminServices) error) error {
	cfg, _, err := prepareConfig(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync() // best effort
	log := logger.WithModule("bootstrap")

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	svcs, err := newAdminServices(db)
	if err != nil {
		return err
	}
	if err := fn(svcs); err != nil {
		log.Error("admin command failed", zap.Error(err))
		return err
	}
	return nil
}

func newAdminServices(db *gorm.DB) (*adminServices, error) {
	store, err := permissions.NewGormStore(db)
	if err != nil {
		return nil, err
	}
	resolver, err := permissions.NewResolver(store)
	if err != nil {
		return nil, err
	}
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	permSvc, err := services.NewPermissionService(store, resolver, audit)
	if err != nil {
		return nil, err
	}
	users, err := services.NewUserService(db, audit)
	if err != nil {
		return nil, err
	}
	return &adminServices{users: users, permissions: permSvc}, nil
}

