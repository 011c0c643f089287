package security

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	iauth "github.com/ecoles/schoolmanager/internal/auth"
	"github.com/ecoles/schoolmanager/internal/models"
)

// CheckStatus captures the outcome of a posture check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

const (
	minSecretBytes         = 32
	recommendedSecretBytes = 48
	maxRecommendedTokenTTL = 24 * time.Hour
)

// Check contains the result of a single verification.
type Check struct {
	ID          string      `json:"id"`
	Status      CheckStatus `json:"status"`
	Message     string      `json:"message"`
	Remediation string      `json:"remediation,omitempty"`
	Details     any         `json:"details,omitempty"`
}

// Result aggregates all checks with a per-status summary.
type Result struct {
	CheckedAt time.Time      `json:"checked_at"`
	Checks    []Check        `json:"checks"`
	Summary   map[string]int `json:"summary"`
}

// Options carries the deployment settings the review looks at.
type Options struct {
	Production bool
}

// Reviewer evaluates the authorization posture of a deployment: who can administer it, how
// tokens are signed and whether grants have piled up outside of roles.
type Reviewer struct {
	db   *gorm.DB
	jwt  *iauth.JWTService
	opts Options
	now  func() time.Time
}

// NewReviewer constructs the reviewer. Missing dependencies degrade their checks to warnings.
func NewReviewer(db *gorm.DB, jwt *iauth.JWTService, opts Options) *Reviewer {
	return &Reviewer{db: db, jwt: jwt, opts: opts, now: time.Now}
}

// WithClock overrides the clock used in results.
func (r *Reviewer) WithClock(clock func() time.Time) {
	if clock != nil {
		r.now = clock
	}
}

// Run executes every check.
func (r *Reviewer) Run(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	checks := []Check{
		r.checkAdministrators(ctx),
		r.checkJWTSecret(),
		r.checkTokenTTL(),
		r.checkDirectGrants(ctx),
		r.checkTransport(),
	}

	summary := map[string]int{
		string(StatusPass): 0,
		string(StatusWarn): 0,
		string(StatusFail): 0,
	}
	for _, check := range checks {
		summary[string(check.Status)]++
	}

	return Result{
		CheckedAt: r.now().UTC(),
		Checks:    checks,
		Summary:   summary,
	}
}

func (r *Reviewer) checkAdministrators(ctx context.Context) Check {
	const id = "administrator_assigned"
	if r.db == nil {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "Database unavailable, unable to confirm an administrator exists.",
			Remediation: "Ensure database connectivity before running the review.",
		}
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RoleAssignment{}).
		Joins("JOIN roles ON roles.id = role_assignments.role_id").
		Joins("JOIN profiles ON profiles.id = role_assignments.profile_id").
		Where("roles.codename = ? AND roles.is_active = ?", models.RoleAdmin, true).
		Where("role_assignments.is_active = ? AND profiles.is_active = ?", true, true).
		Count(&count).Error
	if err != nil {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Could not count administrators: %v", err),
			Remediation: "Retry after resolving database errors.",
		}
	}

	if count == 0 {
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     "No active profile holds the admin role.",
			Remediation: "Run `schoolmanager-server assign-role --username <user> --role admin`.",
		}
	}

	return Check{
		ID:      id,
		Status:  StatusPass,
		Message: "Administrator present.",
		Details: map[string]any{"count": count},
	}
}

func (r *Reviewer) checkJWTSecret() Check {
	const id = "jwt_secret_strength"
	if r.jwt == nil {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "JWT service not initialised, unable to assess the signing secret.",
			Remediation: "Initialise the JWT service with a strong secret.",
		}
	}

	length := r.jwt.SecretLength()
	switch {
	case length == 0:
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     "Missing JWT signing secret.",
			Remediation: fmt.Sprintf("Provide a random signing secret of at least %d bytes.", minSecretBytes),
		}
	case length < minSecretBytes:
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     fmt.Sprintf("JWT signing secret is too short (%d bytes).", length),
			Remediation: fmt.Sprintf("Use a randomly generated secret of at least %d bytes.", minSecretBytes),
			Details:     map[string]any{"length": length},
		}
	case length < recommendedSecretBytes:
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("JWT signing secret is %d bytes. Consider %d+ bytes.", length, recommendedSecretBytes),
			Remediation: "Increase the length of SCHOOLMANAGER_AUTH_JWT_SECRET.",
			Details:     map[string]any{"length": length},
		}
	default:
		return Check{
			ID:      id,
			Status:  StatusPass,
			Message: fmt.Sprintf("JWT signing secret length is %d bytes.", length),
			Details: map[string]any{"length": length},
		}
	}
}

func (r *Reviewer) checkTokenTTL() Check {
	const id = "access_token_ttl"
	if r.jwt == nil {
		return Check{
			ID:      id,
			Status:  StatusWarn,
			Message: "JWT service not initialised, unable to evaluate token lifetime.",
		}
	}

	ttl := r.jwt.AccessTokenTTL()
	if ttl > maxRecommendedTokenTTL {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Access token TTL (%s) exceeds %s.", ttl, maxRecommendedTokenTTL),
			Remediation: "Shorten SCHOOLMANAGER_AUTH_JWT_ACCESS_TOKEN_TTL so revoked grants stop being usable sooner.",
			Details:     map[string]any{"ttl": ttl.String()},
		}
	}

	return Check{
		ID:      id,
		Status:  StatusPass,
		Message: fmt.Sprintf("Access token TTL is %s.", ttl),
		Details: map[string]any{"ttl": ttl.String()},
	}
}

// checkDirectGrants flags profiles that carry allow grants on top of their roles. Many of them
// usually means a role is missing from the catalog.
func (r *Reviewer) checkDirectGrants(ctx context.Context) Check {
	const id = "direct_allow_grants"
	if r.db == nil {
		return Check{
			ID:      id,
			Status:  StatusWarn,
			Message: "Database unavailable, unable to count direct grants.",
		}
	}

	var profiles int64
	err := r.db.WithContext(ctx).
		Model(&models.DirectGrant{}).
		Where("granted = ? AND is_active = ?", true, true).
		Distinct("profile_id").
		Count(&profiles).Error
	if err != nil {
		return Check{
			ID:      id,
			Status:  StatusWarn,
			Message: fmt.Sprintf("Could not count direct grants: %v", err),
		}
	}

	details := map[string]any{"profiles": profiles}
	if profiles > 0 {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("%d profile(s) hold direct allow grants.", profiles),
			Remediation: "Review GET /api/profiles/:id/permissions and move recurring grants into a role.",
			Details:     details,
		}
	}
	return Check{ID: id, Status: StatusPass, Message: "No direct allow grants outside roles.", Details: details}
}

func (r *Reviewer) checkTransport() Check {
	const id = "production_transport"
	if !r.opts.Production {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "Server runs in development mode; HTTPS redirects and HSTS are disabled.",
			Remediation: "Set SCHOOLMANAGER_SERVER_PRODUCTION=true behind TLS.",
		}
	}
	return Check{ID: id, Status: StatusPass, Message: "HTTPS redirects and HSTS are enforced."}
}
