package permissions

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/pkg/logger"
)

// Requirement names a permission a protected operation needs.
type Requirement struct {
	Codename string
	Resource string
}

// Require is shorthand for a Requirement literal.
func Require(codename, resource string) Requirement {
	return Requirement{Codename: codename, Resource: resource}
}

// Operation is a unit of work executed on behalf of an authorised profile.
type Operation func(ctx context.Context, profile *models.Profile) error

// Guard enforces permission requirements in front of protected operations.
type Guard struct {
	resolver *Resolver
	profiles ProfileFinder
	log      *zap.Logger
}

// NewGuard constructs a guard that resolves profiles through profiles and decisions through
// resolver.
func NewGuard(resolver *Resolver, profiles ProfileFinder) (*Guard, error) {
	if resolver == nil {
		return nil, errors.New("access guard: resolver is required")
	}
	if profiles == nil {
		profiles = resolver.store
	}
	return &Guard{resolver: resolver, profiles: profiles, log: logger.WithModule("guard")}, nil
}

// Authorize resolves the profile of userID and checks it against reqs. Several requirements
// are alternatives: holding any one of them is enough. On failure it returns
// ErrAuthenticationRequired, ErrProfileNotFound or a *PermissionDeniedError naming the first
// requirement.
func (g *Guard) Authorize(ctx context.Context, userID string, reqs ...Requirement) (*models.Profile, error) {
	if len(reqs) == 0 {
		return nil, errors.New("access guard: at least one requirement is needed")
	}

	profile, err := g.Principal(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, req := range reqs {
		decision, err := g.resolver.Explain(ctx, profile, req.Codename, req.Resource)
		if err != nil {
			return nil, err
		}
		if decision.Allowed {
			return profile, nil
		}
		g.log.Debug("permission denied",
			zap.String("profile_id", profile.ID),
			zap.String("codename", req.Codename),
			zap.String("resource", req.Resource),
			zap.String("reason", string(decision.Reason)),
		)
	}

	return nil, &PermissionDeniedError{Codename: reqs[0].Codename, Resource: reqs[0].Resource}
}

// Principal resolves the profile of an authenticated user without checking permissions.
func (g *Guard) Principal(ctx context.Context, userID string) (*models.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrAuthenticationRequired
	}
	return g.profiles.FindProfileByUserID(ctx, userID)
}

// Protect wraps op so that it only runs for a principal satisfying one of reqs.
func (g *Guard) Protect(op Operation, reqs ...Requirement) func(ctx context.Context, userID string) error {
	return func(ctx context.Context, userID string) error {
		profile, err := g.Authorize(ctx, userID, reqs...)
		if err != nil {
			return err
		}
		return op(ctx, profile)
	}
}

// Resolver exposes the resolver used for decisions.
func (g *Guard) Resolver() *Resolver { return g.resolver }
