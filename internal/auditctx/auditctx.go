package auditctx

import "context"

// Actor identifies who initiated the current request.
type Actor struct {
	UserID    string
	ProfileID string
	Username  string
	IPAddress string
}

type actorContextKey struct{}

// WithActor returns a derived context carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// WithProfile records the actor's resolved profile, keeping the rest of the actor intact.
func WithProfile(ctx context.Context, profileID string) context.Context {
	actor, _ := FromContext(ctx)
	actor.ProfileID = profileID
	return WithActor(ctx, actor)
}

// FromContext extracts previously stored actor metadata from the context.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
