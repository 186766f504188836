package identity

import (
	"context"

	"github.com/botucare/clinic-backend/internal/clinical"
)

type contextKey string

const actorKey contextKey = "actor"

// WithActor attaches the authenticated actor to the context.
func WithActor(ctx context.Context, actor clinical.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated actor if present.
func ActorFromContext(ctx context.Context) (clinical.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(clinical.Actor)
	return actor, ok
}
