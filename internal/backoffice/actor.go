package backoffice

import (
	"context"
	"strings"
)

type actorKey struct{}

// WithActor records who is performing the operation. The identity is resolved
// upstream and is not verified here.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, strings.TrimSpace(actor))
}

// ActorFrom returns the actor stored on ctx, or "".
func ActorFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
