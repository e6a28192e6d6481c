package core

import "context"

type ctxKey string

const (
	CtxKeyActorID   ctxKey = ctxKey("actorId")
	CtxKeyActorName ctxKey = ctxKey("actorName")
)

// ActorIDFromContext returns the authenticated actor id placed on the request
// context by the auth middleware.
func ActorIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(CtxKeyActorID).(int64)
	return id, ok
}
