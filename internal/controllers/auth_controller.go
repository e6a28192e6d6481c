package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/core"
)

type AuthController struct {
	Actors ActorAuthenticator
}

func NewBaseController(actors ActorAuthenticator) *AuthController {
	return &AuthController{Actors: actors}
}

// RequireAuth authenticates the caller from the X-Actor-Id and X-API-Key
// headers and puts the actor on the request context.
func (ac *AuthController) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := strconv.ParseInt(r.Header.Get("X-Actor-Id"), 10, 64)
		apiKey := r.Header.Get("X-API-Key")
		if err != nil || apiKey == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		actor, err := ac.Actors.Authenticate(r.Context(), actorID, apiKey)
		if err != nil || actor == nil {
			slog.WarnContext(r.Context(), "Authentication failed", "actor_id", actorID, "error", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), core.CtxKeyActorID, actor.ID)
		ctx = context.WithValue(ctx, core.CtxKeyActorName, actor.Name)
		next(w, r.WithContext(ctx))
	}
}
