package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/backoffice/internal/backoffice"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

const actorHeader = "X-Actor-Id"

// Actor copies the upstream-resolved user id into the request context. The
// header is trusted as-is; authentication happens before this service.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := strings.TrimSpace(r.Header.Get(actorHeader))
			if actor == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := backoffice.WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithActor(ctx, actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
