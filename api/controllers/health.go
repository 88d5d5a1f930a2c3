package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/pkg/config"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is anything /health/ready should probe.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Backoffice-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes every configured dependency. Nil pingers are skipped so
// a deployment without a database or redis still reports ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Backoffice-Env", cfg.App.Env)

		checks := map[string]string{}
		for name, pinger := range deps {
			if pinger == nil {
				checks[name] = "disabled"
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			err := pinger.Ping(ctx)
			cancel()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").WithDetails(map[string]string{"dependency": name}))
				return
			}
			checks[name] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
