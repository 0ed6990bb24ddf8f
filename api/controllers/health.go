package controllers

import (
	"context"
	"net/http"

	"github.com/priyamadhavan/gatekeeper-backend/api/responses"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/config"
	pkgerrors "github.com/priyamadhavan/gatekeeper-backend/pkg/errors"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gatekeeper-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the registry database answers a ping.
func HealthReady(cfg *config.Config, ping func(ctx context.Context) error, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gatekeeper-Env", cfg.App.Env)
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
