package controllers

import (
	"context"
	"net/http"

	"github.com/vendorahq/vendora-backend/api/responses"
	"github.com/vendorahq/vendora-backend/pkg/config"
	"github.com/vendorahq/vendora-backend/pkg/db"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
	"github.com/vendorahq/vendora-backend/pkg/logger"
)

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Vendora-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the backing stores answer before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, cache redisPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Vendora-Env", cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
