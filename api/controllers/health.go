package controllers

import (
	"context"
	"net/http"

	"github.com/Vjossaab/commercify-client/api/responses"
	"github.com/Vjossaab/commercify-client/internal/session"
	"github.com/Vjossaab/commercify-client/pkg/config"
	pkgerrors "github.com/Vjossaab/commercify-client/pkg/errors"
	"github.com/Vjossaab/commercify-client/pkg/logger"
)

// Pinger is any backing store that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Commercify-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once the session is mounted and the configured
// snapshot store answers. Nil pingers are skipped so that either backend
// can be absent.
func HealthReady(cfg *config.Config, logg *logger.Logger, sess *session.Session, stores ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Commercify-Env", cfg.App.Env)

		if sess != nil && !sess.Mounted() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "session not mounted"))
			return
		}
		for _, store := range stores {
			if store == nil {
				continue
			}
			if err := store.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot store unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
