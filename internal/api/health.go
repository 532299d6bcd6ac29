package api

import (
	"context"
	"net/http"

	"github.com/easel-ai/easel/internal/log"
)

// Pinger is the database liveness capability. *pgxpool.Pool satisfies
// it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// health is a liveness probe for Docker/Kubernetes.
func health(logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}

// readiness pings the database. 503 until the pool answers.
func readiness(db Pinger, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			writeError(w, http.StatusServiceUnavailable, "not_ready", "database pool not configured", logger)
			return
		}
		if err := db.Ping(r.Context()); err != nil {
			logger.Error("readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "not_ready", "database not ready", logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}
