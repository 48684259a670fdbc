package api

import (
	"context"
	"net/http"
	"time"

	"github.com/joestump/bookmarks/internal/build"
	"github.com/joestump/bookmarks/internal/logger"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// healthz answers 200 when the database responds to a ping.
func healthz(db Pinger, schema func() (int64, error), log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			log.Error("health check failed", logger.Error(err))
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}

		resp := HealthResponse{Status: "ok", Version: build.Version}
		if schema != nil {
			if v, err := schema(); err == nil {
				resp.Schema = v
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
