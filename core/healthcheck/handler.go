// Package healthcheck provides HTTP handlers for liveness and readiness
// probes.
package healthcheck

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pagesmith/webcore/core/logger"
)

// Handler creates a health check handler that serves as a liveness or
// readiness probe depending on the provided dependency checks.
//
// With no checks it acts as a liveness probe and always answers 200 "ALIVE".
// With checks it acts as a readiness probe: each check runs in sequence and
// the first failure is logged and answered with 503.
//
// Example:
//
//	mux.Handle("/health/live", healthcheck.Handler(log))
//	mux.Handle("/health/ready", healthcheck.Handler(log,
//		redis.Healthcheck(client),
//	))
func Handler(log *slog.Logger, checks ...func(context.Context) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	})
}
