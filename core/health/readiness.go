package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/appcore/core/logger"
)

// Readiness runs every check with the request context. It answers 200 READY
// if all pass and 503 otherwise; failures are logged.
func Readiness(log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				writeText(w, http.StatusServiceUnavailable, "NOT READY")
				return
			}
		}
		writeText(w, http.StatusOK, "READY")
	}
}
