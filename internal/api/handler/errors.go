package handler

import (
	"log/slog"
	"net/http"

	"github.com/gripp-game/gripp-api/internal/api/apierr"
)

// writeError writes the failure envelope, logging server-side failures in full
func writeError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	apierr.WriteError(w, err)
}
