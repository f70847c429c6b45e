package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gripp-game/gripp-api/internal/api/apierr"
	"github.com/gripp-game/gripp-api/internal/middleware"
)

// Transport wraps the API router with recovery, request logging and CORS, outermost first.
// Unmatched routes and CORS preflights pass through all three.
func Transport(logger *slog.Logger, cors middleware.CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := middleware.CORS(cors)(next)
		h = middleware.Logging(logger)(h)
		return Recovery(logger)(h)
	}
}

// Recovery turns handler panics into the JSON INTERNAL_ERROR envelope
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
