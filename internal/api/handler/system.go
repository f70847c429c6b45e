package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gripp-game/gripp-api/internal/api/apierr"
	"github.com/gripp-game/gripp-api/internal/api/response"
)

// Pinger checks that the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the help and health endpoints
type SystemHandler struct {
	pinger Pinger
	routes []response.Route
	logger *slog.Logger
}

// NewSystemHandler creates a handler that documents routes and checks pinger
func NewSystemHandler(pinger Pinger, routes []response.Route, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{
		pinger: pinger,
		routes: routes,
		logger: logger,
	}
}

// Help handles GET /
func (h *SystemHandler) Help(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Help{
		Name:   "gripp-api",
		Routes: h.routes,
	})
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		apierr.WriteError(w, apierr.NewUnavailableError())
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: "ok"})
}
