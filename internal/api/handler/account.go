package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gripp-game/gripp-api/internal/api/apierr"
	"github.com/gripp-game/gripp-api/internal/api/middleware"
	"github.com/gripp-game/gripp-api/internal/api/request"
	"github.com/gripp-game/gripp-api/internal/api/response"
	"github.com/gripp-game/gripp-api/internal/metrics"
	"github.com/gripp-game/gripp-api/internal/services/auth"
)

// AccountHandler handles registration, login and profile endpoints
type AccountHandler struct {
	authService *auth.Service
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *auth.Service, m *metrics.Metrics, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		authService: authService,
		metrics:     m,
		logger:      logger,
	}
}

// Register handles POST /register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, r, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	view, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		h.metrics.RecordRegistration(metrics.ResultFailure)
		writeError(h.logger, w, r, err)
		return
	}

	h.metrics.RecordRegistration(metrics.ResultSuccess)
	response.JSON(w, http.StatusCreated, response.AccountFromView(view))
}

// Login handles POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, r, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	byEmail := h.authService.Config().LoginIdentifier == auth.LoginByEmail
	view, err := h.authService.Login(r.Context(), req.LoginIdentifier(byEmail), req.Password)
	if err != nil {
		h.metrics.RecordLogin(metrics.ResultFailure)
		writeError(h.logger, w, r, err)
		return
	}

	h.metrics.RecordLogin(metrics.ResultSuccess)
	response.JSON(w, http.StatusOK, response.AccountFromView(view))
}

// Profile handles GET /profile
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	response.JSON(w, http.StatusOK, response.ProfileFromView(auth.NewProfileView(account)))
}
