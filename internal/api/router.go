package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gripp-game/gripp-api/internal/api/apierr"
	"github.com/gripp-game/gripp-api/internal/api/handler"
	"github.com/gripp-game/gripp-api/internal/api/middleware"
	"github.com/gripp-game/gripp-api/internal/api/response"
	"github.com/gripp-game/gripp-api/internal/metrics"
	transport "github.com/gripp-game/gripp-api/internal/middleware"
	"github.com/gripp-game/gripp-api/internal/services/auth"
	"github.com/gripp-game/gripp-api/internal/services/statements"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	StatementService *statements.Service
	Pinger           handler.Pinger
	Metrics          *metrics.Metrics
	CORS             transport.CORSConfig
}

// Routes lists every documented endpoint, served by GET /
var Routes = []response.Route{
	{Method: http.MethodGet, Path: "/", Description: "This help"},
	{Method: http.MethodGet, Path: "/health", Description: "Service and storage health"},
	{Method: http.MethodGet, Path: "/metrics", Description: "Prometheus metrics"},
	{Method: http.MethodPost, Path: "/register", Description: "Create an account: {username, password, email?}"},
	{Method: http.MethodPost, Path: "/login", Description: "Log in: {identifier, password}"},
	{Method: http.MethodGet, Path: "/profile", Description: "Profile of the account owning the Authorization token"},
	{Method: http.MethodGet, Path: "/statements", Description: "All statements in random order"},
	{Method: http.MethodGet, Path: "/statements-only", Description: "Statement texts in random order"},
	{Method: http.MethodGet, Path: "/statements/id", Description: "All statement ids"},
	{Method: http.MethodGet, Path: "/random", Description: "One random statement"},
	{Method: http.MethodGet, Path: "/statements/levels", Description: "All statements sorted by level"},
	{Method: http.MethodGet, Path: "/statements/levels/{level}", Description: "Statements of one level"},
	{Method: http.MethodGet, Path: "/statements/statementId/{statementId}", Description: "One statement by id"},
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := mux.NewRouter()

	// Create handlers
	accountHandler := handler.NewAccountHandler(cfg.AuthService, cfg.Metrics, cfg.Logger)
	statementHandler := handler.NewStatementHandler(cfg.StatementService, cfg.Logger)
	systemHandler := handler.NewSystemHandler(cfg.Pinger, Routes, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	r.Use(cfg.Metrics.Middleware)

	// System routes
	r.HandleFunc("/", systemHandler.Help).Methods(http.MethodGet)
	r.HandleFunc("/health", systemHandler.Health).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	// Account routes
	r.HandleFunc("/register", accountHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", accountHandler.Login).Methods(http.MethodPost)

	// Protected account routes
	r.Handle("/profile", authMiddleware(http.HandlerFunc(accountHandler.Profile))).Methods(http.MethodGet)

	// Statement routes
	r.HandleFunc("/statements", statementHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/statements-only", statementHandler.Texts).Methods(http.MethodGet)
	r.HandleFunc("/statements/id", statementHandler.IDs).Methods(http.MethodGet)
	r.HandleFunc("/random", statementHandler.Random).Methods(http.MethodGet)
	r.HandleFunc("/statements/levels", statementHandler.SortedByLevel).Methods(http.MethodGet)
	r.HandleFunc("/statements/levels/{level}", statementHandler.ByLevel).Methods(http.MethodGet)
	r.HandleFunc("/statements/statementId/{statementId}", statementHandler.Get).Methods(http.MethodGet)

	// Route middleware skips the fallbacks, so they are counted here
	r.NotFoundHandler = cfg.Metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	}))
	r.MethodNotAllowedHandler = cfg.Metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewMethodNotAllowedError())
	}))

	return middleware.Transport(cfg.Logger, cfg.CORS)(r)
}
