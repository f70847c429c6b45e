package factory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gripp-game/gripp-api/internal/api"
	"github.com/gripp-game/gripp-api/internal/dependencies/clock"
	"github.com/gripp-game/gripp-api/internal/dependencies/random"
	"github.com/gripp-game/gripp-api/internal/metrics"
	"github.com/gripp-game/gripp-api/internal/middleware"
	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/seed"
	"github.com/gripp-game/gripp-api/internal/services/auth"
	"github.com/gripp-game/gripp-api/internal/services/statements"
	"github.com/gripp-game/gripp-api/internal/storage"
	"github.com/gripp-game/gripp-api/internal/storage/memory"
	"github.com/gripp-game/gripp-api/internal/storage/postgres"
	redisstorage "github.com/gripp-game/gripp-api/internal/storage/redis"
	"github.com/gripp-game/gripp-api/internal/storage/retry"
	"github.com/gripp-game/gripp-api/internal/storage/sqlite"
)

// Database URL schemes
const (
	SchemeMemory     = "memory"
	SchemeRedis      = "redis"
	SchemeRediss     = "rediss"
	SchemeSQLite     = "sqlite"
	SchemePostgres   = "postgres"
	SchemePostgreSQL = "postgresql"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Hasher auth.PasswordHasher

	// Services
	AuthService      *auth.Service
	StatementService *statements.Service
	Metrics          *metrics.Metrics

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// DatabaseURL selects the storage backend by scheme.
	// If empty, defaults to memory://
	DatabaseURL string
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// RedisConfig overrides pool settings for redis URLs (optional)
	RedisConfig *redisstorage.Config
	// RetryConfig controls retries of persistent backends (optional)
	// If nil, retry.DefaultConfig() is used
	RetryConfig *retry.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	authCfg := cfg.AuthConfig
	if authCfg == (auth.Config{}) {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), auth.NewBcryptHasher(), authCfg, logger), nil
}

// Scheme returns the lowercased scheme of a database URL
func Scheme(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return ""
	}
	return strings.ToLower(scheme)
}

// OpenStorage connects to the backend selected by the database URL scheme.
// Persistent backends are wrapped in the retrying decorator.
func OpenStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	databaseURL := cfg.DatabaseURL
	if databaseURL == "" {
		databaseURL = "memory://"
	}

	var (
		store storage.Storage
		err   error
	)
	switch Scheme(databaseURL) {
	case SchemeMemory:
		return memory.New(), nil
	case SchemeRedis, SchemeRediss:
		redisCfg := redisstorage.DefaultConfig()
		if cfg.RedisConfig != nil {
			redisCfg = *cfg.RedisConfig
		}
		redisCfg.URL = databaseURL
		store, err = redisstorage.New(redisCfg)
	case SchemeSQLite:
		store, err = sqlite.New(ctx, sqlite.PathFromURL(databaseURL))
	case SchemePostgres, SchemePostgreSQL:
		store, err = postgres.New(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database URL scheme %q: use memory://, redis://, sqlite:// or postgres://", Scheme(databaseURL))
	}
	if err != nil {
		return nil, err
	}

	retryCfg := retry.DefaultConfig()
	if cfg.RetryConfig != nil {
		retryCfg = *cfg.RetryConfig
	}
	return retry.New(store, retryCfg), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	hasher auth.PasswordHasher,
	authCfg auth.Config,
	logger *slog.Logger,
) *App {
	return &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		Hasher:           hasher,
		AuthService:      auth.New(store, hasher, clk, rnd, logger, authCfg),
		StatementService: statements.New(store, rnd, logger),
		Metrics:          metrics.New(),
		logger:           logger,
	}
}

// Seeder returns a seeder writing catalog into the app's storage
func (a *App) Seeder(catalog []model.Statement) *seed.Seeder {
	return seed.NewSeeder(a.Storage, catalog, a.logger)
}

// Router builds the HTTP handler for the app
func (a *App) Router(cors middleware.CORSConfig) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:           a.logger,
		AuthService:      a.AuthService,
		StatementService: a.StatementService,
		Pinger:           a.Storage,
		Metrics:          a.Metrics,
		CORS:             cors,
	})
}

// Close releases storage resources
func (a *App) Close() error {
	return a.Storage.Close()
}
