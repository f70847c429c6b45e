package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gripp-game/gripp-api/internal/api"
	"github.com/gripp-game/gripp-api/internal/config"
	"github.com/gripp-game/gripp-api/internal/factory"
	"github.com/gripp-game/gripp-api/internal/middleware"
	"github.com/gripp-game/gripp-api/internal/seed"
	"github.com/gripp-game/gripp-api/internal/services/auth"
)

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "gripp-server",
		Short:        "Gripp party game API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), configPath)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", os.Getenv("GRIPP_CONFIG"), "optional YAML config file (env GRIPP_CONFIG)")
	config.RegisterFlags(cmd.Flags(), os.Getenv)

	return cmd
}

func run(cfg *config.Config) error {
	logger, err := cfg.NewLogger(os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	authCfg := auth.DefaultConfig()
	authCfg.RequireEmail = cfg.RequireEmail
	authCfg.LoginIdentifier = auth.LoginIdentifier(cfg.LoginIdentifier)

	app, err := factory.New(ctx, factory.Config{
		DatabaseURL: cfg.DatabaseURL,
		AuthConfig:  authCfg,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	// Seed before accepting traffic
	catalog, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("load statement catalog: %w", err)
	}
	if err := app.Seeder(catalog).Run(ctx, cfg.Reset); err != nil {
		return fmt.Errorf("seed statements: %w", err)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigin = cfg.CORSOrigin

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(app.Router(cors), serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", factory.Scheme(cfg.DatabaseURL)),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
