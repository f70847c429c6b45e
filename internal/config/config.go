// Package config loads server configuration from flags, environment and an optional YAML file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Flag names, also used as koanf keys and YAML keys
const (
	FlagDatabaseURL     = "database-url"
	FlagHost            = "host"
	FlagPort            = "port"
	FlagReset           = "reset"
	FlagSeedFile        = "seed-file"
	FlagRequireEmail    = "require-email"
	FlagLoginIdentifier = "login-identifier"
	FlagLogLevel        = "log-level"
	FlagLogFormat       = "log-format"
	FlagCORSOrigin      = "cors-origin"
)

// Config holds server configuration
type Config struct {
	DatabaseURL     string `koanf:"database-url"`
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	Reset           bool   `koanf:"reset"`
	SeedFile        string `koanf:"seed-file"`
	RequireEmail    bool   `koanf:"require-email"`
	LoginIdentifier string `koanf:"login-identifier"`
	LogLevel        string `koanf:"log-level"`
	LogFormat       string `koanf:"log-format"`
	CORSOrigin      string `koanf:"cors-origin"`
}

// Default returns the built-in defaults, before environment overrides
func Default() Config {
	return Config{
		DatabaseURL:     "memory://",
		Port:            8080,
		LoginIdentifier: "username",
		LogLevel:        "info",
		LogFormat:       "json",
		CORSOrigin:      "*",
	}
}

// RegisterFlags defines every configuration flag on fs.
// Flag defaults come from the environment (as read by getenv) and fall back to Default.
func RegisterFlags(fs *pflag.FlagSet, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	d := Default()

	fs.String(FlagDatabaseURL, envString(getenv, "DATABASE_URL", d.DatabaseURL),
		"database URL: memory://, redis://, sqlite://<path> or postgres:// (env DATABASE_URL)")
	fs.String(FlagHost, envString(getenv, "HOST", d.Host), "listen host (env HOST)")
	fs.Int(FlagPort, envInt(getenv, "PORT", d.Port), "listen port (env PORT)")
	fs.Bool(FlagReset, envBool(getenv, "RESET_DATABASE", d.Reset),
		"wipe and reseed statements at startup (env RESET_DATABASE)")
	fs.String(FlagSeedFile, envString(getenv, "SEED_FILE", d.SeedFile),
		"statement catalog JSON file; empty uses the built-in catalog (env SEED_FILE)")
	fs.Bool(FlagRequireEmail, envBool(getenv, "REQUIRE_EMAIL", d.RequireEmail),
		"require an email address on registration (env REQUIRE_EMAIL)")
	fs.String(FlagLoginIdentifier, envString(getenv, "LOGIN_IDENTIFIER", d.LoginIdentifier),
		"login lookup key: username or email (env LOGIN_IDENTIFIER)")
	fs.String(FlagLogLevel, envString(getenv, "LOG_LEVEL", d.LogLevel),
		"log level: debug, info, warn or error (env LOG_LEVEL)")
	fs.String(FlagLogFormat, envString(getenv, "LOG_FORMAT", d.LogFormat),
		"log format: json or text (env LOG_FORMAT)")
	fs.String(FlagCORSOrigin, envString(getenv, "CORS_ORIGIN", d.CORSOrigin),
		"allowed CORS origin (env CORS_ORIGIN)")
}

// Load builds the configuration.
// Precedence, highest first: flags set on the command line, the YAML file at
// path (if non-empty), then flag defaults derived from the environment.
func Load(fs *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.LoginIdentifier = strings.ToLower(strings.TrimSpace(cfg.LoginIdentifier))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s is required", FlagDatabaseURL)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%s must be between 0 and 65535, got %d", FlagPort, c.Port)
	}
	if c.LoginIdentifier != "username" && c.LoginIdentifier != "email" {
		return fmt.Errorf("%s must be 'username' or 'email', got %q", FlagLoginIdentifier, c.LoginIdentifier)
	}
	if c.LoginIdentifier == "email" && !c.RequireEmail {
		return fmt.Errorf("%s=email requires %s", FlagLoginIdentifier, FlagRequireEmail)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("%s must be 'json' or 'text', got %q", FlagLogFormat, c.LogFormat)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewLogger builds the slog logger described by the configuration
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

// ParseLevel converts a level name to a slog.Level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%s must be debug, info, warn or error, got %q", FlagLogLevel, s)
	}
	return level, nil
}

func envString(getenv func(string) string, key, fallback string) string {
	if val := getenv(key); val != "" {
		return val
	}
	return fallback
}

func envInt(getenv func(string) string, key string, fallback int) int {
	if n, err := strconv.Atoi(getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envBool(getenv func(string) string, key string, fallback bool) bool {
	if b, err := strconv.ParseBool(getenv(key)); err == nil {
		return b
	}
	return fallback
}
