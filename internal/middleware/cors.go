package middleware

import (
	"net/http"
	"strings"
)

// CORSConfig describes which cross-origin requests are allowed
type CORSConfig struct {
	// AllowedOrigin is "*" or a single origin such as https://gripp.example
	AllowedOrigin  string
	AllowedMethods []string
	AllowedHeaders []string
}

// DefaultCORSConfig allows any origin to call the JSON API
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigin:  "*",
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}
}

// CORS sets cross-origin headers and answers preflight requests with 204
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (cfg.AllowedOrigin == "*" || cfg.AllowedOrigin == origin) {
				w.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigin)
				if cfg.AllowedOrigin != "*" {
					w.Header().Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
