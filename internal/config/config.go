package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN). This is the privileged (service-level)
	// connection: it bypasses row-level security, so it must never be handed
	// to request handlers other than the introspection query path.
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// AuthURL is the base URL of the hosted identity provider
	// (e.g. "https://abcdefgh.supabase.co")
	AuthURL string

	// AuthAnonKey is the provider's public API key. Identity verification
	// calls are made with this key so they never bypass the provider's own
	// checks. It is NOT the service-role credential.
	AuthAnonKey string

	// JWTSecret verifies the provider's HS256 access tokens when deriving a
	// session snapshot for the navigation guard.
	JWTSecret string

	// AllowedOrigin for cross-origin responses ("*" by default)
	AllowedOrigin string

	// Maximum database connection pool size
	MaxDBConnections int

	// Enable debug logging
	Debug bool
}

// Load reads configuration from environment variables with fallback defaults.
// Missing server-side secrets are a configuration error: the service cannot
// operate without them, so Load fails rather than letting handlers fail open.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerAddr:       getEnv("SERVER_ADDR", "localhost:8080"),
		AuthURL:          getEnv("AUTH_URL", ""),
		AuthAnonKey:      getEnv("AUTH_ANON_KEY", ""),
		JWTSecret:        getEnv("AUTH_JWT_SECRET", ""),
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "*"),
		MaxDBConnections: getEnvInt("MAX_DB_CONNECTIONS", 25),
		Debug:            getEnvBool("DEBUG", false),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AuthURL == "" {
		return nil, fmt.Errorf("AUTH_URL is required")
	}
	if cfg.AuthAnonKey == "" {
		return nil, fmt.Errorf("AUTH_ANON_KEY is required")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseBool(value); err == nil {
			return result
		}
	}
	return defaultValue
}
