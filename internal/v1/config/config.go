// Package config validates the process environment into a typed Config
// before anything else starts. All failures are collected and reported
// together so a broken deployment surfaces every problem at once.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// DefaultMaxRooms bounds the room registry when MAX_ROOMS is unset.
const DefaultMaxRooms = 2500

// DefaultLandingURL is where clients of destroyed rooms are pointed.
const DefaultLandingURL = "/landing.html"

// Config holds validated environment configuration
type Config struct {
	// Required variables
	Port string

	// Optional variables with defaults
	MaxRooms       int
	AllowedOrigins []string
	GoEnv          string
	LogLevel       string
	LandingURL     string

	DevelopmentMode bool

	// Tracing is enabled only when an OTLP endpoint is configured.
	OtelEndpoint string
}

// ValidateEnv validates all environment variables and returns a Config object.
// Returns an error if any required variable is missing or invalid.
func ValidateEnv() (*Config, error) {
	cfg := &Config{}
	var errors []string

	// Required: PORT (valid port number)
	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		errors = append(errors, "PORT is required")
	} else {
		port, err := strconv.Atoi(cfg.Port)
		if err != nil || port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got '%s')", cfg.Port))
		}
	}

	// Optional: MAX_ROOMS (defaults to DefaultMaxRooms)
	cfg.MaxRooms = DefaultMaxRooms
	if raw := os.Getenv("MAX_ROOMS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errors = append(errors, fmt.Sprintf("MAX_ROOMS must be a positive integer (got '%s')", raw))
		} else {
			cfg.MaxRooms = n
		}
	}

	// Optional: ALLOWED_ORIGINS (comma-separated, defaults to localhost dev origin)
	cfg.AllowedOrigins = splitOrigins(os.Getenv("ALLOWED_ORIGINS"))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// Optional: GO_ENV (defaults to "production")
	cfg.GoEnv = getEnvOrDefault("GO_ENV", "production")

	// Optional: LOG_LEVEL (defaults to "info")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Optional: LANDING_URL (defaults to the bundled landing page)
	cfg.LandingURL = getEnvOrDefault("LANDING_URL", DefaultLandingURL)

	cfg.DevelopmentMode = os.Getenv("DEVELOPMENT_MODE") == "true"

	// Optional: OTEL_EXPORTER_OTLP_ENDPOINT (format: host:port)
	cfg.OtelEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if cfg.OtelEndpoint != "" && !isValidHostPort(cfg.OtelEndpoint) {
		errors = append(errors, fmt.Sprintf("OTEL_EXPORTER_OTLP_ENDPOINT must be in format 'host:port' (got '%s')", cfg.OtelEndpoint))
	}

	// If there are validation errors, return them
	if len(errors) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	// Log validated configuration
	logValidatedConfig(cfg)

	return cfg, nil
}

// splitOrigins parses a comma-separated origin list, dropping empty entries.
func splitOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

// isValidHostPort checks if a string is in the format "host:port"
func isValidHostPort(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 {
		return false
	}

	// Validate port is a number
	port, err := strconv.Atoi(parts[1])
	if err != nil || port < 1 || port > 65535 {
		return false
	}

	// Validate host is not empty
	if parts[0] == "" {
		return false
	}

	return true
}

// logValidatedConfig logs the validated configuration
func logValidatedConfig(cfg *Config) {
	slog.Info("✅ Environment configuration validated successfully")
	slog.Info("Configuration",
		"port", cfg.Port,
		"max_rooms", cfg.MaxRooms,
		"allowed_origins", strings.Join(cfg.AllowedOrigins, ","),
		"go_env", cfg.GoEnv,
		"log_level", cfg.LogLevel,
		"landing_url", cfg.LandingURL,
		"development_mode", cfg.DevelopmentMode,
		"otel_endpoint", cfg.OtelEndpoint,
	)
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
