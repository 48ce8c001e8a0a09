package config

import (
	"os"
	"strings"
	"testing"
)

// setupTestEnv sets up environment variables for testing
func setupTestEnv(t *testing.T) func() {
	// Save original env vars
	origVars := map[string]string{
		"PORT":                        os.Getenv("PORT"),
		"MAX_ROOMS":                   os.Getenv("MAX_ROOMS"),
		"ALLOWED_ORIGINS":             os.Getenv("ALLOWED_ORIGINS"),
		"GO_ENV":                      os.Getenv("GO_ENV"),
		"LOG_LEVEL":                   os.Getenv("LOG_LEVEL"),
		"LANDING_URL":                 os.Getenv("LANDING_URL"),
		"DEVELOPMENT_MODE":            os.Getenv("DEVELOPMENT_MODE"),
		"OTEL_EXPORTER_OTLP_ENDPOINT": os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	// Clear all env vars
	for key := range origVars {
		os.Unsetenv(key)
	}

	// Return cleanup function
	return func() {
		for key, val := range origVars {
			if val != "" {
				os.Setenv(key, val)
			} else {
				os.Unsetenv(key)
			}
		}
	}
}

func TestValidateEnv_ValidConfiguration(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("PORT", "8080")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected PORT to be '8080', got '%s'", cfg.Port)
	}
	if cfg.MaxRooms != DefaultMaxRooms {
		t.Errorf("Expected MAX_ROOMS to default to %d, got %d", DefaultMaxRooms, cfg.MaxRooms)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("Expected ALLOWED_ORIGINS to default to localhost, got %v", cfg.AllowedOrigins)
	}
	if cfg.GoEnv != "production" {
		t.Errorf("Expected GO_ENV to default to 'production', got '%s'", cfg.GoEnv)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LOG_LEVEL to default to 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.LandingURL != DefaultLandingURL {
		t.Errorf("Expected LANDING_URL to default to '%s', got '%s'", DefaultLandingURL, cfg.LandingURL)
	}
	if cfg.DevelopmentMode {
		t.Errorf("Expected DEVELOPMENT_MODE to default to false")
	}
	if cfg.OtelEndpoint != "" {
		t.Errorf("Expected OTEL endpoint to default to empty, got '%s'", cfg.OtelEndpoint)
	}
}

func TestValidateEnv_MissingPort(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("Expected error for missing PORT, got nil")
	}
	if !strings.Contains(err.Error(), "PORT is required") {
		t.Errorf("Expected error message about PORT, got: %v", err)
	}
}

func TestValidateEnv_InvalidPort(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	for _, bad := range []string{"0", "65536", "-1", "notaport"} {
		os.Setenv("PORT", bad)
		if _, err := ValidateEnv(); err == nil {
			t.Errorf("Expected error for PORT=%q", bad)
		}
	}
}

func TestValidateEnv_MaxRooms(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("PORT", "8080")
	os.Setenv("MAX_ROOMS", "500000")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.MaxRooms != 500000 {
		t.Errorf("Expected MAX_ROOMS to be 500000, got %d", cfg.MaxRooms)
	}

	for _, bad := range []string{"0", "-5", "many"} {
		os.Setenv("MAX_ROOMS", bad)
		if _, err := ValidateEnv(); err == nil {
			t.Errorf("Expected error for MAX_ROOMS=%q", bad)
		}
	}
}

func TestValidateEnv_AllowedOriginsList(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("PORT", "8080")
	os.Setenv("ALLOWED_ORIGINS", "https://meet.example.com, https://staging.example.com ,")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("Expected 2 origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.AllowedOrigins[0] != "https://meet.example.com" || cfg.AllowedOrigins[1] != "https://staging.example.com" {
		t.Errorf("Origins not trimmed correctly: %v", cfg.AllowedOrigins)
	}
}

func TestValidateEnv_OtelEndpoint(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("PORT", "8080")
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.OtelEndpoint != "collector:4317" {
		t.Errorf("Expected endpoint to be kept, got '%s'", cfg.OtelEndpoint)
	}

	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "not-an-endpoint")
	if _, err := ValidateEnv(); err == nil {
		t.Error("Expected error for malformed OTEL endpoint")
	}
}

func TestValidateEnv_CollectsMultipleErrors(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("PORT", "notaport")
	os.Setenv("MAX_ROOMS", "zero")

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "PORT") || !strings.Contains(err.Error(), "MAX_ROOMS") {
		t.Errorf("Expected both failures reported, got: %v", err)
	}
}

func TestValidateEnv_DevelopmentMode(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("PORT", "8080")
	os.Setenv("DEVELOPMENT_MODE", "true")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !cfg.DevelopmentMode {
		t.Error("Expected DEVELOPMENT_MODE to be true")
	}
}

func TestIsValidHostPort(t *testing.T) {
	valid := []string{"localhost:4317", "collector.svc:443", "10.0.0.1:65535"}
	for _, addr := range valid {
		if !isValidHostPort(addr) {
			t.Errorf("Expected %q to be valid", addr)
		}
	}

	invalid := []string{"", "localhost", ":4317", "host:", "host:0", "host:notaport", "a:b:c"}
	for _, addr := range invalid {
		if isValidHostPort(addr) {
			t.Errorf("Expected %q to be invalid", addr)
		}
	}
}
