// Package config provides configuration management for the blog client.
// It handles loading and validation of configuration values from environment
// variables, with support for default values and collective error reporting.
// Everything the client needs to talk to a deployment of the blog API (base
// URL, image host, timeouts, where to keep the session on disk) comes from
// here, so the same binary can target different environments without code
// changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ClientConfig holds the settings for the outbound HTTP gateway.
type ClientConfig struct {
	// BaseURL is the root of the blog REST API, e.g. "http://localhost:8080/api".
	BaseURL string
	// ImageBaseURL is the host that serves uploaded post images.
	ImageBaseURL string
	// Timeout is the fixed per-request timeout. Requests that exceed it fail
	// as network errors; there is no retry.
	Timeout time.Duration
}

// StorageConfig holds settings for the durable client-side session storage.
type StorageConfig struct {
	// Path is the JSON file holding the keyed storage entries (token, user, theme).
	Path string
}

// MockConfig holds settings for the bundled in-memory API server, which is
// only used for local development and tests.
type MockConfig struct {
	Port      string
	JWTSecret string
	// TokenDuration is the lifetime of tokens issued by the mock server.
	TokenDuration time.Duration
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	AppName string
	Client  *ClientConfig
	Storage *StorageConfig
	Mock    *MockConfig
}

// Helper function to get an optional environment variable with a default
// string value. Provides sensible defaults if an optional configuration is
// not explicitly set.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as
// time.Duration. Uses defaultValue if not set; appends an error if parsing
// fails. `time.ParseDuration` expects a string like "10s", "1m30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// defaultStoragePath returns the session file location under the user's
// config directory, falling back to the working directory when the home
// cannot be resolved.
func defaultStoragePath(appName string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", strings.ToLower(appName)+"_session.json")
	}
	return filepath.Join(dir, strings.ToLower(appName), "session.json")
}

// LoadConfig creates and returns an AppConfig by reading and validating
// environment variables. It collects all errors encountered during loading
// and returns a single aggregated error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	appName := getOptionalEnv("BLOG_APP_NAME", "BlogPlatform")

	// Gateway configuration. The defaults match a local deployment of the
	// blog API.
	clientConfig := &ClientConfig{
		BaseURL:      strings.TrimRight(getOptionalEnv("BLOG_API_BASE_URL", "http://localhost:8080/api"), "/"),
		ImageBaseURL: strings.TrimRight(getOptionalEnv("BLOG_IMAGE_BASE_URL", "http://localhost:8080"), "/"),
		Timeout:      getOptionalEnvDuration("BLOG_HTTP_TIMEOUT", 10*time.Second, &errors),
	}

	storageConfig := &StorageConfig{
		Path: getOptionalEnv("BLOG_STORAGE_PATH", defaultStoragePath(appName)),
	}

	// Mock server configuration. The secret only guards locally issued dev
	// tokens; it is never used to verify tokens from a real deployment.
	mockConfig := &MockConfig{
		Port:          getOptionalEnv("BLOG_MOCK_PORT", "8080"),
		JWTSecret:     getOptionalEnv("BLOG_MOCK_JWT_SECRET", "dev-only-secret"),
		TokenDuration: getOptionalEnvDuration("BLOG_MOCK_TOKEN_DURATION", 24*time.Hour, &errors),
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		AppName: appName,
		Client:  clientConfig,
		Storage: storageConfig,
		Mock:    mockConfig,
	}, nil
}
