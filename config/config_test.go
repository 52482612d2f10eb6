package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "BlogPlatform", cfg.AppName)
	assert.Equal(t, "http://localhost:8080/api", cfg.Client.BaseURL)
	assert.Equal(t, "http://localhost:8080", cfg.Client.ImageBaseURL)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.Equal(t, "8080", cfg.Mock.Port)
	assert.Equal(t, 24*time.Hour, cfg.Mock.TokenDuration)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("BLOG_APP_NAME", "MyBlog")
	t.Setenv("BLOG_API_BASE_URL", "https://blog.example.com/api/")
	t.Setenv("BLOG_IMAGE_BASE_URL", "https://img.example.com/")
	t.Setenv("BLOG_HTTP_TIMEOUT", "30s")
	t.Setenv("BLOG_STORAGE_PATH", "/tmp/blog/session.json")
	t.Setenv("BLOG_MOCK_PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "MyBlog", cfg.AppName)
	// Trailing slashes are trimmed so path joining stays predictable.
	assert.Equal(t, "https://blog.example.com/api", cfg.Client.BaseURL)
	assert.Equal(t, "https://img.example.com", cfg.Client.ImageBaseURL)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "/tmp/blog/session.json", cfg.Storage.Path)
	assert.Equal(t, "9090", cfg.Mock.Port)
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	t.Setenv("BLOG_HTTP_TIMEOUT", "not-a-duration")
	t.Setenv("BLOG_MOCK_TOKEN_DURATION", "also-bad")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLOG_HTTP_TIMEOUT")
	assert.Contains(t, err.Error(), "BLOG_MOCK_TOKEN_DURATION")
}
