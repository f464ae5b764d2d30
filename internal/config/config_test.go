package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setValidCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:real-token")
	t.Setenv("GEMINI_API_KEY", "AIzaSy-real-key")
}

func TestLoadDefaults(t *testing.T) {
	setValidCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "data/cards.db", cfg.DBPath)
	assert.Empty(t, cfg.TemplatesPath)
	assert.Equal(t, 85, cfg.JPEGQuality)
	assert.Equal(t, uint(1024), cfg.MaxImageDim)
	assert.Equal(t, 1200*time.Millisecond, cfg.MediaGroupDebounce)
	assert.Equal(t, 4, cfg.MaxConcurrent)
	assert.Equal(t, 2, cfg.MaxBatch)
	assert.Equal(t, 30*time.Minute, cfg.PendingTTL)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.GeminiBaseURL)
	assert.Equal(t, "v1beta", cfg.GeminiAPIVersion)
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "AIzaSy-real-key")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")

	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:real-token")
	t.Setenv("GEMINI_API_KEY", "")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadRejectsPlaceholderCredentials(t *testing.T) {
	cases := []string{
		"changeme",
		"CHANGEME",
		"your-api-key",
		"your_token",
		"your-anything-else",
		"xxx",
	}
	for _, value := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("TELEGRAM_BOT_TOKEN", "123456:real-token")
			t.Setenv("GEMINI_API_KEY", value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "placeholder")
		})
	}
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	setValidCredentials(t)
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("JPEG_QUALITY", "60")
	t.Setenv("MAX_BATCH", "5")
	t.Setenv("PENDING_TTL_MINUTES", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, 60, cfg.JPEGQuality)
	assert.Equal(t, 5, cfg.MaxBatch)
	assert.Equal(t, 10*time.Minute, cfg.PendingTTL)
}

func TestLoadClampsBadNumbers(t *testing.T) {
	setValidCredentials(t)
	t.Setenv("JPEG_QUALITY", "150")
	t.Setenv("MAX_CONCURRENT", "0")
	t.Setenv("MAX_BATCH", "-3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 85, cfg.JPEGQuality)
	assert.Equal(t, 1, cfg.MaxConcurrent)
	assert.Equal(t, 1, cfg.MaxBatch)
}
