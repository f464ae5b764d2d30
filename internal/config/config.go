// Package config loads and validates the bot configuration from the
// environment. A missing or placeholder credential is rejected here, at
// startup, before any generation attempt can begin.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TelegramToken string
	GeminiAPIKey  string

	LogLevel string
	Debug    bool

	PreferIPv4 bool

	DBPath        string
	TemplatesPath string

	JPEGQuality int
	MaxImageDim uint

	MediaGroupDebounce time.Duration
	MaxConcurrent      int
	MaxBatch           int
	PendingTTL         time.Duration
	RequestTimeout     time.Duration
	HTTPTimeout        time.Duration
	GeminiBaseURL      string
	GeminiAPIVersion   string
}

// placeholderValues are credential stand-ins that ship in env templates;
// treating them as real keys would fail on the first request with a
// confusing transport error instead of a clear setup error.
var placeholderValues = []string{
	"changeme",
	"your-api-key",
	"your_api_key",
	"your-token",
	"your_token",
	"xxx",
}

func Load() (Config, error) {
	cfg := Config{
		LogLevel:           strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:              getEnvBool("DEBUG", false),
		PreferIPv4:         getEnvBool("PREFER_IPV4", true),
		DBPath:             strings.TrimSpace(getEnv("DB_PATH", "data/cards.db")),
		TemplatesPath:      strings.TrimSpace(os.Getenv("TEMPLATES_PATH")),
		JPEGQuality:        getEnvInt("JPEG_QUALITY", 85),
		MaxImageDim:        uint(getEnvInt("MAX_IMAGE_DIM", 1024)),
		MediaGroupDebounce: time.Duration(getEnvInt("MEDIA_GROUP_DEBOUNCE_MS", 1200)) * time.Millisecond,
		MaxConcurrent:      getEnvInt("MAX_CONCURRENT", 4),
		MaxBatch:           getEnvInt("MAX_BATCH", 2),
		PendingTTL:         time.Duration(getEnvInt("PENDING_TTL_MINUTES", 30)) * time.Minute,
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 180)) * time.Second,
		HTTPTimeout:        time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		GeminiBaseURL:      strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiAPIVersion:   strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
	}

	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))

	switch {
	case cfg.TelegramToken == "":
		return Config{}, errors.New("TELEGRAM_BOT_TOKEN is required")
	case isPlaceholder(cfg.TelegramToken):
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is a placeholder value (%q)", cfg.TelegramToken)
	case cfg.GeminiAPIKey == "":
		return Config{}, errors.New("GEMINI_API_KEY is required")
	case isPlaceholder(cfg.GeminiAPIKey):
		return Config{}, fmt.Errorf("GEMINI_API_KEY is a placeholder value (%q)", cfg.GeminiAPIKey)
	}

	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 85
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxBatch < 1 {
		cfg.MaxBatch = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 180 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}

	return cfg, nil
}

func isPlaceholder(value string) bool {
	lowered := strings.ToLower(value)
	for _, p := range placeholderValues {
		if lowered == p {
			return true
		}
	}
	return strings.HasPrefix(lowered, "your-") || strings.HasPrefix(lowered, "your_")
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
