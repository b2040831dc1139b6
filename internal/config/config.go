package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Defaults used when the environment does not set a value.
const (
	DefaultLevelsDir = "levels"
	DefaultLogLevel  = "info"
	DefaultModel     = "gemini-2.5-flash"
)

// Config holds the application configuration.
type Config struct {
	LevelsDir    string
	LogLevel     zapcore.Level
	GeminiAPIKey string
	Model        string
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	level, err := zapcore.ParseLevel(getenv("LEVELFORGE_LOG_LEVEL", DefaultLogLevel))
	if err != nil {
		return nil, fmt.Errorf("LEVELFORGE_LOG_LEVEL: %w", err)
	}

	return &Config{
		LevelsDir:    getenv("LEVELFORGE_LEVELS_DIR", DefaultLevelsDir),
		LogLevel:     level,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Model:        getenv("LEVELFORGE_MODEL", DefaultModel),
	}, nil
}

// RequireGemini returns an error unless an API key is configured.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
