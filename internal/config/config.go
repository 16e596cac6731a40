package config

import (
	"fmt"
	"os"
	"strings"

	"efatura/internal/logger"
)

// Environment tags accepted by the portal client.
const (
	EnvTest       = "test"
	EnvProduction = "production"
)

// Credential placeholder sentinels shipped in the sample .env file. When the
// configured credentials still equal these, the service runs in mock mode.
const (
	PlaceholderUsername = "your_gib_username_here"
	PlaceholderPassword = "your_gib_password_here"
)

type Config struct {
	// GİB e-Arşiv portal credentials (VKN/TCKN username + password).
	// Both optional: missing credentials select the mock backend.
	GIBUsername    string
	GIBPassword    string
	GIBEnvironment string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		GIBUsername:    getEnv("GIB_USERNAME", ""),
		GIBPassword:    getEnv("GIB_PASSWORD", ""),
		GIBEnvironment: getEnv("GIB_ENVIRONMENT", EnvTest),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:  getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:      getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.GIBEnvironment != EnvTest && c.GIBEnvironment != EnvProduction {
		return fmt.Errorf("GIB_ENVIRONMENT must be %q or %q, got %q", EnvTest, EnvProduction, c.GIBEnvironment)
	}
	return nil
}

// HasCredentials reports whether real portal credentials are configured.
// Blank values and the sample-file placeholders both count as absent.
func (c *Config) HasCredentials() bool {
	username := strings.TrimSpace(c.GIBUsername)
	password := strings.TrimSpace(c.GIBPassword)

	return username != "" &&
		password != "" &&
		username != PlaceholderUsername &&
		password != PlaceholderPassword
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
