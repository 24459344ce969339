package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Exchange rates
	RateBaseURL string
	RateTimeout time.Duration

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/gagyebu.db"),
		RateBaseURL:  getEnv("RATE_BASE_URL", ""),
		RateTimeout:  getEnvDuration("RATE_TIMEOUT", 5*time.Second),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.RateBaseURL != "" {
		if parsed, err := url.Parse(c.RateBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid rate base URL '%s': %v", c.RateBaseURL, err))
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid rate base URL scheme '%s': must be http or https", parsed.Scheme))
		}
	}

	if c.RateTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid rate timeout %v: must be at least 1 second", c.RateTimeout))
	} else if c.RateTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid rate timeout %v: must be at most 1 minute", c.RateTimeout))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
