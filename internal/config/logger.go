package config

import (
	"fmt"
	"strconv"
	"strings"
)

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level      string
	Format     string
	LogFile    string
	MaxSizeMB  int
	MaxBackups int
}

// LoadLoggerConfig loads logging configuration from environment variables
func LoadLoggerConfig(getenv func(string) string) (*LoggerConfig, error) {
	config := &LoggerConfig{
		Level:      strings.ToLower(getenv("LOG_LEVEL")),
		Format:     strings.ToLower(getenv("LOG_FORMAT")),
		LogFile:    getenv("LOG_FILE"),
		MaxSizeMB:  10,
		MaxBackups: 3,
	}

	if config.Level == "" {
		config.Level = "info"
	}
	if config.Format == "" {
		config.Format = "console"
	}
	if config.Format != "console" && config.Format != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be console or json, got %q", config.Format)
	}

	if raw := getenv("LOG_MAX_SIZE_MB"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("LOG_MAX_SIZE_MB must be a positive integer, got %q", raw)
		}
		config.MaxSizeMB = n
	}

	return config, nil
}
