package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the local development server the clinic front end runs on.
	DefaultBaseURL = "http://localhost:5173"
	// DefaultDialogTimeout bounds the wait for an outcome alert after submit.
	DefaultDialogTimeout = 3 * time.Second
)

// Supported browser backends.
const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
)

// TargetConfig holds the application under test and how the browser reaches it
type TargetConfig struct {
	BaseURL       string
	DialogTimeout time.Duration
	Headless      bool
	Driver        string
}

// LoadTargetConfig loads target configuration from environment variables
func LoadTargetConfig(getenv func(string) string) (*TargetConfig, error) {
	config := &TargetConfig{
		BaseURL:       strings.TrimRight(getenv("UIPROBE_BASE_URL"), "/"),
		DialogTimeout: DefaultDialogTimeout,
		Headless:      true,
		Driver:        strings.ToLower(getenv("UIPROBE_DRIVER")),
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if u, err := url.Parse(config.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("UIPROBE_BASE_URL must be an absolute URL, got %q", config.BaseURL)
	}

	if raw := getenv("UIPROBE_DIALOG_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid UIPROBE_DIALOG_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("UIPROBE_DIALOG_TIMEOUT must be positive, got %s", d)
		}
		config.DialogTimeout = d
	}

	if raw := getenv("UIPROBE_HEADLESS"); raw != "" {
		headless, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid UIPROBE_HEADLESS: %w", err)
		}
		config.Headless = headless
	}

	if config.Driver == "" {
		config.Driver = DriverPlaywright // Default to Playwright
	}
	if err := ValidateDriver(config.Driver); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateDriver reports whether name is a supported browser backend
func ValidateDriver(name string) error {
	switch name {
	case DriverPlaywright, DriverChromedp:
		return nil
	}
	return fmt.Errorf("unsupported driver %q (want %s or %s)", name, DriverPlaywright, DriverChromedp)
}

// URL joins a route such as "/register" onto the base URL
func (c *TargetConfig) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}
