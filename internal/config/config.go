package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"sessionresults/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Backend    BackendConfig
	Server     ServerConfig
	Pages      PagesConfig
	Log        LogConfig
	DevBackend DevBackendConfig
}

// BackendConfig holds the feedback backend API settings
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
	// RenderWait bounds how long the page handler waits for initial fetches before rendering
	RenderWait time.Duration
}

// PagesConfig holds results page lifetime settings
type PagesConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// DevBackendConfig holds settings of the fake backend used in development
type DevBackendConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	backendConfig, err := loadBackendConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load backend configuration")
	}
	config.Backend = *backendConfig

	config.Server = *loadServerConfig()
	config.Pages = *loadPagesConfig()
	config.Log = LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")}
	config.DevBackend = LoadDevBackend()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadDevBackend reads the fake backend settings alone; it needs no BACKEND_URL
func LoadDevBackend() DevBackendConfig {
	return DevBackendConfig{Port: getEnvOrDefault("DEV_BACKEND_PORT", "8081")}
}

func loadBackendConfig() (*BackendConfig, error) {
	raw := os.Getenv("BACKEND_URL")
	if raw == "" {
		return nil, errors.ConfigInvalid("BACKEND_URL is required")
	}

	return &BackendConfig{
		URL:     strings.TrimRight(raw, "/"),
		Timeout: getEnvDurationOrDefault("BACKEND_TIMEOUT", 30*time.Second),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:       getEnvOrDefault("PORT", "8080"),
		RenderWait: getEnvDurationOrDefault("RENDER_WAIT", 1500*time.Millisecond),
	}
}

func loadPagesConfig() *PagesConfig {
	return &PagesConfig{
		TTL:           getEnvDurationOrDefault("PAGE_TTL", 30*time.Minute),
		SweepInterval: getEnvDurationOrDefault("PAGE_SWEEP_INTERVAL", time.Minute),
	}
}

func validateConfig(config *Config) error {
	u, err := url.Parse(config.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid("BACKEND_URL must be an absolute URL")
	}
	if config.Backend.Timeout <= 0 {
		return errors.ConfigInvalid("BACKEND_TIMEOUT must be positive")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	if config.Pages.TTL <= 0 || config.Pages.SweepInterval <= 0 {
		return errors.ConfigInvalid("PAGE_TTL and PAGE_SWEEP_INTERVAL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
