package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabasePath     string
	BaseURL          string
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
	SessionSecret    string
	LogLevel         string
	Port             string
	Timezone         string
	CarpoolFile      string
	MaintenanceCron  string
	MetricsEnabled   bool
	DevLogin         bool
}

func Load() (Config, error) {
	config := Config{
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/command-center.db"),
		BaseURL:          envOrDefault("BASE_URL", "http://localhost:8080"),
		OIDCIssuer:       os.Getenv("OIDC_ISSUER"),
		OIDCClientID:     os.Getenv("OIDC_CLIENT_ID"),
		OIDCClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		OIDCRedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		Port:             envOrDefault("PORT", "8080"),
		Timezone:         os.Getenv("TIMEZONE"),
		CarpoolFile:      os.Getenv("CARPOOL_FILE"),
		MaintenanceCron:  envOrDefault("MAINTENANCE_CRON", "15 3 * * *"),
		MetricsEnabled:   true,
	}

	if value := os.Getenv("METRICS_ENABLED"); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("parsing METRICS_ENABLED: %w", err)
		}
		config.MetricsEnabled = enabled
	}

	if value := os.Getenv("DEV_LOGIN"); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("parsing DEV_LOGIN: %w", err)
		}
		config.DevLogin = enabled
	}

	if config.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}

	if _, err := config.Location(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Location is the zone used to decide which calendar day is "today".
func (config Config) Location() (*time.Location, error) {
	if config.Timezone == "" {
		return time.Local, nil
	}
	location, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading TIMEZONE %q: %w", config.Timezone, err)
	}
	return location, nil
}

func (config Config) SlogLevel() slog.Level {
	switch strings.ToLower(config.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
