package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config aggregates client configuration loaded from environment variables.
type Config struct {
	Env              string
	LogLevel         slog.Level
	APIBase          string
	StateDir         string
	APITimeout       time.Duration
	InboxRefresh     time.Duration
	OptimisticAppend bool
	SandboxAddr      string
	MetricsAddr      string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:         getEnv("APP_ENV", "dev"),
		APIBase:     strings.TrimRight(getEnv("CMP_API_BASE", "http://localhost:4000/api"), "/"),
		StateDir:    getEnv("CMP_STATE_DIR", defaultStateDir()),
		SandboxAddr: getEnv("SANDBOX_ADDR", ":4000"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	level, err := parseLevelEnv("LOG_LEVEL", slog.LevelInfo)
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	timeout, err := parseDurationEnv("CMP_API_TIMEOUT", 0)
	if err != nil {
		return Config{}, err
	}
	if timeout < 0 {
		return Config{}, fmt.Errorf("invalid CMP_API_TIMEOUT duration: must not be negative")
	}
	cfg.APITimeout = timeout

	refresh, err := parseDurationEnv("INBOX_REFRESH_INTERVAL", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	if refresh <= 0 {
		return Config{}, fmt.Errorf("invalid INBOX_REFRESH_INTERVAL duration: must be positive")
	}
	cfg.InboxRefresh = refresh

	optimistic, err := parseBoolEnv("CHAT_OPTIMISTIC_APPEND", false)
	if err != nil {
		return Config{}, err
	}
	cfg.OptimisticAppend = optimistic

	if cfg.APIBase == "" {
		return Config{}, fmt.Errorf("CMP_API_BASE is required")
	}
	return cfg, nil
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".campusmarket"
	}
	return filepath.Join(home, ".campusmarket")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}

func parseLevelEnv(key string, def slog.Level) (slog.Level, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return def, fmt.Errorf("invalid %s level: %q", key, raw)
	}
	return level, nil
}
