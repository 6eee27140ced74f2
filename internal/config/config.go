// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath   string
	ModelCachePath string
	ClaudeDir      string
	CodexDir       string
	GeminiDir      string
	PollInterval   time.Duration
}

// Default values
const (
	defaultPollInterval = 5 * time.Second
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations; first hit wins per key.
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}

	home, _ := os.UserHomeDir()
	stateDir := filepath.Join(home, ".config", "ctxwatch")

	cfg := &Config{
		DatabasePath:   getEnvString("CTXWATCH_DB_PATH", filepath.Join(stateDir, "history.db")),
		ModelCachePath: getEnvString("CTXWATCH_MODEL_CACHE_PATH", filepath.Join(stateDir, "model-windows.json")),
		ClaudeDir:      getEnvString("CTXWATCH_CLAUDE_DIR", filepath.Join(home, ".claude", "projects")),
		CodexDir:       getEnvString("CTXWATCH_CODEX_DIR", defaultCodexDir(home)),
		GeminiDir:      getEnvString("CTXWATCH_GEMINI_DIR", filepath.Join(home, ".gemini", "tmp")),
		PollInterval:   getEnvDuration("CTXWATCH_POLL_INTERVAL", defaultPollInterval),
	}

	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultCodexDir honors CODEX_HOME the way the Codex CLI itself does.
func defaultCodexDir(home string) string {
	if codexHome := os.Getenv("CODEX_HOME"); codexHome != "" {
		return filepath.Join(codexHome, "sessions")
	}
	return filepath.Join(home, ".codex", "sessions")
}

// EngineDirs returns the configured transcript directory per engine tag.
func (c *Config) EngineDirs() map[string]string {
	return map[string]string{
		"claude": c.ClaudeDir,
		"codex":  c.CodexDir,
		"gemini": c.GeminiDir,
	}
}

// getEnvPaths returns candidate .env file locations in priority order.
func getEnvPaths() []string {
	paths := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "ctxwatch", ".env"),
			filepath.Join(home, ".ctxwatch", ".env"),
		)
	}
	return paths
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms", or bare seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
