package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("CTXWATCH_DB_PATH", "")
	t.Setenv("CTXWATCH_MODEL_CACHE_PATH", "")
	t.Setenv("CTXWATCH_CLAUDE_DIR", "")
	t.Setenv("CTXWATCH_CODEX_DIR", "")
	t.Setenv("CTXWATCH_GEMINI_DIR", "")
	t.Setenv("CTXWATCH_POLL_INTERVAL", "")
	t.Setenv("CODEX_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.PollInterval != defaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, defaultPollInterval)
	}
	if cfg.ClaudeDir != filepath.Join(tmp, ".claude", "projects") {
		t.Errorf("ClaudeDir = %q", cfg.ClaudeDir)
	}
	if cfg.CodexDir != filepath.Join(tmp, ".codex", "sessions") {
		t.Errorf("CodexDir = %q", cfg.CodexDir)
	}
}

func TestLoadOverrides(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("CTXWATCH_DB_PATH", filepath.Join(tmp, "custom.db"))
	t.Setenv("CTXWATCH_POLL_INTERVAL", "30s")
	t.Setenv("CODEX_HOME", filepath.Join(tmp, "codex-home"))
	t.Setenv("CTXWATCH_CODEX_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DatabasePath != filepath.Join(tmp, "custom.db") {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.CodexDir != filepath.Join(tmp, "codex-home", "sessions") {
		t.Errorf("CodexDir = %q, want CODEX_HOME honored", cfg.CodexDir)
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"45s", 45 * time.Second},
		{"2m", 2 * time.Minute},
		{"10", 10 * time.Second},
		{"garbage", defaultPollInterval},
		{"", defaultPollInterval},
	}

	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.value)
		if got := getEnvDuration("TEST_DURATION", defaultPollInterval); got != tt.want {
			t.Errorf("getEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestEngineDirs(t *testing.T) {
	cfg := &Config{ClaudeDir: "/a", CodexDir: "/b", GeminiDir: "/c"}
	dirs := cfg.EngineDirs()
	if dirs["claude"] != "/a" || dirs["codex"] != "/b" || dirs["gemini"] != "/c" {
		t.Errorf("EngineDirs() = %v", dirs)
	}
}
