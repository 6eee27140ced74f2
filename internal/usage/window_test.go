package usage

import (
	"testing"

	"github.com/k-lindqvist/ctxwatch/internal/models"
)

func TestStaticWindow(t *testing.T) {
	tests := []struct {
		model  string
		engine models.Engine
		want   int64
	}{
		{"claude-sonnet-4-5", models.EngineClaude, 200_000},
		{"claude-sonnet-4-5-1m", models.EngineClaude, 1_000_000},
		{"", models.EngineClaude, 200_000},
		{"gpt-5.1-codex", models.EngineCodex, 128_000},
		{"gpt-4-turbo", models.EngineCodex, 128_000},
		{"gpt-4", models.EngineCodex, 8_192},
		{"", models.EngineCodex, 128_000},
		{"gemini-2.5-pro", models.EngineGemini, 1_048_576},
		{"gemini-2.5-flash-lite", models.EngineGemini, 1_000_000},
	}

	for _, tt := range tests {
		t.Run(string(tt.engine)+"/"+tt.model, func(t *testing.T) {
			if got := StaticWindow(tt.model, tt.engine); got != tt.want {
				t.Errorf("StaticWindow(%q, %s) = %d, want %d", tt.model, tt.engine, got, tt.want)
			}
		})
	}
}

func TestWindowOverride(t *testing.T) {
	t.Run("no codex metadata", func(t *testing.T) {
		messages := []*models.SessionMessage{msgWithUsage(10, 1)}
		if _, ok := WindowOverride(messages); ok {
			t.Error("expected no override")
		}
	})

	t.Run("most recent positive override wins", func(t *testing.T) {
		messages := []*models.SessionMessage{
			{Codex: &models.CodexMeta{ContextWindow: 128_000}},
			{Codex: &models.CodexMeta{ContextWindow: 272_000}},
			{Codex: &models.CodexMeta{}}, // zero, skipped
		}
		got, ok := WindowOverride(messages)
		if !ok || got != 272_000 {
			t.Errorf("got %d ok=%v, want 272000", got, ok)
		}
	})
}

type stubWindowCache map[string]int64

func (c stubWindowCache) Window(engine models.Engine, model string) (int64, bool) {
	w, ok := c[string(engine)+"/"+model]
	return w, ok
}

func TestResolverResolve(t *testing.T) {
	resolver := &Resolver{Cache: stubWindowCache{"claude/custom-model": 500_000}}

	t.Run("cache beats static table", func(t *testing.T) {
		got := resolver.Resolve(nil, "custom-model", models.EngineClaude)
		if got != 500_000 {
			t.Errorf("Resolve = %d, want cached 500000", got)
		}
	})

	t.Run("static table fallback", func(t *testing.T) {
		got := resolver.Resolve(nil, "claude-opus-4", models.EngineClaude)
		if got != 200_000 {
			t.Errorf("Resolve = %d, want 200000", got)
		}
	})

	t.Run("codex runtime override beats cache", func(t *testing.T) {
		r := &Resolver{Cache: stubWindowCache{"codex/gpt-5.1": 64_000}}
		messages := []*models.SessionMessage{
			{Codex: &models.CodexMeta{ContextWindow: 272_000}},
		}
		got := r.Resolve(messages, "gpt-5.1", models.EngineCodex)
		if got != 272_000 {
			t.Errorf("Resolve = %d, want runtime override 272000", got)
		}
	})

	t.Run("nil resolver cache", func(t *testing.T) {
		r := &Resolver{}
		if got := r.Resolve(nil, "gpt-5.1", models.EngineCodex); got != 128_000 {
			t.Errorf("Resolve = %d, want 128000", got)
		}
	})
}
