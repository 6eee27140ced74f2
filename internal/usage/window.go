package usage

import (
	"strings"

	"github.com/k-lindqvist/ctxwatch/internal/models"
)

// Default context windows per engine, used when the model identifier
// matches nothing more specific.
const (
	claudeDefaultWindow int64 = 200_000
	codexDefaultWindow  int64 = 128_000
	geminiDefaultWindow int64 = 1_048_576
)

// WindowCache supplies user-pinned or runtime-learned window sizes
// ahead of the static table.
type WindowCache interface {
	Window(engine models.Engine, model string) (int64, bool)
}

// StaticWindow maps a model identifier and engine to a context-window
// size in tokens. Matching is by substring: model identifiers carry
// revision suffixes that would defeat exact lookup.
func StaticWindow(model string, engine models.Engine) int64 {
	model = strings.ToLower(model)

	switch engine {
	case models.EngineCodex:
		if strings.Contains(model, "gpt-4") {
			if strings.Contains(model, "turbo") || strings.Contains(model, "128k") {
				return 128_000
			}
			return 8_192
		}
		return codexDefaultWindow
	case models.EngineGemini:
		if strings.Contains(model, "flash-lite") {
			return 1_000_000
		}
		return geminiDefaultWindow
	default:
		// Long-context Claude variants
		if strings.Contains(model, "1m") {
			return 1_000_000
		}
		return claudeDefaultWindow
	}
}

// WindowOverride scans the transcript backward for a runtime-reported
// context window. The running Codex process can report an effective
// window that differs from the static default, e.g. by account tier;
// the most recent positive report wins.
func WindowOverride(messages []*models.SessionMessage) (int64, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg == nil || msg.Codex == nil {
			continue
		}
		if msg.Codex.ContextWindow > 0 {
			return msg.Codex.ContextWindow, true
		}
	}
	return 0, false
}

// Resolver resolves context-window sizes, consulting an optional cache
// before the static table.
type Resolver struct {
	Cache WindowCache
}

// Resolve returns the context-window size for the session. For Codex a
// runtime-reported override beats everything; the cache beats the
// static table.
func (r *Resolver) Resolve(messages []*models.SessionMessage, model string, engine models.Engine) int64 {
	if engine == models.EngineCodex {
		if window, ok := WindowOverride(messages); ok {
			return window
		}
	}
	if r != nil && r.Cache != nil {
		if window, ok := r.Cache.Window(engine, model); ok && window > 0 {
			return window
		}
	}
	return StaticWindow(model, engine)
}
