// Package models defines data structures and domain types.
package models

// Engine identifies which AI coding assistant produced a session.
type Engine string

const (
	// EngineClaude is the Claude Code engine.
	EngineClaude Engine = "claude"
	// EngineCodex is the OpenAI Codex engine.
	EngineCodex Engine = "codex"
	// EngineGemini is the Gemini CLI engine.
	EngineGemini Engine = "gemini"
)

// ParseEngine maps a tag string to an Engine. Unknown or empty tags fall
// back to Claude, which uses the generic usage semantics.
func ParseEngine(tag string) Engine {
	switch tag {
	case string(EngineCodex):
		return EngineCodex
	case string(EngineGemini):
		return EngineGemini
	default:
		return EngineClaude
	}
}

// String returns the engine tag.
func (e Engine) String() string {
	return string(e)
}

// Engines lists all supported engines in display order.
func Engines() []Engine {
	return []Engine{EngineClaude, EngineCodex, EngineGemini}
}
