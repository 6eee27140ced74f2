// Package models defines data structures and domain types.
package models

// NormalizedUsage is the canonical four-field usage record the rest of
// the system operates on. All fields are non-negative; missing or
// malformed raw fields normalize to zero.
type NormalizedUsage struct {
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
}

// IsZero reports whether no field carries any tokens.
func (u NormalizedUsage) IsZero() bool {
	return u.InputTokens == 0 && u.OutputTokens == 0 &&
		u.CacheCreationTokens == 0 && u.CacheReadTokens == 0
}

// Add returns the field-wise sum of two records.
func (u NormalizedUsage) Add(other NormalizedUsage) NormalizedUsage {
	return NormalizedUsage{
		InputTokens:         u.InputTokens + other.InputTokens,
		OutputTokens:        u.OutputTokens + other.OutputTokens,
		CacheCreationTokens: u.CacheCreationTokens + other.CacheCreationTokens,
		CacheReadTokens:     u.CacheReadTokens + other.CacheReadTokens,
	}
}

// ContextTokens returns the tokens currently occupying the context
// window. Output tokens are excluded: generated content has not been
// read back into the window yet.
func (u NormalizedUsage) ContextTokens() int64 {
	return u.InputTokens + u.CacheCreationTokens + u.CacheReadTokens
}

// UsageLevel classifies context occupancy into display severities.
type UsageLevel int

const (
	// LevelLow means plenty of context headroom.
	LevelLow UsageLevel = iota
	// LevelMedium means usage is becoming noticeable.
	LevelMedium
	// LevelHigh means the window is filling up.
	LevelHigh
	// LevelCritical means compaction or a new session is imminent.
	LevelCritical
)

// String returns the display name for a usage level.
func (l UsageLevel) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ContextWindowUsage is the derived, display-ready usage record for one
// session. Purely computed; never persisted as-is.
type ContextWindowUsage struct {
	CurrentTokens       int64
	ContextWindowSize   int64
	Percentage          float64
	Breakdown           NormalizedUsage
	Level               UsageLevel
	HasData             bool
	FormattedPercentage string
	FormattedTokens     string
}

// SessionUsage pairs a session with its computed usage for display.
type SessionUsage struct {
	Session *Session
	Usage   ContextWindowUsage
}
