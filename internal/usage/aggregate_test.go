package usage

import (
	"testing"

	"github.com/k-lindqvist/ctxwatch/internal/models"
)

func TestComputeExcludesOutputTokens(t *testing.T) {
	messages := []*models.SessionMessage{
		{
			Usage: models.RawUsage{
				"input_tokens":                100.0,
				"cache_creation_input_tokens": 20.0,
				"cache_read_input_tokens":     10.0,
				"output_tokens":               500.0,
			},
		},
	}

	result := Compute(messages, "claude-sonnet-4-5", models.EngineClaude, &Resolver{})
	if result.CurrentTokens != 130 {
		t.Errorf("CurrentTokens = %d, want 130 (output excluded)", result.CurrentTokens)
	}
	if result.Breakdown.OutputTokens != 500 {
		t.Errorf("Breakdown.OutputTokens = %d, want 500", result.Breakdown.OutputTokens)
	}
}

func TestComputePercentageClamp(t *testing.T) {
	messages := []*models.SessionMessage{
		{Usage: models.RawUsage{"input_tokens": 1500.0}},
	}

	resolver := &Resolver{Cache: stubWindowCache{"claude/tiny": 1000}}
	result := Compute(messages, "tiny", models.EngineClaude, resolver)
	if result.Percentage != 100 {
		t.Errorf("Percentage = %v, want 100 (clamped)", result.Percentage)
	}
	if result.Level != models.LevelCritical {
		t.Errorf("Level = %s, want critical", result.Level)
	}
}

func TestPercentOfWindow(t *testing.T) {
	tests := []struct {
		name            string
		current, window int64
		want            float64
	}{
		{"normal", 500, 1000, 50},
		{"clamped above window", 1500, 1000, 100},
		{"zero window", 100, 0, 0},
		{"negative window", 100, -5, 0},
		{"empty", 0, 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := percentOfWindow(tt.current, tt.window); got != tt.want {
				t.Errorf("percentOfWindow(%d, %d) = %v, want %v", tt.current, tt.window, got, tt.want)
			}
		})
	}
}

func TestComputeEmptyMessages(t *testing.T) {
	result := Compute(nil, "gpt-5.1-codex", models.EngineCodex, &Resolver{})

	if result.HasData {
		t.Error("HasData = true, want false")
	}
	if result.CurrentTokens != 0 {
		t.Errorf("CurrentTokens = %d, want 0", result.CurrentTokens)
	}
	if result.ContextWindowSize != 128_000 {
		t.Errorf("ContextWindowSize = %d, want resolved 128000", result.ContextWindowSize)
	}
	if result.FormattedTokens != "0 / 128.0K" {
		t.Errorf("FormattedTokens = %q, want \"0 / 128.0K\"", result.FormattedTokens)
	}
}

func TestComputeNoUsableData(t *testing.T) {
	messages := []*models.SessionMessage{
		{Role: "user"},
		{Usage: models.RawUsage{"input_tokens": "garbage"}},
	}

	result := Compute(messages, "claude-sonnet-4-5", models.EngineClaude, &Resolver{})
	if result.HasData {
		t.Error("HasData = true, want false for unusable payloads")
	}
	if result.ContextWindowSize != 200_000 {
		t.Errorf("ContextWindowSize = %d, want 200000", result.ContextWindowSize)
	}
}

func TestComputeFormatting(t *testing.T) {
	messages := []*models.SessionMessage{
		{Usage: models.RawUsage{"input_tokens": 50_000.0}},
	}

	result := Compute(messages, "claude-sonnet-4-5", models.EngineClaude, &Resolver{})
	if result.FormattedPercentage != "25.0%" {
		t.Errorf("FormattedPercentage = %q, want \"25.0%%\"", result.FormattedPercentage)
	}
	if result.FormattedTokens != "50.0K / 200.0K" {
		t.Errorf("FormattedTokens = %q", result.FormattedTokens)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		percentage float64
		want       models.UsageLevel
	}{
		{0, models.LevelLow},
		{49.9, models.LevelLow},
		{50, models.LevelMedium},
		{69.9, models.LevelMedium},
		{70, models.LevelHigh},
		{89.9, models.LevelHigh},
		{90, models.LevelCritical},
		{100, models.LevelCritical},
	}

	for _, tt := range tests {
		if got := Classify(tt.percentage); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.percentage, got, tt.want)
		}
	}
}

func TestMeterMemoization(t *testing.T) {
	messages := []*models.SessionMessage{
		{Usage: models.RawUsage{"input_tokens": 100.0}},
	}

	meter := NewMeter(&Resolver{})
	first := meter.Usage(messages, "claude-sonnet-4-5", models.EngineClaude)
	second := meter.Usage(messages, "claude-sonnet-4-5", models.EngineClaude)
	if first != second {
		t.Error("identical inputs should return the cached result")
	}

	// Appending a message invalidates the cache.
	messages = append(messages, &models.SessionMessage{
		Usage: models.RawUsage{"input_tokens": 900.0},
	})
	third := meter.Usage(messages, "claude-sonnet-4-5", models.EngineClaude)
	if third.CurrentTokens != 900 {
		t.Errorf("CurrentTokens = %d, want 900 after new message", third.CurrentTokens)
	}

	// Model change recomputes even with the same transcript.
	fourth := meter.Usage(messages, "claude-sonnet-4-5-1m", models.EngineClaude)
	if fourth.ContextWindowSize != 1_000_000 {
		t.Errorf("ContextWindowSize = %d, want 1000000 after model change", fourth.ContextWindowSize)
	}

	meter.Invalidate()
	fifth := meter.Usage(messages, "claude-sonnet-4-5-1m", models.EngineClaude)
	if fifth != fourth {
		t.Error("recompute after Invalidate should yield the same result")
	}
}
