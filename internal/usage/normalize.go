// Package usage implements context-window usage accounting for AI
// coding-assistant sessions. It normalizes the heterogeneous usage
// payloads the engines report, extracts the reading that best describes
// current context occupancy, and derives display-ready metrics.
package usage

import (
	"encoding/json"

	"github.com/k-lindqvist/ctxwatch/internal/models"
)

// Alias groups per canonical field, in priority order. The first key
// present with a usable numeric value wins; aliases are never summed,
// since engines that report both (e.g. cache_creation_tokens next to
// cache_creation_input_tokens) report the same quantity twice.
var (
	inputAliases  = []string{"input_tokens", "inputTokens"}
	outputAliases = []string{"output_tokens", "outputTokens"}
	cacheCreationAliases = []string{
		"cache_creation_input_tokens",
		"cache_creation_tokens",
		"cacheCreationTokens",
	}
	cacheReadAliases = []string{
		"cache_read_input_tokens",
		"cached_input_tokens", // Codex folds cache reads into one field
		"cache_read_tokens",
		"cacheReadTokens",
	}
)

// Normalize coerces an arbitrary raw usage payload into the canonical
// four-field record. Missing, non-numeric, and negative values become
// zero. Pure; accepts nil.
func Normalize(raw models.RawUsage) models.NormalizedUsage {
	if raw == nil {
		return models.NormalizedUsage{}
	}
	return models.NormalizedUsage{
		InputTokens:         pickToken(raw, inputAliases),
		OutputTokens:        pickToken(raw, outputAliases),
		CacheCreationTokens: pickToken(raw, cacheCreationAliases),
		CacheReadTokens:     pickToken(raw, cacheReadAliases),
	}
}

// pickToken probes the alias group in priority order and returns the
// first usable value. A key holding garbage counts as absent so a later
// alias can still supply the field.
func pickToken(raw models.RawUsage, keys []string) int64 {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		n, numeric := coerceToken(v)
		if !numeric {
			continue
		}
		if n < 0 {
			return 0
		}
		return n
	}
	return 0
}

// coerceToken converts the value types a JSON decode can produce into a
// token count. Anything else is not numeric.
func coerceToken(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}
