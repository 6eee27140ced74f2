package usage

import (
	"fmt"

	"github.com/k-lindqvist/ctxwatch/internal/models"
)

// Compute derives the full context-window usage record for a session.
// It never fails: an empty transcript or one without usable usage data
// yields a zeroed result with HasData false and the window size still
// resolved, so callers can render "0 / capacity".
func Compute(messages []*models.SessionMessage, model string, engine models.Engine, resolver *Resolver) models.ContextWindowUsage {
	windowSize := resolver.Resolve(messages, model, engine)

	breakdown, hasData := models.NormalizedUsage{}, false
	if len(messages) > 0 {
		breakdown, hasData = Extract(messages, engine)
	}
	if !hasData {
		return emptyResult(windowSize)
	}

	currentTokens := breakdown.ContextTokens()
	percentage := percentOfWindow(currentTokens, windowSize)

	return models.ContextWindowUsage{
		CurrentTokens:       currentTokens,
		ContextWindowSize:   windowSize,
		Percentage:          percentage,
		Breakdown:           breakdown,
		Level:               Classify(percentage),
		HasData:             true,
		FormattedPercentage: FormatPercent(percentage),
		FormattedTokens:     formatRatio(currentTokens, windowSize),
	}
}

func emptyResult(windowSize int64) models.ContextWindowUsage {
	return models.ContextWindowUsage{
		ContextWindowSize:   windowSize,
		Level:               models.LevelLow,
		FormattedPercentage: FormatPercent(0),
		FormattedTokens:     formatRatio(0, windowSize),
	}
}

func formatRatio(current, window int64) string {
	return fmt.Sprintf("%s / %s", FormatTokens(current), FormatTokens(window))
}

// percentOfWindow computes occupancy in [0,100]. A non-positive window
// yields 0 rather than dividing by zero.
func percentOfWindow(current, window int64) float64 {
	if window <= 0 {
		return 0
	}
	percentage := float64(current) / float64(window) * 100
	if percentage > 100 {
		return 100
	}
	return percentage
}

// meterKey identifies one computation's inputs. The transcript is
// append-only, so length plus the identity of the newest message is
// enough to detect change without hashing contents.
type meterKey struct {
	count  int
	last   *models.SessionMessage
	model  string
	engine models.Engine
}

// Meter memoizes Compute for one caller. Not safe for concurrent use;
// each UI surface owns its own Meter, and independent meters over the
// same transcript are fine since the computation is read-only.
type Meter struct {
	resolver *Resolver
	key      meterKey
	result   models.ContextWindowUsage
	valid    bool
}

// NewMeter creates a meter backed by the given resolver.
func NewMeter(resolver *Resolver) *Meter {
	return &Meter{resolver: resolver}
}

// Usage returns the usage record for the inputs, recomputing only when
// the message list, model, or engine changed since the last call.
func (m *Meter) Usage(messages []*models.SessionMessage, model string, engine models.Engine) models.ContextWindowUsage {
	key := meterKey{count: len(messages), model: model, engine: engine}
	if len(messages) > 0 {
		key.last = messages[len(messages)-1]
	}

	if m.valid && key == m.key {
		return m.result
	}

	m.result = Compute(messages, model, engine, m.resolver)
	m.key = key
	m.valid = true
	return m.result
}

// Invalidate discards the cached result, forcing the next Usage call
// to recompute.
func (m *Meter) Invalidate() {
	m.valid = false
}
