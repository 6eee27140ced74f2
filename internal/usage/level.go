package usage

import "github.com/k-lindqvist/ctxwatch/internal/models"

// Classification thresholds, in percent of context window.
const (
	mediumThreshold   = 50.0
	highThreshold     = 70.0
	criticalThreshold = 90.0
)

// Classify maps a usage percentage to its display level. Monotonic step
// function: a higher percentage never yields a lower level.
func Classify(percentage float64) models.UsageLevel {
	switch {
	case percentage >= criticalThreshold:
		return models.LevelCritical
	case percentage >= highThreshold:
		return models.LevelHigh
	case percentage >= mediumThreshold:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}
