// Package models defines data structures and domain types.
package models

import "time"

// UsageSnapshot is a point-in-time usage reading persisted for history
// charts (DB model).
type UsageSnapshot struct {
	Timestamp     time.Time
	SessionID     string
	Engine        Engine
	Model         string
	CurrentTokens int64
	WindowSize    int64
	Percentage    float64
	Level         UsageLevel
	ID            int64
}

// HourlyUsage aggregates snapshots by hour for trend charts.
type HourlyUsage struct {
	Hour          time.Time
	AvgPercentage float64
	PeakTokens    int64
	Samples       int
}

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange1Hour shows data from the last hour.
	TimeRange1Hour TimeRange = iota
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRangeAllTime shows all recorded data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange1Hour:
		return "1 Hour"
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Duration returns the lookback window for the range (0 = unlimited).
func (t TimeRange) Duration() time.Duration {
	switch t {
	case TimeRange1Hour:
		return time.Hour
	case TimeRange24Hours:
		return 24 * time.Hour
	case TimeRange7Days:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}
