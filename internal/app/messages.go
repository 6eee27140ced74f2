package app

import (
	"time"

	"github.com/k-lindqvist/ctxwatch/internal/models"
	"github.com/k-lindqvist/ctxwatch/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// SessionsLoadedMsg contains the loaded session list with usage.
type SessionsLoadedMsg struct {
	Sessions []models.SessionUsage
	Stats    services.StatsEvent
}

// StatsLoadedMsg contains loaded statistics.
type StatsLoadedMsg struct {
	Stats services.StatsEvent
}

// UsageUpdatedMsg signals that one session's usage was recomputed.
type UsageUpdatedMsg struct {
	SessionID string
	Usage     models.ContextWindowUsage
}

// HistoryLoadedMsg contains one session's recorded snapshots.
type HistoryLoadedMsg struct {
	SessionID string
	Snapshots []models.UsageSnapshot
	Error     error
}

// HourlyUsageLoadedMsg contains hourly aggregates across all sessions.
type HourlyUsageLoadedMsg struct {
	Hours []models.HourlyUsage
	Error error
}

// PinWindowMsg requests pinning a context window size for a model.
type PinWindowMsg struct {
	Engine models.Engine
	Model  string
	Window int64
}

// PinWindowResultMsg contains the result of a pin operation.
type PinWindowResultMsg struct {
	Model   string
	Window  int64
	Success bool
	Error   error
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "sessions", "history"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// SelectedSessionChangedMsg signals that the selected session in the UI has changed.
type SelectedSessionChangedMsg struct {
	Index     int
	SessionID string
}
