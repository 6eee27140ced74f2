package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/k-lindqvist/ctxwatch/internal/models"
	"github.com/k-lindqvist/ctxwatch/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that loads all initial data.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	return tea.Batch(
		loadSessionsCmd(mgr),
		loadStatsCmd(mgr),
	)
}

// loadSessionsCmd returns a command that loads sessions with their usage.
func loadSessionsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		sessions := mgr.SessionsWithUsage()
		stats := mgr.GetStats()

		return SessionsLoadedMsg{
			Sessions: sessions,
			Stats:    stats,
		}
	}
}

// loadStatsCmd returns a command that loads statistics.
func loadStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		stats := mgr.GetStats()
		return StatsLoadedMsg{Stats: stats}
	}
}

// rescanCmd returns a command that rescans transcript directories and
// reloads the session list.
func rescanCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Rescan()
		return SessionsLoadedMsg{
			Sessions: mgr.SessionsWithUsage(),
			Stats:    mgr.GetStats(),
		}
	}
}

// loadSessionHistoryCmd returns a command that loads one session's snapshots.
func loadSessionHistoryCmd(mgr *services.Manager, sessionID string, timeRange models.TimeRange) tea.Cmd {
	return func() tea.Msg {
		snapshots, err := mgr.GetSessionHistory(sessionID, timeRange)
		return HistoryLoadedMsg{
			SessionID: sessionID,
			Snapshots: snapshots,
			Error:     err,
		}
	}
}

// loadHourlyUsageCmd returns a command that loads hourly aggregates.
func loadHourlyUsageCmd(mgr *services.Manager, timeRange models.TimeRange) tea.Cmd {
	return func() tea.Msg {
		hours, err := mgr.GetHourlyUsage(timeRange)
		return HourlyUsageLoadedMsg{
			Hours: hours,
			Error: err,
		}
	}
}

// pinWindowCmd returns a command that pins a model's context window size.
func pinWindowCmd(mgr *services.Manager, engine models.Engine, model string, window int64) tea.Cmd {
	return func() tea.Msg {
		err := mgr.PinWindow(engine, model, window)
		return PinWindowResultMsg{
			Model:   model,
			Window:  window,
			Success: err == nil,
			Error:   err,
		}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// WaitForServiceEvent is the public version for use in models.
func WaitForServiceEvent(ch <-chan services.ServiceEvent) tea.Cmd {
	return services.WaitForEvent(ch)
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// delayedCmd returns a command that sends a message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// batchCmds combines multiple commands into one.
func batchCmds(cmds ...tea.Cmd) tea.Cmd {
	return tea.Batch(cmds...)
}

// quitCmd returns a command that quits the application.
func quitCmd() tea.Cmd {
	return tea.Quit
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// LoadInitialData returns a command that loads all initial data.
func (c *Commands) LoadInitialData() tea.Cmd {
	return loadInitialData(c.manager)
}

// LoadSessions returns a command that loads sessions with usage.
func (c *Commands) LoadSessions() tea.Cmd {
	return loadSessionsCmd(c.manager)
}

// LoadStats returns a command that loads statistics.
func (c *Commands) LoadStats() tea.Cmd {
	return loadStatsCmd(c.manager)
}

// Rescan returns a command that rescans transcript directories.
func (c *Commands) Rescan() tea.Cmd {
	return rescanCmd(c.manager)
}

// LoadSessionHistory returns a command that loads a session's snapshots.
func (c *Commands) LoadSessionHistory(sessionID string, timeRange models.TimeRange) tea.Cmd {
	return loadSessionHistoryCmd(c.manager, sessionID, timeRange)
}

// LoadHourlyUsage returns a command that loads hourly aggregates.
func (c *Commands) LoadHourlyUsage(timeRange models.TimeRange) tea.Cmd {
	return loadHourlyUsageCmd(c.manager, timeRange)
}

// PinWindow returns a command that pins a model's context window size.
func (c *Commands) PinWindow(engine models.Engine, model string, window int64) tea.Cmd {
	return pinWindowCmd(c.manager, engine, model, window)
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	return subscribeToServicesCmd(c.manager)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return quitCmd()
}

// Delayed returns a command that sends a message after a delay.
func (c *Commands) Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return delayedCmd(delay, msg)
}

// Batch combines multiple commands into one.
func (c *Commands) Batch(cmds ...tea.Cmd) tea.Cmd {
	return batchCmds(cmds...)
}
