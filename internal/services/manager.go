// Package services provides service orchestration for the TUI.
package services

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/k-lindqvist/ctxwatch/internal/config"
	"github.com/k-lindqvist/ctxwatch/internal/db"
	"github.com/k-lindqvist/ctxwatch/internal/modelcache"
	"github.com/k-lindqvist/ctxwatch/internal/models"
	"github.com/k-lindqvist/ctxwatch/internal/session"
	"github.com/k-lindqvist/ctxwatch/internal/usage"
)

type (
	// SessionsChangedEvent is emitted when the session list changes.
	SessionsChangedEvent struct {
		Sessions []*models.Session
	}

	// UsageUpdatedEvent is emitted when a session's context-window usage
	// is recomputed.
	UsageUpdatedEvent struct {
		SessionID string
		Usage     models.ContextWindowUsage
	}

	// WindowsChangedEvent is emitted when the model window cache changes,
	// invalidating every cached usage result.
	WindowsChangedEvent struct {
		Cached int
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}

	// StatsEvent is emitted when global statistics change.
	StatsEvent struct {
		SessionCount int
		Critical     int
		Snapshots    int
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SessionsChangedEvent) isServiceEvent() {}
func (UsageUpdatedEvent) isServiceEvent()    {}
func (WindowsChangedEvent) isServiceEvent()  {}
func (ErrorEvent) isServiceEvent()           {}
func (StatsEvent) isServiceEvent()           {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	sessions    *session.Service
	cache       *modelcache.Cache
	database    *db.DB
	resolver    *usage.Resolver
	meters      map[string]*usage.Meter
	lastLevel   map[string]models.UsageLevel
	lastTokens  map[string]int64
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	cacheDirty  chan struct{}
	subscribers []chan<- ServiceEvent
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		meters:     make(map[string]*usage.Meter),
		lastLevel:  make(map[string]models.UsageLevel),
		lastTokens: make(map[string]int64),
		eventChan:  make(chan ServiceEvent, 100),
		stopChan:   make(chan struct{}),
		cacheDirty: make(chan struct{}, 1),
	}

	var err error
	m.cache, err = modelcache.New(cfg.ModelCachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model cache: %w", err)
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		_ = m.cache.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.resolver = &usage.Resolver{Cache: m.cache}

	m.sessions, err = session.New(session.Config{
		EngineDirs:   cfg.EngineDirs(),
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		_ = m.cache.Close()
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to initialize session service: %w", err)
	}

	// The cache notifies from its watcher goroutine; hand the signal to
	// routeEvents so meter access stays serialized there.
	m.cache.OnChange(func() {
		select {
		case m.cacheDirty <- struct{}{}:
		default:
		}
	})

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.sessions.Events():
			m.handleSessionEvent(event)

		case <-m.cacheDirty:
			m.handleCacheChange()

		case <-m.stopChan:
			return
		}
	}
}

// handleSessionEvent converts and broadcasts session events.
func (m *Manager) handleSessionEvent(event session.Event) {
	switch event.Type {
	case session.EventSessionUpdated:
		if event.Session == nil {
			return
		}
		result := m.UsageFor(event.Session)

		m.broadcast(SessionsChangedEvent{Sessions: m.sessions.Sessions()})
		m.broadcast(UsageUpdatedEvent{
			SessionID: event.Session.ID,
			Usage:     result,
		})

		m.recordSnapshot(event.Session, result)
		m.checkNotifications(event.Session, result)

	case session.EventSessionRemoved:
		if event.Session != nil {
			m.mu.Lock()
			delete(m.meters, event.Session.ID)
			delete(m.lastLevel, event.Session.ID)
			delete(m.lastTokens, event.Session.ID)
			m.mu.Unlock()
		}
		m.broadcast(SessionsChangedEvent{Sessions: m.sessions.Sessions()})

	case session.EventError:
		m.broadcast(ErrorEvent{
			Service: "session",
			Error:   event.Error,
		})
	}
}

// handleCacheChange invalidates every meter so the next usage lookup
// resolves windows against the fresh cache contents.
func (m *Manager) handleCacheChange() {
	m.mu.Lock()
	for _, meter := range m.meters {
		meter.Invalidate()
	}
	m.mu.Unlock()

	m.broadcast(WindowsChangedEvent{Cached: m.cache.Len()})
}

// UsageFor returns the context-window usage for a session, memoized per
// session so unchanged transcripts are not recomputed.
func (m *Manager) UsageFor(sess *models.Session) models.ContextWindowUsage {
	if sess == nil {
		return models.ContextWindowUsage{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	meter, ok := m.meters[sess.ID]
	if !ok {
		meter = usage.NewMeter(m.resolver)
		m.meters[sess.ID] = meter
	}
	return meter.Usage(sess.Messages, sess.Model, sess.Engine)
}

// recordSnapshot appends a history row when the session has usable data
// and its token count actually moved.
func (m *Manager) recordSnapshot(sess *models.Session, result models.ContextWindowUsage) {
	if !result.HasData {
		return
	}

	m.mu.Lock()
	previous, seen := m.lastTokens[sess.ID]
	m.lastTokens[sess.ID] = result.CurrentTokens
	m.mu.Unlock()

	if seen && previous == result.CurrentTokens {
		return
	}

	snapshot := &models.UsageSnapshot{
		Timestamp:     time.Now(),
		SessionID:     sess.ID,
		Engine:        sess.Engine,
		Model:         sess.Model,
		CurrentTokens: result.CurrentTokens,
		WindowSize:    result.ContextWindowSize,
		Percentage:    result.Percentage,
		Level:         result.Level,
	}
	if err := m.database.RecordSnapshot(snapshot); err != nil {
		m.broadcast(ErrorEvent{Service: "db", Error: err})
	}
}

// checkNotifications fires a desktop notification the first time a
// session crosses into critical occupancy.
func (m *Manager) checkNotifications(sess *models.Session, result models.ContextWindowUsage) {
	m.mu.Lock()
	previous, seen := m.lastLevel[sess.ID]
	m.lastLevel[sess.ID] = result.Level
	m.mu.Unlock()

	if !seen {
		return
	}

	if result.Level == models.LevelCritical && previous < models.LevelCritical {
		title := fmt.Sprintf("Context almost full: %s", sess.Model)
		body := fmt.Sprintf("Session %s is at %s of its context window (%s)",
			sess.ID, result.FormattedPercentage, result.FormattedTokens)
		_ = beeep.Notify(title, body, "")
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// SessionsWithUsage returns all known sessions paired with their usage,
// most recently updated first.
func (m *Manager) SessionsWithUsage() []models.SessionUsage {
	sessions := m.sessions.Sessions()

	result := make([]models.SessionUsage, len(sessions))
	for i, sess := range sessions {
		result[i] = models.SessionUsage{
			Session: sess,
			Usage:   m.UsageFor(sess),
		}
	}
	return result
}

// Rescan forces a rescan of every transcript directory.
func (m *Manager) Rescan() {
	m.sessions.Rescan()
}

// PinWindow stores a user-supplied context window size for a model.
func (m *Manager) PinWindow(engine models.Engine, model string, window int64) error {
	return m.cache.Set(engine, model, window)
}

// GetSessionHistory retrieves a session's recorded snapshots.
func (m *Manager) GetSessionHistory(sessionID string, timeRange models.TimeRange) ([]models.UsageSnapshot, error) {
	return m.database.GetSessionSeries(sessionID, timeRange)
}

// GetHourlyUsage retrieves hourly aggregates across all sessions.
func (m *Manager) GetHourlyUsage(timeRange models.TimeRange) ([]models.HourlyUsage, error) {
	return m.database.GetHourlyUsage(timeRange)
}

// GetStats returns aggregated statistics.
func (m *Manager) GetStats() StatsEvent {
	snapshots, _ := m.database.CountSnapshots()

	m.mu.RLock()
	critical := 0
	for _, level := range m.lastLevel {
		if level == models.LevelCritical {
			critical++
		}
	}
	m.mu.RUnlock()

	return StatsEvent{
		SessionCount: m.sessions.Count(),
		Critical:     critical,
		Snapshots:    snapshots,
	}
}

// Sessions returns the session service.
func (m *Manager) Sessions() *session.Service {
	return m.sessions
}

// ModelCache returns the model window cache.
func (m *Manager) ModelCache() *modelcache.Cache {
	return m.cache
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if m.sessions != nil {
		if err := m.sessions.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.cache != nil {
		if err := m.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// InitialState returns the initial state of all services for TUI initialization.
func (m *Manager) InitialState() ([]models.SessionUsage, StatsEvent) {
	sessions := m.SessionsWithUsage()
	stats := m.GetStats()

	return sessions, stats
}
