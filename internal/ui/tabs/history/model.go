// Package history provides the history tab for browsing recorded usage
// snapshots.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/k-lindqvist/ctxwatch/internal/app"
	"github.com/k-lindqvist/ctxwatch/internal/models"
	"github.com/k-lindqvist/ctxwatch/internal/services"
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	Refresh     key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	commands *app.Commands
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	// Current view state
	timeRange   models.TimeRange
	sessionID   string
	snapshots   []models.UsageSnapshot
	hourly      []models.HourlyUsage
	loading     bool
	lastRefresh time.Time
	errorMsg    string
}

// New creates a new history model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:     state,
		services:  svc,
		commands:  app.NewCommands(svc),
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: models.TimeRange24Hours,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return m.loadHistoryCmd()
}

// loadHistoryCmd creates commands to load the selected session's
// snapshots and the hourly aggregates for the current time range.
func (m *Model) loadHistoryCmd() tea.Cmd {
	if m.services == nil {
		return nil
	}

	selected := m.state.GetSelectedSession()
	if selected == nil {
		return func() tea.Msg {
			return app.HistoryLoadedMsg{Error: fmt.Errorf("no session selected")}
		}
	}

	m.loading = true
	return tea.Batch(
		m.commands.LoadSessionHistory(selected.Session.ID, m.timeRange),
		m.commands.LoadHourlyUsage(m.timeRange),
	)
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.HistoryLoadedMsg:
		m.loading = false
		m.lastRefresh = time.Now()
		if msg.Error != nil {
			m.errorMsg = msg.Error.Error()
			break
		}
		m.errorMsg = ""
		m.sessionID = msg.SessionID
		m.snapshots = msg.Snapshots

	case app.HourlyUsageLoadedMsg:
		if msg.Error == nil {
			m.hourly = msg.Hours
		}

	case app.SessionsLoadedMsg:
		// First session list after an empty start: try again.
		if m.snapshots == nil && m.errorMsg != "" {
			cmds = append(cmds, m.loadHistoryCmd())
		}

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory {
			cmds = append(cmds, m.loadHistoryCmd())
		}

	case app.SelectedSessionChangedMsg:
		if !m.loading {
			cmds = append(cmds, m.loadHistoryCmd())
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		cmds = append(cmds, m.loadHistoryCmd())

	case key.Matches(msg, m.keys.Refresh):
		cmds = append(cmds, m.loadHistoryCmd())

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
