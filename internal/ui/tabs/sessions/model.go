// Package sessions provides the session list tab for the ctxwatch TUI.
package sessions

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/k-lindqvist/ctxwatch/internal/app"
	"github.com/k-lindqvist/ctxwatch/internal/models"
	"github.com/k-lindqvist/ctxwatch/internal/services"
	"github.com/k-lindqvist/ctxwatch/internal/ui/components"
)

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// pinPresets are the window sizes the pin key cycles through.
var pinPresets = []int64{200_000, 400_000, 1_000_000}

// keyMap defines the key bindings specific to the sessions tab.
type keyMap struct {
	NextSession  key.Binding
	PrevSession  key.Binding
	FirstSession key.Binding
	LastSession  key.Binding
	PinWindow    key.Binding
	Refresh      key.Binding
}

// defaultKeyMap returns the default key bindings for the sessions tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextSession: key.NewBinding(
			key.WithKeys("n", "j", "down"),
			key.WithHelp("j/n", "next session"),
		),
		PrevSession: key.NewBinding(
			key.WithKeys("p", "k", "up"),
			key.WithHelp("k/p", "prev session"),
		),
		FirstSession: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first session"),
		),
		LastSession: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last session"),
		),
		PinWindow: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "pin window size"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// AnimationState tracks the state of one session's bar animation.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

// Model represents the sessions tab state.
type Model struct {
	state          *app.State
	services       *services.Manager
	commands       *app.Commands
	animations     map[string]*AnimationState
	spinner        components.LoadingSpinner
	keys           keyMap
	viewport       viewport.Model
	width          int
	height         int
	animationFrame int
}

// New creates a new sessions model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:      state,
		services:   svc,
		commands:   app.NewCommands(svc),
		spinner:    components.NewSpinner("Scanning transcripts..."),
		keys:       defaultKeyMap(),
		viewport:   viewport.New(0, 0),
		animations: make(map[string]*AnimationState),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), animationTickCmd())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(msg))

	case app.StartLoadingMsg:
		cmds = append(cmds, animationTickCmd())

	case app.SessionsLoadedMsg, app.UsageUpdatedMsg, app.RefreshMsg:
		m.syncAnimationTargets(time.Now())
		cmds = append(cmds, animationTickCmd())

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(msg animationTickMsg) tea.Cmd {
	m.animationFrame++
	now := time.Time(msg)

	animating, hasPendingData := m.syncAnimationTargets(now)
	m.stepAnimations(now)

	shouldTick := animating || m.state.AnyLoading() || m.state.IsInitialLoading() || hasPendingData
	if shouldTick {
		return animationTickCmd()
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	count := m.state.GetSessionCount()

	switch {
	case key.Matches(msg, m.keys.NextSession):
		if count > 0 {
			idx := (m.state.GetSelectedSessionIndex() + 1) % count
			return m.selectIndex(idx)
		}
	case key.Matches(msg, m.keys.PrevSession):
		if count > 0 {
			idx := (m.state.GetSelectedSessionIndex() - 1 + count) % count
			return m.selectIndex(idx)
		}
	case key.Matches(msg, m.keys.FirstSession):
		if count > 0 {
			return m.selectIndex(0)
		}
	case key.Matches(msg, m.keys.LastSession):
		if count > 0 {
			return m.selectIndex(count - 1)
		}
	case key.Matches(msg, m.keys.PinWindow):
		return m.pinSelectedWindow()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// selectIndex stores the new selection and tells other tabs about it.
func (m *Model) selectIndex(idx int) tea.Cmd {
	m.state.SetSelectedSessionIndex(idx)
	selected := m.state.GetSelectedSession()
	if selected == nil {
		return nil
	}
	sessionID := selected.Session.ID
	return func() tea.Msg {
		return app.SelectedSessionChangedMsg{Index: idx, SessionID: sessionID}
	}
}

// pinSelectedWindow cycles the selected session's model through the
// preset window sizes.
func (m *Model) pinSelectedWindow() tea.Cmd {
	selected := m.state.GetSelectedSession()
	if selected == nil || m.services == nil {
		return nil
	}

	next := nextPreset(selected.Usage.ContextWindowSize)
	return m.commands.PinWindow(selected.Session.Engine, selected.Session.LastModel(), next)
}

func nextPreset(current int64) int64 {
	for _, preset := range pinPresets {
		if preset > current {
			return preset
		}
	}
	return pinPresets[0]
}

// SetSize sets the available size for the sessions tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

func (m *Model) syncAnimationTargets(now time.Time) (animating, hasPendingData bool) {
	sessions := m.state.GetSessions()

	for i := range sessions {
		su := &sessions[i]
		if !su.Usage.HasData {
			hasPendingData = true
			continue
		}

		if m.updateAnimationState(su.Session.ID, su.Usage.Percentage, now) {
			animating = true
		}
	}

	return animating, hasPendingData
}

func (m *Model) updateAnimationState(animKey string, target float64, now time.Time) bool {
	if target < 0 {
		return false
	}

	state, exists := m.animations[animKey]
	if !exists {
		state = &AnimationState{StartTime: now}
		m.animations[animKey] = state
	}

	if target != state.TargetPercent {
		state.StartPercent = state.CurrentPercent
		state.TargetPercent = target
		state.StartTime = now
	}

	return state.CurrentPercent != state.TargetPercent
}

func (m *Model) stepAnimations(now time.Time) {
	for _, state := range m.animations {
		if state.CurrentPercent != state.TargetPercent {
			elapsed := now.Sub(state.StartTime).Seconds()
			duration := 1.5

			if elapsed >= duration {
				state.CurrentPercent = state.TargetPercent
			} else {
				progress := elapsed / duration
				ease := 1.0 - (1.0-progress)*(1.0-progress)
				state.CurrentPercent = state.StartPercent + (state.TargetPercent-state.StartPercent)*ease
			}
		}
	}
}

// displayPercent returns the animated percentage for a session, falling
// back to the computed value before the first tick.
func (m *Model) displayPercent(su *models.SessionUsage) float64 {
	if anim, ok := m.animations[su.Session.ID]; ok {
		return anim.CurrentPercent
	}
	return su.Usage.Percentage
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextSession,
		m.keys.PrevSession,
		m.keys.PinWindow,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextSession, m.keys.PrevSession},
		{m.keys.FirstSession, m.keys.LastSession},
		{m.keys.PinWindow, m.keys.Refresh},
	}
}
