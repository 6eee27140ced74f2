package sessions

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/k-lindqvist/ctxwatch/internal/app"
	"github.com/k-lindqvist/ctxwatch/internal/models"
)

func testSessions() []models.SessionUsage {
	return []models.SessionUsage{
		{
			Session: &models.Session{ID: "aaaabbbbcccc", Engine: models.EngineClaude, Model: "claude-sonnet-4-5"},
			Usage: models.ContextWindowUsage{
				CurrentTokens:       120_000,
				ContextWindowSize:   200_000,
				Percentage:          60,
				Level:               models.LevelMedium,
				HasData:             true,
				FormattedPercentage: "60.0%",
				FormattedTokens:     "120.0K/200.0K",
			},
		},
		{
			Session: &models.Session{ID: "ddddeeeeffff", Engine: models.EngineCodex, Model: "gpt-5-codex"},
			Usage:   models.ContextWindowUsage{FormattedPercentage: "0.0%", FormattedTokens: "0/0"},
		},
	}
}

func TestNew(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_View(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	m := New(state, nil)
	m.SetSize(100, 40)

	// Empty state
	view := m.View()
	if !strings.Contains(view, "No active sessions") {
		t.Error("Empty view should mention missing sessions")
	}

	// With sessions
	state.SetSessions(testSessions())
	view = m.View()
	if !strings.Contains(view, "aaaabbbbcccc") {
		t.Error("View should contain the session ID")
	}
	if !strings.Contains(view, "claude-sonnet-4-5") {
		t.Error("View should contain the model name")
	}
	if !strings.Contains(view, "60.0%") {
		t.Error("View should contain the formatted percentage")
	}
	if !strings.Contains(view, "no usage data") {
		t.Error("Session without usage should show the placeholder")
	}
}

func TestModel_CriticalBadge(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	sessions := testSessions()
	sessions[0].Usage.Level = models.LevelCritical
	state.SetSessions(sessions)

	m := New(state, nil)
	m.SetSize(100, 40)

	if !strings.Contains(m.View(), "CRITICAL") {
		t.Error("Critical session should show a badge")
	}
}

func TestModel_Navigation(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetSessions(testSessions())
	m := New(state, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if state.GetSelectedSessionIndex() != 1 {
		t.Errorf("index = %d, want 1 after down", state.GetSelectedSessionIndex())
	}
	if cmd == nil {
		t.Fatal("selection change should emit a command")
	}
	if msg, ok := cmd().(app.SelectedSessionChangedMsg); !ok || msg.SessionID != "ddddeeeeffff" {
		t.Errorf("unexpected selection message: %+v", cmd())
	}

	// Wraps around
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if state.GetSelectedSessionIndex() != 0 {
		t.Errorf("index = %d, want wrap to 0", state.GetSelectedSessionIndex())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if state.GetSelectedSessionIndex() != 1 {
		t.Errorf("index = %d, want 1 after up wrap", state.GetSelectedSessionIndex())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	if state.GetSelectedSessionIndex() != 0 {
		t.Errorf("index = %d, want 0 after g", state.GetSelectedSessionIndex())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	if state.GetSelectedSessionIndex() != 1 {
		t.Errorf("index = %d, want 1 after G", state.GetSelectedSessionIndex())
	}
}

func TestModel_Animation(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetSessions(testSessions())
	m := New(state, nil)

	now := time.Now()
	animating, pending := m.syncAnimationTargets(now)
	if !animating {
		t.Error("first sync should start animating toward 60%")
	}
	if !pending {
		t.Error("session without usage should count as pending")
	}

	// After the full animation duration the bar settles on the target.
	m.stepAnimations(now.Add(2 * time.Second))
	anim := m.animations["aaaabbbbcccc"]
	if anim == nil || anim.CurrentPercent != 60 {
		t.Errorf("animation did not settle: %+v", anim)
	}

	sessions := state.GetSessions()
	if got := m.displayPercent(&sessions[0]); got != 60 {
		t.Errorf("displayPercent = %f, want 60", got)
	}
}

func TestNextPreset(t *testing.T) {
	tests := []struct {
		current int64
		want    int64
	}{
		{0, 200_000},
		{200_000, 400_000},
		{400_000, 1_000_000},
		{1_000_000, 200_000},
	}
	for _, tt := range tests {
		if got := nextPreset(tt.current); got != tt.want {
			t.Errorf("nextPreset(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}

func TestModel_PinWithoutServices(t *testing.T) {
	state := app.NewState()
	state.SetSessions(testSessions())
	m := New(state, nil)

	// No services wired, pin is a no-op.
	if cmd := m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}}); cmd != nil {
		t.Error("pin without services should return nil")
	}
}

func TestModel_SetSize(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	m.SetSize(100, 50)
	if m.width != 100 || m.height != 50 {
		t.Error("SetSize did not store dimensions")
	}
}

func TestModel_Help(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
