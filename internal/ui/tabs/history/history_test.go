package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/k-lindqvist/ctxwatch/internal/app"
	"github.com/k-lindqvist/ctxwatch/internal/config"
	"github.com/k-lindqvist/ctxwatch/internal/models"
	"github.com/k-lindqvist/ctxwatch/internal/services"
)

func testSnapshots() []models.UsageSnapshot {
	base := time.Now().Add(-time.Hour)
	return []models.UsageSnapshot{
		{Timestamp: base, SessionID: "sess-a", CurrentTokens: 50_000, WindowSize: 200_000, Percentage: 25},
		{Timestamp: base.Add(20 * time.Minute), SessionID: "sess-a", CurrentTokens: 100_000, WindowSize: 200_000, Percentage: 50},
		{Timestamp: base.Add(40 * time.Minute), SessionID: "sess-a", CurrentTokens: 150_000, WindowSize: 200_000, Percentage: 75},
	}
}

func TestNew(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.timeRange != models.TimeRange24Hours {
		t.Errorf("default range = %v, want 24 Hours", m.timeRange)
	}
}

func TestModel_Init_WithoutServices(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	if m.Init() != nil {
		t.Error("Init without services should be a no-op")
	}
}

func TestModel_View_States(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	m.SetSize(100, 50)

	// Empty
	if m.View() == "" {
		t.Error("Empty view should render")
	}

	// Error
	m.errorMsg = "boom"
	if m.View() == "" {
		t.Error("Error view should render")
	}
	m.errorMsg = ""

	// Loading
	m.loading = true
	if m.View() == "" {
		t.Error("Loading view should render")
	}
	m.loading = false
}

func TestModel_HistoryLoaded(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	m.SetSize(100, 50)

	m.Update(app.HistoryLoadedMsg{SessionID: "sess-a", Snapshots: testSnapshots()})
	if len(m.snapshots) != 3 {
		t.Fatalf("snapshots = %d, want 3", len(m.snapshots))
	}
	if m.loading {
		t.Error("loading should be cleared")
	}

	m.Update(app.HourlyUsageLoadedMsg{Hours: []models.HourlyUsage{
		{Hour: time.Now().Truncate(time.Hour), AvgPercentage: 40, PeakTokens: 150_000, Samples: 3},
	}})
	if len(m.hourly) != 1 {
		t.Fatalf("hourly = %d, want 1", len(m.hourly))
	}

	view := m.View()
	if view == "" {
		t.Error("View with data should render")
	}

	// Load errors keep old data but surface the message.
	m.Update(app.HistoryLoadedMsg{Error: errors.New("db gone")})
	if m.errorMsg != "db gone" {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestModel_WithManager(t *testing.T) {
	tmp := t.TempDir()
	cfg := &config.Config{
		DatabasePath:   filepath.Join(tmp, "history.db"),
		ModelCachePath: filepath.Join(tmp, "windows.json"),
		ClaudeDir:      filepath.Join(tmp, "claude"),
		PollInterval:   time.Hour,
	}
	mgr, err := services.NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer mgr.Close()

	for _, snap := range testSnapshots() {
		s := snap
		if err := mgr.Database().RecordSnapshot(&s); err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}

	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetSessions([]models.SessionUsage{
		{Session: &models.Session{ID: "sess-a", Engine: models.EngineClaude}},
	})

	m := New(state, mgr)
	m.SetSize(100, 50)

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init with services should load")
	}
	drainCmd(t, m, cmd)

	if len(m.snapshots) != 3 {
		t.Errorf("snapshots = %d, want 3", len(m.snapshots))
	}
	if m.View() == "" {
		t.Error("View after load is empty")
	}
}

// drainCmd runs a command tree and feeds every produced message back
// into the model.
func drainCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	switch batch := msg.(type) {
	case tea.BatchMsg:
		for _, c := range batch {
			drainCmd(t, m, c)
		}
	default:
		if msg != nil {
			_, next := m.Update(msg)
			drainCmd(t, m, next)
		}
	}
}

func TestModel_ToggleRange(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.timeRange != models.TimeRange7Days {
		t.Errorf("range = %v, want 7 Days after toggle", m.timeRange)
	}
}

func TestModel_SelectedSessionChanged(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)

	// Without services this stays a no-op but must not panic.
	m.Update(app.SelectedSessionChangedMsg{Index: 1, SessionID: "sess-b"})
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
