package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/k-lindqvist/ctxwatch/internal/models"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.label != "Loading" {
		t.Error("Spinner label mismatch")
	}
}

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("Init")

	s.SetLabel("Loading")
	if s.Label() != "Loading" {
		t.Errorf("Label = %s, want Loading", s.Label())
	}

	// Test View
	view := s.View()
	if view == "" {
		t.Error("View returned empty")
	}

	// Test ViewWithLabel
	view = s.ViewWithLabel()
	if view == "" {
		t.Error("ViewWithLabel returned empty")
	}

	// Test Init
	if s.Init() == nil {
		t.Error("Init should return command")
	}

	// Test Update
	m, cmd := s.Update(spinner.TickMsg{})
	_ = m
	if cmd == nil {
		t.Error("Update should return command for tick")
	}

	// Test Tick
	if s.Tick() == nil {
		t.Error("Tick should return command")
	}

	// Test Spinner accessor
	if s.Spinner().Spinner.Frames == nil {
		t.Error("Spinner accessor failed")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(s, 20, 5)
	if view == "" {
		t.Error("RenderSpinnerCentered returned empty")
	}
}

func TestRenderLineChart(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	s := RenderLineChart(data, 20, 5, "Test")
	if s == "" {
		t.Error("RenderLineChart returned empty")
	}

	empty := RenderLineChart(nil, 20, 5, "Test")
	if !strings.Contains(empty, "No data") {
		t.Error("Empty chart should render no-data message")
	}
}

func TestRenderDualLineChart(t *testing.T) {
	data1 := []float64{1, 2, 3}
	data2 := []float64{3, 2, 1}
	s := RenderDualLineChart(data1, data2, 20, 5, "Title")
	if s == "" {
		t.Error("RenderDualLineChart returned empty")
	}
}

func TestRenderBarChart(t *testing.T) {
	values := []float64{10, 20}
	labels := []string{"A", "B"}
	s := RenderBarChart(values, labels, 20)
	if s == "" {
		t.Error("RenderBarChart returned empty")
	}
	if RenderBarChart(nil, nil, 20) != "" {
		t.Error("Empty bar chart should be empty")
	}
}

func TestRenderHourlyHeatmap(t *testing.T) {
	data := make([]float64, 24)
	data[9] = 80
	s := RenderHourlyHeatmap(data)
	if s == "" {
		t.Error("RenderHourlyHeatmap returned empty")
	}

	// Short input is padded to 24 hours.
	short := RenderHourlyHeatmap([]float64{1, 2, 3})
	if short == "" {
		t.Error("Padded heatmap returned empty")
	}
}

func TestRenderSparkline(t *testing.T) {
	data := []float64{1, 2, 3}
	s := RenderSparkline(data, 10)
	if s == "" {
		t.Error("RenderSparkline returned empty")
	}
	if RenderSparkline(nil, 10) != "" {
		t.Error("Empty sparkline should be empty")
	}
}

func TestRenderColoredSparkline(t *testing.T) {
	data := []float64{10, 55, 95}
	s := RenderColoredSparkline(data, 10)
	if s == "" {
		t.Error("RenderColoredSparkline returned empty")
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "A", Color: lipgloss.Color("#ffffff")},
	}
	s := RenderLegend(items)
	if s == "" {
		t.Error("RenderLegend returned empty")
	}
}

func TestUsageBar_Views(t *testing.T) {
	bar := NewUsageBar()

	v := bar.View(42, "claude", 60)
	if !strings.Contains(v, "42%") {
		t.Error("View should contain the percentage")
	}

	compact := bar.ViewCompact(75, 40)
	if !strings.Contains(compact, "75%") {
		t.Error("ViewCompact should contain the percentage")
	}

	noData := bar.ViewNoData("codex", 60)
	if !strings.Contains(noData, "NO DATA") {
		t.Error("ViewNoData should show the placeholder")
	}
}

func TestUsageBar_SetPercentAnimates(t *testing.T) {
	bar := NewUsageBar()

	if cmd := bar.SetPercent(50); cmd == nil {
		t.Fatal("SetPercent should return a command")
	}
	if !bar.isAnimating {
		t.Error("bar should be animating after SetPercent")
	}

	// Animation steps toward the target and stops there.
	for i := 0; i < 200 && bar.currentPercent != bar.targetPercent; i++ {
		bar, _ = bar.Update(AnimationTickMsg{})
	}
	if bar.currentPercent != 50 {
		t.Errorf("currentPercent = %f, want 50", bar.currentPercent)
	}
}

func TestRenderGradientBar(t *testing.T) {
	if RenderGradientBar(50, 0) != "" {
		t.Error("Zero width should render empty")
	}

	bar := RenderGradientBar(50, 20)
	if bar == "" {
		t.Error("RenderGradientBar returned empty")
	}

	// Clamped out-of-range percentages still render full width.
	if RenderGradientBar(150, 10) == "" || RenderGradientBar(-5, 10) == "" {
		t.Error("Out-of-range percent should still render")
	}
}

func TestSimpleUsageBar(t *testing.T) {
	s := SimpleUsageBar(60, "claude-sonnet", 50)
	if !strings.Contains(s, "60%") {
		t.Error("SimpleUsageBar should contain the percentage")
	}
	if !strings.Contains(s, "claude-sonnet") {
		t.Error("SimpleUsageBar should contain the label")
	}
}

func TestSimpleUsageBarLoading(t *testing.T) {
	for _, engine := range models.Engines() {
		if SimpleUsageBarLoading(engine, 60, 3) == "" {
			t.Errorf("Loading bar empty for engine %s", engine)
		}
	}
}

func TestInterpolateColor(t *testing.T) {
	if got := interpolateColor("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("t=0 should return start color, got %s", got)
	}
	if got := interpolateColor("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("t=1 should return end color, got %s", got)
	}
}

func TestHexToRGB_Invalid(t *testing.T) {
	rgb := hexToRGB("not-a-color")
	if rgb != [3]int{0, 0, 0} {
		t.Errorf("invalid hex should fall back to black, got %v", rgb)
	}
}
