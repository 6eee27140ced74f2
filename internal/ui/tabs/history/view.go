package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/k-lindqvist/ctxwatch/internal/ui/components"
	"github.com/k-lindqvist/ctxwatch/internal/ui/styles"
	"github.com/k-lindqvist/ctxwatch/internal/usage"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if len(m.snapshots) == 0 {
		return m.renderEmpty()
	}

	var sections []string

	sections = append(sections,
		m.renderHeader(),
		m.renderOccupancyChart(),
		m.renderTokenChart(),
		m.renderHourlyCard(),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No usage snapshots recorded yet."),
		styles.HelpStyle.Render("Data will appear as sessions are observed."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	id := m.sessionID
	if len(id) > 12 {
		id = id[:12]
	}

	title := styles.TitleStyle.Render("History: " + id)

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	var subtitle string
	if len(m.snapshots) > 0 {
		first := m.snapshots[0].Timestamp
		last := m.snapshots[len(m.snapshots)-1].Timestamp
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("Data: %s → %s (%d snapshots)",
			first.Format("Jan 2 15:04"),
			last.Format("Jan 2 15:04"),
			len(m.snapshots),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderOccupancyChart() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Window Occupancy")), "")

	percentages := make([]float64, len(m.snapshots))
	for i, s := range m.snapshots {
		percentages[i] = s.Percentage
	}

	chartWidth := max(cardWidth-12, 30)
	chartHeight := 8

	chart := components.RenderLineChart(percentages, chartWidth, chartHeight, "Occupancy (%)")
	for _, line := range strings.Split(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	rows = append(rows, "")
	spark := components.RenderColoredSparkline(percentages, min(chartWidth, len(percentages)))
	rows = append(rows, "  "+spark)
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTokenChart() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Tokens vs Window")), "")

	tokens := make([]float64, len(m.snapshots))
	windows := make([]float64, len(m.snapshots))
	for i, s := range m.snapshots {
		tokens[i] = float64(s.CurrentTokens) / 1000
		windows[i] = float64(s.WindowSize) / 1000
	}

	chartWidth := max(cardWidth-12, 30)
	chartHeight := 8

	chart := components.RenderDualLineChart(tokens, windows, chartWidth, chartHeight,
		"Current tokens (red) vs window size (blue), thousands")
	for _, line := range strings.Split(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	rows = append(rows, "")
	legend := components.RenderLegend([]components.LegendItem{
		{Label: "Tokens", Color: components.ChartClaudeColor},
		{Label: "Window", Color: components.ChartGeminiColor},
	})
	rows = append(rows, "  "+legend)
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderHourlyCard() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows,
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Hourly Pattern")),
		"",
	)

	if len(m.hourly) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No hourly data available"))
	} else {
		// Fold buckets into hour-of-day slots.
		slots := make([]float64, 24)
		counts := make([]int, 24)
		var peakTokens int64
		for _, h := range m.hourly {
			hour := h.Hour.Hour()
			slots[hour] += h.AvgPercentage
			counts[hour]++
			if h.PeakTokens > peakTokens {
				peakTokens = h.PeakTokens
			}
		}
		for i := range slots {
			if counts[i] > 0 {
				slots[i] /= float64(counts[i])
			}
		}

		rows = append(rows, "  "+components.RenderHourlyHeatmap(slots))
		rows = append(rows, "")
		rows = append(rows, fmt.Sprintf("  Peak: %s tokens in one hour",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).
				Render(usage.FormatTokens(peakTokens)),
		))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
