package sessions

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/k-lindqvist/ctxwatch/internal/models"
	"github.com/k-lindqvist/ctxwatch/internal/ui/components"
	"github.com/k-lindqvist/ctxwatch/internal/ui/styles"
)

// View renders the sessions tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderSessionList())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the sessions tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Active Sessions")
	subtitle := styles.HelpStyle.Render("Context window occupancy per transcript")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderSessionList renders the list of sessions with their usage bars.
func (m *Model) renderSessionList() string {
	sessions := m.state.GetSessions()

	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Sessions")))

	if len(sessions) == 0 {
		rows = append(rows, "")
		emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
		rows = append(rows, fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No active sessions found")))
		rows = append(rows, "")
		rows = append(rows, styles.InfoTextStyle.Render("  ╰─▶ Start a Claude Code, Codex, or Gemini session to see it here"))

		return styles.CardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	dividerWidth := max(cardWidth-8, 20)
	divider := lipgloss.NewStyle().Foreground(styles.Subtle).Render(
		"  ├" + strings.Repeat("─", dividerWidth) + "┤",
	)

	rows = append(rows, "")

	selectedIdx := m.state.GetSelectedSessionIndex()
	for i := range sessions {
		rows = append(rows, m.renderSessionRow(&sessions[i], i == selectedIdx, cardWidth-4))
		if i < len(sessions)-1 {
			rows = append(rows, "", divider, "")
		}
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderSessionRow(su *models.SessionUsage, selected bool, width int) string {
	var lines []string

	lines = append(lines, m.renderSessionHeader(su, selected))
	lines = append(lines, "")

	contentWidth := max(width-4, 20)

	if su.Usage.HasData {
		lines = append(lines, m.renderUsageBar(su, contentWidth))
	} else {
		lines = append(lines, m.renderPendingBar(su, contentWidth))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderSessionHeader(su *models.SessionUsage, selected bool) string {
	selectionPrefix := "  "
	if selected {
		selectionPrefix = styles.FocusedStyle.Render("▸ ")
	}

	engine := su.Session.Engine
	engineIcon := styles.GetEngineStyle(engine).Render(engineGlyph(engine))

	id := su.Session.ID
	if len(id) > 12 {
		id = id[:12]
	}

	model := su.Session.LastModel()
	if model == "" {
		model = "unknown model"
	}
	if len(model) > 30 {
		model = model[:27] + "..."
	}

	badge := ""
	switch su.Usage.Level {
	case models.LevelCritical:
		badge = " " + styles.LevelCriticalStyle.Render("▲ CRITICAL")
	case models.LevelHigh:
		badge = " " + styles.LevelHighStyle.Render("▲ HIGH")
	}

	return fmt.Sprintf("%s%s %s %s%s",
		selectionPrefix,
		engineIcon,
		lipgloss.NewStyle().Bold(true).Render(id),
		styles.GetEngineStyle(engine).Render(model),
		badge,
	)
}

const indentSpace = "    "

func (m *Model) renderUsageBar(su *models.SessionUsage, width int) string {
	const (
		indentWidth  = 4
		percentWidth = 6
		tokensWidth  = 18
	)

	barWidth := max(width-indentWidth-percentWidth-tokensWidth-4, 10)

	percent := m.displayPercent(su)
	bar := components.RenderGradientBar(percent, barWidth)

	percentStr := styles.GetUsageStyle(su.Usage.Percentage).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(su.Usage.FormattedPercentage)

	tokensText := fmt.Sprintf("%s tokens", su.Usage.FormattedTokens)
	tokensStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(tokensWidth).
		Align(lipgloss.Right).
		Render(tokensText)

	return lipgloss.JoinHorizontal(lipgloss.Left,
		indentSpace,
		bar,
		" ",
		percentStr,
		" ",
		tokensStr,
	)
}

// renderPendingBar shows a shimmer while a session has no usage reading
// yet (either still being read, or a transcript with no assistant turns).
func (m *Model) renderPendingBar(su *models.SessionUsage, width int) string {
	if m.state.AnyLoading() {
		return components.SimpleUsageBarLoading(su.Session.Engine, width, m.animationFrame)
	}

	const (
		indentWidth  = 4
		percentWidth = 6
		tokensWidth  = 18
	)
	barWidth := max(width-indentWidth-percentWidth-tokensWidth-4, 10)

	emptyBar := lipgloss.NewStyle().
		Foreground(styles.Subtle).
		Render(strings.Repeat("░", barWidth))

	status := styles.NoDataStyle.
		Width(percentWidth + tokensWidth + 2).
		Align(lipgloss.Right).
		Render("no usage data")

	return lipgloss.JoinHorizontal(lipgloss.Left, indentSpace, emptyBar, " ", status)
}

func engineGlyph(engine models.Engine) string {
	switch engine {
	case models.EngineCodex:
		return "◆"
	case models.EngineGemini:
		return "◎"
	default:
		return "⬡"
	}
}
