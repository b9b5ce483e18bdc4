package scenario

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/components"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/styles"
)

// View renders the scenario tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	m.clampSelection()

	var sections []string
	sections = append(sections, m.renderTitle())

	tab := m.state.GetTab(m.scenario)
	if tab == nil {
		sections = append(sections, m.renderEmpty())
	} else {
		sections = append(sections, m.renderSummary(tab.Summary))
		for kind := chartQueue; kind < chartCount; kind++ {
			if c := m.chart(kind); c != nil {
				sections = append(sections, m.renderChart(kind, *c))
			}
		}
	}

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

// renderTitle renders the scenario title and simulation metadata.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render(displayName(m.scenario) + " Scenario")

	subtitle := styles.HelpStyle.Render("Bottleneck analysis")
	if d := m.state.GetDashboard(); d != nil {
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("Simulation %s · generated %s",
			d.Meta.SimulationID, d.Meta.GeneratedAt))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

// renderEmpty renders the card shown before the scenario has been analyzed.
func (m *Model) renderEmpty() string {
	emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	rows := []string{
		styles.CardTitleStyle.Render("Summary"),
		"",
		fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No analysis yet")),
		"",
		styles.InfoTextStyle.Render("  ╰─▶ Press a to analyze the simulation output"),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderSummary renders the verdict card.
func (m *Model) renderSummary(v models.Verdict) string {
	cardWidth := m.cardWidth()
	labelStyle := lipgloss.NewStyle().Width(18).Foreground(styles.TextMuted)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Summary")),
		"",
	}

	if !v.Detected() {
		rows = append(rows, labelStyle.Render("Bottleneck:")+" "+
			styles.HelpStyle.Render("No bottleneck detected"))
		return styles.CardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	typeStyle := styles.GetBottleneckTypeStyle(string(v.Type))
	rows = append(rows,
		labelStyle.Render("Bottleneck:")+" "+lipgloss.NewStyle().Bold(true).Render(v.PrimaryBottleneck),
		labelStyle.Render("Type:")+" "+typeStyle.Render(string(v.Type)),
		labelStyle.Render("Confidence:")+" "+m.bar.View(v.Confidence, min(cardWidth-24, 50)),
		labelStyle.Render("Critical period:")+" "+formatWindow(v.TimeWindow),
	)

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderChart renders one chart card. The focused chart carries a marker.
func (m *Model) renderChart(kind chartKind, c models.Chart) string {
	cardWidth := m.cardWidth()

	title := styles.CardTitleStyle.Render(kind.String())
	if kind == m.focus {
		title = styles.FocusedStyle.Render("▸ ") + title
	}

	graph := components.RenderChart(c, components.ChartOptions{
		Width:    cardWidth - 16,
		Height:   8,
		Caption:  chartCaption(kind, c),
		Selected: m.selectedID(kind),
	})

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", graph),
	)
}

func chartCaption(kind chartKind, c models.Chart) string {
	if len(c.Labels) == 0 {
		return kind.String()
	}
	return fmt.Sprintf("%s, days %d-%d", kind.String(), c.Labels[0], c.Labels[len(c.Labels)-1])
}

func formatWindow(w *models.TimeWindow) string {
	if w == nil {
		return styles.HelpStyle.Render("n/a")
	}
	return fmt.Sprintf("Days %d-%d", w.Start, w.End)
}

func displayName(scenario string) string {
	if scenario == "" {
		return scenario
	}
	return strings.ToUpper(scenario[:1]) + scenario[1:]
}
