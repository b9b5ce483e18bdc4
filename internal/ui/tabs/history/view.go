package history

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/medica-bottleneck-tui/internal/app"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/components"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/styles"
)

const timeLayout = "Jan 2 15:04:05"

// View renders the history tab.
func (m *Model) View() string {
	h := m.state.GetHistory()
	if h == nil {
		if slices.Contains(m.state.GetLoadingResources(), app.ResourceHistory) || m.state.IsInitialLoading() {
			return m.renderLoading()
		}
		return m.renderEmpty()
	}
	if len(h.Runs) == 0 {
		return m.renderEmpty()
	}

	scenario := m.currentScenario()

	sections := []string{
		m.renderHeader(scenario),
		m.renderRuns(h.Runs),
	}
	if scenario != "" {
		sections = append(sections,
			m.renderVerdicts(h.Verdicts[scenario]),
			m.renderFrequency(h.Frequency[scenario]),
		)
	}

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

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No analysis runs recorded yet."),
		styles.HelpStyle.Render("Runs will appear here after the first analysis."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader(scenario string) string {
	title := styles.TitleStyle.Render("History")

	if scenario == "" {
		return lipgloss.JoinVertical(lipgloss.Left, title, "")
	}

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	indicator := rangeStyle.Render(fmt.Sprintf("[s] %s", scenario))
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", indicator)

	return lipgloss.JoinVertical(lipgloss.Left, header, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderRuns(runs []models.AnalysisRun) string {
	cardWidth := m.cardWidth()

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Recent Runs")),
		"",
		styles.TableHeaderStyle.Render(fmt.Sprintf("%-16s %-20s %9s %9s  %s",
			"Time", "Simulation", "Scenarios", "Duration", "Status")),
	}

	for _, r := range runs {
		status := styles.SuccessTextStyle.Render("ok")
		if r.Failed() {
			status = styles.ErrorTextStyle.Render(truncate(r.Error, max(cardWidth-70, 20)))
		}
		rows = append(rows, fmt.Sprintf("%-16s %-20s %9d %8dms  %s",
			r.GeneratedAt.Local().Format(timeLayout),
			truncate(r.SimulationID, 20),
			r.ScenarioCount,
			r.DurationMs,
			status,
		))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderVerdicts(verdicts []models.ScenarioVerdict) string {
	cardWidth := m.cardWidth()

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Verdict History")),
		"",
	}

	if len(verdicts) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No verdicts recorded"))
		return styles.CardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	// Verdicts arrive newest first; the sparkline reads left to right.
	confidence := make([]float64, len(verdicts))
	for i, v := range verdicts {
		confidence[i] = v.Confidence
	}
	slices.Reverse(confidence)
	rows = append(rows,
		fmt.Sprintf("  Confidence trend: %s", lipgloss.NewStyle().Foreground(styles.Primary).
			Render(components.RenderSparkline(confidence, len(confidence)))),
		"",
	)

	for _, v := range verdicts {
		window := "n/a"
		if w := v.Window(); w != nil {
			window = fmt.Sprintf("days %d-%d", w.Start, w.End)
		}
		rows = append(rows, fmt.Sprintf("  %-16s %-24s %s %s  %s",
			v.RecordedAt.Local().Format(timeLayout),
			truncate(v.PrimaryBottleneck, 24),
			styles.GetBottleneckTypeStyle(string(v.Type)).Width(8).Render(string(v.Type)),
			styles.GetConfidenceStyle(v.Confidence).Render(fmt.Sprintf("%3.0f%%", v.Confidence*100)),
			styles.HelpStyle.Render(window),
		))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderFrequency(freq []models.BottleneckFrequency) string {
	cardWidth := m.cardWidth()

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Bottleneck Frequency")),
		"",
	}

	if len(freq) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No bottlenecks recorded"))
		return styles.CardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	values := make([]float64, len(freq))
	labels := make([]string, len(freq))
	for i, f := range freq {
		values[i] = float64(f.Runs)
		labels[i] = f.PrimaryBottleneck
	}

	chart := components.RenderBarChart(values, labels, max(cardWidth-12, 30))
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	top := freq[0]
	rows = append(rows,
		"",
		fmt.Sprintf("  Most frequent: %s (%d runs, avg confidence %.0f%%)",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render(top.PrimaryBottleneck),
			top.Runs,
			top.AvgConfidence*100,
		),
	)

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
