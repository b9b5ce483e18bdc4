package info

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/styles"
	"github.com/j-veylop/medica-bottleneck-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
	}
	if m.config != nil {
		sections = append(sections, m.renderAnalysisCard())
	}
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

// renderConfigCard renders the configuration paths card.
func (m *Model) renderConfigCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("Configuration"),
		"",
	}

	if m.config != nil {
		httpAddr := m.config.HTTPAddr
		if httpAddr == "" {
			httpAddr = "disabled"
		}
		analysisFile := m.config.AnalysisConfigPath
		if analysisFile == "" {
			analysisFile = "built-in defaults"
		}
		rows = append(rows,
			m.renderConfigRow("Output Dir", m.config.OutputDir),
			m.renderConfigRow("Dashboard", m.config.DashboardPath),
			m.renderConfigRow("Database", m.config.DatabasePath),
			m.renderConfigRow("Analysis File", analysisFile),
			m.renderConfigRow("HTTP Address", httpAddr),
			m.renderConfigRow("Scenarios", strings.Join(m.config.Scenarios, ", ")),
			m.renderConfigRow("Watch Debounce", m.config.WatchDebounce.String()),
			m.renderConfigRow("Notifications", strconv.FormatBool(m.config.Notifications)),
			m.renderConfigRow("Retention", fmt.Sprintf("%d days", m.config.HistoryRetentionDays)),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAnalysisCard renders the scoring thresholds and weights.
func (m *Model) renderAnalysisCard() string {
	t := m.config.Analysis.Thresholds
	w := m.config.Analysis.Weights

	rows := []string{
		styles.CardTitleStyle.Render("Scoring"),
		"",
		styles.SubTitleStyle.Render("Thresholds"),
		m.renderConfigRow("Queue High Level", formatFloat(t.QueueHighLevelPct)),
		m.renderConfigRow("Growth Streak", fmt.Sprintf("%d days", t.QueueGrowthStreakDays)),
		m.renderConfigRow("Days Above", formatFloat(t.QueueDaysAboveThresholdPct)),
		m.renderConfigRow("High Utilization", formatFloat(t.ProcessHighUtilization)),
		m.renderConfigRow("Capacity Days", formatFloat(t.ProcessCapacityDaysPct)),
		"",
		styles.SubTitleStyle.Render("Weights"),
		m.renderConfigRow("Queue", fmt.Sprintf("avg %s, streak %s, above %s, persist %s",
			formatFloat(w.QueueAvgLevel), formatFloat(w.QueueGrowthStreak),
			formatFloat(w.QueueDaysAbove), formatFloat(w.QueuePersistence))),
		m.renderConfigRow("Process", fmt.Sprintf("util %s, capacity %s, upstream %s",
			formatFloat(w.ProcessUtilization), formatFloat(w.ProcessCapacityDays),
			formatFloat(w.ProcessUpstreamGrowth))),
	}

	if n := len(m.config.Analysis.Overrides); n > 0 {
		rows = append(rows, "", m.renderConfigRow("Overrides", fmt.Sprintf("%d scenario(s)", n)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About Medica Bottleneck TUI"),
		"",
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
		"",
	}

	if d := m.state.GetDashboard(); d != nil {
		rows = append(rows, fmt.Sprintf("Simulation: %s  %s",
			styles.InfoTextStyle.Render(d.Meta.SimulationID),
			styles.HelpStyle.Render(fmt.Sprintf("updated %s ago", m.state.TimeSinceUpdate().Truncate(time.Second))),
		))
	} else {
		rows = append(rows, "Simulation: "+styles.HelpStyle.Render("none analyzed"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
