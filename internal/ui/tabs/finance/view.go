package finance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/components"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/styles"
)

const maxReorderDays = 12

// View renders the finance tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	m.clampSelection()

	sections := []string{m.renderTitle()}

	f := m.state.GetFinance()
	if f == nil {
		sections = append(sections, m.renderEmpty())
	} else {
		sections = append(sections, m.renderKPIs(f.KPIs))
		for kind := chartInventoryCash; kind < chartCount; kind++ {
			sections = append(sections, m.renderChart(kind, f))
		}
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Finance & Inventory")

	subtitle := styles.HelpStyle.Render("Inventory levels, cash flow and reorder decisions")
	if d := m.state.GetDashboard(); d != nil {
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("Simulation %s · generated %s",
			d.Meta.SimulationID, d.Meta.GeneratedAt))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderEmpty() string {
	hint := "Press a to analyze the simulation output"
	if m.state.GetDashboard() != nil {
		hint = "The simulation output has no financial or inventory sheets"
	}

	emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	rows := []string{
		styles.CardTitleStyle.Render("Key Performance Indicators"),
		"",
		fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No finance data")),
		"",
		styles.InfoTextStyle.Render("  ╰─▶ " + hint),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderKPIs(k models.FinanceKPIs) string {
	labelStyle := lipgloss.NewStyle().Width(28).Foreground(styles.TextMuted)
	valueStyle := lipgloss.NewStyle().Bold(true)

	stockout := valueStyle.Render(fmt.Sprintf("%d days", k.StockoutDays))
	if k.StockoutDays > 0 {
		stockout = styles.ErrorTextStyle.Render(fmt.Sprintf("%d days", k.StockoutDays))
	}

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Key Performance Indicators")),
		"",
		labelStyle.Render("Total Stockout Days:") + " " + stockout,
		labelStyle.Render("Average Inventory Level:") + " " +
			valueStyle.Render(humanize.Comma(int64(k.AvgInventoryLevel))+" units"),
		labelStyle.Render("Average Cash On Hand:") + " " +
			valueStyle.Render(humanize.Comma(int64(k.AvgCashOnHand))),
		labelStyle.Render("Inventory Cost Efficiency:") + " " +
			valueStyle.Render(strconv.FormatFloat(k.InventoryCostPerUnitSold, 'f', 2, 64)+"%"),
		labelStyle.Render("Number of Reorder Events:") + " " +
			valueStyle.Render(fmt.Sprintf("%d times", k.ReorderEvents)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderChart(kind chartKind, f *models.FinancePayload) string {
	cardWidth := m.cardWidth()
	c := m.chart(kind)

	title := styles.CardTitleStyle.Render(kind.String())
	if kind == m.focus {
		title = styles.FocusedStyle.Render("▸ ") + title
	}

	graph := components.RenderChart(*c, components.ChartOptions{
		Width:    cardWidth - 16,
		Height:   8,
		Caption:  chartCaption(kind, *c),
		Selected: m.selectedID(kind),
	})

	rows := []string{title, "", graph}
	if kind == chartInventoryCash {
		rows = append(rows, "", formatReorderPoints(f.ReorderPoints))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func chartCaption(kind chartKind, c models.Chart) string {
	if len(c.Labels) == 0 {
		return kind.String()
	}
	return fmt.Sprintf("%s, days %d-%d", kind.String(), c.Labels[0], c.Labels[len(c.Labels)-1])
}

// formatReorderPoints lists the reorder days, truncated after maxReorderDays.
func formatReorderPoints(points []models.ReorderPoint) string {
	if len(points) == 0 {
		return styles.HelpStyle.Render("No reorder events")
	}

	days := make([]string, 0, min(len(points), maxReorderDays))
	for _, p := range points[:min(len(points), maxReorderDays)] {
		days = append(days, strconv.Itoa(p.Day))
	}
	list := strings.Join(days, ", ")
	if extra := len(points) - maxReorderDays; extra > 0 {
		list += fmt.Sprintf(" (+%d more)", extra)
	}
	return styles.HelpStyle.Render("Reorders on days: ") + list
}
