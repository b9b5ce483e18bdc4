// Package finance provides the finance and inventory tab.
package finance

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/medica-bottleneck-tui/internal/app"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/components"
)

type chartKind int

const (
	chartInventoryCash chartKind = iota
	chartCosts
	chartSales
	chartCount
)

// String returns the chart title.
func (c chartKind) String() string {
	switch c {
	case chartInventoryCash:
		return "Inventory vs Cash On Hand"
	case chartCosts:
		return "Cost Accumulation"
	case chartSales:
		return "Sales Performance"
	default:
		return "Unknown"
	}
}

type keyMap struct {
	NextSeries key.Binding
	PrevSeries key.Binding
	NextChart  key.Binding
	ShowAll    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextSeries: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next series"),
		),
		PrevSeries: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev series"),
		),
		NextChart: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "next chart"),
		),
		ShowAll: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "all series"),
		),
	}
}

// Model represents the finance tab.
type Model struct {
	state    *app.State
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
	focus    chartKind
	// selected indexes OrderSeries of the focused chart; -1 shows all series.
	selected int
}

// New creates the finance tab.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		spinner:  components.NewSpinner("Loading dashboard..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		selected: -1,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.DashboardLoadedMsg, app.AnalysisResultMsg:
		m.clampSelection()

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	count := len(m.focusedSeries())

	switch {
	case key.Matches(msg, m.keys.NextSeries):
		if count > 0 {
			m.selected = (m.selected + 1) % count
		}
	case key.Matches(msg, m.keys.PrevSeries):
		if count > 0 {
			if m.selected <= 0 {
				m.selected = count - 1
			} else {
				m.selected--
			}
		}
	case key.Matches(msg, m.keys.NextChart):
		m.focus = (m.focus + 1) % chartCount
		m.selected = -1
	case key.Matches(msg, m.keys.ShowAll):
		m.selected = -1
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) chart(kind chartKind) *models.Chart {
	f := m.state.GetFinance()
	if f == nil {
		return nil
	}
	switch kind {
	case chartInventoryCash:
		return &f.Charts.InventoryCash
	case chartCosts:
		return &f.Charts.CostAccumulation
	case chartSales:
		return &f.Charts.SalesPerformance
	}
	return nil
}

func (m *Model) focusedSeries() []models.ChartSeries {
	c := m.chart(m.focus)
	if c == nil {
		return nil
	}
	return components.OrderSeries(c.Series)
}

func (m *Model) selectedID(kind chartKind) string {
	if kind != m.focus || m.selected < 0 {
		return ""
	}
	series := m.focusedSeries()
	if m.selected >= len(series) {
		return ""
	}
	return series[m.selected].ID
}

func (m *Model) clampSelection() {
	if m.selected >= len(m.focusedSeries()) {
		m.selected = -1
	}
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.NextSeries, m.keys.NextChart, m.keys.ShowAll}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextSeries, m.keys.PrevSeries},
		{m.keys.NextChart, m.keys.ShowAll},
	}
}
