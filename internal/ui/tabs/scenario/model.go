// Package scenario provides the per-scenario bottleneck tabs.
package scenario

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/medica-bottleneck-tui/internal/app"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/components"
)

// chartKind identifies one of the charts of a scenario tab.
type chartKind int

const (
	chartQueue chartKind = iota
	chartProcess
	chartUtilization
	chartCount
)

// String returns the chart title.
func (c chartKind) String() string {
	switch c {
	case chartQueue:
		return "Queue Levels"
	case chartProcess:
		return "Process Output"
	case chartUtilization:
		return "Utilization"
	default:
		return "Unknown"
	}
}

// keyMap defines the key bindings specific to a scenario tab.
type keyMap struct {
	NextSeries key.Binding
	PrevSeries key.Binding
	NextChart  key.Binding
	ShowAll    key.Binding
}

// defaultKeyMap returns the default key bindings for a scenario tab.
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

// Model represents a scenario tab.
type Model struct {
	state    *app.State
	scenario string
	spinner  components.LoadingSpinner
	bar      components.ConfidenceBar
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
	focus    chartKind
	// selected indexes OrderSeries of the focused chart; -1 shows all series.
	selected int
}

// New creates a tab for the given scenario.
func New(state *app.State, scenario string) *Model {
	return &Model{
		state:    state,
		scenario: scenario,
		spinner:  components.NewSpinner("Loading dashboard..."),
		bar:      components.NewConfidenceBar(),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		selected: -1,
	}
}

// Scenario returns the scenario this tab shows.
func (m *Model) Scenario() string {
	return m.scenario
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.DashboardLoadedMsg, app.AnalysisResultMsg:
		m.clampSelection()

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
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
		m.focus = m.nextChart()
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

// nextChart returns the chart after the focused one, skipping the
// utilization chart when the scenario has none.
func (m *Model) nextChart() chartKind {
	next := (m.focus + 1) % chartCount
	if next == chartUtilization && m.chart(chartUtilization) == nil {
		next = chartQueue
	}
	return next
}

// chart returns the chart of the given kind, or nil when it is missing.
func (m *Model) chart(kind chartKind) *models.Chart {
	tab := m.state.GetTab(m.scenario)
	if tab == nil {
		return nil
	}
	switch kind {
	case chartQueue:
		return &tab.Charts.QueueLevels
	case chartProcess:
		return &tab.Charts.ProcessOutput
	case chartUtilization:
		return tab.Charts.Utilization
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

// selectedID returns the ID of the series drawn alone on the given chart.
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

// clampSelection resets the focus and selection when a new dashboard no
// longer has them.
func (m *Model) clampSelection() {
	if m.chart(m.focus) == nil {
		m.focus = chartQueue
		m.selected = -1
	}
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
	return []key.Binding{
		m.keys.NextSeries,
		m.keys.NextChart,
		m.keys.ShowAll,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextSeries, m.keys.PrevSeries},
		{m.keys.NextChart, m.keys.ShowAll},
	}
}
