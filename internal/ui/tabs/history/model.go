// Package history provides the history tab for past analysis runs.
package history

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/medica-bottleneck-tui/internal/app"
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	NextScenario key.Binding
	Up           key.Binding
	Down         key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextScenario: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "next scenario"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	// scenario is the scenario whose verdicts are shown.
	scenario string
}

// New creates a new history model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.HistoryLoadedMsg:
		m.currentScenario()

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.NextScenario) {
		m.nextScenario()
		return nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// currentScenario returns the shown scenario, falling back to the first one
// the history knows about.
func (m *Model) currentScenario() string {
	scenarios := m.state.GetHistory().Scenarios()
	if len(scenarios) == 0 {
		return ""
	}
	for _, s := range scenarios {
		if s == m.scenario {
			return s
		}
	}
	m.scenario = scenarios[0]
	return m.scenario
}

func (m *Model) nextScenario() {
	scenarios := m.state.GetHistory().Scenarios()
	if len(scenarios) == 0 {
		return
	}
	current := m.currentScenario()
	for i, s := range scenarios {
		if s == current {
			m.scenario = scenarios[(i+1)%len(scenarios)]
			return
		}
	}
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextScenario,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextScenario},
		{m.keys.Up, m.keys.Down},
	}
}
