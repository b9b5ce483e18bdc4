package info

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/medica-bottleneck-tui/internal/analytics"
	"github.com/j-veylop/medica-bottleneck-tui/internal/app"
	"github.com/j-veylop/medica-bottleneck-tui/internal/config"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/version"
)

func testConfig() *config.Config {
	return &config.Config{
		OutputDir:            "/data/output",
		DashboardPath:        "/data/output/dashboard.json",
		DatabasePath:         "/data/mbt.db",
		HTTPAddr:             ":3001",
		WatchDebounce:        500 * time.Millisecond,
		HistoryRetentionDays: 30,
		Scenarios:            config.DefaultScenarios(),
		Analysis:             analytics.DefaultConfig(),
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), testConfig())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should not return a command")
	}
}

func TestModel_Update(t *testing.T) {
	m := New(app.NewState(), testConfig())
	m.SetSize(80, 10)

	updated, _ := m.Update(nil)
	if updated == nil {
		t.Error("Update returned nil model")
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if updated == nil {
		t.Error("Update returned nil model")
	}
}

func TestModel_View(t *testing.T) {
	m := New(app.NewState(), testConfig())
	m.SetSize(100, 200)

	view := ansi.Strip(m.View())
	for _, want := range []string{
		"/data/output/dashboard.json",
		"/data/mbt.db",
		":3001",
		"standard, custom",
		"built-in defaults",
		"500ms",
		"30 days",
		"Thresholds",
		"20 days",
		"Overrides",
		version.GetVersion(),
		"none analyzed",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_ViewWithDashboard(t *testing.T) {
	s := app.NewState()
	s.SetDashboard(&models.Dashboard{Meta: models.DashboardMeta{SimulationID: "medica_day_9"}})
	m := New(s, testConfig())
	m.SetSize(100, 200)

	if view := ansi.Strip(m.View()); !strings.Contains(view, "medica_day_9") {
		t.Error("view should show the analyzed simulation")
	}
}

func TestModel_ViewWithoutConfig(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(80, 40)

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "Configuration not loaded") {
		t.Error("view should report the missing configuration")
	}
	if strings.Contains(view, "Thresholds") {
		t.Error("scoring card needs a configuration")
	}
}

func TestModel_ViewHTTPDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ""
	m := New(app.NewState(), cfg)
	m.SetSize(100, 200)

	if view := ansi.Strip(m.View()); !strings.Contains(view, "disabled") {
		t.Error("empty HTTP address should show as disabled")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), nil)
	if len(m.ShortHelp()) != 2 {
		t.Errorf("ShortHelp len = %d, want 2", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) != 1 {
		t.Errorf("FullHelp len = %d, want 1", len(m.FullHelp()))
	}
}

func TestFormatFloat(t *testing.T) {
	if got := formatFloat(0.5); got != "0.5" {
		t.Errorf("formatFloat(0.5) = %s", got)
	}
	if got := formatFloat(1.2); got != "1.2" {
		t.Errorf("formatFloat(1.2) = %s", got)
	}
}
