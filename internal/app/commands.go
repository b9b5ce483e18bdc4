package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// HistoryRunLimit is how many runs and verdicts the history tab shows.
	HistoryRunLimit = 20
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that loads all initial data.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	return tea.Batch(
		loadDashboardCmd(mgr),
		loadHistoryCmd(mgr),
	)
}

// loadDashboardCmd returns a command that reads the latest dashboard.
func loadDashboardCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		dashboard, err := mgr.LatestDashboard()
		return DashboardLoadedMsg{Dashboard: dashboard, Error: err}
	}
}

// loadHistoryCmd returns a command that reads runs and verdicts from the database.
func loadHistoryCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		runs, err := mgr.RecentRuns(HistoryRunLimit)
		if err != nil {
			return HistoryLoadedMsg{Error: err}
		}

		h := &History{
			Runs:      runs,
			Verdicts:  make(map[string][]models.ScenarioVerdict),
			Frequency: make(map[string][]models.BottleneckFrequency),
		}
		for _, scenario := range mgr.Config().Scenarios {
			verdicts, err := mgr.VerdictHistory(scenario, HistoryRunLimit)
			if err != nil {
				return HistoryLoadedMsg{Error: err}
			}
			freq, err := mgr.BottleneckFrequency(scenario, 0)
			if err != nil {
				return HistoryLoadedMsg{Error: err}
			}
			h.Verdicts[scenario] = verdicts
			h.Frequency[scenario] = freq
		}
		return HistoryLoadedMsg{History: h}
	}
}

// runAnalysisCmd returns a command that runs the analysis. The outcome
// reaches the model as service events, like watcher-triggered runs.
func runAnalysisCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		_, _ = mgr.RunAnalysis(context.Background())
		return nil
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// LoadDashboard returns a command that reads the latest dashboard.
func (c *Commands) LoadDashboard() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return loadDashboardCmd(c.manager)
}

// LoadHistory returns a command that reads the run history.
func (c *Commands) LoadHistory() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return loadHistoryCmd(c.manager)
}

// RunAnalysis returns a command that runs the analysis.
func (c *Commands) RunAnalysis() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return runAnalysisCmd(c.manager)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}
