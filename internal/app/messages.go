package app

import (
	"time"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/services"
	"github.com/j-veylop/medica-bottleneck-tui/internal/services/analysis"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// DashboardLoadedMsg carries the dashboard read from disk.
type DashboardLoadedMsg struct {
	Dashboard *models.Dashboard
	Error     error
}

// AnalysisResultMsg carries the outcome of an analysis run.
type AnalysisResultMsg struct {
	Result *analysis.Result
	Error  error
}

// HistoryLoadedMsg carries the run history read from the database.
type HistoryLoadedMsg struct {
	History *History
	Error   error
}

// AnalyzeMsg requests an analysis run.
type AnalyzeMsg struct{}

// RefreshMsg requests a reload of data.
type RefreshMsg struct {
	Resource string // "all", "dashboard", "history"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// QuitMsg requests the application to quit.
type QuitMsg struct{}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}
