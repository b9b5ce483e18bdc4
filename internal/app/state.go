// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sort"
	"sync"
	"time"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/services/analysis"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// Loadable resources.
const (
	ResourceInitial   = "initial"
	ResourceDashboard = "dashboard"
	ResourceAnalysis  = "analysis"
	ResourceHistory   = "history"
)

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial   bool
	Dashboard bool
	Analysis  bool
	History   bool
}

// History is the run history shown in the history tab.
type History struct {
	Runs      []models.AnalysisRun
	Verdicts  map[string][]models.ScenarioVerdict
	Frequency map[string][]models.BottleneckFrequency
}

// Scenarios returns the scenarios with verdict history, sorted.
func (h *History) Scenarios() []string {
	if h == nil {
		return nil
	}
	names := make([]string, 0, len(h.Verdicts))
	for name := range h.Verdicts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// State is the shared state read by every tab.
type State struct {
	mu sync.RWMutex

	Dashboard  *models.Dashboard
	LastResult *analysis.Result
	History    *History

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty state waiting for its first load.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case ResourceInitial:
		s.Loading.Initial = loading
	case ResourceDashboard:
		s.Loading.Dashboard = loading
	case ResourceAnalysis:
		s.Loading.Analysis = loading
	case ResourceHistory:
		s.Loading.History = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Dashboard ||
		s.Loading.Analysis ||
		s.Loading.History
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// IsAnalyzing reports whether an analysis run is in flight.
func (s *State) IsAnalyzing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Analysis
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, ResourceInitial)
	}
	if s.Loading.Dashboard {
		resources = append(resources, ResourceDashboard)
	}
	if s.Loading.Analysis {
		resources = append(resources, ResourceAnalysis)
	}
	if s.Loading.History {
		resources = append(resources, ResourceHistory)
	}
	return resources
}

// SetDashboard replaces the displayed dashboard.
func (s *State) SetDashboard(d *models.Dashboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Dashboard = d
	s.LastUpdated = time.Now()
}

// GetDashboard returns the displayed dashboard, or nil before the first load.
func (s *State) GetDashboard() *models.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dashboard
}

// GetTab returns the payload of one scenario, or nil when it has no tab.
func (s *State) GetTab(scenario string) *models.TabPayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Dashboard == nil {
		return nil
	}
	return s.Dashboard.Tabs[scenario]
}

// GetFinance returns the finance section, or nil when the dashboard has none.
func (s *State) GetFinance() *models.FinancePayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Dashboard == nil {
		return nil
	}
	return s.Dashboard.Finance
}

// SetResult stores the result of a run and shows its dashboard.
func (s *State) SetResult(res *analysis.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastResult = res
	if res != nil {
		s.Dashboard = res.Dashboard
	}
	s.LastUpdated = time.Now()
}

// GetResult returns the last run result seen by the UI.
func (s *State) GetResult() *analysis.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastResult
}

// SetHistory replaces the run history.
func (s *State) SetHistory(h *History) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = h
}

// GetHistory returns the run history, or nil before it was loaded.
func (s *State) GetHistory() *History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.History
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the dashboard changed.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
