package app

import (
	"testing"
	"time"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/services/analysis"
)

func testDashboard() *models.Dashboard {
	return &models.Dashboard{
		Meta: models.DashboardMeta{SimulationID: "medica_day_9", GeneratedAt: "2024-03-01T11:00:00.123Z"},
		Tabs: map[string]*models.TabPayload{
			"standard": {
				Summary: models.Verdict{
					PrimaryBottleneck: "queue_2_level",
					Type:              models.BottleneckQueue,
					Confidence:        0.6,
					TimeWindow:        &models.TimeWindow{Start: 0, End: 9},
				},
			},
		},
	}
}

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if s.GetDashboard() != nil {
		t.Error("Dashboard should be empty")
	}
	if !s.IsInitialLoading() {
		t.Error("Initial loading should be true")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading(ResourceAnalysis, true)
	if !s.IsAnalyzing() {
		t.Error("Analysis loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading(ResourceAnalysis, false)
	// Initial is still true
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading(ResourceInitial, false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}

	if resources := s.GetLoadingResources(); len(resources) != 0 {
		t.Errorf("GetLoadingResources should be empty, got %v", resources)
	}

	s.SetLoading(ResourceHistory, true)
	resources := s.GetLoadingResources()
	if len(resources) != 1 || resources[0] != ResourceHistory {
		t.Errorf("GetLoadingResources should contain history, got %v", resources)
	}

	s.SetLoading("unknown", true)
	if len(s.GetLoadingResources()) != 1 {
		t.Error("unknown resources should be ignored")
	}
}

func TestState_Dashboard(t *testing.T) {
	s := NewState()
	if s.GetTab("standard") != nil {
		t.Error("GetTab should be nil without a dashboard")
	}

	s.SetDashboard(testDashboard())

	tab := s.GetTab("standard")
	if tab == nil {
		t.Fatal("GetTab returned nil")
	}
	if tab.Summary.PrimaryBottleneck != "queue_2_level" {
		t.Errorf("PrimaryBottleneck = %s, want queue_2_level", tab.Summary.PrimaryBottleneck)
	}
	if s.GetTab("custom") != nil {
		t.Error("custom has no tab")
	}
	if s.GetLastUpdated().IsZero() {
		t.Error("LastUpdated should be set")
	}
}

func TestState_GetFinance(t *testing.T) {
	s := NewState()
	if s.GetFinance() != nil {
		t.Error("GetFinance should be nil without a dashboard")
	}

	d := testDashboard()
	s.SetDashboard(d)
	if s.GetFinance() != nil {
		t.Error("GetFinance should be nil when the dashboard has no finance section")
	}

	d.Finance = &models.FinancePayload{KPIs: models.FinanceKPIs{StockoutDays: 3}}
	if f := s.GetFinance(); f == nil || f.KPIs.StockoutDays != 3 {
		t.Errorf("GetFinance = %+v", f)
	}
}

func TestState_SetResult(t *testing.T) {
	s := NewState()
	res := &analysis.Result{RunID: "run-1", Dashboard: testDashboard()}

	s.SetResult(res)

	if s.GetResult() != res {
		t.Error("GetResult should return the stored result")
	}
	if s.GetDashboard() != res.Dashboard {
		t.Error("SetResult should replace the dashboard")
	}
	if s.TimeSinceUpdate() < 0 {
		t.Error("TimeSinceUpdate should not be negative")
	}
}

func TestState_History(t *testing.T) {
	s := NewState()
	if s.GetHistory() != nil {
		t.Error("History should be nil before loading")
	}

	h := &History{
		Runs: []models.AnalysisRun{{ID: "run-1"}},
		Verdicts: map[string][]models.ScenarioVerdict{
			"standard": {{Scenario: "standard"}},
			"custom":   {{Scenario: "custom"}},
		},
	}
	s.SetHistory(h)

	if s.GetHistory() != h {
		t.Error("GetHistory should return the stored history")
	}
	scenarios := h.Scenarios()
	if len(scenarios) != 2 || scenarios[0] != "custom" || scenarios[1] != "standard" {
		t.Errorf("Scenarios() = %v, want sorted [custom standard]", scenarios)
	}

	var empty *History
	if empty.Scenarios() != nil {
		t.Error("nil history should have no scenarios")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestState_NotificationLimit(t *testing.T) {
	s := NewState()
	for range maxNotifications + 5 {
		s.AddNotification(NotificationInfo, "n", 0)
	}
	if got := len(s.GetNotifications()); got != maxNotifications {
		t.Errorf("notifications = %d, want %d", got, maxNotifications)
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	s.notifications = append(s.notifications, Notification{
		ID:        "expired",
		CreatedAt: time.Now().Add(-2 * time.Minute),
		Duration:  time.Minute,
	})
	s.notifications = append(s.notifications, Notification{
		ID:        "active",
		CreatedAt: time.Now(),
		Duration:  time.Minute,
	})

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != "active" {
		t.Errorf("Expected active notification, got %s", notifs[0].ID)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("loading...")
	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected ID %s, got %s", LoadingNotificationID, notifs[0].ID)
	}

	s.SetLoadingNotification("still loading...")
	notifs = s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification after update")
	}
	if notifs[0].Message != "still loading..." {
		t.Errorf("Expected message still loading..., got %s", notifs[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationType(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
