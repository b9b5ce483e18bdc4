package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/medica-bottleneck-tui/internal/services"
)

func TestCommands_Tick(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.Tick(time.Millisecond) == nil {
		t.Error("Tick returned nil")
	}
	if cmds.DefaultTick() == nil {
		t.Error("DefaultTick returned nil")
	}
}

func TestCommands_Notifications(t *testing.T) {
	cmds := NewCommands(nil)

	tests := []struct {
		name     string
		fn       func(string) tea.Cmd
		want     NotificationType
		duration time.Duration
	}{
		{"Success", cmds.NotifySuccess, NotificationSuccess, DefaultNotificationDuration},
		{"Error", cmds.NotifyError, NotificationError, LongNotificationDuration},
		{"Warning", cmds.NotifyWarning, NotificationWarning, DefaultNotificationDuration},
		{"Info", cmds.NotifyInfo, NotificationInfo, QuickNotificationDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.fn("msg")()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
			if addMsg.Duration != tt.duration {
				t.Errorf("Duration = %v, want %v", addMsg.Duration, tt.duration)
			}
		})
	}
}

func TestCommands_ClearNotification(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.ClearNotification("id", time.Millisecond) == nil {
		t.Error("ClearNotification returned nil")
	}
}

func TestCommands_Quit(t *testing.T) {
	cmds := NewCommands(nil)
	msg := cmds.Quit()()
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("Expected QuitMsg, got %T", msg)
	}
}

func TestCommands_WithoutManager(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.LoadDashboard() != nil {
		t.Error("LoadDashboard should be nil without a manager")
	}
	if cmds.LoadHistory() != nil {
		t.Error("LoadHistory should be nil without a manager")
	}
	if cmds.RunAnalysis() != nil {
		t.Error("RunAnalysis should be nil without a manager")
	}
}

func TestCommands_WithManager(t *testing.T) {
	mgr, _ := newTestManager(t)
	cmds := NewCommands(mgr)

	msg := cmds.LoadDashboard()()
	if loaded, ok := msg.(DashboardLoadedMsg); !ok || loaded.Error == nil {
		t.Errorf("LoadDashboard() = %#v, want DashboardLoadedMsg with error", msg)
	}

	msg = cmds.LoadHistory()()
	loaded, ok := msg.(HistoryLoadedMsg)
	if !ok {
		t.Fatalf("Expected HistoryLoadedMsg, got %T", msg)
	}
	if loaded.Error != nil {
		t.Fatalf("LoadHistory() failed: %v", loaded.Error)
	}
	if len(loaded.History.Runs) != 0 {
		t.Errorf("Runs = %d, want 0", len(loaded.History.Runs))
	}
	if _, ok := loaded.History.Verdicts["standard"]; !ok {
		t.Error("History should have an entry per configured scenario")
	}
}

func TestWaitForServiceEventCmd_Closed(t *testing.T) {
	ch := make(chan services.ServiceEvent)
	close(ch)
	if msg := waitForServiceEventCmd(ch)(); msg != nil {
		t.Errorf("closed channel should yield nil, got %v", msg)
	}
}
