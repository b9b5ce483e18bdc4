// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/medica-bottleneck-tui/internal/config"
	"github.com/j-veylop/medica-bottleneck-tui/internal/db"
	"github.com/j-veylop/medica-bottleneck-tui/internal/logger"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/services/analysis"
	"github.com/j-veylop/medica-bottleneck-tui/internal/services/watcher"
	"github.com/j-veylop/medica-bottleneck-tui/internal/store"
)

type (
	// AnalysisStartedEvent is emitted when an analysis run begins.
	AnalysisStartedEvent struct {
		Trigger string
	}

	// AnalysisCompletedEvent is emitted when an analysis run succeeds.
	AnalysisCompletedEvent struct {
		Result *analysis.Result
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// Analysis triggers.
const (
	TriggerManual  = "manual"
	TriggerWatcher = "watcher"
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (AnalysisStartedEvent) isServiceEvent()   {}
func (AnalysisCompletedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()             {}

// Options tunes what NewManager starts.
type Options struct {
	// Watch starts the output directory watcher.
	Watch bool
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	runMu       sync.Mutex
	cfg         *config.Config
	store       *store.Store
	database    *db.DB
	runner      *analysis.Runner
	watcher     *watcher.Service
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
	subscribers []chan ServiceEvent
	latest      *analysis.Result
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config, opts Options) (*Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:    cfg,
		store:  store.New(cfg.OutputDir, store.WithConcurrency(cfg.LoadConcurrency)),
		ctx:    ctx,
		cancel: cancel,
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.HistoryRetentionDays > 0 {
		if n, err := m.database.CleanupOldRuns(cfg.HistoryRetentionDays); err != nil {
			logger.Warn("failed to cleanup old runs", "error", err)
		} else if n > 0 {
			logger.Info("removed old analysis runs", "count", n)
			if err := m.database.Vacuum(); err != nil {
				logger.Warn("failed to vacuum database", "error", err)
			}
		}
	}

	m.runner = analysis.NewRunner(m.store, m.database, analysis.Options{
		Scenarios:     cfg.Scenarios,
		Analysis:      cfg.Analysis,
		DashboardPath: cfg.DashboardPath,
		Notifications: cfg.Notifications,
	})

	if opts.Watch {
		m.watcher, err = watcher.New(m.store.MetaPath(), cfg.WatchDebounce)
		if err != nil {
			_ = m.database.Close()
			cancel()
			return nil, err
		}
		go m.routeEvents()
	}

	return m, nil
}

// routeEvents turns watcher events into analysis runs.
func (m *Manager) routeEvents() {
	for {
		select {
		case event, ok := <-m.watcher.Events():
			if !ok {
				return
			}
			m.handleWatcherEvent(event)

		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) handleWatcherEvent(event watcher.Event) {
	switch event.Type {
	case watcher.EventMetaChanged:
		logger.Info("new simulation output detected", "path", event.Path)
		if _, err := m.runAnalysis(m.ctx, TriggerWatcher); err != nil {
			logger.Error("analysis failed", "trigger", TriggerWatcher, "error", err)
		}

	case watcher.EventError:
		m.broadcast(ErrorEvent{Service: "watcher", Error: event.Error})
	}
}

// RunAnalysis runs the dashboard analysis now. Runs are serialized so the
// dashboard file is never written concurrently.
func (m *Manager) RunAnalysis(ctx context.Context) (*analysis.Result, error) {
	return m.runAnalysis(ctx, TriggerManual)
}

func (m *Manager) runAnalysis(ctx context.Context, trigger string) (*analysis.Result, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	m.broadcast(AnalysisStartedEvent{Trigger: trigger})

	res, err := m.runner.Run(ctx)
	if err != nil {
		m.broadcast(ErrorEvent{Service: "analysis", Error: err})
		return nil, err
	}

	m.mu.Lock()
	m.latest = res
	m.mu.Unlock()

	m.broadcast(AnalysisCompletedEvent{Result: res})
	return res, nil
}

// LatestDashboard returns the dashboard of the last run in this process, or
// the one on disk when nothing ran yet.
func (m *Manager) LatestDashboard() (*models.Dashboard, error) {
	m.mu.RLock()
	latest := m.latest
	m.mu.RUnlock()

	if latest != nil {
		return latest.Dashboard, nil
	}
	return m.store.LoadDashboard(m.cfg.DashboardPath)
}

// HasDashboard reports whether a dashboard exists yet.
func (m *Manager) HasDashboard() bool {
	_, err := m.LatestDashboard()
	return err == nil
}

// LatestResult returns the result of the last successful run, if any.
func (m *Manager) LatestResult() *analysis.Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// RecentRuns returns the most recent analysis runs, newest first.
func (m *Manager) RecentRuns(limit int) ([]models.AnalysisRun, error) {
	return m.database.GetRecentRuns(limit)
}

// VerdictHistory returns the recorded verdicts of a scenario, newest first.
func (m *Manager) VerdictHistory(scenario string, limit int) ([]models.ScenarioVerdict, error) {
	return m.database.GetVerdictHistory(scenario, limit)
}

// BottleneckFrequency counts how often each bottleneck won for a scenario.
func (m *Manager) BottleneckFrequency(scenario string, days int) ([]models.BottleneckFrequency, error) {
	return m.database.GetBottleneckFrequency(scenario, days)
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Store returns the record store.
func (m *Manager) Store() *store.Store {
	return m.store
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
		}

		if m.watcher != nil {
			if err := m.watcher.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		// Wait for an in-flight run before closing the database.
		m.runMu.Lock()
		defer m.runMu.Unlock()

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	return errors.Join(errs...)
}
