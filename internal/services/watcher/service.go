// Package watcher reports when the parser finishes writing a new simulation
// into the output directory.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/medica-bottleneck-tui/internal/logger"
)

// Event represents a watcher event.
type Event struct {
	Type  EventType
	Path  string
	Error error
}

// EventType defines the type of watcher event.
type EventType int

const (
	EventMetaChanged EventType = iota
	EventError
)

const defaultDebounce = 500 * time.Millisecond

// Service watches the output directory for meta.json writes.
type Service struct {
	mu            sync.Mutex
	dir           string
	fileName      string
	debounce      time.Duration
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	stopOnce      sync.Once
	debounceTimer *time.Timer
}

// New creates the output directory if needed and starts watching metaPath.
func New(metaPath string, debounce time.Duration) (*Service, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	s := &Service{
		dir:       filepath.Dir(metaPath),
		fileName:  filepath.Base(metaPath),
		debounce:  debounce,
		eventChan: make(chan Event, 16),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so a recreated meta.json is still seen.
	if err := watcher.Add(s.dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != s.fileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.schedule(event.Name)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// schedule restarts the debounce timer so a burst of writes yields one event.
func (s *Service) schedule(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		if _, err := os.Stat(path); err != nil {
			// Renamed away or deleted before the timer fired.
			return
		}
		logger.Debug("simulation metadata changed", "path", path)
		s.sendEvent(Event{Type: EventMetaChanged, Path: path})
	})
}

// sendEvent sends an event without blocking, dropping the oldest on overflow.
func (s *Service) sendEvent(event Event) {
	select {
	case <-s.stopChan:
		return
	default:
	}

	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the watcher.
func (s *Service) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
