// Package store reads and writes the chunked per-day simulation output.
package store

import (
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	metaFileName    = "meta.json"
	historyDirName  = "history"
	historyFileName = "events.json"

	defaultConcurrency = 8
)

var (
	// ErrDayNotFound is returned when a day file does not exist.
	ErrDayNotFound = errors.New("day file not found")
	// ErrMetaNotFound is returned when meta.json does not exist.
	ErrMetaNotFound = errors.New("meta.json not found")
	// ErrDashboardNotFound is returned when no dashboard has been written yet.
	ErrDashboardNotFound = errors.New("dashboard not found")
)

// Store is a day-indexed record store rooted at an output directory.
type Store struct {
	dir         string
	concurrency int
}

// Option configures a Store.
type Option func(*Store)

// WithConcurrency bounds the number of files read or written in parallel.
func WithConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a store rooted at dir.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:         dir,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// MetaPath returns the path of meta.json.
func (s *Store) MetaPath() string {
	return filepath.Join(s.dir, metaFileName)
}

// DayPath returns the path of the day file for scenario and day.
func (s *Store) DayPath(scenario string, day int) string {
	return filepath.Join(s.dir, scenario, DayFileName(day))
}

// HistoryPath returns the path of the history events file.
func (s *Store) HistoryPath() string {
	return filepath.Join(s.dir, historyDirName, historyFileName)
}

// DayFileName returns the zero-padded file name for a day.
func DayFileName(day int) string {
	return fmt.Sprintf("day_%03d.json", day)
}
