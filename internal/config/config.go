// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/medica-bottleneck-tui/internal/analytics"
)

// Config holds the application configuration.
type Config struct {
	OutputDir            string
	DashboardPath        string
	DatabasePath         string
	AnalysisConfigPath   string
	WatchDebounce        time.Duration
	LoadConcurrency      int
	Notifications        bool
	HTTPAddr             string
	LogPath              string
	LogLevel             string
	HistoryRetentionDays int

	// Scenarios is the ordered list of scenarios analyzed per run.
	Scenarios []string
	// Analysis holds the scoring thresholds, weights and overrides.
	Analysis analytics.Config
}

// Default values
const (
	defaultOutputDir            = "output"
	defaultWatchDebounce        = 500 * time.Millisecond
	defaultLoadConcurrency      = 8
	defaultHTTPAddr             = ":3001"
	defaultLogLevel             = "info"
	defaultHistoryRetentionDays = 90
)

// DefaultScenarios returns the scenarios analyzed when no list is configured.
func DefaultScenarios() []string {
	return []string{"standard", "custom"}
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	outputDir := getEnvString("OUTPUT_DIR", defaultOutputDir)

	cfg := &Config{
		OutputDir:            outputDir,
		DashboardPath:        getEnvString("DASHBOARD_PATH", defaultDashboardPath(outputDir)),
		DatabasePath:         getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		AnalysisConfigPath:   getEnvString("ANALYSIS_CONFIG_PATH", ""),
		WatchDebounce:        getEnvDuration("WATCH_DEBOUNCE", defaultWatchDebounce),
		LoadConcurrency:      getEnvInt("LOAD_CONCURRENCY", defaultLoadConcurrency),
		Notifications:        getEnvBool("NOTIFICATIONS", true),
		HTTPAddr:             getEnvString("HTTP_ADDR", defaultHTTPAddr),
		LogPath:              getEnvString("LOG_PATH", ""),
		LogLevel:             getEnvString("LOG_LEVEL", defaultLogLevel),
		HistoryRetentionDays: getEnvInt("HISTORY_RETENTION_DAYS", defaultHistoryRetentionDays),
		Scenarios:            DefaultScenarios(),
		Analysis:             analytics.DefaultConfig(),
	}

	if cfg.AnalysisConfigPath != "" {
		file, err := LoadAnalysisFile(cfg.AnalysisConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.Analysis = file.Config
		if len(file.Scenarios) > 0 {
			cfg.Scenarios = file.Scenarios
		}
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	if cfg.LogPath != "" {
		if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "medica-bottleneck", ".env"),
			filepath.Join(home, ".medica-bottleneck", ".env"),
		)
	}

	// Parent directory (useful when run from cmd/mbt)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(cwd), ".env"))
	}

	return paths
}

// defaultDashboardPath returns where the dashboard JSON is written.
func defaultDashboardPath(outputDir string) string {
	return filepath.Join(outputDir, "frontend", "bottleneck_dashboard.json")
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(home, ".config", "medica-bottleneck", "history.db")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves a positive integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
// Accepts 1/0, true/false, yes/no and on/off.
func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
