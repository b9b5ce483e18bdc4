package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/j-veylop/medica-bottleneck-tui/internal/analytics"
)

// AnalysisFile is the optional YAML file that tunes the analysis. Fields
// left out keep their defaults; an overrides entry replaces that scenario's
// overrides as a whole.
type AnalysisFile struct {
	Scenarios        []string `yaml:"scenarios"`
	analytics.Config `yaml:",inline"`
}

// LoadAnalysisFile reads and validates an analysis config file.
func LoadAnalysisFile(path string) (*AnalysisFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis config: %w", err)
	}
	return ParseAnalysisFile(raw)
}

// ParseAnalysisFile decodes an analysis config on top of the defaults.
func ParseAnalysisFile(raw []byte) (*AnalysisFile, error) {
	f := &AnalysisFile{Config: analytics.DefaultConfig()}
	if err := yaml.Unmarshal(raw, f); err != nil {
		return nil, fmt.Errorf("failed to parse analysis config: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis config: %w", err)
	}
	return f, nil
}

func (f *AnalysisFile) validate() error {
	seen := make(map[string]bool, len(f.Scenarios))
	for _, s := range f.Scenarios {
		if strings.TrimSpace(s) == "" || strings.ContainsAny(s, `/\`) {
			return fmt.Errorf("scenario name %q is not a directory name", s)
		}
		if seen[s] {
			return fmt.Errorf("scenario %q listed twice", s)
		}
		seen[s] = true
	}

	w := f.Weights
	weights := map[string]float64{
		"queue_avg_level":         w.QueueAvgLevel,
		"queue_growth_streak":     w.QueueGrowthStreak,
		"queue_days_above":        w.QueueDaysAbove,
		"queue_persistence":       w.QueuePersistence,
		"process_utilization":     w.ProcessUtilization,
		"process_capacity_days":   w.ProcessCapacityDays,
		"process_upstream_growth": w.ProcessUpstreamGrowth,
	}
	for name, v := range weights {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative", name)
		}
	}

	th := f.Thresholds
	if th.QueueWindowFactor <= 0 || th.QueueWindowFactor > 1 {
		return fmt.Errorf("queue_window_factor must be in (0, 1], got %v", th.QueueWindowFactor)
	}

	fractions := []struct {
		name  string
		value float64
	}{
		{"queue_high_level_pct", th.QueueHighLevelPct},
		{"queue_days_above_threshold_pct", th.QueueDaysAboveThresholdPct},
		{"process_high_utilization", th.ProcessHighUtilization},
		{"process_capacity_days_pct", th.ProcessCapacityDaysPct},
		{"process_capacity_utilization", th.ProcessCapacityUtilization},
	}
	for _, fr := range fractions {
		if fr.value < 0 || fr.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", fr.name, fr.value)
		}
	}

	if th.QueueGrowthStreakDays < 0 {
		return fmt.Errorf("queue_growth_streak_days must not be negative, got %d", th.QueueGrowthStreakDays)
	}
	if th.QueuePersistenceRatio < 0 {
		return fmt.Errorf("queue_persistence_ratio must not be negative, got %v", th.QueuePersistenceRatio)
	}
	if th.ProcessPlateauCV < 0 {
		return fmt.Errorf("process_plateau_cv must not be negative, got %v", th.ProcessPlateauCV)
	}
	return nil
}
