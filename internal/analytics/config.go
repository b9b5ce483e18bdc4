// Package analytics implements bottleneck detection over per-day simulation
// metrics: metric discovery, feature extraction, rule-based scoring and
// chart payload construction.
package analytics

import "slices"

// Thresholds holds the fractions and limits the scoring rules compare against.
type Thresholds struct {
	QueueHighLevelPct          float64 `yaml:"queue_high_level_pct"`
	QueueGrowthStreakDays      int     `yaml:"queue_growth_streak_days"`
	QueueDaysAboveThresholdPct float64 `yaml:"queue_days_above_threshold_pct"`
	ProcessHighUtilization     float64 `yaml:"process_high_utilization"`
	ProcessCapacityDaysPct     float64 `yaml:"process_capacity_days_pct"`

	// QueueWindowFactor is the fraction of a queue's max level that counts
	// as high, both for days above threshold and the critical window.
	QueueWindowFactor float64 `yaml:"queue_window_factor"`
	// QueuePersistenceRatio is the second-half to first-half mean ratio that
	// must be exceeded.
	QueuePersistenceRatio float64 `yaml:"queue_persistence_ratio"`
	// ProcessPlateauCV is the coefficient of variation below which output
	// counts as plateaued.
	ProcessPlateauCV float64 `yaml:"process_plateau_cv"`
	// ProcessCapacityUtilization is the normalized utilization at which a
	// day counts as at capacity.
	ProcessCapacityUtilization float64 `yaml:"process_capacity_utilization"`
}

// Weights holds the score contributed by each satisfied rule.
type Weights struct {
	QueueAvgLevel         float64 `yaml:"queue_avg_level"`
	QueueGrowthStreak     float64 `yaml:"queue_growth_streak"`
	QueueDaysAbove        float64 `yaml:"queue_days_above"`
	QueuePersistence      float64 `yaml:"queue_persistence"`
	ProcessUtilization    float64 `yaml:"process_utilization"`
	ProcessCapacityDays   float64 `yaml:"process_capacity_days"`
	ProcessUpstreamGrowth float64 `yaml:"process_upstream_growth"`
}

// Overrides lists metric keys forced into discovery for one scenario.
type Overrides struct {
	Queues    []string `yaml:"queues"`
	Processes []string `yaml:"processes"`
}

// Config is the full scoring configuration. It is passed by value and never
// mutated by the analysis.
type Config struct {
	Thresholds Thresholds           `yaml:"thresholds"`
	Weights    Weights              `yaml:"weights"`
	Overrides  map[string]Overrides `yaml:"overrides"`
}

// DefaultConfig returns the stock thresholds, weights and overrides.
func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{
			QueueHighLevelPct:          0.5,
			QueueGrowthStreakDays:      20,
			QueueDaysAboveThresholdPct: 0.5,
			ProcessHighUtilization:     0.9,
			ProcessCapacityDaysPct:     0.5,
			QueueWindowFactor:          0.8,
			QueuePersistenceRatio:      1.2,
			ProcessPlateauCV:           0.15,
			ProcessCapacityUtilization: 0.95,
		},
		Weights: Weights{
			QueueAvgLevel:         0.3,
			QueueGrowthStreak:     0.2,
			QueueDaysAbove:        0.3,
			QueuePersistence:      0.2,
			ProcessUtilization:    0.3,
			ProcessCapacityDays:   0.3,
			ProcessUpstreamGrowth: 0.4,
		},
		Overrides: map[string]Overrides{
			"custom": {
				Queues: []string{
					"custom_queue_2_level_first_pass",
					"custom_queue_2_level_second_pass",
				},
				Processes: []string{
					"custom_station_2_output_first_pass",
					"custom_deliveries_deliveries",
				},
			},
		},
	}
}

// OverridesFor returns the overrides of scenario, empty when it has none.
func (c Config) OverridesFor(scenario string) Overrides {
	o, ok := c.Overrides[scenario]
	if !ok {
		return Overrides{}
	}
	return Overrides{
		Queues:    slices.Clone(o.Queues),
		Processes: slices.Clone(o.Processes),
	}
}
