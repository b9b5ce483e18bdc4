package analytics

import (
	"math"

	"github.com/guregu/null/v5"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

// Rule names, reported on ranked candidates.
const (
	RuleQueueAvgLevel       = "queue_avg_level"
	RuleQueueGrowthStreak   = "queue_growth_streak"
	RuleQueueDaysAbove      = "queue_days_above"
	RuleQueuePersistence    = "queue_persistence"
	RuleProcessUtilization  = "process_utilization"
	RuleProcessCapacityDays = "process_capacity_days"
	RuleProcessPlateau      = "process_plateau"
)

// plateauWeightFactor scales the upstream growth weight for the plateau rule.
const plateauWeightFactor = 0.5

// Rule adds Weight to a candidate's score when Applies holds.
type Rule[F any] struct {
	Name    string
	Weight  float64
	Applies func(F) bool
}

// QueueRules returns the ordered scoring rules for queue candidates.
func QueueRules(cfg Config) []Rule[models.QueueFeature] {
	t, w := cfg.Thresholds, cfg.Weights
	return []Rule[models.QueueFeature]{
		{
			Name:   RuleQueueAvgLevel,
			Weight: w.QueueAvgLevel,
			Applies: func(q models.QueueFeature) bool {
				return q.AverageLevel/q.MaxLevel >= t.QueueHighLevelPct
			},
		},
		{
			Name:   RuleQueueGrowthStreak,
			Weight: w.QueueGrowthStreak,
			Applies: func(q models.QueueFeature) bool {
				return q.GrowthStreak >= t.QueueGrowthStreakDays
			},
		},
		{
			Name:   RuleQueueDaysAbove,
			Weight: w.QueueDaysAbove,
			Applies: func(q models.QueueFeature) bool {
				return float64(q.DaysAboveThreshold)/float64(q.TotalDays) >= t.QueueDaysAboveThresholdPct
			},
		},
		{
			Name:   RuleQueuePersistence,
			Weight: w.QueuePersistence,
			Applies: func(q models.QueueFeature) bool {
				first, second := splitHalves(q.TimeSeries)
				firstMean, ok1 := meanOf(first)
				secondMean, ok2 := meanOf(second)
				return ok1 && ok2 && secondMean > firstMean*t.QueuePersistenceRatio
			},
		},
	}
}

// ProcessRules returns the ordered scoring rules for process candidates.
func ProcessRules(cfg Config) []Rule[models.ProcessFeature] {
	t, w := cfg.Thresholds, cfg.Weights
	return []Rule[models.ProcessFeature]{
		{
			Name:   RuleProcessUtilization,
			Weight: w.ProcessUtilization,
			Applies: func(p models.ProcessFeature) bool {
				return p.UtilizationRate.Valid && p.UtilizationRate.Float64 >= t.ProcessHighUtilization
			},
		},
		{
			Name:   RuleProcessCapacityDays,
			Weight: w.ProcessCapacityDays,
			Applies: func(p models.ProcessFeature) bool {
				return p.UtilizationRate.Valid &&
					float64(p.DaysAtCapacity)/float64(p.TotalDays) >= t.ProcessCapacityDaysPct
			},
		},
		{
			Name:   RuleProcessPlateau,
			Weight: w.ProcessUpstreamGrowth * plateauWeightFactor,
			Applies: func(p models.ProcessFeature) bool {
				_, second := splitHalves(p.TimeSeries)
				cv, ok := coefficientOfVariation(second)
				return ok && cv < t.ProcessPlateauCV
			},
		},
	}
}

// evaluate sums the weights of satisfied rules and clamps the result to [0,1].
func evaluate[F any](rules []Rule[F], feature F) (float64, []string) {
	score := 0.0
	var satisfied []string
	for _, r := range rules {
		if r.Applies(feature) {
			score += r.Weight
			satisfied = append(satisfied, r.Name)
		}
	}
	return math.Max(0, math.Min(score, 1)), satisfied
}

// splitHalves splits series at floor(n/2) and drops absent samples.
func splitHalves(series []null.Float) (first, second []float64) {
	mid := len(series) / 2
	return presentValues(series[:mid]), presentValues(series[mid:])
}

// coefficientOfVariation returns the population stddev divided by the mean.
func coefficientOfVariation(values []float64) (float64, bool) {
	mean, ok := meanOf(values)
	if !ok {
		return 0, false
	}
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / mean, true
}
