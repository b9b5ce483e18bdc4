package analytics

import (
	"math"
	"slices"
	"testing"

	"github.com/guregu/null/v5"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	w := cfg.Weights
	if sum := w.QueueAvgLevel + w.QueueGrowthStreak + w.QueueDaysAbove + w.QueuePersistence; math.Abs(sum-1) > 1e-9 {
		t.Errorf("queue weights sum = %v, want 1", sum)
	}
	if w.ProcessUtilization != 0.3 || w.ProcessCapacityDays != 0.3 || w.ProcessUpstreamGrowth != 0.4 {
		t.Errorf("unexpected process weights %+v", w)
	}

	th := cfg.Thresholds
	if th.QueueHighLevelPct != 0.5 || th.QueueGrowthStreakDays != 20 || th.QueueDaysAboveThresholdPct != 0.5 ||
		th.ProcessHighUtilization != 0.9 || th.ProcessCapacityDaysPct != 0.5 {
		t.Errorf("unexpected thresholds %+v", th)
	}

	custom := cfg.OverridesFor("custom")
	if len(custom.Queues) != 2 || len(custom.Processes) != 2 {
		t.Errorf("custom overrides = %+v", custom)
	}
	if o := cfg.OverridesFor("standard"); len(o.Queues) != 0 || len(o.Processes) != 0 {
		t.Errorf("standard should have no overrides, got %+v", o)
	}
}

func TestQueueRules(t *testing.T) {
	rules := QueueRules(DefaultConfig())

	tests := []struct {
		name    string
		feature models.QueueFeature
		want    []string
	}{
		{
			name:    "high average only",
			feature: models.QueueFeature{MaxLevel: 40, AverageLevel: 25, GrowthStreak: 3, DaysAboveThreshold: 4, TotalDays: 50},
			want:    []string{RuleQueueAvgLevel},
		},
		{
			name:    "long growth streak",
			feature: models.QueueFeature{MaxLevel: 40, AverageLevel: 10, GrowthStreak: 20, TotalDays: 50},
			want:    []string{RuleQueueGrowthStreak},
		},
		{
			name:    "days above threshold",
			feature: models.QueueFeature{MaxLevel: 40, AverageLevel: 10, DaysAboveThreshold: 25, TotalDays: 50},
			want:    []string{RuleQueueDaysAbove},
		},
		{
			name: "persistence",
			feature: models.QueueFeature{
				MaxLevel: 40, AverageLevel: 10, TotalDays: 4,
				TimeSeries: samples(1, 1, 10, 10),
			},
			want: []string{RuleQueuePersistence},
		},
		{
			name: "persistence needs more than twenty percent",
			feature: models.QueueFeature{
				MaxLevel: 40, AverageLevel: 10, TotalDays: 4,
				TimeSeries: samples(10, 10, 12, 12),
			},
			want: nil,
		},
		{
			name: "persistence ignores absent samples",
			feature: models.QueueFeature{
				MaxLevel: 40, AverageLevel: 10, TotalDays: 3,
				TimeSeries: samples(2, nil, nil, 5),
			},
			want: []string{RuleQueuePersistence},
		},
		{
			name: "empty first half",
			feature: models.QueueFeature{
				MaxLevel: 40, AverageLevel: 10, TotalDays: 1,
				TimeSeries: samples(5),
			},
			want: nil,
		},
		{
			name:    "no samples",
			feature: models.QueueFeature{TimeSeries: samples(nil, nil)},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := evaluate(rules, tt.feature)
			if !slices.Equal(got, tt.want) {
				t.Errorf("satisfied = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueueScore_WorkedExample(t *testing.T) {
	q := models.QueueFeature{MaxLevel: 40, AverageLevel: 25, GrowthStreak: 3, DaysAboveThreshold: 4, TotalDays: 50}

	score, _ := evaluate(QueueRules(DefaultConfig()), q)
	if score != 0.3 {
		t.Errorf("score = %v, want 0.3", score)
	}
}

func TestProcessRules(t *testing.T) {
	rules := ProcessRules(DefaultConfig())
	noisy := samples(1, 100, 1, 100, 1, 100)
	flat := samples(1, 100, 50, 50, 50, 50)

	tests := []struct {
		name    string
		feature models.ProcessFeature
		want    []string
		score   float64
	}{
		{
			name: "utilization and capacity",
			feature: models.ProcessFeature{
				UtilizationKey: "u", UtilizationRate: null.FloatFrom(0.95),
				DaysAtCapacity: 30, TotalDays: 50, TimeSeries: noisy,
			},
			want:  []string{RuleProcessUtilization, RuleProcessCapacityDays},
			score: 0.6,
		},
		{
			name: "all rules",
			feature: models.ProcessFeature{
				UtilizationKey: "u", UtilizationRate: null.FloatFrom(0.95),
				DaysAtCapacity: 30, TotalDays: 50, TimeSeries: flat,
			},
			want:  []string{RuleProcessUtilization, RuleProcessCapacityDays, RuleProcessPlateau},
			score: 0.8,
		},
		{
			name:    "plateau only",
			feature: models.ProcessFeature{TotalDays: 6, TimeSeries: flat},
			want:    []string{RuleProcessPlateau},
			score:   0.2,
		},
		{
			name: "capacity ignored without utilization",
			feature: models.ProcessFeature{
				UtilizationKey: "u", DaysAtCapacity: 30, TotalDays: 50, TimeSeries: noisy,
			},
			want:  nil,
			score: 0,
		},
		{
			name:    "zero mean second half",
			feature: models.ProcessFeature{TotalDays: 2, TimeSeries: samples(0, 0)},
			want:    nil,
			score:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, got := evaluate(rules, tt.feature)
			if !slices.Equal(got, tt.want) {
				t.Errorf("satisfied = %v, want %v", got, tt.want)
			}
			if RoundConfidence(score) != tt.score {
				t.Errorf("score = %v, want %v", score, tt.score)
			}
		})
	}
}

func TestEvaluate_Clamps(t *testing.T) {
	rules := []Rule[int]{
		{Name: "a", Weight: 0.7, Applies: func(int) bool { return true }},
		{Name: "b", Weight: 0.7, Applies: func(int) bool { return true }},
	}
	if score, _ := evaluate(rules, 0); score != 1 {
		t.Errorf("score = %v, want 1", score)
	}

	negative := []Rule[int]{{Name: "n", Weight: -0.5, Applies: func(int) bool { return true }}}
	if score, _ := evaluate(negative, 0); score != 0 {
		t.Errorf("score = %v, want 0", score)
	}
}

func TestScore_Empty(t *testing.T) {
	r := Score(DefaultConfig(), nil, nil)

	want := models.EmptyVerdict()
	if r.Verdict != want {
		t.Errorf("verdict = %+v, want %+v", r.Verdict, want)
	}
	if r.Verdict.Detected() {
		t.Error("empty verdict should not be detected")
	}
}

func TestScore_TieKeepsDiscoveryOrder(t *testing.T) {
	queues := []models.QueueFeature{
		{ID: "queue_a", MaxLevel: 10, AverageLevel: 1, TotalDays: 10},
		{ID: "queue_b", MaxLevel: 10, AverageLevel: 1, TotalDays: 10},
	}
	processes := []models.ProcessFeature{
		{ID: "station_1", TotalDays: 10},
	}

	r := Score(DefaultConfig(), queues, processes)
	if r.Verdict.PrimaryBottleneck != "queue_a" || r.Verdict.Type != models.BottleneckQueue {
		t.Errorf("verdict = %+v, want queue_a", r.Verdict)
	}
	if r.Verdict.TimeWindow != nil {
		t.Errorf("expected no window, got %+v", r.Verdict.TimeWindow)
	}

	ids := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		ids[i] = c.ID
	}
	if want := []string{"queue_a", "queue_b", "station_1"}; !slices.Equal(ids, want) {
		t.Errorf("candidate order = %v, want %v", ids, want)
	}
}

func TestScore_ProcessWinnerWindow(t *testing.T) {
	processes := []models.ProcessFeature{
		{ID: "station_1", TotalDays: 7, TimeSeries: samples(5, 5, 5, 5, 5, 5, 5)},
		{
			ID: "station_2", UtilizationKey: "u", UtilizationRate: null.FloatFrom(0.99),
			DaysAtCapacity: 7, TotalDays: 7, TimeSeries: samples(1, 9, 1, 9, 1, 9, 1),
		},
	}

	r := Score(DefaultConfig(), nil, processes)
	v := r.Verdict
	if v.PrimaryBottleneck != "station_2" || v.Type != models.BottleneckProcess {
		t.Fatalf("verdict = %+v, want station_2", v)
	}
	if v.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", v.Confidence)
	}
	if v.TimeWindow == nil || *v.TimeWindow != (models.TimeWindow{Start: 3, End: 6}) {
		t.Errorf("window = %+v, want {3 6}", v.TimeWindow)
	}

	// Without a utilization metric the process window is null.
	r = Score(DefaultConfig(), nil, processes[:1])
	if r.Verdict.PrimaryBottleneck != "station_1" || r.Verdict.TimeWindow != nil {
		t.Errorf("verdict = %+v, want station_1 without window", r.Verdict)
	}
}

func TestQueueWindow(t *testing.T) {
	tests := []struct {
		name   string
		series []null.Float
		max    float64
		want   *models.TimeWindow
	}{
		{"worked example", samples(5, 5, 33, 34, 35, 5, 5), 35, &models.TimeWindow{Start: 2, End: 4}},
		{"absent samples skipped", samples(nil, 35, nil, 5, 30, nil), 35, &models.TimeWindow{Start: 1, End: 4}},
		{"single qualifying day", samples(1, 10, 1), 10, &models.TimeWindow{Start: 1, End: 1}},
		{"all absent", samples(nil, nil), 0, nil},
		{"empty", nil, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QueueWindow(tt.series, tt.max, 0.8)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("QueueWindow() = %+v, want nil", got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("QueueWindow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRoundConfidence(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{0.3 + 0.2 + 0.2, 0.7},
		{0.1 + 0.2, 0.3},
		{0.125, 0.13},
		{0.8000000000000002, 0.8},
		{2.0 / 3.0, 0.67},
	}

	for _, tt := range tests {
		if got := RoundConfidence(tt.in); got != tt.want {
			t.Errorf("RoundConfidence(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestScore_AlternateConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.QueueAvgLevel = 0.9
	cfg.Thresholds.QueueHighLevelPct = 0.1

	queues := []models.QueueFeature{{ID: "queue_a", MaxLevel: 10, AverageLevel: 2, TotalDays: 10}}
	r := Score(cfg, queues, nil)
	if r.Verdict.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", r.Verdict.Confidence)
	}

	// The default config is unaffected.
	if DefaultConfig().Weights.QueueAvgLevel != 0.3 {
		t.Error("DefaultConfig should not be mutated")
	}
}
