package analytics

import (
	"math"
	"slices"
	"testing"

	"github.com/guregu/null/v5"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

// record builds a day record from alternating key and value arguments.
// A nil value is stored as a present key with an absent sample.
func record(day int, kv ...any) models.DayRecord {
	entries := make([]models.Entry, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		e := models.Entry{Key: kv[i].(string)}
		switch v := kv[i+1].(type) {
		case int:
			e.Value = null.FloatFrom(float64(v))
		case float64:
			e.Value = null.FloatFrom(v)
		}
		entries = append(entries, e)
	}
	return models.DayRecord{Day: day, Metrics: models.NewMetrics(entries...)}
}

func samples(values ...any) []null.Float {
	out := make([]null.Float, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case int:
			out[i] = null.FloatFrom(float64(v))
		case float64:
			out[i] = null.FloatFrom(v)
		}
	}
	return out
}

func TestDiscoverKeys_SuffixOrder(t *testing.T) {
	records := []models.DayRecord{
		record(0,
			"standard_queue_3_level", 1,
			"standard_station_1_output", 2,
			"standard_queue_1_level", 3,
			"standard_cash", 4,
			"standard_level_meter", 5,
			"standard_station_2_output", 6,
		),
	}
	cfg := DefaultConfig()

	queues := DiscoverQueueKeys(records, "standard", cfg)
	if want := []string{"standard_queue_3_level", "standard_queue_1_level"}; !slices.Equal(queues, want) {
		t.Errorf("DiscoverQueueKeys() = %v, want %v", queues, want)
	}

	processes := DiscoverProcessKeys(records, "standard", cfg)
	if want := []string{"standard_station_1_output", "standard_station_2_output"}; !slices.Equal(processes, want) {
		t.Errorf("DiscoverProcessKeys() = %v, want %v", processes, want)
	}
}

func TestDiscoverKeys_CustomOverrides(t *testing.T) {
	records := []models.DayRecord{
		record(0, "custom_queue_1_level", 1, "custom_station_1_output", 5),
		record(1, "custom_queue_1_level", 2, "custom_deliveries_deliveries", nil),
		record(2, "custom_queue_1_level", 3, "custom_queue_2_level_first_pass", 7),
	}
	cfg := DefaultConfig()

	queues := DiscoverQueueKeys(records, "custom", cfg)
	wantQueues := []string{"custom_queue_1_level", "custom_queue_2_level_first_pass"}
	if !slices.Equal(queues, wantQueues) {
		t.Errorf("queues = %v, want %v", queues, wantQueues)
	}

	processes := DiscoverProcessKeys(records, "custom", cfg)
	wantProcesses := []string{"custom_station_1_output", "custom_deliveries_deliveries"}
	if !slices.Equal(processes, wantProcesses) {
		t.Errorf("processes = %v, want %v", processes, wantProcesses)
	}

	// Overrides belong to the custom scenario only.
	if got := DiscoverQueueKeys(records, "standard", cfg); !slices.Equal(got, []string{"custom_queue_1_level"}) {
		t.Errorf("standard queues = %v", got)
	}
}

func TestDiscoverKeys_OverrideAlreadyDiscovered(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Overrides = map[string]Overrides{
		"standard": {Queues: []string{"standard_queue_1_level", "standard_queue_1_level"}},
	}
	records := []models.DayRecord{record(0, "standard_queue_1_level", 1)}

	got := DiscoverQueueKeys(records, "standard", cfg)
	if !slices.Equal(got, []string{"standard_queue_1_level"}) {
		t.Errorf("DiscoverQueueKeys() = %v, want a single key", got)
	}
}

func TestExtract_Empty(t *testing.T) {
	cfg := DefaultConfig()
	if got := ExtractQueueFeatures(nil, "standard", cfg); len(got) != 0 {
		t.Errorf("expected no queue features, got %d", len(got))
	}
	if got := ExtractProcessFeatures(nil, "standard", cfg); len(got) != 0 {
		t.Errorf("expected no process features, got %d", len(got))
	}
}

func TestExtractQueueFeatures(t *testing.T) {
	values := []any{10, 20, nil, 40, 35, 30}
	records := make([]models.DayRecord, len(values))
	for i, v := range values {
		records[i] = record(i, "standard_queue_1_level", v)
	}

	queues := ExtractQueueFeatures(records, "standard", DefaultConfig())
	if len(queues) != 1 {
		t.Fatalf("expected 1 queue, got %d", len(queues))
	}
	q := queues[0]

	if q.ID != "queue_1_level" {
		t.Errorf("ID = %q", q.ID)
	}
	if q.Name != "Queue 1 Level" {
		t.Errorf("Name = %q", q.Name)
	}
	if len(q.TimeSeries) != len(values) {
		t.Errorf("TimeSeries length = %d, want %d", len(q.TimeSeries), len(values))
	}
	if q.TotalDays != 5 {
		t.Errorf("TotalDays = %d, want 5", q.TotalDays)
	}
	if q.MaxLevel != 40 {
		t.Errorf("MaxLevel = %v, want 40", q.MaxLevel)
	}
	if q.AverageLevel != 27 {
		t.Errorf("AverageLevel = %v, want 27", q.AverageLevel)
	}
	// threshold 32: 40 and 35
	if q.DaysAboveThreshold != 2 {
		t.Errorf("DaysAboveThreshold = %d, want 2", q.DaysAboveThreshold)
	}
	if q.GrowthStreak != 1 {
		t.Errorf("GrowthStreak = %d, want 1", q.GrowthStreak)
	}
}

func TestGrowthStreak(t *testing.T) {
	tests := []struct {
		name   string
		series []null.Float
		want   int
	}{
		{"empty", nil, 0},
		{"single", samples(1), 0},
		{"increasing", samples(1, 2, 3, 4), 3},
		{"flat", samples(2, 2, 2), 0},
		{"reset", samples(1, 2, 3, 1, 2), 2},
		{"absent breaks run", samples(1, 2, nil, 3, 4, 5), 2},
		{"absent at start", samples(nil, 1, 2), 1},
		{"all absent", samples(nil, nil), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := growthStreak(tt.series); got != tt.want {
				t.Errorf("growthStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExtractProcessFeatures_Utilization(t *testing.T) {
	records := []models.DayRecord{
		record(0, "standard_station_1_output", 10, "standard_station_1_workload_%", 96, "standard_station_2_output", 4),
		record(1, "standard_station_1_output", 12, "standard_station_1_workload_%", 0.97),
		record(2, "standard_station_1_output", 11, "standard_station_1_workload_%", 50),
		record(3, "standard_station_1_output", nil, "standard_station_1_workload_%", nil),
	}

	processes := ExtractProcessFeatures(records, "standard", DefaultConfig())
	if len(processes) != 2 {
		t.Fatalf("expected 2 processes, got %d", len(processes))
	}

	p := processes[0]
	if p.ID != "station_1" || p.Name != "Station 1" {
		t.Errorf("ID/Name = %q/%q", p.ID, p.Name)
	}
	if p.UtilizationKey != "standard_station_1_workload_%" {
		t.Errorf("UtilizationKey = %q", p.UtilizationKey)
	}
	if !p.UtilizationRate.Valid {
		t.Fatal("UtilizationRate should be present")
	}
	want := (0.96 + 0.97 + 0.5) / 3
	if math.Abs(p.UtilizationRate.Float64-want) > 1e-9 {
		t.Errorf("UtilizationRate = %v, want %v", p.UtilizationRate.Float64, want)
	}
	if p.DaysAtCapacity != 2 {
		t.Errorf("DaysAtCapacity = %d, want 2", p.DaysAtCapacity)
	}
	if p.TotalDays != 3 || p.MaxOutput != 12 || p.AverageOutput != 11 {
		t.Errorf("stats = total %d max %v avg %v", p.TotalDays, p.MaxOutput, p.AverageOutput)
	}

	q := processes[1]
	if q.HasUtilization() || q.UtilizationRate.Valid || q.DaysAtCapacity != 0 {
		t.Errorf("station_2 should have no utilization, got %+v", q)
	}
	if q.TotalDays != 1 || len(q.TimeSeries) != 4 {
		t.Errorf("station_2 TotalDays = %d, series length %d", q.TotalDays, len(q.TimeSeries))
	}
}

func TestExtractProcessFeatures_UtilizationWithoutSamples(t *testing.T) {
	records := []models.DayRecord{
		record(0, "standard_station_1_output", 10, "standard_station_1_utilization", nil),
		record(1, "standard_station_1_output", 12),
	}

	p := ExtractProcessFeatures(records, "standard", DefaultConfig())[0]
	if !p.HasUtilization() {
		t.Error("utilization key should be discovered")
	}
	if p.UtilizationRate.Valid {
		t.Error("rate should be absent without samples")
	}
}

func TestStripScenarioAndDisplayName(t *testing.T) {
	tests := []struct {
		key, scenario, id, name string
	}{
		{"standard_queue_1_level", "standard", "queue_1_level", "Queue 1 Level"},
		{"custom_custom_queue_level", "custom", "custom_queue_level", "Custom Queue Level"},
		{"queue_standard_level", "standard", "queue_level", "Queue Level"},
		{"other_queue_level", "standard", "other_queue_level", "Other Queue Level"},
		{"standard_queue__level", "standard", "queue__level", "Queue  Level"},
	}

	for _, tt := range tests {
		id := stripScenario(tt.key, tt.scenario)
		if id != tt.id {
			t.Errorf("stripScenario(%q, %q) = %q, want %q", tt.key, tt.scenario, id, tt.id)
		}
		if name := displayName(id); name != tt.name {
			t.Errorf("displayName(%q) = %q, want %q", id, name, tt.name)
		}
	}
}
