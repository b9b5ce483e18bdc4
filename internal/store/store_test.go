package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guregu/null/v5"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestDayFileName(t *testing.T) {
	tests := []struct {
		day  int
		want string
	}{
		{0, "day_000.json"},
		{7, "day_007.json"},
		{42, "day_042.json"},
		{365, "day_365.json"},
		{1000, "day_1000.json"},
	}

	for _, tt := range tests {
		if got := DayFileName(tt.day); got != tt.want {
			t.Errorf("DayFileName(%d) = %q, want %q", tt.day, got, tt.want)
		}
	}
}

func TestLoadDay_PreservesKeyOrder(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	writeFile(t, s.DayPath("standard", 3), `{
		"simulation_id": "medica_day_3",
		"sheet": "standard",
		"day": 3,
		"metrics": {
			"standard_queue_b_level": 5,
			"standard_queue_a_level": 7.5,
			"standard_station_1_output": null,
			"standard_note": "n/a",
			"standard_flag": true
		}
	}`)

	rec, err := s.LoadDay(context.Background(), "standard", 3)
	if err != nil {
		t.Fatalf("LoadDay() failed: %v", err)
	}

	if rec.Day != 3 {
		t.Errorf("Day = %d, want 3", rec.Day)
	}

	wantKeys := []string{
		"standard_queue_b_level",
		"standard_queue_a_level",
		"standard_station_1_output",
		"standard_note",
		"standard_flag",
	}
	keys := rec.Metrics.Keys()
	if strings.Join(keys, ",") != strings.Join(wantKeys, ",") {
		t.Errorf("Keys() = %v, want %v", keys, wantKeys)
	}

	if v := rec.Metrics.Value("standard_queue_a_level"); !v.Valid || v.Float64 != 7.5 {
		t.Errorf("queue_a value = %v, want 7.5", v)
	}
	for _, key := range []string{"standard_station_1_output", "standard_note", "standard_flag"} {
		if !rec.Metrics.Has(key) {
			t.Errorf("key %q should be present", key)
		}
		if rec.Metrics.Value(key).Valid {
			t.Errorf("key %q should have an absent value", key)
		}
	}
}

func TestLoadDay_NotFound(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.LoadDay(context.Background(), "standard", 0)
	if !errors.Is(err, ErrDayNotFound) {
		t.Errorf("expected ErrDayNotFound, got %v", err)
	}
}

func TestLoadDay_Malformed(t *testing.T) {
	s := New(t.TempDir())
	writeFile(t, s.DayPath("standard", 0), `{"day": 0, "metrics": {`)

	_, err := s.LoadDay(context.Background(), "standard", 0)
	if err == nil {
		t.Fatal("expected error for malformed file")
	}
	if errors.Is(err, ErrDayNotFound) {
		t.Error("malformed file should not be reported as missing")
	}
}

func TestLoadScenarioData_SkipsMissingDays(t *testing.T) {
	s := New(t.TempDir(), WithConcurrency(2))
	for _, day := range []int{0, 1, 3, 5} {
		writeFile(t, s.DayPath("custom", day),
			`{"day": `+itoa(day)+`, "metrics": {"custom_queue_1_level": `+itoa(day*10)+`}}`)
	}

	records, err := s.LoadScenarioData(context.Background(), "custom", 0, 6)
	if err != nil {
		t.Fatalf("LoadScenarioData() failed: %v", err)
	}

	labels := models.Labels(records)
	want := []int{0, 1, 3, 5}
	if len(labels) != len(want) {
		t.Fatalf("loaded %d days, want %d", len(labels), len(want))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %d, want %d", i, labels[i], want[i])
		}
	}
}

func TestLoadScenarioData_FatalError(t *testing.T) {
	s := New(t.TempDir())
	writeFile(t, s.DayPath("standard", 0), `{"day": 0, "metrics": {}}`)
	writeFile(t, s.DayPath("standard", 1), `not json`)

	if _, err := s.LoadScenarioData(context.Background(), "standard", 0, 2); err == nil {
		t.Error("expected error for malformed day file")
	}
}

func TestLoadScenarioData_EmptyRange(t *testing.T) {
	s := New(t.TempDir())

	records, err := s.LoadScenarioData(context.Background(), "standard", 0, -1)
	if err != nil {
		t.Fatalf("LoadScenarioData() failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestLoadScenarioData_Cancelled(t *testing.T) {
	s := New(t.TempDir())
	writeFile(t, s.DayPath("standard", 0), `{"day": 0, "metrics": {}}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.LoadScenarioData(ctx, "standard", 0, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoadMeta(t *testing.T) {
	s := New(t.TempDir())

	if _, err := s.LoadMeta(); !errors.Is(err, ErrMetaNotFound) {
		t.Errorf("expected ErrMetaNotFound, got %v", err)
	}

	writeFile(t, s.MetaPath(), `{
		"simulation_id": "medica_day_50",
		"source": "medica",
		"file": "run.xlsx",
		"parsed_at": "2024-01-01T00:00:00.000Z",
		"sheets": {
			"standard": {"days": 51, "metrics": ["day", "standard_queue_1_level"]},
			"history": {"events": 3, "metrics": ["day", "event"]}
		}
	}`)

	meta, err := s.LoadMeta()
	if err != nil {
		t.Fatalf("LoadMeta() failed: %v", err)
	}
	if meta.SimulationID != "medica_day_50" {
		t.Errorf("SimulationID = %q", meta.SimulationID)
	}
	if meta.Sheets["standard"].Days != 51 {
		t.Errorf("standard days = %d, want 51", meta.Sheets["standard"].Days)
	}
	if meta.Sheets["history"].Events != 3 {
		t.Errorf("history events = %d, want 3", meta.Sheets["history"].Events)
	}
}

func TestWriteChunkedOutput_RoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "output"))

	parsed := ParsedSimulation{
		Source:   "medica",
		File:     "run.xlsx",
		ParsedAt: "2024-01-01T00:00:00.000Z",
		Sheets: []Sheet{
			{Name: "standard", Rows: []models.DayRecord{
				{Day: 0, Metrics: models.NewMetrics(
					models.Entry{Key: "standard_queue_z_level", Value: null.FloatFrom(1)},
					models.Entry{Key: "standard_queue_a_level", Value: null.Float{}},
				)},
				{Day: 12, Metrics: models.NewMetrics(
					models.Entry{Key: "standard_queue_z_level", Value: null.FloatFrom(4)},
				)},
			}},
			{Name: "custom"},
		},
		History: []json.RawMessage{json.RawMessage(`{"day": 1, "event": "buy"}`)},
	}

	stats, err := s.WriteChunkedOutput(context.Background(), parsed, "")
	if err != nil {
		t.Fatalf("WriteChunkedOutput() failed: %v", err)
	}
	if stats.SimulationID != "medica_day_12" {
		t.Errorf("SimulationID = %q, want medica_day_12", stats.SimulationID)
	}
	if stats.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, want 4", stats.TotalFiles)
	}

	meta, err := s.LoadMeta()
	if err != nil {
		t.Fatalf("LoadMeta() failed: %v", err)
	}
	std := meta.Sheets["standard"]
	if std.Days != 2 {
		t.Errorf("standard days = %d, want 2", std.Days)
	}
	if strings.Join(std.Metrics, ",") != "day,standard_queue_z_level,standard_queue_a_level" {
		t.Errorf("standard metrics = %v", std.Metrics)
	}
	if meta.Sheets["custom"].Days != 0 {
		t.Errorf("custom days = %d, want 0", meta.Sheets["custom"].Days)
	}
	if h := meta.Sheets["history"]; h.Events != 1 || strings.Join(h.Metrics, ",") != "day,event" {
		t.Errorf("history meta = %+v", h)
	}

	rec, err := s.LoadDay(context.Background(), "standard", 0)
	if err != nil {
		t.Fatalf("LoadDay() failed: %v", err)
	}
	if strings.Join(rec.Metrics.Keys(), ",") != "standard_queue_z_level,standard_queue_a_level" {
		t.Errorf("round-trip key order = %v", rec.Metrics.Keys())
	}
	if rec.Metrics.Value("standard_queue_a_level").Valid {
		t.Error("null value should round-trip as absent")
	}

	if _, err := os.Stat(s.HistoryPath()); err != nil {
		t.Errorf("history file missing: %v", err)
	}
}

func TestWriteDashboard(t *testing.T) {
	s := New(t.TempDir())
	path := filepath.Join(s.Dir(), "frontend", "bottleneck_dashboard.json")

	dashboard := &models.Dashboard{
		Meta: models.DashboardMeta{SimulationID: "medica_day_1", GeneratedAt: "2024-01-01T00:00:00.000Z"},
		Tabs: map[string]*models.TabPayload{},
	}

	if err := s.WriteDashboard(path, dashboard); err != nil {
		t.Fatalf("WriteDashboard() failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"meta\": {") {
		t.Errorf("dashboard should be 2-space indented, got %s", data)
	}

	loaded, err := s.LoadDashboard(path)
	if err != nil {
		t.Fatalf("LoadDashboard() failed: %v", err)
	}
	if loaded.Meta != dashboard.Meta {
		t.Errorf("meta = %+v, want %+v", loaded.Meta, dashboard.Meta)
	}
}

func TestLoadDashboard_NotFound(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.LoadDashboard(filepath.Join(s.Dir(), "missing.json"))
	if !errors.Is(err, ErrDashboardNotFound) {
		t.Errorf("expected ErrDashboardNotFound, got %v", err)
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
