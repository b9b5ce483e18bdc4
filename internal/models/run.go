package models

import (
	"time"

	"github.com/guregu/null/v5"
)

// AnalysisRun records one execution of the dashboard analysis.
type AnalysisRun struct {
	ID            string
	SimulationID  string
	GeneratedAt   time.Time
	DashboardPath string
	ScenarioCount int
	DurationMs    int64
	Error         string
}

// Failed reports whether the run ended with an error.
func (r AnalysisRun) Failed() bool {
	return r.Error != ""
}

// ScenarioVerdict is the persisted verdict of one scenario within a run.
type ScenarioVerdict struct {
	ID                int64
	RunID             string
	Scenario          string
	PrimaryBottleneck string
	Type              BottleneckType
	Confidence        float64
	WindowStart       null.Int
	WindowEnd         null.Int
	RecordedAt        time.Time
}

// NewScenarioVerdict flattens a verdict for storage.
func NewScenarioVerdict(runID, scenario string, v Verdict) ScenarioVerdict {
	sv := ScenarioVerdict{
		RunID:             runID,
		Scenario:          scenario,
		PrimaryBottleneck: v.PrimaryBottleneck,
		Type:              v.Type,
		Confidence:        v.Confidence,
	}
	if v.TimeWindow != nil {
		sv.WindowStart = null.IntFrom(int64(v.TimeWindow.Start))
		sv.WindowEnd = null.IntFrom(int64(v.TimeWindow.End))
	}
	return sv
}

// Window returns the stored window, or nil when none was recorded.
func (sv ScenarioVerdict) Window() *TimeWindow {
	if !sv.WindowStart.Valid || !sv.WindowEnd.Valid {
		return nil
	}
	return &TimeWindow{Start: int(sv.WindowStart.Int64), End: int(sv.WindowEnd.Int64)}
}

// BottleneckFrequency counts how often a bottleneck won for a scenario.
type BottleneckFrequency struct {
	Scenario          string
	PrimaryBottleneck string
	Type              BottleneckType
	Runs              int
	AvgConfidence     float64
	LastSeen          time.Time
}
