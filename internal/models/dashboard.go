package models

import "github.com/guregu/null/v5"

// BottleneckType identifies the kind of candidate that won.
type BottleneckType string

const (
	// BottleneckQueue is a queue-level bottleneck.
	BottleneckQueue BottleneckType = "queue"
	// BottleneckProcess is a process-output bottleneck.
	BottleneckProcess BottleneckType = "process"
	// BottleneckNone means no candidates were found.
	BottleneckNone BottleneckType = "none"
)

// NoBottleneck is the primary_bottleneck value when nothing was detected.
const NoBottleneck = "none"

// TimeWindow is an inclusive range of day indices.
type TimeWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Verdict is the primary bottleneck diagnosis for one scenario.
type Verdict struct {
	PrimaryBottleneck string         `json:"primary_bottleneck"`
	Type              BottleneckType `json:"type"`
	Confidence        float64        `json:"confidence"`
	TimeWindow        *TimeWindow    `json:"time_window"`
}

// EmptyVerdict returns the verdict used when there are no candidates.
func EmptyVerdict() Verdict {
	return Verdict{
		PrimaryBottleneck: NoBottleneck,
		Type:              BottleneckNone,
		Confidence:        0,
		TimeWindow:        nil,
	}
}

// Detected reports whether the verdict names a bottleneck.
func (v Verdict) Detected() bool {
	return v.Type != BottleneckNone && v.PrimaryBottleneck != NoBottleneck
}

// ChartSeries is one line of a chart.
type ChartSeries struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Values    []null.Float `json:"values"`
	Highlight bool         `json:"highlight"`
}

// Chart is a labelled set of series sharing an x axis of day numbers.
type Chart struct {
	Labels []int         `json:"labels"`
	Series []ChartSeries `json:"series"`
}

// HighlightedSeries returns the highlighted series, if any.
func (c Chart) HighlightedSeries() (ChartSeries, bool) {
	for _, s := range c.Series {
		if s.Highlight {
			return s, true
		}
	}
	return ChartSeries{}, false
}

// Charts groups the charts of a scenario tab.
type Charts struct {
	QueueLevels   Chart  `json:"queue_levels"`
	ProcessOutput Chart  `json:"process_output"`
	Utilization   *Chart `json:"utilization,omitempty"`
}

// TabPayload is the chart-ready result for one scenario.
type TabPayload struct {
	Summary Verdict `json:"summary"`
	Charts  Charts  `json:"charts"`
}

// DashboardMeta identifies the simulation and generation time.
type DashboardMeta struct {
	SimulationID string `json:"simulation_id"`
	GeneratedAt  string `json:"generated_at"`
}

// Dashboard is the document consumed by dashboard frontends.
type Dashboard struct {
	Meta DashboardMeta          `json:"meta"`
	Tabs map[string]*TabPayload `json:"tabs"`
	// Finance is present when the simulation carries financial or inventory
	// sheets.
	Finance *FinancePayload `json:"finance,omitempty"`
}

// SheetMeta describes one sheet of the parsed workbook.
type SheetMeta struct {
	Days    int      `json:"days,omitempty"`
	Events  int      `json:"events,omitempty"`
	Metrics []string `json:"metrics"`
}

// SimulationMeta is the content of meta.json written by the parser.
type SimulationMeta struct {
	SimulationID string               `json:"simulation_id"`
	Source       string               `json:"source"`
	File         string               `json:"file"`
	ParsedAt     string               `json:"parsed_at"`
	Sheets       map[string]SheetMeta `json:"sheets"`
}
