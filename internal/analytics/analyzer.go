package analytics

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/j-veylop/medica-bottleneck-tui/internal/logger"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

// RecordLoader loads the day records of a scenario for an inclusive day range.
// Missing days are omitted from the result.
type RecordLoader interface {
	LoadScenarioData(ctx context.Context, scenario string, startDay, endDay int) ([]models.DayRecord, error)
}

// Result is the full outcome of analyzing one scenario.
type Result struct {
	Scenario   string
	DaysLoaded int
	Queues     []models.QueueFeature
	Processes  []models.ProcessFeature
	Ranking    Ranking
	Payload    *models.TabPayload
}

// AnalyzeScenario loads days [0, totalDays-1] of scenario and returns its tab
// payload. It returns nil and no error when no day could be loaded.
func AnalyzeScenario(ctx context.Context, loader RecordLoader, cfg Config, scenario string, totalDays int) (*models.TabPayload, error) {
	res, err := Analyze(ctx, loader, cfg, scenario, totalDays)
	if err != nil || res == nil {
		return nil, err
	}
	return res.Payload, nil
}

// Analyze is AnalyzeScenario with the intermediate features and ranking.
func Analyze(ctx context.Context, loader RecordLoader, cfg Config, scenario string, totalDays int) (*Result, error) {
	records, err := loader.LoadScenarioData(ctx, scenario, 0, totalDays-1)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load scenario %s", scenario)
	}

	logger.Info("loaded scenario data", "scenario", scenario, "days", len(records))
	if len(records) == 0 {
		logger.Warn("no data found for scenario", "scenario", scenario)
		return nil, nil
	}

	res := AnalyzeRecords(records, cfg, scenario)
	v := res.Ranking.Verdict
	logger.Info("scenario analyzed",
		"scenario", scenario,
		"queues", len(res.Queues),
		"processes", len(res.Processes),
		"primary_bottleneck", v.PrimaryBottleneck,
		"type", v.Type,
		"confidence", v.Confidence,
	)
	return res, nil
}

// AnalyzeRecords runs extraction, scoring and payload building over records
// that are already loaded.
func AnalyzeRecords(records []models.DayRecord, cfg Config, scenario string) *Result {
	queues := ExtractQueueFeatures(records, scenario, cfg)
	processes := ExtractProcessFeatures(records, scenario, cfg)
	ranking := Score(cfg, queues, processes)

	return &Result{
		Scenario:   scenario,
		DaysLoaded: len(records),
		Queues:     queues,
		Processes:  processes,
		Ranking:    ranking,
		Payload:    BuildTabPayload(records, ranking.Verdict, queues, processes),
	}
}
