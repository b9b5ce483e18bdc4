// Package analysis runs the bottleneck analysis over every configured
// scenario and publishes the dashboard document.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gen2brain/beeep"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/medica-bottleneck-tui/internal/analytics"
	"github.com/j-veylop/medica-bottleneck-tui/internal/logger"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/store"
)

// GeneratedAtFormat is the layout of meta.generated_at: RFC 3339 in UTC with
// millisecond precision.
const GeneratedAtFormat = "2006-01-02T15:04:05.000Z"

// History persists runs and answers what the previous verdicts were.
type History interface {
	RecordRun(run *models.AnalysisRun, verdicts []models.ScenarioVerdict) error
	GetLastVerdicts() (map[string]models.ScenarioVerdict, error)
}

// Options configures a Runner.
type Options struct {
	Scenarios     []string
	Analysis      analytics.Config
	DashboardPath string
	Notifications bool
}

// Result is the outcome of one successful run.
type Result struct {
	RunID             string
	Dashboard         *models.Dashboard
	DashboardPath     string
	ScenariosAnalyzed []string
	Verdicts          []models.ScenarioVerdict
	Changes           []VerdictChange
	Duration          time.Duration
}

// VerdictChange is a scenario whose primary bottleneck moved since the
// previous recorded run.
type VerdictChange struct {
	Scenario string
	Previous string
	Current  string
}

// Runner produces the dashboard from the record store.
type Runner struct {
	store   *store.Store
	history History
	opts    Options
	notify  func(title, body string) error
	now     func() time.Time
}

// NewRunner creates a runner. history may be nil, in which case runs are not
// recorded and no change notifications are sent.
func NewRunner(s *store.Store, history History, opts Options) *Runner {
	return &Runner{
		store:   s,
		history: history,
		opts:    opts,
		notify: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
		now: time.Now,
	}
}

// DashboardPath returns where the dashboard is written.
func (r *Runner) DashboardPath() string {
	return r.opts.DashboardPath
}

// Run analyzes every configured scenario present in meta.json, writes the
// dashboard and records the run. Nothing is written unless every scenario
// succeeds. A failed run is still recorded with its error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := r.now()
	runID := uuid.NewString()

	res, simulationID, err := r.run(ctx, runID, start)
	if err != nil {
		r.record(&models.AnalysisRun{
			ID:            runID,
			SimulationID:  simulationID,
			GeneratedAt:   start,
			DashboardPath: r.opts.DashboardPath,
			DurationMs:    r.now().Sub(start).Milliseconds(),
			Error:         err.Error(),
		}, nil)
		return nil, err
	}

	res.Duration = r.now().Sub(start)
	previous := r.lastVerdicts()
	r.record(&models.AnalysisRun{
		ID:            runID,
		SimulationID:  simulationID,
		GeneratedAt:   start,
		DashboardPath: res.DashboardPath,
		ScenarioCount: len(res.ScenariosAnalyzed),
		DurationMs:    res.Duration.Milliseconds(),
	}, res.Verdicts)

	res.Changes = changedVerdicts(previous, res.Verdicts)
	r.notifyChanges(res.Changes)

	logger.Info("analysis complete",
		"run_id", runID,
		"simulation_id", simulationID,
		"scenarios", len(res.ScenariosAnalyzed),
		"duration", res.Duration,
	)
	return res, nil
}

func (r *Runner) run(ctx context.Context, runID string, start time.Time) (*Result, string, error) {
	meta, err := r.store.LoadMeta()
	if err != nil {
		return nil, "", err
	}
	logger.Info("loaded simulation metadata",
		"simulation_id", meta.SimulationID,
		"source", meta.Source,
		"parsed_at", meta.ParsedAt,
	)

	type job struct {
		scenario string
		days     int
	}
	var jobs []job
	for _, scenario := range r.opts.Scenarios {
		sheet, ok := meta.Sheets[scenario]
		if !ok || sheet.Days <= 0 {
			logger.Warn("scenario not found in metadata, skipping", "scenario", scenario)
			continue
		}
		jobs = append(jobs, job{scenario: scenario, days: sheet.Days})
	}

	results := make([]*analytics.Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		g.Go(func() error {
			res, err := analytics.Analyze(gctx, r.store, r.opts.Analysis, j.scenario, j.days)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	var finance *models.FinancePayload
	if days, ok := analytics.FinanceDays(meta); ok {
		g.Go(func() error {
			var err error
			finance, err = analytics.AnalyzeFinance(gctx, r.store, days)
			if err != nil {
				logger.Warn("finance section skipped", "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, meta.SimulationID, err
	}

	dashboard := &models.Dashboard{
		Meta: models.DashboardMeta{
			SimulationID: meta.SimulationID,
			GeneratedAt:  start.UTC().Format(GeneratedAtFormat),
		},
		Tabs:    make(map[string]*models.TabPayload, len(results)),
		Finance: finance,
	}
	out := &Result{
		RunID:         runID,
		Dashboard:     dashboard,
		DashboardPath: r.opts.DashboardPath,
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		dashboard.Tabs[res.Scenario] = res.Payload
		out.ScenariosAnalyzed = append(out.ScenariosAnalyzed, res.Scenario)
		out.Verdicts = append(out.Verdicts, models.NewScenarioVerdict(runID, res.Scenario, res.Payload.Summary))
	}

	if err := r.store.WriteDashboard(r.opts.DashboardPath, dashboard); err != nil {
		return nil, meta.SimulationID, errors.Wrap(err, "failed to write dashboard")
	}
	logger.Info("wrote dashboard", "path", r.opts.DashboardPath)

	return out, meta.SimulationID, nil
}

func (r *Runner) record(run *models.AnalysisRun, verdicts []models.ScenarioVerdict) {
	if r.history == nil {
		return
	}
	if err := r.history.RecordRun(run, verdicts); err != nil {
		logger.Error("failed to record analysis run", "run_id", run.ID, "error", err)
	}
}

func (r *Runner) lastVerdicts() map[string]models.ScenarioVerdict {
	if r.history == nil {
		return nil
	}
	last, err := r.history.GetLastVerdicts()
	if err != nil {
		logger.Warn("failed to load previous verdicts", "error", err)
		return nil
	}
	return last
}

// changedVerdicts lists scenarios whose primary bottleneck differs from the
// previous run. Scenarios without a previous verdict are not changes.
func changedVerdicts(previous map[string]models.ScenarioVerdict, current []models.ScenarioVerdict) []VerdictChange {
	var changes []VerdictChange
	for _, v := range current {
		prev, ok := previous[v.Scenario]
		if !ok || prev.PrimaryBottleneck == v.PrimaryBottleneck {
			continue
		}
		changes = append(changes, VerdictChange{
			Scenario: v.Scenario,
			Previous: prev.PrimaryBottleneck,
			Current:  v.PrimaryBottleneck,
		})
	}
	return changes
}

func (r *Runner) notifyChanges(changes []VerdictChange) {
	if !r.opts.Notifications {
		return
	}
	for _, c := range changes {
		title := fmt.Sprintf("Bottleneck changed: %s", c.Scenario)
		body := fmt.Sprintf("%s → %s", c.Previous, c.Current)
		if err := r.notify(title, body); err != nil {
			logger.Debug("notification failed", "error", err)
		}
	}
}

// Summary renders the per-scenario bottleneck summary printed after a
// headless run.
func Summary(res *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scenarios analyzed: %d\n", len(res.ScenariosAnalyzed))
	fmt.Fprintf(&b, "Dashboard file: %s\n", res.DashboardPath)
	fmt.Fprintf(&b, "Run: %s (%s)\n", res.RunID, res.Duration.Round(time.Millisecond))

	b.WriteString("\n--- Bottleneck Summary ---\n")
	for _, scenario := range res.ScenariosAnalyzed {
		tab := res.Dashboard.Tabs[scenario]
		if tab == nil {
			continue
		}
		v := tab.Summary
		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(scenario))
		fmt.Fprintf(&b, "  Primary Bottleneck: %s\n", v.PrimaryBottleneck)
		fmt.Fprintf(&b, "  Type: %s\n", v.Type)
		fmt.Fprintf(&b, "  Confidence: %.0f%%\n", v.Confidence*100)
		if v.TimeWindow != nil {
			fmt.Fprintf(&b, "  Critical Period: Days %d-%d\n", v.TimeWindow.Start, v.TimeWindow.End)
		}
	}

	if f := res.Dashboard.Finance; f != nil {
		k := f.KPIs
		b.WriteString("\n--- Finance & Inventory ---\n")
		fmt.Fprintf(&b, "  Stockout Days: %d\n", k.StockoutDays)
		fmt.Fprintf(&b, "  Reorder Events: %d\n", k.ReorderEvents)
		fmt.Fprintf(&b, "  Avg Inventory Level: %.0f units\n", k.AvgInventoryLevel)
		fmt.Fprintf(&b, "  Avg Cash On Hand: %.0f\n", k.AvgCashOnHand)
		fmt.Fprintf(&b, "  Inventory Cost Efficiency: %.2f%%\n", k.InventoryCostPerUnitSold)
	}

	for _, c := range res.Changes {
		fmt.Fprintf(&b, "\n! %s bottleneck changed: %s -> %s\n", c.Scenario, c.Previous, c.Current)
	}

	return b.String()
}
