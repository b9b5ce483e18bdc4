package server

import (
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	"github.com/j-veylop/medica-bottleneck-tui/internal/logger"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/store"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

func (s *Server) routes() {
	r := s.router

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.getDashboard)
		r.Get("/finance", s.getFinance)
		r.Post("/analyze", s.analyze)
		r.Get("/runs", s.listRuns)
		r.Get("/scenarios/{scenario}/verdicts", s.listVerdicts)
		r.Get("/scenarios/{scenario}/frequency", s.listFrequency)
	})

	outputDir := s.backend.Config().OutputDir
	fs := http.StripPrefix("/output", http.FileServer(http.Dir(outputDir)))
	r.With(noStore).Get("/output/*", fs.ServeHTTP)
}

func (s *Server) getDashboard(w http.ResponseWriter, _ *http.Request) {
	dashboard, err := s.backend.LatestDashboard()
	if err != nil {
		if errors.Is(err, store.ErrDashboardNotFound) {
			writeError(w, http.StatusNotFound, "no dashboard has been generated yet")
			return
		}
		logger.Error("failed to load dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) getFinance(w http.ResponseWriter, _ *http.Request) {
	dashboard, err := s.backend.LatestDashboard()
	if err != nil {
		if errors.Is(err, store.ErrDashboardNotFound) {
			writeError(w, http.StatusNotFound, "no dashboard has been generated yet")
			return
		}
		logger.Error("failed to load dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if dashboard.Finance == nil {
		writeError(w, http.StatusNotFound, "simulation has no finance or inventory data")
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Finance)
}

type analyzeResponse struct {
	Success           bool     `json:"success"`
	OutputFile        string   `json:"outputFile"`
	ScenariosAnalyzed []string `json:"scenarios_analyzed"`
	RunID             string   `json:"run_id"`
	DurationMs        int64    `json:"duration_ms"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	result, err := s.backend.RunAnalysis(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		Success:           true,
		OutputFile:        s.outputFile(result.DashboardPath),
		ScenariosAnalyzed: result.ScenariosAnalyzed,
		RunID:             result.RunID,
		DurationMs:        result.Duration.Milliseconds(),
	})
}

// outputFile returns the dashboard path relative to the output directory's
// parent, so it starts with the output directory name.
func (s *Server) outputFile(path string) string {
	base := filepath.Dir(s.backend.Config().OutputDir)
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

type runResponse struct {
	ID            string    `json:"id"`
	SimulationID  string    `json:"simulation_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	DashboardPath string    `json:"dashboard_path"`
	ScenarioCount int       `json:"scenario_count"`
	DurationMs    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	runs, err := s.backend.RecentRuns(limit)
	if err != nil {
		logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]runResponse, len(runs))
	for i, run := range runs {
		out[i] = runResponse{
			ID:            run.ID,
			SimulationID:  run.SimulationID,
			GeneratedAt:   run.GeneratedAt.UTC(),
			DashboardPath: run.DashboardPath,
			ScenarioCount: run.ScenarioCount,
			DurationMs:    run.DurationMs,
			Error:         run.Error,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}

type verdictResponse struct {
	RunID             string             `json:"run_id"`
	Scenario          string             `json:"scenario"`
	PrimaryBottleneck string             `json:"primary_bottleneck"`
	Type              string             `json:"type"`
	Confidence        float64            `json:"confidence"`
	TimeWindow        *models.TimeWindow `json:"time_window"`
	RecordedAt        time.Time          `json:"recorded_at"`
}

func (s *Server) listVerdicts(w http.ResponseWriter, r *http.Request) {
	scenario, ok := s.scenarioParam(w, r)
	if !ok {
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	verdicts, err := s.backend.VerdictHistory(scenario, limit)
	if err != nil {
		logger.Error("failed to list verdicts", "scenario", scenario, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]verdictResponse, len(verdicts))
	for i, v := range verdicts {
		out[i] = verdictResponse{
			RunID:             v.RunID,
			Scenario:          v.Scenario,
			PrimaryBottleneck: v.PrimaryBottleneck,
			Type:              string(v.Type),
			Confidence:        v.Confidence,
			TimeWindow:        v.Window(),
			RecordedAt:        v.RecordedAt.UTC(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenario": scenario, "verdicts": out})
}

type frequencyResponse struct {
	PrimaryBottleneck string    `json:"primary_bottleneck"`
	Type              string    `json:"type"`
	Runs              int       `json:"runs"`
	AvgConfidence     float64   `json:"avg_confidence"`
	LastSeen          time.Time `json:"last_seen"`
}

func (s *Server) listFrequency(w http.ResponseWriter, r *http.Request) {
	scenario, ok := s.scenarioParam(w, r)
	if !ok {
		return
	}
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = n
	}
	freq, err := s.backend.BottleneckFrequency(scenario, days)
	if err != nil {
		logger.Error("failed to count bottlenecks", "scenario", scenario, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]frequencyResponse, len(freq))
	for i, f := range freq {
		out[i] = frequencyResponse{
			PrimaryBottleneck: f.PrimaryBottleneck,
			Type:              string(f.Type),
			Runs:              f.Runs,
			AvgConfidence:     f.AvgConfidence,
			LastSeen:          f.LastSeen.UTC(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenario": scenario, "frequency": out})
}

func (s *Server) scenarioParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	scenario := chi.URLParam(r, "scenario")
	if !slices.Contains(s.backend.Config().Scenarios, scenario) {
		writeError(w, http.StatusNotFound, "unknown scenario: "+scenario)
		return "", false
	}
	return scenario, true
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.Newf("limit must be a positive integer, got %q", raw)
	}
	return min(n, maxLimit), nil
}
