package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/medica-bottleneck-tui/internal/logger"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

// timeFormats are the layouts timestamps come back in: sqlTimeFormat as
// stored, RFC 3339 when the driver returns a DATETIME column as time.Time.
var timeFormats = []string{
	sqlTimeFormat,
	time.RFC3339,
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

const verdictColumns = `
	id, run_id, scenario, primary_bottleneck, type, confidence,
	window_start, window_end, recorded_at`

// RecordRun stores a run and its scenario verdicts in one transaction.
func (db *DB) RecordRun(run *models.AnalysisRun, verdicts []models.ScenarioVerdict) error {
	ctx := context.Background()

	if run.GeneratedAt.IsZero() {
		run.GeneratedAt = time.Now()
	}
	generatedAt := run.GeneratedAt.UTC().Format(sqlTimeFormat)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			id, simulation_id, generated_at, dashboard_path,
			scenario_count, duration_ms, error
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.SimulationID,
		generatedAt,
		run.DashboardPath,
		run.ScenarioCount,
		run.DurationMs,
		nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}

	for i := range verdicts {
		v := &verdicts[i]
		v.RunID = run.ID
		result, err := tx.ExecContext(ctx, `
			INSERT INTO scenario_verdicts (
				run_id, scenario, primary_bottleneck, type, confidence,
				window_start, window_end, recorded_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			v.RunID,
			v.Scenario,
			v.PrimaryBottleneck,
			string(v.Type),
			v.Confidence,
			v.WindowStart,
			v.WindowEnd,
			generatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert verdict for %s: %w", v.Scenario, err)
		}
		if id, err := result.LastInsertId(); err == nil {
			v.ID = id
		}
		v.RecordedAt = run.GeneratedAt
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis run: %w", err)
	}
	return nil
}

// GetRecentRuns returns the most recent analysis runs, newest first.
func (db *DB) GetRecentRuns(limit int) ([]models.AnalysisRun, error) {
	query := `
		SELECT id, simulation_id, generated_at, dashboard_path,
			   scenario_count, duration_ms, error
		FROM analysis_runs
		ORDER BY generated_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var runs []models.AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// GetRun returns a single run, or nil when it does not exist.
func (db *DB) GetRun(id string) (*models.AnalysisRun, error) {
	query := `
		SELECT id, simulation_id, generated_at, dashboard_path,
			   scenario_count, duration_ms, error
		FROM analysis_runs
		WHERE id = ?
	`

	run, err := scanRun(db.QueryRowContext(context.Background(), query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetVerdictsForRun returns the verdicts recorded by one run.
func (db *DB) GetVerdictsForRun(runID string) ([]models.ScenarioVerdict, error) {
	query := `SELECT` + verdictColumns + `
		FROM scenario_verdicts
		WHERE run_id = ?
		ORDER BY id ASC
	`
	return db.queryVerdicts(query, runID)
}

// GetVerdictHistory returns the verdicts of a scenario, newest first.
func (db *DB) GetVerdictHistory(scenario string, limit int) ([]models.ScenarioVerdict, error) {
	query := `SELECT` + verdictColumns + `
		FROM scenario_verdicts
		WHERE scenario = ?
		ORDER BY id DESC
		LIMIT ?
	`
	return db.queryVerdicts(query, scenario, limit)
}

// GetLastVerdicts returns the most recent verdict of every scenario.
func (db *DB) GetLastVerdicts() (map[string]models.ScenarioVerdict, error) {
	query := `SELECT` + verdictColumns + `
		FROM scenario_verdicts
		WHERE id IN (SELECT MAX(id) FROM scenario_verdicts GROUP BY scenario)
	`

	verdicts, err := db.queryVerdicts(query)
	if err != nil {
		return nil, err
	}

	last := make(map[string]models.ScenarioVerdict, len(verdicts))
	for _, v := range verdicts {
		last[v.Scenario] = v
	}
	return last, nil
}

// GetBottleneckFrequency counts how often each bottleneck won for a scenario
// within the last days (all time when days <= 0).
func (db *DB) GetBottleneckFrequency(scenario string, days int) ([]models.BottleneckFrequency, error) {
	timeFilter := ""
	args := []any{scenario}
	if days > 0 {
		timeFilter = sqlRecordedFilterClause
		args = append(args, fmt.Sprintf("-%d days", days))
	}

	query := fmt.Sprintf(`
		SELECT
			primary_bottleneck,
			type,
			COUNT(*) as runs,
			COALESCE(AVG(confidence), 0) as avg_confidence,
			MAX(recorded_at) as last_seen
		FROM scenario_verdicts
		WHERE scenario = ? %s
		GROUP BY primary_bottleneck, type
		ORDER BY runs DESC, last_seen DESC
	`, timeFilter)

	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bottleneck frequency: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.BottleneckFrequency
	for rows.Next() {
		f := models.BottleneckFrequency{Scenario: scenario}
		var typ, lastSeen string
		if err := rows.Scan(&f.PrimaryBottleneck, &typ, &f.Runs, &f.AvgConfidence, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan bottleneck frequency: %w", err)
		}
		f.Type = models.BottleneckType(typ)
		f.LastSeen, _ = parseTimeString(lastSeen)
		out = append(out, f)
	}

	return out, rows.Err()
}

// CleanupOldRuns deletes runs, and their verdicts, older than the given
// number of days.
func (db *DB) CleanupOldRuns(olderThanDays int) (int64, error) {
	ctx := context.Background()
	windowStr := fmt.Sprintf("-%d days", olderThanDays)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// foreign_keys is per connection, so verdicts are removed explicitly.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM scenario_verdicts WHERE run_id IN (
			SELECT id FROM analysis_runs WHERE generated_at < datetime('now', ?)
		)`, windowStr)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old verdicts: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM analysis_runs WHERE generated_at < datetime('now', ?)`, windowStr)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old runs: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cleanup: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	var generatedAt string
	var errStr sql.NullString

	err := row.Scan(
		&run.ID,
		&run.SimulationID,
		&generatedAt,
		&run.DashboardPath,
		&run.ScenarioCount,
		&run.DurationMs,
		&errStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis run: %w", err)
	}

	run.GeneratedAt, _ = parseTimeString(generatedAt)
	run.Error = errStr.String
	return &run, nil
}

func (db *DB) queryVerdicts(query string, args ...any) ([]models.ScenarioVerdict, error) {
	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var verdicts []models.ScenarioVerdict
	for rows.Next() {
		var v models.ScenarioVerdict
		var typ, recordedAt string

		err := rows.Scan(
			&v.ID,
			&v.RunID,
			&v.Scenario,
			&v.PrimaryBottleneck,
			&typ,
			&v.Confidence,
			&v.WindowStart,
			&v.WindowEnd,
			&recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}

		v.Type = models.BottleneckType(typ)
		v.RecordedAt, _ = parseTimeString(recordedAt)
		verdicts = append(verdicts, v)
	}

	return verdicts, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
