package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/medica-bottleneck-tui/internal/logger"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

// Sheet is one day-based sheet of a parsed workbook.
type Sheet struct {
	Name string
	Rows []models.DayRecord
}

// ParsedSimulation is a parsed workbook ready to be written as chunks.
type ParsedSimulation struct {
	Source   string
	File     string
	ParsedAt string
	Sheets   []Sheet
	History  []json.RawMessage
}

// WriteStats summarizes a chunked write.
type WriteStats struct {
	TotalFiles   int
	SimulationID string
	Sheets       int
}

type dayChunk struct {
	SimulationID string         `json:"simulation_id"`
	Sheet        string         `json:"sheet"`
	Day          int            `json:"day"`
	Metrics      models.Metrics `json:"metrics"`
}

type historyFile struct {
	SimulationID string            `json:"simulation_id"`
	Sheet        string            `json:"sheet"`
	Events       []json.RawMessage `json:"events"`
}

// WriteChunkedOutput writes meta.json, every day-based sheet and the history
// events. An empty simulationID derives one from the largest day.
func (s *Store) WriteChunkedOutput(ctx context.Context, parsed ParsedSimulation, simulationID string) (*WriteStats, error) {
	if err := ensureDir(s.dir); err != nil {
		return nil, err
	}

	if simulationID == "" {
		simulationID = SimulationIDFor(parsed)
	}

	if err := s.WriteMeta(BuildMetadata(parsed, simulationID)); err != nil {
		return nil, err
	}

	stats := &WriteStats{TotalFiles: 1, SimulationID: simulationID, Sheets: len(parsed.Sheets)}
	for _, sheet := range parsed.Sheets {
		if len(sheet.Rows) == 0 {
			logger.Warn("skipping empty sheet", "sheet", sheet.Name)
			continue
		}
		if err := s.WriteScenario(ctx, simulationID, sheet.Name, sheet.Rows); err != nil {
			return nil, err
		}
		stats.TotalFiles += len(sheet.Rows)
		logger.Debug("wrote sheet", "sheet", sheet.Name, "files", len(sheet.Rows))
	}

	if len(parsed.History) > 0 {
		stats.Sheets++
		if err := s.WriteHistory(simulationID, parsed.History); err != nil {
			return nil, err
		}
		stats.TotalFiles++
	}

	logger.Info("wrote chunked output", "simulation_id", simulationID, "files", stats.TotalFiles)
	return stats, nil
}

// WriteMeta writes meta.json.
func (s *Store) WriteMeta(meta *models.SimulationMeta) error {
	if err := ensureDir(s.dir); err != nil {
		return err
	}
	return writeJSON(s.MetaPath(), meta)
}

// WriteDayChunk writes one day file of a sheet.
func (s *Store) WriteDayChunk(simulationID, sheet string, rec models.DayRecord) error {
	chunk := dayChunk{
		SimulationID: simulationID,
		Sheet:        sheet,
		Day:          rec.Day,
		Metrics:      rec.Metrics,
	}
	return writeJSON(s.DayPath(sheet, rec.Day), chunk)
}

// WriteScenario writes all day files of a sheet in parallel.
func (s *Store) WriteScenario(ctx context.Context, simulationID, sheet string, rows []models.DayRecord) error {
	if err := ensureDir(filepath.Join(s.dir, sheet)); err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for _, rec := range rows {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.WriteDayChunk(simulationID, sheet, rec)
		})
	}
	return errors.Wrapf(group.Wait(), "failed to write sheet %s", sheet)
}

// WriteHistory writes the event-based history sheet as a single file.
func (s *Store) WriteHistory(simulationID string, events []json.RawMessage) error {
	if err := ensureDir(filepath.Dir(s.HistoryPath())); err != nil {
		return err
	}
	if events == nil {
		events = []json.RawMessage{}
	}
	return writeJSON(s.HistoryPath(), historyFile{
		SimulationID: simulationID,
		Sheet:        historyDirName,
		Events:       events,
	})
}

// WriteDashboard writes the dashboard document to path atomically.
func (s *Store) WriteDashboard(path string, dashboard *models.Dashboard) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal dashboard")
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write temp file")
	}

	if err := os.Rename(tmpFile, path); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return errors.Wrap(err, "failed to rename temp file")
	}

	return nil
}

// SimulationIDFor derives the simulation ID from the largest day number
// across all day-based sheets.
func SimulationIDFor(parsed ParsedSimulation) string {
	maxDay := 0
	for _, sheet := range parsed.Sheets {
		for _, rec := range sheet.Rows {
			maxDay = max(maxDay, rec.Day)
		}
	}
	return fmt.Sprintf("medica_day_%d", maxDay)
}

// BuildMetadata builds the meta.json content for a parsed workbook.
func BuildMetadata(parsed ParsedSimulation, simulationID string) *models.SimulationMeta {
	meta := &models.SimulationMeta{
		SimulationID: simulationID,
		Source:       parsed.Source,
		File:         parsed.File,
		ParsedAt:     parsed.ParsedAt,
		Sheets:       make(map[string]models.SheetMeta, len(parsed.Sheets)+1),
	}

	for _, sheet := range parsed.Sheets {
		metrics := []string{}
		if len(sheet.Rows) > 0 {
			metrics = append([]string{"day"}, sheet.Rows[0].Metrics.Keys()...)
		}
		meta.Sheets[sheet.Name] = models.SheetMeta{Days: len(sheet.Rows), Metrics: metrics}
	}

	if parsed.History != nil {
		metrics := []string{}
		if len(parsed.History) > 0 {
			gjson.ParseBytes(parsed.History[0]).ForEach(func(key, _ gjson.Result) bool {
				metrics = append(metrics, key.String())
				return true
			})
		}
		meta.Sheets[historyDirName] = models.SheetMeta{Events: len(parsed.History), Metrics: metrics}
	}

	return meta
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	return nil
}
