package store

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

// LoadScenarioData loads the day files of scenario for every day in
// [startDay, endDay]. Missing days are skipped; any other failure aborts.
// Records are returned in day order.
func (s *Store) LoadScenarioData(ctx context.Context, scenario string, startDay, endDay int) ([]models.DayRecord, error) {
	if endDay < startDay {
		return []models.DayRecord{}, nil
	}

	n := endDay - startDay + 1
	slots := make([]*models.DayRecord, n)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for i := range n {
		day := startDay + i
		group.Go(func() error {
			rec, err := s.LoadDay(ctx, scenario, day)
			if errors.Is(err, ErrDayNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			slots[i] = &rec
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	records := make([]models.DayRecord, 0, n)
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// LoadDay loads a single day file.
func (s *Store) LoadDay(ctx context.Context, scenario string, day int) (models.DayRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.DayRecord{}, err
	}

	path := s.DayPath(scenario, day)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.DayRecord{}, errors.Wrapf(ErrDayNotFound, "%s day %d", scenario, day)
		}
		return models.DayRecord{}, errors.Wrapf(err, "failed to read %s day %d", scenario, day)
	}

	rec, err := decodeDay(data, day)
	if err != nil {
		return models.DayRecord{}, errors.Wrapf(err, "failed to decode %s", path)
	}
	return rec, nil
}

// LoadMeta reads meta.json.
func (s *Store) LoadMeta() (*models.SimulationMeta, error) {
	data, err := os.ReadFile(s.MetaPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrMetaNotFound, "in %s", s.dir)
		}
		return nil, errors.Wrap(err, "failed to read meta.json")
	}

	var meta models.SimulationMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrap(err, "failed to parse meta.json")
	}
	return &meta, nil
}

// LoadDashboard reads a dashboard previously written by WriteDashboard.
func (s *Store) LoadDashboard(path string) (*models.Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrDashboardNotFound, "at %s", path)
		}
		return nil, errors.Wrap(err, "failed to read dashboard")
	}

	var dashboard models.Dashboard
	if err := json.Unmarshal(data, &dashboard); err != nil {
		return nil, errors.Wrap(err, "failed to parse dashboard")
	}
	return &dashboard, nil
}

// decodeDay walks the metrics object in document order so that key order
// survives decoding. The day field of the file wins over the requested day.
func decodeDay(data []byte, day int) (models.DayRecord, error) {
	if !gjson.ValidBytes(data) {
		return models.DayRecord{}, errors.New("malformed JSON")
	}

	doc := gjson.ParseBytes(data)
	if d := doc.Get("day"); d.Type == gjson.Number {
		day = int(d.Int())
	}

	var entries []models.Entry
	doc.Get("metrics").ForEach(func(key, value gjson.Result) bool {
		entries = append(entries, models.Entry{Key: key.String(), Value: sample(value)})
		return true
	})

	return models.DayRecord{Day: day, Metrics: models.NewMetrics(entries...)}, nil
}

// sample converts a JSON value into a sample; only numbers are present.
func sample(v gjson.Result) null.Float {
	if v.Type != gjson.Number {
		return null.Float{}
	}
	return null.FloatFrom(v.Float())
}
