package analytics

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/guregu/null/v5"
	"github.com/hashicorp/go-set/v2"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

const (
	queueSuffix   = "_level"
	processSuffix = "_output"
)

var utilizationMarkers = []string{"workload", "utilization", "%"}

// DiscoverQueueKeys returns the queue metric keys of a scenario: keys of the
// first record ending in _level, then override keys present in any record.
func DiscoverQueueKeys(records []models.DayRecord, scenario string, cfg Config) []string {
	return discoverKeys(records, queueSuffix, cfg.OverridesFor(scenario).Queues)
}

// DiscoverProcessKeys returns the process metric keys of a scenario: keys of
// the first record ending in _output, then override keys present in any
// record.
func DiscoverProcessKeys(records []models.DayRecord, scenario string, cfg Config) []string {
	return discoverKeys(records, processSuffix, cfg.OverridesFor(scenario).Processes)
}

func discoverKeys(records []models.DayRecord, suffix string, overrides []string) []string {
	if len(records) == 0 {
		return nil
	}

	var keys []string
	for _, key := range records[0].Metrics.Keys() {
		if strings.HasSuffix(key, suffix) {
			keys = append(keys, key)
		}
	}

	seen := set.From(keys)
	for _, key := range overrides {
		if seen.Contains(key) || !presentInAny(records, key) {
			continue
		}
		seen.Insert(key)
		keys = append(keys, key)
	}
	return keys
}

func presentInAny(records []models.DayRecord, key string) bool {
	for _, rec := range records {
		if rec.Metrics.Has(key) {
			return true
		}
	}
	return false
}

// ExtractQueueFeatures builds one QueueFeature per discovered queue metric.
func ExtractQueueFeatures(records []models.DayRecord, scenario string, cfg Config) []models.QueueFeature {
	keys := DiscoverQueueKeys(records, scenario, cfg)
	queues := make([]models.QueueFeature, 0, len(keys))

	for _, key := range keys {
		series := models.Series(records, key)
		valid := presentValues(series)
		maxLevel, _ := maxOf(valid)
		avgLevel, _ := meanOf(valid)

		threshold := maxLevel * cfg.Thresholds.QueueWindowFactor
		daysAbove := 0
		for _, v := range valid {
			if v >= threshold {
				daysAbove++
			}
		}

		id := stripScenario(key, scenario)
		queues = append(queues, models.QueueFeature{
			ID:                 id,
			Name:               displayName(id),
			MetricKey:          key,
			TimeSeries:         series,
			MaxLevel:           maxLevel,
			AverageLevel:       avgLevel,
			GrowthStreak:       growthStreak(series),
			DaysAboveThreshold: daysAbove,
			TotalDays:          len(valid),
		})
	}
	return queues
}

// ExtractProcessFeatures builds one ProcessFeature per discovered process
// metric, pairing it with its utilization metric when one exists.
func ExtractProcessFeatures(records []models.DayRecord, scenario string, cfg Config) []models.ProcessFeature {
	keys := DiscoverProcessKeys(records, scenario, cfg)
	processes := make([]models.ProcessFeature, 0, len(keys))

	for _, key := range keys {
		series := models.Series(records, key)
		valid := presentValues(series)
		maxOutput, _ := maxOf(valid)
		avgOutput, _ := meanOf(valid)

		p := models.ProcessFeature{
			ID:            strings.TrimSuffix(stripScenario(key, scenario), processSuffix),
			MetricKey:     key,
			TimeSeries:    series,
			MaxOutput:     maxOutput,
			AverageOutput: avgOutput,
			TotalDays:     len(valid),
		}
		p.Name = displayName(p.ID)

		if utilKey := findUtilizationKey(records, key); utilKey != "" {
			rates := normalizedUtilization(models.Series(records, utilKey))
			p.UtilizationKey = utilKey
			if rate, ok := meanOf(rates); ok {
				p.UtilizationRate = null.FloatFrom(rate)
			}
			for _, r := range rates {
				if r >= cfg.Thresholds.ProcessCapacityUtilization {
					p.DaysAtCapacity++
				}
			}
		}

		processes = append(processes, p)
	}
	return processes
}

// findUtilizationKey returns the first key of the first record that belongs
// to the process and names a workload or utilization figure.
func findUtilizationKey(records []models.DayRecord, processKey string) string {
	if len(records) == 0 {
		return ""
	}
	base := strings.TrimSuffix(processKey, processSuffix)
	for _, key := range records[0].Metrics.Keys() {
		if !strings.HasPrefix(key, base) {
			continue
		}
		for _, marker := range utilizationMarkers {
			if strings.Contains(key, marker) {
				return key
			}
		}
	}
	return ""
}

// normalizedUtilization maps present samples to a 0-1 rate; values above 1
// are read as percentages.
func normalizedUtilization(series []null.Float) []float64 {
	valid := presentValues(series)
	for i, v := range valid {
		if v > 1 {
			valid[i] = v / 100
		}
	}
	return valid
}

// growthStreak returns the longest run of strictly increasing adjacent
// samples. An absent sample on either side ends the run.
func growthStreak(series []null.Float) int {
	longest, current := 0, 0
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		if prev.Valid && cur.Valid && cur.Float64 > prev.Float64 {
			current++
			longest = max(longest, current)
			continue
		}
		current = 0
	}
	return longest
}

// stripScenario removes the first occurrence of the scenario prefix.
func stripScenario(key, scenario string) string {
	return strings.Replace(key, scenario+"_", "", 1)
}

// displayName turns an id such as queue_1_level into "Queue 1 Level".
func displayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func presentValues(series []null.Float) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if v.Valid {
			out = append(out, v.Float64)
		}
	}
	return out
}

// maxOf returns the largest value, or 0 and false when values is empty.
func maxOf(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m := values[0]
	for _, v := range values[1:] {
		m = max(m, v)
	}
	return m, true
}

// meanOf returns the arithmetic mean, or 0 and false when values is empty.
func meanOf(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}
