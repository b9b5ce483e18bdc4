package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/guregu/null/v5"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

// Candidate is one scored queue or process.
type Candidate struct {
	ID         string
	Name       string
	Type       models.BottleneckType
	Confidence float64
	Satisfied  []string

	queue   *models.QueueFeature
	process *models.ProcessFeature
}

// Ranking is the outcome of scoring: the verdict for the top candidate and
// every candidate in rank order.
type Ranking struct {
	Verdict    models.Verdict
	Candidates []Candidate
}

// Score rates every queue and process, then picks the highest confidence.
// Ties go to the earlier candidate, queues before processes.
func Score(cfg Config, queues []models.QueueFeature, processes []models.ProcessFeature) Ranking {
	candidates := make([]Candidate, 0, len(queues)+len(processes))

	queueRules := QueueRules(cfg)
	for i := range queues {
		q := &queues[i]
		score, satisfied := evaluate(queueRules, *q)
		candidates = append(candidates, Candidate{
			ID:         q.ID,
			Name:       q.Name,
			Type:       models.BottleneckQueue,
			Confidence: score,
			Satisfied:  satisfied,
			queue:      q,
		})
	}

	processRules := ProcessRules(cfg)
	for i := range processes {
		p := &processes[i]
		score, satisfied := evaluate(processRules, *p)
		candidates = append(candidates, Candidate{
			ID:         p.ID,
			Name:       p.Name,
			Type:       models.BottleneckProcess,
			Confidence: score,
			Satisfied:  satisfied,
			process:    p,
		})
	}

	if len(candidates) == 0 {
		return Ranking{Verdict: models.EmptyVerdict(), Candidates: candidates}
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})

	winner := candidates[0]
	verdict := models.Verdict{
		PrimaryBottleneck: winner.ID,
		Type:              winner.Type,
		Confidence:        RoundConfidence(winner.Confidence),
	}
	switch winner.Type {
	case models.BottleneckQueue:
		verdict.TimeWindow = QueueWindow(winner.queue.TimeSeries, winner.queue.MaxLevel, cfg.Thresholds.QueueWindowFactor)
	case models.BottleneckProcess:
		if winner.process.HasUtilization() {
			verdict.TimeWindow = ProcessWindow(len(winner.process.TimeSeries))
		}
	}

	return Ranking{Verdict: verdict, Candidates: candidates}
}

// QueueWindow returns the span from the first to the last index whose
// present value reaches maxLevel*factor, or nil when none does.
func QueueWindow(series []null.Float, maxLevel, factor float64) *models.TimeWindow {
	threshold := maxLevel * factor
	var window *models.TimeWindow
	for i, v := range series {
		if !v.Valid || v.Float64 < threshold {
			continue
		}
		if window == nil {
			window = &models.TimeWindow{Start: i}
		}
		window.End = i
	}
	return window
}

// ProcessWindow returns the second half of a series of length n.
func ProcessWindow(n int) *models.TimeWindow {
	return &models.TimeWindow{Start: n / 2, End: n - 1}
}

// RoundConfidence rounds to two decimals, halves away from zero.
func RoundConfidence(c float64) float64 {
	return math.Round(c*100) / 100
}
