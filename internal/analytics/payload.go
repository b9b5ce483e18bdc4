package analytics

import (
	"github.com/guregu/null/v5"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

// BuildTabPayload assembles the chart-ready payload of one scenario.
func BuildTabPayload(
	records []models.DayRecord,
	verdict models.Verdict,
	queues []models.QueueFeature,
	processes []models.ProcessFeature,
) *models.TabPayload {
	labels := models.Labels(records)

	queueSeries := make([]models.ChartSeries, 0, len(queues))
	for _, q := range queues {
		queueSeries = append(queueSeries, models.ChartSeries{
			ID:        q.ID,
			Name:      q.Name,
			Values:    q.TimeSeries,
			Highlight: isWinner(verdict, models.BottleneckQueue, q.ID),
		})
	}

	processSeries := make([]models.ChartSeries, 0, len(processes))
	var utilSeries []models.ChartSeries
	for _, p := range processes {
		highlight := isWinner(verdict, models.BottleneckProcess, p.ID)
		processSeries = append(processSeries, models.ChartSeries{
			ID:        p.ID,
			Name:      p.Name,
			Values:    p.TimeSeries,
			Highlight: highlight,
		})

		if !p.HasUtilization() {
			continue
		}
		utilSeries = append(utilSeries, models.ChartSeries{
			ID:        p.ID + "_utilization",
			Name:      p.Name + " Utilization %",
			Values:    utilizationPercent(models.Series(records, p.UtilizationKey)),
			Highlight: highlight,
		})
	}

	payload := &models.TabPayload{
		Summary: verdict,
		Charts: models.Charts{
			QueueLevels:   models.Chart{Labels: labels, Series: queueSeries},
			ProcessOutput: models.Chart{Labels: labels, Series: processSeries},
		},
	}
	if len(utilSeries) > 0 {
		payload.Charts.Utilization = &models.Chart{Labels: labels, Series: utilSeries}
	}
	return payload
}

func isWinner(v models.Verdict, typ models.BottleneckType, id string) bool {
	return v.Type == typ && v.PrimaryBottleneck == id
}

// utilizationPercent expresses utilization samples as 0-100 for display;
// values above 1 are already percentages.
func utilizationPercent(series []null.Float) []null.Float {
	out := make([]null.Float, len(series))
	for i, v := range series {
		switch {
		case !v.Valid:
			out[i] = v
		case v.Float64 > 1:
			out[i] = v
		default:
			out[i] = null.FloatFrom(v.Float64 * 100)
		}
	}
	return out
}
