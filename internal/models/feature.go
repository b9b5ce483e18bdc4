package models

import "github.com/guregu/null/v5"

// QueueFeature summarizes one work-in-progress level metric.
type QueueFeature struct {
	ID                 string
	Name               string
	MetricKey          string
	TimeSeries         []null.Float
	MaxLevel           float64
	AverageLevel       float64
	GrowthStreak       int
	DaysAboveThreshold int
	TotalDays          int
}

// ProcessFeature summarizes one throughput metric and, when available, the
// utilization metric that belongs to it.
type ProcessFeature struct {
	ID              string
	Name            string
	MetricKey       string
	UtilizationKey  string
	TimeSeries      []null.Float
	MaxOutput       float64
	AverageOutput   float64
	UtilizationRate null.Float
	DaysAtCapacity  int
	TotalDays       int
}

// HasUtilization reports whether a utilization metric was found. The rate
// itself may still be absent when the metric has no numeric samples.
func (p ProcessFeature) HasUtilization() bool {
	return p.UtilizationKey != ""
}
