package db

const (
	// sqlTimeFormat is the layout timestamps are stored in.
	sqlTimeFormat = "2006-01-02 15:04:05"

	// sqlRecordedFilterClause filters verdicts by a datetime window.
	sqlRecordedFilterClause = "AND recorded_at >= datetime('now', ?)"
)
