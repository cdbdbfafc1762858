// Package records defines the time-tracking Record and the TaskChute Cloud CSV
// loader that produces it.
package records

import (
	"slices"
	"time"
)

// DateLayout is the canonical civil-date rendering.
const DateLayout = "2006-01-02"

// Record is one logged activity. Duration and timestamp cells are kept as
// exported text; analyzers parse durations with ParseDuration so malformed
// cells stay countable instead of disappearing during ingestion.
type Record struct {
	// Date is the timeline date at midnight UTC. Zero when the export omitted it.
	Date      time.Time
	TaskName  string
	Project   string
	Mode      string
	Routine   string
	RoutineID string
	Estimated string
	Actual    string
	Start     string
	End       string
}

// HasRoutine reports whether the record belongs to a routine.
func (r Record) HasRoutine() bool {
	return r.RoutineID != "" || r.Routine != ""
}

// DateString renders the timeline date, or "" when unknown.
func (r Record) DateString() string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.Format(DateLayout)
}

// CivilDate truncates t to midnight UTC of its calendar date.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Dates returns the distinct non-zero timeline dates in rs, ascending.
func Dates(rs []Record) []time.Time {
	seen := make(map[time.Time]struct{}, len(rs))
	out := make([]time.Time, 0)
	for _, r := range rs {
		if r.Date.IsZero() {
			continue
		}
		if _, ok := seen[r.Date]; ok {
			continue
		}
		seen[r.Date] = struct{}{}
		out = append(out, r.Date)
	}
	slices.SortFunc(out, time.Time.Compare)
	return out
}
