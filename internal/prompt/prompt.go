// Package prompt projects records to a fixed column set, applies the row cap,
// and assembles the delimited text payload handed to the feedback generator.
//
// Payload layout (each block is optional except records):
//
//	<<<calendar>>>
//	2025-11-03	Monday	文化の日
//	<<<end>>>
//	<<<summary>>>
//	[project] Project Analysis: total 1.83h
//	Writing	1.83h	100.00%
//	<<<end>>>
//	<<<records rows=2 total=2 truncated=false>>>
//	date,task,project,mode,routine,estimated,actual,start,end
//	...
//	<<<end>>>
//
// When the sample is capped, the records block ends with a line starting with
// TruncationMarker before the closing delimiter.
package prompt

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"

	"tccretro/internal/analyzer"
	"tccretro/internal/calendar"
	"tccretro/internal/logging"
	"tccretro/internal/records"
)

// DefaultRowCap bounds the number of sampled records.
const DefaultRowCap = 1000

// Section delimiters.
const (
	BlockCalendar    = "calendar"
	BlockSummary     = "summary"
	BlockRecords     = "records"
	EndDelimiter     = "<<<end>>>"
	NoHoliday        = "—"
	TruncationMarker = "[truncated:"
)

// Columns is the fixed projection sent downstream.
var Columns = []string{"date", "task", "project", "mode", "routine", "estimated", "actual", "start", "end"}

// Payload is the assembled request body plus the facts callers need to
// surface warnings.
type Payload struct {
	Text         string
	Rows         [][]string
	TotalRecords int
	Cap          int
	Truncated    bool
	CalendarDays int
}

// SampleSize is the number of projected rows in the payload.
func (p Payload) SampleSize() int { return len(p.Rows) }

func (p Payload) String() string { return p.Text }

// Assembler builds payloads. It is safe for concurrent use.
type Assembler struct {
	cap    int
	logger *slog.Logger
}

// NewAssembler returns an assembler with the given row cap; cap <= 0 selects
// DefaultRowCap.
func NewAssembler(rowCap int, logger *slog.Logger) *Assembler {
	if rowCap <= 0 {
		rowCap = DefaultRowCap
	}
	return &Assembler{cap: rowCap, logger: logging.NewComponentLogger(logger, "prompt")}
}

// Cap returns the configured row cap.
func (a *Assembler) Cap() int { return a.cap }

// Assemble builds the payload. Records keep file order; only the first Cap
// rows are projected. Inputs are not modified.
func (a *Assembler) Assemble(ctx context.Context, rs []records.Record, days []calendar.Day, results []analyzer.Result) (Payload, error) {
	p := Payload{TotalRecords: len(rs), Cap: a.cap, CalendarDays: len(days)}

	sample := rs
	if len(rs) > a.cap {
		sample = rs[:a.cap]
		p.Truncated = true
		logging.WarnWithContext(logging.WithContext(ctx, a.logger), "record sample truncated", "truncation",
			logging.Int("total_records", len(rs)),
			logging.Int("row_cap", a.cap),
			logging.String(logging.FieldErrorHint, "narrow the date range or raise analysis.row_cap"),
			logging.String(logging.FieldImpact, "feedback only sees the first rows of the export"),
		)
	}
	p.Rows = make([][]string, len(sample))
	for i, rec := range sample {
		p.Rows[i] = Project(rec)
	}

	var b strings.Builder
	if len(days) > 0 {
		openBlock(&b, BlockCalendar, "")
		b.WriteString(CalendarBlock(days))
		b.WriteString(EndDelimiter + "\n")
	}
	if summary := SummaryBlock(results); summary != "" {
		openBlock(&b, BlockSummary, "")
		b.WriteString(summary)
		b.WriteString(EndDelimiter + "\n")
	}

	openBlock(&b, BlockRecords, fmt.Sprintf("rows=%d total=%d truncated=%t", len(p.Rows), p.TotalRecords, p.Truncated))
	w := csv.NewWriter(&b)
	if err := w.Write(Columns); err != nil {
		return Payload{}, fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(p.Rows); err != nil {
		return Payload{}, fmt.Errorf("write rows: %w", err)
	}
	if p.Truncated {
		fmt.Fprintf(&b, "%s showing first %d of %d records]\n", TruncationMarker, len(p.Rows), p.TotalRecords)
	}
	b.WriteString(EndDelimiter + "\n")

	p.Text = b.String()
	return p, nil
}

// Project maps a record onto Columns.
func Project(rec records.Record) []string {
	return []string{
		rec.DateString(),
		rec.TaskName,
		rec.Project,
		rec.Mode,
		rec.Routine,
		rec.Estimated,
		rec.Actual,
		rec.Start,
		rec.End,
	}
}

// CalendarBlock renders one tab-separated line per day.
func CalendarBlock(days []calendar.Day) string {
	var b strings.Builder
	for _, d := range days {
		name := NoHoliday
		if d.Holiday {
			name = d.HolidayName
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\n", d.Date.Format(calendar.DateLayout), d.Weekday, name)
	}
	return b.String()
}

// SummaryBlock renders a compact per-analyzer digest.
func SummaryBlock(results []analyzer.Result) string {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "[%s] %s: total %.2fh\n", r.Name, r.Title, r.TotalActual.Hours())
		for _, c := range r.Categories {
			fmt.Fprintf(&b, "%s\t%.2fh\t%.2f%%\n", c.Label, c.Actual.Hours(), c.Share)
		}
	}
	return b.String()
}

func openBlock(b *strings.Builder, name, attrs string) {
	b.WriteString("<<<")
	b.WriteString(name)
	if attrs != "" {
		b.WriteByte(' ')
		b.WriteString(attrs)
	}
	b.WriteString(">>>\n")
}
