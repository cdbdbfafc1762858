package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tccretro/internal/analyzer"
	"tccretro/internal/calendar"
	"tccretro/internal/records"
	"tccretro/internal/textutil"
)

const generatedLayout = "2006-01-02 15:04:05 MST"

func renderHeader(r Report) string {
	var b strings.Builder
	m := r.Metadata
	fmt.Fprintf(&b, "- Period: %s (%d days)\n", m.Range, m.Range.Days())
	if !m.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- Generated: %s\n", m.GeneratedAt.Format(generatedLayout))
	}
	fmt.Fprintf(&b, "- Records: %d\n", m.Records)
	if m.Source != "" {
		fmt.Fprintf(&b, "- Source: %s\n", m.Source)
	}
	if m.RunID != "" {
		fmt.Fprintf(&b, "- Run: %s\n", m.RunID)
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n### Warnings\n\n")
		for _, w := range r.Warnings {
			if w.Source != "" {
				fmt.Fprintf(&b, "- [%s] %s: %s\n", w.Kind, w.Source, textutil.SingleLine(w.Message))
			} else {
				fmt.Fprintf(&b, "- [%s] %s\n", w.Kind, textutil.SingleLine(w.Message))
			}
		}
	}

	if len(r.Days) > 0 {
		b.WriteString("\n### Calendar\n\n")
		b.WriteString(calendarTable(r.Days))
		b.WriteString("\n")
	}
	return b.String()
}

func calendarTable(days []calendar.Day) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Date", "Weekday", "Type", "Holiday"})
	for _, d := range days {
		name := "—"
		if d.Holiday {
			name = d.HolidayName
		}
		tw.AppendRow(table.Row{d.Date.Format(calendar.DateLayout), d.Weekday.String(), d.Kind(), name})
	}
	return tw.RenderMarkdown()
}

func renderAnalysis(res analyzer.Result) string {
	var b strings.Builder
	if res.Chart != "" {
		fmt.Fprintf(&b, "![%s](%s)\n\n", res.Title, res.Chart)
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Category", "Estimated", "Actual", "Variance", "Share", "Records"})
	for _, c := range res.Categories {
		tw.AppendRow(table.Row{
			textutil.SingleLine(c.Label),
			records.FormatClock(c.Estimated),
			records.FormatClock(c.Actual),
			signedClock(c.Variance),
			fmt.Sprintf("%.2f%%", c.Share),
			c.Count,
		})
	}
	tw.AppendFooter(table.Row{
		"Total",
		records.FormatClock(res.TotalEstimated),
		records.FormatClock(res.TotalActual),
		signedClock(res.TotalVariance()),
		totalShare(res.TotalActual),
		res.Records,
	})
	aligned := make([]table.ColumnConfig, 0, 5)
	for col := 2; col <= 6; col++ {
		aligned = append(aligned, table.ColumnConfig{Number: col, Align: text.AlignRight})
	}
	tw.SetColumnConfigs(aligned)
	b.WriteString(tw.RenderMarkdown())
	b.WriteString("\n")

	if res.ParseErrors > 0 {
		fmt.Fprintf(&b, "\n> %d duration cells could not be parsed and were counted as zero.\n", res.ParseErrors)
	}
	return b.String()
}

// FallbackSummary renders the deterministic digest used when narrative
// feedback is unavailable: totals and the top category of each analyzer.
func FallbackSummary(results []analyzer.Result) string {
	var b strings.Builder
	b.WriteString("### Basic summary\n\n")
	if len(results) == 0 {
		b.WriteString("- No analysis results are available.\n")
		return b.String()
	}
	for _, res := range results {
		title := res.Title
		if title == "" {
			title = res.Name
		}
		fmt.Fprintf(&b, "- %s: %s actual against %s estimated (%s)",
			title, hours(res.TotalActual), hours(res.TotalEstimated), signedHours(res.TotalVariance()))
		if top, ok := res.Top(); ok {
			fmt.Fprintf(&b, "; most time on %s (%s, %.2f%%)", textutil.SingleLine(top.Label), hours(top.Actual), top.Share)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func signedClock(d time.Duration) string {
	if d > 0 {
		return "+" + records.FormatClock(d)
	}
	return records.FormatClock(d)
}

// totalShare is the footer share: all of the actual time, or none when
// nothing was recorded.
func totalShare(actual time.Duration) string {
	if actual == 0 {
		return "0.00%"
	}
	return "100.00%"
}

func hours(d time.Duration) string {
	return fmt.Sprintf("%.2fh", d.Hours())
}

func signedHours(d time.Duration) string {
	return fmt.Sprintf("%+.2fh", d.Hours())
}
