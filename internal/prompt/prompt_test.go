package prompt_test

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tccretro/internal/analyzer"
	"tccretro/internal/calendar"
	"tccretro/internal/prompt"
	"tccretro/internal/records"
)

func makeRecords(n int) []records.Record {
	rs := make([]records.Record, n)
	for i := range rs {
		rs[i] = records.Record{
			Date:      time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC),
			TaskName:  fmt.Sprintf("task-%04d", i),
			Project:   "Writing",
			Mode:      "Focus",
			Estimated: "00:10:00",
			Actual:    "00:12:00",
			Start:     "2025-11-03 09:00:00",
			End:       "2025-11-03 09:12:00",
		}
	}
	return rs
}

func TestAssembleBelowCap(t *testing.T) {
	a := prompt.NewAssembler(0, nil)
	if a.Cap() != prompt.DefaultRowCap {
		t.Fatalf("expected default cap, got %d", a.Cap())
	}
	rs := makeRecords(3)
	p, err := a.Assemble(context.Background(), rs, nil, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if p.Truncated || p.SampleSize() != 3 || p.TotalRecords != 3 {
		t.Fatalf("unexpected payload facts: %+v", p)
	}
	if strings.Contains(p.Text, prompt.TruncationMarker) {
		t.Fatal("unexpected truncation marker")
	}
	sections := prompt.Sections(p.Text)
	if len(sections) != 1 || sections[0].Name != prompt.BlockRecords {
		t.Fatalf("expected only a records block, got %+v", sections)
	}
	if sections[0].Attrs["truncated"] != "false" || sections[0].Attrs["rows"] != "3" {
		t.Fatalf("unexpected attrs %v", sections[0].Attrs)
	}
}

func TestAssembleCapsAtLimitKeepingFileOrder(t *testing.T) {
	for _, n := range []int{1000, 1001, 2500} {
		rs := makeRecords(n)
		p, err := prompt.NewAssembler(prompt.DefaultRowCap, nil).Assemble(context.Background(), rs, nil, nil)
		if err != nil {
			t.Fatalf("Assemble(%d): %v", n, err)
		}
		wantRows := min(n, 1000)
		if p.SampleSize() != wantRows || p.Truncated != (n > 1000) {
			t.Fatalf("n=%d: rows=%d truncated=%v", n, p.SampleSize(), p.Truncated)
		}
		if p.Rows[wantRows-1][1] != fmt.Sprintf("task-%04d", wantRows-1) {
			t.Fatalf("n=%d: sample is not the file-order prefix", n)
		}

		sec, ok := prompt.Find(prompt.Sections(p.Text), prompt.BlockRecords)
		if !ok {
			t.Fatalf("n=%d: missing records block", n)
		}
		body := sec.Body
		if p.Truncated {
			idx := strings.Index(body, prompt.TruncationMarker)
			if idx < 0 {
				t.Fatalf("n=%d: expected truncation marker", n)
			}
			body = body[:idx]
		}
		rows, err := csv.NewReader(strings.NewReader(body)).ReadAll()
		if err != nil {
			t.Fatalf("n=%d: parse csv: %v", n, err)
		}
		if diff := cmp.Diff(prompt.Columns, rows[0]); diff != "" {
			t.Fatalf("header mismatch:\n%s", diff)
		}
		if len(rows)-1 != wantRows {
			t.Fatalf("n=%d: csv rows=%d want %d", n, len(rows)-1, wantRows)
		}
	}
}

func TestAssembleIncludesCalendarAndSummary(t *testing.T) {
	rg, _ := calendar.NewRange(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC))
	days := calendar.NewResolver().Days(rg)
	rs := makeRecords(2)
	res, err := analyzer.Project{}.Analyze(rs)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	p, err := prompt.NewAssembler(10, nil).Assemble(context.Background(), rs, days, []analyzer.Result{res})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	sections := prompt.Sections(p.Text)
	var names []string
	for _, s := range sections {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"calendar", "summary", "records"}, names); diff != "" {
		t.Fatalf("section order mismatch:\n%s", diff)
	}
	wantCalendar := "2025-11-01\tSaturday\t—\n2025-11-02\tSunday\t—\n2025-11-03\tMonday\t文化の日\n"
	if sections[0].Body != wantCalendar {
		t.Fatalf("calendar block mismatch:\n%q\nwant\n%q", sections[0].Body, wantCalendar)
	}
	if !strings.Contains(sections[1].Body, "[project] Project Analysis: total 0.40h") {
		t.Fatalf("unexpected summary block %q", sections[1].Body)
	}
}

func TestAssembleIsDeterministicAndDoesNotMutate(t *testing.T) {
	rs := makeRecords(5)
	before := makeRecords(5)
	a := prompt.NewAssembler(3, nil)
	p1, _ := a.Assemble(context.Background(), rs, nil, nil)
	p2, _ := a.Assemble(context.Background(), rs, nil, nil)
	if p1.Text != p2.Text {
		t.Fatal("payload text differs across runs")
	}
	if diff := cmp.Diff(before, rs); diff != "" {
		t.Fatalf("records mutated:\n%s", diff)
	}
	if !p1.Truncated || p1.SampleSize() != 3 {
		t.Fatalf("expected custom cap to apply: %+v", p1)
	}
}

func TestProjectDropsExtraFields(t *testing.T) {
	rec := records.Record{TaskName: "x", RoutineID: "secret-id", Routine: "朝"}
	got := prompt.Project(rec)
	if len(got) != len(prompt.Columns) {
		t.Fatalf("expected %d columns, got %d", len(prompt.Columns), len(got))
	}
	for _, cell := range got {
		if cell == "secret-id" {
			t.Fatal("routine id must not be projected")
		}
	}
}
