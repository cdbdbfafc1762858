package analyzer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tccretro/internal/analyzer"
	"tccretro/internal/records"
	"tccretro/internal/services"
)

func day(d int) time.Time {
	return time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecords() []records.Record {
	return []records.Record{
		{Date: day(3), TaskName: "draft", Project: "Writing", Mode: "Focus", Estimated: "01:00:00", Actual: "01:30:00"},
		{Date: day(3), TaskName: "mail", Project: "Admin", Mode: "Shallow", Estimated: "0:30", Actual: "0:45"},
		{Date: day(4), TaskName: "walk", Mode: "Routine", Routine: "散歩", RoutineID: "r1", Estimated: "30", Actual: "20"},
		{Date: day(4), TaskName: "edit", Project: "Writing", Mode: "Focus", Estimated: "??", Actual: "00:15:00"},
		{Date: day(4), TaskName: "lunch", Project: " ", Mode: "", Actual: "00:25:00"},
	}
}

func TestProjectAnalyzerScenario(t *testing.T) {
	rs := []records.Record{
		{Date: day(3), Project: "Writing", Estimated: "60", Actual: "90"},
		{Date: day(3), Project: "Writing", Estimated: "30", Actual: "20"},
	}
	res, err := analyzer.Project{}.Analyze(rs)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	want := []analyzer.Category{{
		Label:     "Writing",
		Estimated: 90 * time.Minute,
		Actual:    110 * time.Minute,
		Variance:  20 * time.Minute,
		Share:     100,
		Count:     2,
	}}
	if diff := cmp.Diff(want, res.Categories); diff != "" {
		t.Fatalf("categories mismatch (-want +got):\n%s", diff)
	}
	if res.Name != "project" || res.TotalVariance() != 20*time.Minute {
		t.Fatalf("unexpected result header: %+v", res)
	}
}

func TestAnalyzersConserveActualTime(t *testing.T) {
	rs := sampleRecords()
	var want time.Duration
	for _, r := range rs {
		d, _ := records.ParseDuration(r.Actual)
		want += d
	}
	for _, a := range []analyzer.Analyzer{analyzer.Project{}, analyzer.Mode{}, analyzer.Routine{}} {
		res, err := a.Analyze(rs)
		if err != nil {
			t.Fatalf("%s: %v", a.Name(), err)
		}
		var sum time.Duration
		var count int
		for _, c := range res.Categories {
			sum += c.Actual
			count += c.Count
			if c.Variance != c.Actual-c.Estimated {
				t.Fatalf("%s/%s: variance mismatch", a.Name(), c.Label)
			}
		}
		if sum != want || res.TotalActual != want {
			t.Fatalf("%s: group sum %v, total %v, want %v", a.Name(), sum, res.TotalActual, want)
		}
		if count != len(rs) {
			t.Fatalf("%s: counted %d records, want %d", a.Name(), count, len(rs))
		}
	}
}

func TestOverflowingDurationsCountAsParseErrors(t *testing.T) {
	rs := []records.Record{
		{Date: day(3), Project: "A", Estimated: "10", Actual: "NaN"},
		{Date: day(3), Project: "A", Estimated: "Inf", Actual: "1e300"},
		{Date: day(3), Project: "B", Estimated: "0:10:00", Actual: "99999999999:00:00"},
		{Date: day(3), Project: "B", Estimated: "0:10:00", Actual: "0:20:00"},
	}
	for _, a := range []analyzer.Analyzer{analyzer.Project{}, analyzer.Mode{}, analyzer.Routine{}} {
		res, err := a.Analyze(rs)
		if err != nil {
			t.Fatalf("%s: %v", a.Name(), err)
		}
		if res.ParseErrors != 4 {
			t.Fatalf("%s: parse errors = %d, want 4", a.Name(), res.ParseErrors)
		}
		if res.TotalActual != 20*time.Minute || res.TotalEstimated != 30*time.Minute {
			t.Fatalf("%s: totals actual=%v estimated=%v", a.Name(), res.TotalActual, res.TotalEstimated)
		}
		var sum time.Duration
		for _, c := range res.Categories {
			if c.Actual < 0 || c.Estimated < 0 {
				t.Fatalf("%s/%s: negative total %+v", a.Name(), c.Label, c)
			}
			sum += c.Actual
		}
		if sum != res.TotalActual {
			t.Fatalf("%s: group sum %v, total %v", a.Name(), sum, res.TotalActual)
		}
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	rs := sampleRecords()
	first, err := analyzer.Mode{}.Analyze(rs)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, _ := analyzer.Mode{}.Analyze(rs)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("results differ:\n%s", diff)
	}
	if diff := cmp.Diff(sampleRecords(), rs); diff != "" {
		t.Fatalf("input mutated:\n%s", diff)
	}
}

func TestProjectOrderingUnspecifiedAndParseErrors(t *testing.T) {
	res, err := analyzer.Project{}.Analyze(sampleRecords())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var labels []string
	for _, c := range res.Categories {
		labels = append(labels, c.Label)
	}
	// Writing 1:45, then Admin and (unspecified) tie at 0:45 and sort by label.
	want := []string{"Writing", "(unspecified)", "Admin"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("label order mismatch (-want +got):\n%s", diff)
	}
	if res.ParseErrors != 1 {
		t.Fatalf("expected 1 parse error, got %d", res.ParseErrors)
	}
	unspecified, ok := res.Category(analyzer.Unspecified)
	if !ok || unspecified.Count != 2 {
		t.Fatalf("expected blank and missing projects folded together, got %+v", unspecified)
	}
	var total float64
	for _, c := range res.Categories {
		total += c.Share
	}
	if total < 99.98 || total > 100.02 {
		t.Fatalf("shares should sum to ~100, got %v", total)
	}
}

func TestRoutineAnalyzerSplitsByRoutinePresence(t *testing.T) {
	res, err := analyzer.Routine{}.Analyze(sampleRecords())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	routine, ok := res.Category(analyzer.LabelRoutine)
	if !ok || routine.Count != 1 || routine.Actual != 20*time.Minute {
		t.Fatalf("unexpected routine category %+v", routine)
	}
	other, ok := res.Category(analyzer.LabelNonRoutine)
	if !ok || other.Count != 4 {
		t.Fatalf("unexpected non-routine category %+v", other)
	}
	if top, _ := res.Top(); top.Label != analyzer.LabelNonRoutine {
		t.Fatalf("expected non-routine first, got %q", top.Label)
	}
}

func TestAnalyzeEmptyInputFails(t *testing.T) {
	for _, a := range []analyzer.Analyzer{analyzer.Project{}, analyzer.Mode{}, analyzer.Routine{}} {
		_, err := a.Analyze(nil)
		var ae *analyzer.AnalysisError
		if !errors.As(err, &ae) {
			t.Fatalf("%s: expected AnalysisError, got %v", a.Name(), err)
		}
		if ae.Analyzer != a.Name() || !errors.Is(err, services.ErrAnalysis) {
			t.Fatalf("%s: unexpected error %v", a.Name(), err)
		}
	}
}

func TestBuiltins(t *testing.T) {
	list, err := analyzer.Builtins([]string{"mode", " Project "})
	if err != nil {
		t.Fatalf("Builtins: %v", err)
	}
	if list[0].Name() != "mode" || list[1].Name() != "project" {
		t.Fatalf("unexpected builtins %v", list)
	}
	if _, err := analyzer.Builtin("tags"); err == nil {
		t.Fatal("expected unknown analyzer error")
	}
}
