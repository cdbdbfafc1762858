package analyzer_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"tccretro/internal/analyzer"
	"tccretro/internal/records"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubAnalyzer sleeps before answering so later registrations can finish first.
type stubAnalyzer struct {
	name  string
	delay time.Duration
	err   error
	panic bool
}

func (s stubAnalyzer) Name() string { return s.name }

func (s stubAnalyzer) Analyze(rs []records.Record) (analyzer.Result, error) {
	time.Sleep(s.delay)
	if s.panic {
		panic("boom")
	}
	if s.err != nil {
		return analyzer.Result{}, s.err
	}
	return analyzer.Result{Name: s.name, Records: len(rs)}, nil
}

func TestRegistryPreservesOrderUnderParallelism(t *testing.T) {
	list := []analyzer.Analyzer{
		stubAnalyzer{name: "slow", delay: 30 * time.Millisecond},
		stubAnalyzer{name: "medium", delay: 10 * time.Millisecond},
		stubAnalyzer{name: "fast"},
	}
	sequential, err := analyzer.NewRegistry(list)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	parallel, err := analyzer.NewRegistry(list, analyzer.WithParallel(3))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	rs := sampleRecords()
	seqOut, err := sequential.Run(context.Background(), rs)
	if err != nil {
		t.Fatalf("sequential Run: %v", err)
	}
	parOut, err := parallel.Run(context.Background(), rs)
	if err != nil {
		t.Fatalf("parallel Run: %v", err)
	}
	if diff := cmp.Diff(seqOut, parOut); diff != "" {
		t.Fatalf("parallel outcomes differ from sequential (-seq +par):\n%s", diff)
	}
	var names []string
	for _, o := range parOut {
		names = append(names, o.Name)
	}
	if diff := cmp.Diff(parallel.Names(), names); diff != "" {
		t.Fatalf("outcomes out of registry order:\n%s", diff)
	}
}

func TestRegistryRecordsFailuresAndContinues(t *testing.T) {
	reg, err := analyzer.NewRegistry([]analyzer.Analyzer{
		analyzer.Project{},
		stubAnalyzer{name: "broken", err: errors.New("bad data")},
		stubAnalyzer{name: "panicky", panic: true},
		analyzer.Mode{},
	}, analyzer.WithParallel(0))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	out, err := reg.Run(context.Background(), sampleRecords())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(out))
	}
	if !out[0].OK() || !out[3].OK() {
		t.Fatalf("expected healthy analyzers to succeed: %+v", out)
	}
	for _, i := range []int{1, 2} {
		var ae *analyzer.AnalysisError
		if out[i].OK() || !errors.As(out[i].Err, &ae) || ae.Analyzer != out[i].Name {
			t.Fatalf("expected AnalysisError for %s, got %v", out[i].Name, out[i].Err)
		}
	}
}

func TestRegistryEmptyRecordsYieldsAnalysisErrors(t *testing.T) {
	reg, _ := analyzer.NewRegistry([]analyzer.Analyzer{analyzer.Project{}, analyzer.Routine{}})
	out, err := reg.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, o := range out {
		if o.OK() {
			t.Fatalf("expected %s to fail on empty input", o.Name)
		}
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := analyzer.NewRegistry([]analyzer.Analyzer{analyzer.Mode{}, analyzer.Mode{}})
	if err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := analyzer.NewRegistry([]analyzer.Analyzer{nil}); err == nil {
		t.Fatal("expected nil analyzer error")
	}
}

func TestRegistryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, opts := range [][]analyzer.RegistryOption{nil, {analyzer.WithParallel(2)}} {
		reg, _ := analyzer.NewRegistry([]analyzer.Analyzer{analyzer.Project{}, analyzer.Mode{}}, opts...)
		if _, err := reg.Run(ctx, sampleRecords()); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	}
}

func ExampleRegistry_Run() {
	reg, _ := analyzer.NewRegistry([]analyzer.Analyzer{analyzer.Project{}, analyzer.Mode{}})
	out, _ := reg.Run(context.Background(), []records.Record{
		{Project: "Writing", Mode: "Focus", Estimated: "60", Actual: "90"},
	})
	for _, o := range out {
		top, _ := o.Result.Top()
		fmt.Println(o.Name, top.Label, top.Actual)
	}
	// Output:
	// project Writing 1h30m0s
	// mode Focus 1h30m0s
}
