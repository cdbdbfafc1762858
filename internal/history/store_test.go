package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"tccretro/internal/history"
	"tccretro/internal/testsupport"
)

func sampleRun(id string, created time.Time) history.Run {
	return history.Run{
		ID:              id,
		CreatedAt:       created,
		RangeStart:      testsupport.Date(2025, 11, 1),
		RangeEnd:        testsupport.Date(2025, 11, 3),
		Source:          "timeline.csv",
		Records:         4,
		SampleRows:      4,
		AnalyzersOK:     3,
		AnalyzersFailed: 0,
		Warnings:        1,
		FeedbackStatus:  "unavailable",
		FeedbackReason:  "timeout",
		Provider:        "bedrock",
		ReportPath:      "/tmp/reports/report_20251104_090000.md",
		Duration:        1500 * time.Millisecond,
	}
}

func TestRecordAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	run := sampleRun("run-1", time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC))
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(run, got, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
		t.Fatalf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestGetMissing(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordRequiresID(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	if err := store.Record(context.Background(), history.Run{}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestListNewestFirstAndPrune(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()
	base := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		if err := store.Record(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "d" || runs[1].ID != "c" {
		t.Fatalf("unexpected order: %+v", runs)
	}

	removed, err := store.Prune(ctx, 1)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d", removed)
	}
	runs, _ = store.List(ctx, 0)
	if len(runs) != 1 || runs[0].ID != "d" {
		t.Fatalf("unexpected remaining runs: %+v", runs)
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()
	run := sampleRun("dup", time.Now())
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, run); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")
	ctx := context.Background()
	store, err := history.OpenPath(ctx, path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if err := store.Record(ctx, sampleRun("keep", time.Now())); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = store.Close()

	store, err = history.OpenPath(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	if _, err := store.Get(ctx, "keep"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	store, err := history.OpenPath(ctx, path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("update version: %v", err)
	}
	_ = db.Close()

	if _, err := history.OpenPath(ctx, path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
