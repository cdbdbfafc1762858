package records_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/japanese"

	"tccretro/internal/records"
	"tccretro/internal/services"
)

const exportCSV = "タイムライン日付,タスクID,タスク名,プロジェクト名,モード名,ルーチンID,ルーチン名,見積時間,実績時間,開始日時,終了日時\n" +
	"2025-11-03,t1,原稿執筆,Writing,Focus,,,01:00:00,01:30:00,2025-11-03 09:00:00,2025-11-03 10:30:00\n" +
	",,,,,,,,,,\n" +
	"2025/11/04,t2,朝の散歩,,Routine,r1,散歩,00:30:00,00:20:00,2025-11-04 07:00:00,2025-11-04 07:20:00\n"

func TestLoadParsesExport(t *testing.T) {
	ds, err := records.Load(strings.NewReader(exportCSV), records.LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []records.Record{
		{
			Date:      time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC),
			TaskName:  "原稿執筆",
			Project:   "Writing",
			Mode:      "Focus",
			Estimated: "01:00:00",
			Actual:    "01:30:00",
			Start:     "2025-11-03 09:00:00",
			End:       "2025-11-03 10:30:00",
		},
		{
			Date:      time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC),
			TaskName:  "朝の散歩",
			Mode:      "Routine",
			Routine:   "散歩",
			RoutineID: "r1",
			Estimated: "00:30:00",
			Actual:    "00:20:00",
			Start:     "2025-11-04 07:00:00",
			End:       "2025-11-04 07:20:00",
		},
	}
	if diff := cmp.Diff(want, ds.Records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	if ds.SkippedRows != 1 {
		t.Fatalf("expected 1 skipped row, got %d", ds.SkippedRows)
	}
	if !ds.Records[1].HasRoutine() || ds.Records[0].HasRoutine() {
		t.Fatal("unexpected routine classification")
	}
}

func TestLoadHandlesBOMAndShiftJIS(t *testing.T) {
	withBOM := "\ufeff" + exportCSV
	ds, err := records.Load(strings.NewReader(withBOM), records.LoadOptions{Encoding: records.EncodingAuto})
	if err != nil {
		t.Fatalf("Load with BOM returned error: %v", err)
	}
	if len(ds.Records) != 2 {
		t.Fatalf("expected 2 records with BOM, got %d", len(ds.Records))
	}

	var sjis bytes.Buffer
	encoded, err := japanese.ShiftJIS.NewEncoder().String(exportCSV)
	if err != nil {
		t.Fatalf("encode shift_jis: %v", err)
	}
	sjis.WriteString(encoded)
	ds, err = records.Load(&sjis, records.LoadOptions{Encoding: records.EncodingAuto})
	if err != nil {
		t.Fatalf("Load shift_jis returned error: %v", err)
	}
	if len(ds.Records) != 2 || ds.Records[0].TaskName != "原稿執筆" {
		t.Fatalf("unexpected shift_jis decode: %+v", ds.Records)
	}
}

func TestLoadRequiresColumns(t *testing.T) {
	_, err := records.Load(strings.NewReader("タスク名,実績時間\nfoo,01:00:00\n"), records.LoadOptions{})
	if err == nil || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "タイムライン日付") {
		t.Fatalf("expected missing column name in error, got %v", err)
	}
}

func TestLoadRejectsBadDate(t *testing.T) {
	body := "date,actual\nnot-a-date,10\n"
	_, err := records.Load(strings.NewReader(body), records.LoadOptions{})
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in error, got %v", err)
	}
}

func TestLoadFileSetsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(exportCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	ds, err := records.LoadFile(path, records.LoadOptions{Encoding: records.EncodingUTF8})
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if ds.Source != path {
		t.Fatalf("unexpected source %q", ds.Source)
	}
}

func TestDatesDistinctAscending(t *testing.T) {
	d1 := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	rs := []records.Record{{Date: d2}, {}, {Date: d1}, {Date: d2}}
	got := records.Dates(rs)
	if diff := cmp.Diff([]time.Time{d1, d2}, got); diff != "" {
		t.Fatalf("dates mismatch (-want +got):\n%s", diff)
	}
}
