package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tccretro/internal/records"
)

// ExportHeader is the TaskChute Cloud timeline export header.
const ExportHeader = "タイムライン日付,タスク名,プロジェクト名,モード名,ルーチン名,見積時間,実績時間,開始日時,終了日時"

// WriteCSV writes content to dir/name and returns the path.
func WriteCSV(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ExportCSV renders rs in the export layout.
func ExportCSV(rs []records.Record) string {
	var b strings.Builder
	b.WriteString(ExportHeader)
	b.WriteString("\n")
	for _, r := range rs {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			r.Date.Format("2006-01-02"), r.TaskName, r.Project, r.Mode, r.Routine,
			r.Estimated, r.Actual, r.Start, r.End)
	}
	return b.String()
}

// Date returns the UTC midnight of y-m-d.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SampleRecords returns a small mixed data set spanning 2025-11-01..03.
func SampleRecords() []records.Record {
	return []records.Record{
		{Date: Date(2025, 11, 1), TaskName: "朝の計画", Project: "Planning", Mode: "Focus", Routine: "Morning", Estimated: "0:15:00", Actual: "0:20:00", Start: "2025-11-01 08:00", End: "2025-11-01 08:20"},
		{Date: Date(2025, 11, 2), TaskName: "買い物", Mode: "Errand", Estimated: "1:00:00", Actual: "0:45:00", Start: "2025-11-02 10:00", End: "2025-11-02 10:45"},
		{Date: Date(2025, 11, 3), TaskName: "draft", Project: "Writing", Mode: "Focus", Estimated: "1:00:00", Actual: "1:30:00", Start: "2025-11-03 09:00", End: "2025-11-03 10:30"},
		{Date: Date(2025, 11, 3), TaskName: "edit", Project: "Writing", Mode: "Focus", Estimated: "0:30:00", Actual: "0:20:00", Start: "2025-11-03 10:30", End: "2025-11-03 10:50"},
	}
}

// ManyRecords returns n records on a single date, in file order.
func ManyRecords(n int, date time.Time) []records.Record {
	out := make([]records.Record, n)
	for i := range out {
		out[i] = records.Record{
			Date:      date,
			TaskName:  fmt.Sprintf("task-%04d", i),
			Project:   fmt.Sprintf("p%d", i%3),
			Mode:      "Focus",
			Estimated: "0:10:00",
			Actual:    "0:05:00",
		}
	}
	return out
}
