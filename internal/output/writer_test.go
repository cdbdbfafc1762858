package output_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"tccretro/internal/calendar"
	"tccretro/internal/output"
	"tccretro/internal/report"
)

func finalized(t *testing.T) report.Report {
	t.Helper()
	d := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	c := report.NewCompositor(report.Metadata{
		Range:       calendar.SingleDay(d),
		GeneratedAt: time.Date(2025, 11, 4, 9, 30, 15, 0, time.UTC),
		Records:     0,
	}, calendar.NewResolver().Days(calendar.SingleDay(d)))
	if err := c.ApplyAnalyzers(nil); err != nil {
		t.Fatal(err)
	}
	if err := c.SkipFeedback(); err != nil {
		t.Fatal(err)
	}
	r, err := c.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestWriteMarkdown(t *testing.T) {
	dir := t.TempDir()
	w, err := output.NewWriter(dir, "markdown", nil)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	r := finalized(t)
	path, err := w.Write(context.Background(), r)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "report_20251104_093015.md" {
		t.Fatalf("unexpected file name %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != r.Markdown() {
		t.Fatalf("content mismatch:\n%s", data)
	}

	second, err := w.Write(context.Background(), r)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if second == path {
		t.Fatal("second write must not overwrite the first report")
	}
}

func TestWriteHTML(t *testing.T) {
	dir := t.TempDir()
	w, err := output.NewWriter(dir, "html", nil)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	path, err := w.Write(context.Background(), finalized(t))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasSuffix(path, ".html") {
		t.Fatalf("unexpected path %s", path)
	}
	data, _ := os.ReadFile(path)
	page := string(data)
	for _, want := range []string{"<title>TaskChute Cloud Retrospective</title>", "<table>", "文化の日", "<blockquote>"} {
		if !strings.Contains(page, want) {
			t.Fatalf("html missing %q:\n%s", want, page)
		}
	}
}

func TestWriteHTMLOmitsRawMarkup(t *testing.T) {
	d := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	c := report.NewCompositor(report.Metadata{
		Range:       calendar.SingleDay(d),
		GeneratedAt: time.Date(2025, 11, 4, 9, 30, 15, 0, time.UTC),
	}, calendar.NewResolver().Days(calendar.SingleDay(d)))
	if err := c.ApplyAnalyzers(nil); err != nil {
		t.Fatal(err)
	}
	if err := c.ApplyFeedback("### Current state\n\n<script>alert(1)</script>\n\nInline <img src=x onerror=alert(2)> text."); err != nil {
		t.Fatal(err)
	}
	r, err := c.Finalize()
	if err != nil {
		t.Fatal(err)
	}

	w, _ := output.NewWriter(t.TempDir(), "html", nil)
	path, err := w.Write(context.Background(), r)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(path)
	page := string(data)
	for _, bad := range []string{"<script>alert(1)</script>", "<img src=x onerror=alert(2)>"} {
		if strings.Contains(page, bad) {
			t.Fatalf("raw markup %q passed through:\n%s", bad, page)
		}
	}
	if !strings.Contains(page, "Current state") {
		t.Fatalf("feedback text missing:\n%s", page)
	}
}

func TestNewWriterRejectsUnknownFormat(t *testing.T) {
	if _, err := output.NewWriter(t.TempDir(), "pdf", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestWriteRespectsHeldLock(t *testing.T) {
	dir := t.TempDir()
	held := flock.New(filepath.Join(dir, ".tccretro.lock"))
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	defer held.Unlock()

	w, _ := output.NewWriter(dir, "markdown", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if _, err := w.Write(ctx, finalized(t)); err == nil {
		t.Fatal("expected lock contention error")
	}
}
