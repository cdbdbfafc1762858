package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tccretro/internal/logging"
)

func TestPruneLogsRemovesExpiredDailyFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	for _, name := range []string{
		logging.LogFileName(now),
		logging.LogFileName(now.AddDate(0, 0, -3)),
		logging.LogFileName(now.AddDate(0, 0, -10)),
		"tccretro-notadate.log",
		"other.log",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	removed, err := logging.PruneLogs(logging.NewNop(), dir, 7, now)
	if err != nil {
		t.Fatalf("PruneLogs: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "tccretro-20251110.log")); !os.IsNotExist(err) {
		t.Fatalf("expected expired file removed, stat err=%v", err)
	}
	for _, keep := range []string{"tccretro-20251120.log", "tccretro-20251117.log", "tccretro-notadate.log", "other.log"} {
		if _, err := os.Stat(filepath.Join(dir, keep)); err != nil {
			t.Fatalf("expected %s kept: %v", keep, err)
		}
	}
}

func TestPruneLogsDisabled(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "tccretro-20000101.log")
	if err := os.WriteFile(old, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	removed, err := logging.PruneLogs(nil, dir, 0, time.Now())
	if err != nil || removed != 0 {
		t.Fatalf("PruneLogs = %d, %v", removed, err)
	}
	if _, err := logging.PruneLogs(nil, filepath.Join(dir, "missing"), 7, time.Now()); err != nil {
		t.Fatalf("missing dir: %v", err)
	}
}
