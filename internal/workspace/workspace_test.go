package workspace

import (
	"os"
	"testing"
	"time"

	"github.com/widingmarcus-cyber/mindgardener/internal/config"
)

func testWorkspace(t *testing.T) *Workspace {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	ws, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ws
}

func writeLog(t *testing.T, ws *Workspace, date, content string) {
	t.Helper()
	if err := os.WriteFile(ws.DailyLogPath(date), []byte(content), 0o644); err != nil {
		t.Fatalf("write log %s: %v", date, err)
	}
}

func TestIsDate(t *testing.T) {
	for s, want := range map[string]bool{
		"2026-02-16": true,
		"2026-2-16":  false,
		"not-a-date": false,
		"":           false,
	} {
		if got := IsDate(s); got != want {
			t.Errorf("IsDate(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestDailyDates(t *testing.T) {
	ws := testWorkspace(t)
	writeLog(t, ws, "2026-02-17", "later")
	writeLog(t, ws, "2026-02-15", "earlier")
	if err := os.WriteFile(ws.MemoryDir+"/notes.md", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	dates, err := ws.DailyDates()
	if err != nil {
		t.Fatalf("DailyDates: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2026-02-15" || dates[1] != "2026-02-17" {
		t.Errorf("dates = %v", dates)
	}
}

func TestReadDailyLogMissing(t *testing.T) {
	ws := testWorkspace(t)
	content, err := ws.ReadDailyLog("2026-01-01")
	if err != nil {
		t.Fatalf("ReadDailyLog: %v", err)
	}
	if content != "" {
		t.Errorf("content = %q, want empty", content)
	}
}

func TestRecentDatesSkipsMissing(t *testing.T) {
	ws := testWorkspace(t)
	writeLog(t, ws, "2026-02-16", "a")
	writeLog(t, ws, "2026-02-14", "b")

	today := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	dates := ws.RecentDates(3, today)
	if len(dates) != 2 || dates[0] != "2026-02-16" || dates[1] != "2026-02-14" {
		t.Errorf("dates = %v", dates)
	}
}
