// Package workspace owns the on-disk layout of a MindGardener workspace
// and the atomic file primitives every store builds on. All persisted
// state is plain text: markdown entity files plus line-oriented jsonl
// ledgers that stay greppable with generic tools.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/widingmarcus-cyber/mindgardener/internal/config"
)

// Workspace holds the resolved absolute paths for one agent workspace.
type Workspace struct {
	Root        string
	MemoryDir   string
	EntitiesDir string
	ArchiveDir  string // archived entities, same file format

	GraphFile     string
	SummaryFile   string // long-term memory (MEMORY.md)
	SurpriseFile  string
	ManifestFile  string
	AliasFile     string
	SelfModelFile string // identity-level beliefs (self-model.yaml)
	DriftFile     string // belief drift audit ledger
	EvalFile      string // output evaluation audit ledger
}

// New resolves a Workspace from config, creating the entity directories
// if they do not exist yet.
func New(cfg config.Config) (*Workspace, error) {
	root, err := filepath.Abs(cfg.Workspace)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace %s: %w", cfg.Workspace, err)
	}

	join := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}

	w := &Workspace{
		Root:         root,
		MemoryDir:    join(cfg.MemoryDir),
		EntitiesDir:  join(cfg.EntitiesDir),
		GraphFile:    join(cfg.GraphFile),
		SummaryFile:  join(cfg.LongTermMemory),
		SurpriseFile: join(cfg.SurpriseFile),
		ManifestFile: join(cfg.ManifestFile),
	}
	w.ArchiveDir = filepath.Join(w.EntitiesDir, "archive")
	w.AliasFile = filepath.Join(w.EntitiesDir, ".aliases.json")
	w.SelfModelFile = filepath.Join(w.MemoryDir, "self-model.yaml")
	w.DriftFile = filepath.Join(w.MemoryDir, "belief-drifts.jsonl")
	w.EvalFile = filepath.Join(w.MemoryDir, "evaluations.jsonl")

	if err := os.MkdirAll(w.EntitiesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create entities dir: %w", err)
	}
	return w, nil
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsDate reports whether s is a YYYY-MM-DD date string.
func IsDate(s string) bool {
	return dateRe.MatchString(s)
}

// DailyLogPath returns the path of the daily log for a date.
func (w *Workspace) DailyLogPath(date string) string {
	return filepath.Join(w.MemoryDir, date+".md")
}

// ReadDailyLog returns the daily log content for a date, or "" if no
// log exists for that day.
func (w *Workspace) ReadDailyLog(date string) (string, error) {
	data, err := os.ReadFile(w.DailyLogPath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read daily log %s: %w", date, err)
	}
	return string(data), nil
}

// DailyDates lists all dates that have a daily log, ascending.
func (w *Workspace) DailyDates() ([]string, error) {
	entries, err := os.ReadDir(w.MemoryDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read memory dir: %w", err)
	}

	var dates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".md" {
			continue
		}
		stem := name[:len(name)-3]
		if IsDate(stem) {
			dates = append(dates, stem)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// RecentDates returns up to n dates ending at today, most recent first.
// Only dates with an existing daily log are returned.
func (w *Workspace) RecentDates(n int, today time.Time) []string {
	var dates []string
	for i := 0; i < n; i++ {
		d := today.AddDate(0, 0, -i).Format("2006-01-02")
		if _, err := os.Stat(w.DailyLogPath(d)); err == nil {
			dates = append(dates, d)
		}
	}
	return dates
}
