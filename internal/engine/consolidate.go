package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// ConsolidationReport summarizes one consolidation pass.
type ConsolidationReport struct {
	Threshold float64
	Promoted  int
	Examined  int
	Entries   []SurpriseRecord
}

// Consolidate promotes every unconsolidated surprise record at or above
// the threshold into the long-term summary, in date order, and flips
// their consolidated flag. Promoted records are never promoted again,
// so running twice is a no-op the second time. The summary append and
// the flag rewrite are each atomic; the flag flip happens last, so a
// crash in between re-promotes (duplicating a summary line) rather than
// silently dropping a record.
func (e *Engine) Consolidate(threshold float64, today time.Time) (*ConsolidationReport, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v out of range [0, 1]", threshold)
	}

	records, err := e.LoadScores()
	if err != nil {
		return nil, err
	}
	report := &ConsolidationReport{Threshold: threshold, Examined: len(records)}

	var selected []SurpriseRecord
	promote := make(map[string]bool)
	for _, r := range records {
		if r.Consolidated || r.Score < threshold {
			continue
		}
		selected = append(selected, r)
		promote[recordKey(r)] = true
	}
	if len(selected) == 0 {
		return report, nil
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Date < selected[j].Date
	})

	var b strings.Builder
	fmt.Fprintf(&b, "\n## Consolidated %s\n\n", today.Format("2006-01-02"))
	for _, r := range selected {
		fmt.Fprintf(&b, "- [%.2f] %s — %s", r.Score, r.Date, r.Event)
		if r.Reason != "" && r.Reason != "lexical overlap vs long-term memory" {
			fmt.Fprintf(&b, " (%s)", r.Reason)
		}
		b.WriteString("\n")
	}
	if err := workspace.AppendText(e.WS.SummaryFile, b.String()); err != nil {
		return nil, fmt.Errorf("consolidate: append summary: %w", err)
	}

	for i := range records {
		if promote[recordKey(records[i])] {
			records[i].Consolidated = true
		}
	}
	if err := e.rewriteScores(records); err != nil {
		return nil, fmt.Errorf("consolidate: mark records: %w", err)
	}

	report.Promoted = len(selected)
	report.Entries = selected
	return report, nil
}

func recordKey(r SurpriseRecord) string {
	return r.Date + "\x00" + strings.ToLower(strings.TrimSpace(r.Event))
}

// rewriteScores replaces the whole surprise file atomically.
func (e *Engine) rewriteScores(records []SurpriseRecord) error {
	var b strings.Builder
	for _, r := range records {
		line, err := marshalRecord(r)
		if err != nil {
			return err
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return workspace.WriteFileAtomic(e.WS.SurpriseFile, []byte(b.String()))
}
