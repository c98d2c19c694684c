package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
	"github.com/widingmarcus-cyber/mindgardener/internal/llm"
	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// SurpriseRecord is one scored event: how far it deviated from what the
// world model expected. High scores are consolidation candidates.
type SurpriseRecord struct {
	Date         string   `json:"date"`
	Event        string   `json:"event"`
	Score        float64  `json:"score"`
	Predicted    string   `json:"predicted,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	Category     string   `json:"category,omitempty"`
	Entities     []string `json:"entities,omitempty"`
	Consolidated bool     `json:"consolidated"`
	Timestamp    string   `json:"timestamp,omitempty"`
}

// compareReply mirrors the JSON shape of llm.ComparePrompt replies.
type compareReply struct {
	Errors []struct {
		Event     string   `json:"event"`
		Score     float64  `json:"score"`
		Predicted string   `json:"predicted"`
		Reason    string   `json:"reason"`
		Category  string   `json:"category"`
		Entities  []string `json:"entities"`
	} `json:"errors"`
	ModelUpdates []string `json:"model_updates"`
}

type predictReply struct {
	Predictions []struct {
		Event      string  `json:"event"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	} `json:"predictions"`
}

// ScoreDate scores one day's events against the world model. With a
// language model it runs the two-stage predict/compare loop; without
// one it falls back to lexical overlap against the long-term summary.
// Re-scoring a date replaces that date's records and resets their
// consolidated flag; other dates are untouched.
func (e *Engine) ScoreDate(ctx context.Context, date string) ([]SurpriseRecord, error) {
	if !workspace.IsDate(date) {
		return nil, fmt.Errorf("invalid date %q", date)
	}
	content, err := e.WS.ReadDailyLog(date)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("no daily log for %s", date)
	}

	summary, err := e.readSummary()
	if err != nil {
		return nil, err
	}

	var records []SurpriseRecord
	if e.LLM != nil {
		records, err = e.scoreWithModel(ctx, date, content, summary)
	} else {
		records = ScoreLexical(date, SignificantLines(PreFilter(content)), summary)
	}
	if err != nil {
		return nil, err
	}

	if err := e.SaveScores(date, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (e *Engine) scoreWithModel(ctx context.Context, date, content, summary string) ([]SurpriseRecord, error) {
	entities, err := e.recentEntityContext()
	if err != nil {
		return nil, err
	}

	predResp, err := e.LLM.Complete(ctx, llm.PredictionPrompt(date, summary, entities))
	if err != nil {
		return nil, fmt.Errorf("score %s: predict: %w", date, err)
	}
	var pred predictReply
	if err := decodeModelJSON(predResp.Content, &pred); err != nil {
		return nil, fmt.Errorf("score %s: predict: %w", date, err)
	}

	var predictions strings.Builder
	for _, p := range pred.Predictions {
		fmt.Fprintf(&predictions, "- [%.2f] %s (%s)\n", p.Confidence, p.Event, p.Reasoning)
	}

	cmpResp, err := e.LLM.Complete(ctx, llm.ComparePrompt(date, predictions.String(), PreFilter(content)))
	if err != nil {
		return nil, fmt.Errorf("score %s: compare: %w", date, err)
	}
	var cmp compareReply
	if err := decodeModelJSON(cmpResp.Content, &cmp); err != nil {
		return nil, fmt.Errorf("score %s: compare: %w", date, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	records := make([]SurpriseRecord, 0, len(cmp.Errors))
	for _, pe := range cmp.Errors {
		if strings.TrimSpace(pe.Event) == "" {
			continue
		}
		records = append(records, SurpriseRecord{
			Date:      date,
			Event:     strings.TrimSpace(pe.Event),
			Score:     clamp01(pe.Score),
			Predicted: pe.Predicted,
			Reason:    pe.Reason,
			Category:  pe.Category,
			Entities:  pe.Entities,
			Timestamp: now,
		})
	}
	return records, nil
}

// recentEntityContext renders the most recently referenced entities as
// prompt context for the prediction stage.
func (e *Engine) recentEntityContext() (string, error) {
	const maxEntities = 20

	var all []*entity.Record
	for rec, err := range e.Entities.List("") {
		if err != nil {
			return "", err
		}
		all = append(all, rec)
	}
	// Most recently referenced first.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].LastReferenced() > all[j].LastReferenced()
	})
	if len(all) > maxEntities {
		all = all[:maxEntities]
	}

	var b strings.Builder
	for _, rec := range all {
		fmt.Fprintf(&b, "- %s (%s)", rec.Name, rec.Kind)
		if len(rec.Facts) > 0 {
			fmt.Fprintf(&b, ": %s", strings.Join(rec.Facts, "; "))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// ScoreLexical scores events against a predicted narrative by word
// overlap: the fewer of an event's content words the narrative already
// contains, the more surprising the event. An empty narrative means
// everything is new, so every event scores 1.0.
func ScoreLexical(date string, events []string, predicted string) []SurpriseRecord {
	records := make([]SurpriseRecord, 0, len(events))
	for _, event := range events {
		event = strings.TrimSpace(event)
		if event == "" {
			continue
		}
		records = append(records, SurpriseRecord{
			Date:   date,
			Event:  event,
			Score:  LexicalScore(event, predicted),
			Reason: "lexical overlap vs long-term memory",
		})
	}
	return records
}

var wordRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "to": true, "of": true,
	"in": true, "on": true, "at": true, "and": true, "or": true,
	"is": true, "was": true, "for": true, "with": true, "this": true,
	"that": true, "it": true, "be": true, "as": true, "by": true,
}

func contentWords(s string) []string {
	var out []string
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		if len(w) < 2 || stopwords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// LexicalScore is 1 minus the fraction of the event's content words
// that appear in the predicted text, clamped to [0, 1].
func LexicalScore(event, predicted string) float64 {
	words := contentWords(event)
	if len(words) == 0 {
		return 0.5
	}
	known := make(map[string]bool)
	for _, w := range contentWords(predicted) {
		known[w] = true
	}
	if len(known) == 0 {
		return 1.0
	}
	matched := 0
	for _, w := range words {
		if known[w] {
			matched++
		}
	}
	return clamp01(1.0 - float64(matched)/float64(len(words)))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// SignificantLines extracts event-like lines from a daily log for the
// lexical fallback: bullets and plain prose, not headings or fences.
func SignificantLines(content string) []string {
	var out []string
	inCode := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCode = !inCode
			continue
		}
		if inCode || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		trimmed = strings.TrimPrefix(trimmed, "- ")
		trimmed = strings.TrimPrefix(trimmed, "* ")
		if len(trimmed) < 8 {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// LoadScores returns every surprise record in file order.
func (e *Engine) LoadScores() ([]SurpriseRecord, error) {
	lines, err := workspace.ReadLines(e.WS.SurpriseFile)
	if err != nil {
		return nil, err
	}
	var out []SurpriseRecord
	for i, line := range lines {
		var r SurpriseRecord
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			log.Printf("surprise: skipping unparsable line %d: %v", i+1, err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// SaveScores replaces one date's records with a fresh set, atomically.
// Records for other dates keep their order and consolidated flags.
func (e *Engine) SaveScores(date string, records []SurpriseRecord) error {
	existing, err := e.LoadScores()
	if err != nil {
		return err
	}

	kept := make([]SurpriseRecord, 0, len(existing)+len(records))
	for _, r := range existing {
		if r.Date != date {
			kept = append(kept, r)
		}
	}
	kept = append(kept, records...)
	return e.rewriteScores(kept)
}

func marshalRecord(r SurpriseRecord) (string, error) {
	line, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal surprise record: %w", err)
	}
	return string(line), nil
}

func (e *Engine) readSummary() (string, error) {
	data, err := os.ReadFile(e.WS.SummaryFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read long-term memory: %w", err)
	}
	return string(data), nil
}
