package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/widingmarcus-cyber/mindgardener/internal/belief"
	"github.com/widingmarcus-cyber/mindgardener/internal/llm"
	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// Bounds on the prompt material fed to the identity model.
const (
	bootstrapTextLimit  = 8000
	bootstrapEntityCap  = 20
	bootstrapEntityClip = 500
	driftEventsLimit    = 6000
)

type bootstrapReply struct {
	Beliefs []struct {
		Claim       string   `json:"claim"`
		Confidence  float64  `json:"confidence"`
		Category    string   `json:"category"`
		EvidenceFor []string `json:"evidence_for"`
	} `json:"beliefs"`
}

type driftReply struct {
	Drifts []struct {
		Claim         string  `json:"claim"`
		Type          string  `json:"type"`
		OldConfidence float64 `json:"old_confidence"`
		NewConfidence float64 `json:"new_confidence"`
		Trigger       string  `json:"trigger"`
		Reasoning     string  `json:"reasoning"`
		Significance  float64 `json:"significance"`
	} `json:"drifts"`
}

// BootstrapBeliefs builds an initial self-model from the long-term
// summary plus a sample of entity records, replacing any existing
// model. Bootstrapping needs a language model; there is no lexical way
// to invent identity claims.
func (e *Engine) BootstrapBeliefs(ctx context.Context) (*belief.Model, error) {
	if e.LLM == nil {
		return nil, fmt.Errorf("bootstrap beliefs: %w", llm.ErrNoProvider)
	}

	summary, err := e.readSummary()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(summary) == "" {
		return nil, fmt.Errorf("bootstrap beliefs: no long-term memory yet, write %s first", e.WS.SummaryFile)
	}

	text := summary
	if entities, err := e.bootstrapEntityContext(); err != nil {
		return nil, err
	} else if entities != "" {
		text += "\n\n## Entity Context\n" + entities
	}

	resp, err := e.LLM.Complete(ctx, llm.BeliefBootstrapPrompt(clip(text, bootstrapTextLimit)))
	if err != nil {
		return nil, fmt.Errorf("bootstrap beliefs: %w", err)
	}
	var reply bootstrapReply
	if err := decodeModelJSON(resp.Content, &reply); err != nil {
		return nil, fmt.Errorf("bootstrap beliefs: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	model := &belief.Model{}
	for _, b := range reply.Beliefs {
		if strings.TrimSpace(b.Claim) == "" {
			continue
		}
		model.Beliefs = append(model.Beliefs, belief.Belief{
			Claim:         strings.TrimSpace(b.Claim),
			Confidence:    clamp01(b.Confidence),
			Category:      b.Category,
			EvidenceFor:   b.EvidenceFor,
			FirstObserved: now,
			LastUpdated:   now,
			Status:        belief.StatusActive,
		})
	}
	if len(model.Beliefs) == 0 {
		return nil, fmt.Errorf("bootstrap beliefs: model returned no beliefs")
	}

	if err := e.Beliefs.Save(model, now); err != nil {
		return nil, err
	}
	return model, nil
}

func (e *Engine) bootstrapEntityContext() (string, error) {
	names, err := e.Entities.Names()
	if err != nil {
		return "", err
	}
	sort.Strings(names)
	if len(names) > bootstrapEntityCap {
		names = names[:bootstrapEntityCap]
	}

	var b strings.Builder
	for _, name := range names {
		rec, err := e.Entities.Get(name)
		if err != nil {
			return "", err
		}
		b.WriteString(clip(rec.Render(), bootstrapEntityClip))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// DetectDrift compares a day's events against the current self-model.
// With a language model the model itself judges the drift; without one
// a lexical pass marks beliefs the log plainly repeats or negates. The
// drifts are appended to the audit ledger but not applied.
func (e *Engine) DetectDrift(ctx context.Context, date string) ([]belief.Drift, error) {
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

	model, err := e.Beliefs.Load()
	if err != nil {
		return nil, err
	}
	if len(model.Beliefs) == 0 {
		return nil, fmt.Errorf("no self-model yet, run: garden beliefs --bootstrap")
	}

	var drifts []belief.Drift
	if e.LLM != nil {
		drifts, err = e.detectDriftWithModel(ctx, model, content)
		if err != nil {
			return nil, err
		}
	} else {
		drifts = LexicalDrifts(model, SignificantLines(PreFilter(content)))
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := e.Beliefs.LogDrifts(drifts, now); err != nil {
		return nil, err
	}
	return drifts, nil
}

func (e *Engine) detectDriftWithModel(ctx context.Context, model *belief.Model, content string) ([]belief.Drift, error) {
	prompt := llm.BeliefDriftPrompt(model.Render(), clip(PreFilter(content), driftEventsLimit))
	resp, err := e.LLM.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("detect drift: %w", err)
	}
	var reply driftReply
	if err := decodeModelJSON(resp.Content, &reply); err != nil {
		return nil, fmt.Errorf("detect drift: %w", err)
	}

	drifts := make([]belief.Drift, 0, len(reply.Drifts))
	for _, d := range reply.Drifts {
		if strings.TrimSpace(d.Claim) == "" {
			continue
		}
		drifts = append(drifts, belief.Drift{
			Claim:         strings.TrimSpace(d.Claim),
			Type:          d.Type,
			OldConfidence: clamp01(d.OldConfidence),
			NewConfidence: clamp01(d.NewConfidence),
			Trigger:       d.Trigger,
			Reasoning:     d.Reasoning,
			Significance:  clamp01(d.Significance),
		})
	}
	return drifts, nil
}

// ApplyDrifts folds drifts at or above the significance threshold into
// the self-model and saves it. Returns the updated model and how many
// drifts were applied.
func (e *Engine) ApplyDrifts(drifts []belief.Drift, threshold float64) (*belief.Model, int, error) {
	model, err := e.Beliefs.Load()
	if err != nil {
		return nil, 0, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	applied := model.Apply(drifts, threshold, now)
	if applied == 0 {
		return model, 0, nil
	}
	if err := e.Beliefs.Save(model, now); err != nil {
		return nil, 0, err
	}
	return model, applied, nil
}

// LexicalDrifts is the provider-free fallback: an event line that
// repeats a belief's content words strengthens it, one that repeats
// them under negation weakens it. At most one drift per belief.
func LexicalDrifts(model *belief.Model, events []string) []belief.Drift {
	var drifts []belief.Drift
	for _, b := range model.Active() {
		claimWords := contentWords(b.Claim)
		need := 2
		if len(claimWords) < need {
			need = len(claimWords)
		}
		if need == 0 {
			continue
		}

		for _, line := range events {
			lineWords := map[string]bool{}
			for _, w := range contentWords(line) {
				lineWords[w] = true
			}
			hits := 0
			for _, w := range claimWords {
				if lineWords[w] {
					hits++
				}
			}
			if hits < need {
				continue
			}

			if isNegated(line) {
				drifts = append(drifts, belief.Drift{
					Claim:         b.Claim,
					Type:          belief.DriftWeakened,
					OldConfidence: b.Confidence,
					NewConfidence: max(b.Confidence-0.25, 0.1),
					Trigger:       line,
					Reasoning:     "daily log repeats this claim under negation",
					Significance:  0.45,
				})
			} else {
				drifts = append(drifts, belief.Drift{
					Claim:         b.Claim,
					Type:          belief.DriftStrengthened,
					OldConfidence: b.Confidence,
					NewConfidence: min(b.Confidence+0.1, 1),
					Trigger:       line,
					Reasoning:     "daily log repeats this claim",
					Significance:  0.3,
				})
			}
			break
		}
	}
	return drifts
}

func isNegated(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "no longer") {
		return true
	}
	for _, w := range contentWords(line) {
		if w == "not" || w == "never" || w == "stopped" {
			return true
		}
	}
	return false
}

// clip truncates prompt material to a byte budget.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
