package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/widingmarcus-cyber/mindgardener/internal/assemble"
	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// Fact-check verdicts.
const (
	VerdictConfirmed    = "confirmed"
	VerdictContradicted = "contradicted"
	VerdictNew          = "new"
	VerdictUnverified   = "unverified"
)

// FactCheck is one claim from agent output checked against the stores.
type FactCheck struct {
	Claim      string  `json:"claim"`
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`   // entity that confirms or contradicts
	Evidence   string  `json:"evidence,omitempty"` // the line supporting the verdict
}

// WriteBackFact is a new claim about a known entity, a candidate for
// writing back into its record.
type WriteBackFact struct {
	Entity     string  `json:"entity"`
	Fact       string  `json:"fact"`
	Confidence float64 `json:"confidence"`
}

// Evaluation is the full fact-check of one piece of agent output.
type Evaluation struct {
	EvaluatedAt       string          `json:"evaluated_at"`
	OverallConfidence float64         `json:"overall_confidence"`
	FactChecks        []FactCheck     `json:"fact_checks"`
	NewFacts          []WriteBackFact `json:"new_facts,omitempty"`
	NewEntities       []string        `json:"new_entities,omitempty"`
}

func (ev *Evaluation) withVerdict(verdict string) []FactCheck {
	var out []FactCheck
	for _, fc := range ev.FactChecks {
		if fc.Verdict == verdict {
			out = append(out, fc)
		}
	}
	return out
}

// Summary renders the evaluation for terminal output.
func (ev *Evaluation) Summary() string {
	var b strings.Builder
	b.WriteString("## Evaluation\n")
	fmt.Fprintf(&b, "Overall confidence: %.2f\n", ev.OverallConfidence)

	if confirmed := ev.withVerdict(VerdictConfirmed); len(confirmed) > 0 {
		fmt.Fprintf(&b, "\n### Confirmed (%d)\n", len(confirmed))
		for _, fc := range confirmed {
			fmt.Fprintf(&b, "- [%.2f] %s\n", fc.Confidence, fc.Claim)
			if fc.Source != "" {
				fmt.Fprintf(&b, "  source: %s\n", fc.Source)
			}
		}
	}
	if contradicted := ev.withVerdict(VerdictContradicted); len(contradicted) > 0 {
		fmt.Fprintf(&b, "\n### Contradicted (%d)\n", len(contradicted))
		for _, fc := range contradicted {
			fmt.Fprintf(&b, "- [%.2f] %s\n", fc.Confidence, fc.Claim)
			if fc.Evidence != "" {
				fmt.Fprintf(&b, "  evidence: %s\n", fc.Evidence)
			}
		}
	}
	if len(ev.NewFacts) > 0 {
		fmt.Fprintf(&b, "\n### New facts to write back (%d)\n", len(ev.NewFacts))
		for _, nf := range ev.NewFacts {
			fmt.Fprintf(&b, "- %s: %s (conf: %.2f)\n", nf.Entity, nf.Fact, nf.Confidence)
		}
	}
	if len(ev.NewEntities) > 0 {
		fmt.Fprintf(&b, "\n### New entities detected (%d)\n", len(ev.NewEntities))
		for _, name := range ev.NewEntities {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}
	return b.String()
}

// Evaluate fact-checks agent output against the entity store: claims
// are extracted heuristically, matched to entities, and judged
// confirmed, contradicted, new, or unverified. Pure text matching, no
// language-model calls.
func (e *Engine) Evaluate(output string) (*Evaluation, error) {
	ev := &Evaluation{
		EvaluatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	claims := extractClaims(output)
	if len(claims) == 0 {
		ev.OverallConfidence = 0.5 // nothing checkable either way
		return ev, nil
	}

	var records []*entity.Record
	known := map[string]bool{}
	for rec, err := range e.Entities.List("") {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		known[strings.ToLower(rec.Name)] = true
		for _, a := range rec.Aliases {
			known[strings.ToLower(a)] = true
		}
	}

	for _, claim := range claims {
		rec := matchClaimEntity(claim, records)
		if rec == nil {
			for _, noun := range newEntityCandidates(claim, known) {
				if !containsName(ev.NewEntities, noun) {
					ev.NewEntities = append(ev.NewEntities, noun)
				}
			}
			continue
		}

		fc := checkClaim(claim, rec)
		ev.FactChecks = append(ev.FactChecks, fc)
		if fc.Verdict == VerdictNew && fc.Confidence >= 0.5 {
			ev.NewFacts = append(ev.NewFacts, WriteBackFact{
				Entity:     rec.Name,
				Fact:       claim,
				Confidence: fc.Confidence,
			})
		}
	}

	ev.OverallConfidence = overallConfidence(ev.FactChecks)
	return ev, nil
}

// WriteBack appends verified new facts to their entity records and
// logs the evaluation to the audit ledger. Facts below minConfidence
// and duplicates are skipped; with dryRun nothing is written. Returns
// one action line per considered fact.
func (e *Engine) WriteBack(ev *Evaluation, minConfidence float64, dryRun bool) ([]string, error) {
	var actions []string
	written := 0
	for _, nf := range ev.NewFacts {
		if nf.Confidence < minConfidence {
			actions = append(actions, fmt.Sprintf("skip %s: below confidence %.2f", nf.Entity, minConfidence))
			continue
		}
		rec, err := e.Entities.Get(nf.Entity)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				actions = append(actions, fmt.Sprintf("skip %s: entity not found", nf.Entity))
				continue
			}
			return nil, err
		}
		if strings.Contains(strings.ToLower(rec.Render()), strings.ToLower(nf.Fact)) {
			actions = append(actions, fmt.Sprintf("skip %s: fact already recorded", nf.Entity))
			continue
		}
		if dryRun {
			actions = append(actions, fmt.Sprintf("would add to %s: %s", nf.Entity, nf.Fact))
			continue
		}
		fact := fmt.Sprintf("%s (auto-evaluated, conf: %.2f)", nf.Fact, nf.Confidence)
		if _, err := e.Entities.AddFact(rec.Name, fact); err != nil {
			return nil, fmt.Errorf("write back to %s: %w", rec.Name, err)
		}
		written++
		actions = append(actions, fmt.Sprintf("added to %s: %s", nf.Entity, nf.Fact))
	}

	if !dryRun {
		entry, err := json.Marshal(map[string]any{
			"evaluated_at":       ev.EvaluatedAt,
			"overall_confidence": ev.OverallConfidence,
			"confirmed":          len(ev.withVerdict(VerdictConfirmed)),
			"contradicted":       len(ev.withVerdict(VerdictContradicted)),
			"new_facts_written":  written,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal evaluation: %w", err)
		}
		if err := workspace.AppendLine(e.WS.EvalFile, string(entry)); err != nil {
			return nil, err
		}
	}
	return actions, nil
}

const maxClaims = 20

var metaPrefixes = []string{
	"?", "!", "Let me", "I'll", "I will", "Sure", "Okay", "Here", "Note:", "---",
}

var (
	claimSplitRe = regexp.MustCompile(`[.!?\n]`)
	assertionRe  = regexp.MustCompile(`[A-Z][a-z]+|\d+`)
	properNounRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	typeClaimRe  = regexp.MustCompile(`is (?:a |an )?(\w+)`)
)

// extractClaims pulls checkable factual statements out of free text:
// sentences that assert something about a named thing, skipping
// questions, commands, and meta-commentary.
func extractClaims(text string) []string {
	var claims []string
	for _, sentence := range claimSplitRe.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < 10 {
			continue
		}
		meta := false
		for _, p := range metaPrefixes {
			if strings.HasPrefix(sentence, p) {
				meta = true
				break
			}
		}
		if meta {
			continue
		}
		if !assertionRe.MatchString(sentence) && !strings.Contains(sentence, "[[") {
			continue
		}
		claims = append(claims, sentence)
		if len(claims) == maxClaims {
			break
		}
	}
	return claims
}

// matchClaimEntity finds the entity a claim is about: a name or alias
// literally present in the claim wins, otherwise the best fuzzy match
// above a floor.
func matchClaimEntity(claim string, records []*entity.Record) *entity.Record {
	claimLower := strings.ToLower(claim)
	var best *entity.Record
	bestScore := 0.3
	for _, rec := range records {
		if strings.Contains(claimLower, strings.ToLower(rec.Name)) {
			return rec
		}
		for _, a := range rec.Aliases {
			if strings.Contains(claimLower, strings.ToLower(a)) {
				return rec
			}
		}
		if s := assemble.BestScore(claim, rec.Name, rec.Aliases); s > bestScore {
			best, bestScore = rec, s
		}
	}
	return best
}

// checkClaim judges one claim against one record. Word containment in
// facts is the strong signal, timeline lines the weaker one, then a
// type assertion mismatch flags a contradiction.
func checkClaim(claim string, rec *entity.Record) FactCheck {
	claimWords := significantWords(claim)

	bestFact, factHits := "", 0
	for _, fact := range rec.Facts {
		factLower := strings.ToLower(fact)
		hits := 0
		for w := range claimWords {
			if strings.Contains(factLower, w) {
				hits++
			}
		}
		if hits > factHits {
			factHits, bestFact = hits, fact
		}
	}
	if factHits >= 3 {
		return FactCheck{
			Claim:      claim,
			Verdict:    VerdictConfirmed,
			Confidence: min(1.0, 0.5+float64(factHits)*0.1),
			Source:     rec.Name,
			Evidence:   bestFact,
		}
	}

	for _, entry := range rec.Timeline {
		lineLower := strings.ToLower(entry.Text)
		hits := 0
		for w := range claimWords {
			if strings.Contains(lineLower, w) {
				hits++
			}
		}
		if hits >= 2 {
			return FactCheck{
				Claim:      claim,
				Verdict:    VerdictConfirmed,
				Confidence: 0.6,
				Source:     rec.Name,
				Evidence:   entry.Text,
			}
		}
	}

	if m := typeClaimRe.FindStringSubmatch(strings.ToLower(claim)); m != nil {
		asserted := entity.Kind(m[1])
		switch asserted {
		case entity.KindPerson, entity.KindCompany, entity.KindProject, entity.KindTool, entity.KindConcept:
			if asserted != rec.Kind {
				return FactCheck{
					Claim:      claim,
					Verdict:    VerdictContradicted,
					Confidence: 0.7,
					Source:     rec.Name,
					Evidence:   fmt.Sprintf("entity type is %s, claim says %s", rec.Kind, asserted),
				}
			}
		}
	}

	if strings.Contains(strings.ToLower(claim), strings.ToLower(rec.Name)) {
		return FactCheck{Claim: claim, Verdict: VerdictNew, Confidence: 0.5, Source: rec.Name}
	}
	return FactCheck{Claim: claim, Verdict: VerdictUnverified, Confidence: 0.3}
}

var calendarWords = map[string]bool{
	"the": true, "this": true, "that": true, "these": true,
	"when": true, "where": true, "what": true, "which": true, "here": true, "there": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
}

// newEntityCandidates finds proper nouns in a claim that no record
// covers yet.
func newEntityCandidates(claim string, known map[string]bool) []string {
	var out []string
	for _, noun := range properNounRe.FindAllString(claim, -1) {
		lower := strings.ToLower(noun)
		if len(noun) <= 2 || known[lower] || calendarWords[lower] {
			continue
		}
		out = append(out, noun)
	}
	return out
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func significantWords(s string) map[string]bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if len(w) >= 4 {
			words[w] = true
		}
	}
	return words
}

// overallConfidence weights verdicts so contradictions hurt twice as
// much as confirmations help.
func overallConfidence(checks []FactCheck) float64 {
	if len(checks) == 0 {
		return 0.5
	}
	confirmed, contradicted := 0, 0
	for _, fc := range checks {
		switch fc.Verdict {
		case VerdictConfirmed:
			confirmed++
		case VerdictContradicted:
			contradicted++
		}
	}
	other := len(checks) - confirmed - contradicted
	score := (float64(confirmed) - 2.0*float64(contradicted) + 0.5*float64(other)) / float64(len(checks))
	return clamp01(score)
}
