package assemble

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
	"github.com/widingmarcus-cyber/mindgardener/internal/graph"
	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// matchThreshold is the minimum entity match score for direct
// inclusion. Graph-expanded neighbors bypass it; their relevance is
// inherited from the entity that pulled them in.
const matchThreshold = 0.5

// expansionPenalty is subtracted from a parent entity's score when a
// 1-hop neighbor rides in on its coattails, floored so an expanded
// item never scores zero.
const (
	expansionPenalty = 0.25
	expansionFloor   = 0.05
)

// Assembler packs memory into a token budget for one query.
type Assembler struct {
	ws       *workspace.Workspace
	entities *entity.Store
	graph    *graph.Ledger
}

// New creates an Assembler over the given stores.
func New(ws *workspace.Workspace, store *entity.Store, ledger *graph.Ledger) *Assembler {
	return &Assembler{ws: ws, entities: store, graph: ledger}
}

// Options tune one assembly run. Zero values fall back to nothing:
// callers are expected to fill them from config.
type Options struct {
	Budget      int
	RecentDays  int
	MaxEntities int
	Today       time.Time
}

// Result is the assembled context plus its audit manifest.
type Result struct {
	Context  string
	Manifest *Manifest
}

// candidate is one item considered for inclusion. An item with a
// preset skip reason was disqualified before packing but still shows
// up in the manifest.
type candidate struct {
	id    string
	kind  string
	score float64
	text  string
	skip  string
}

// Assemble scores memory against the query, packs the best items
// greedily in tier order (entities, graph expansion, triplets, log
// excerpts, summary entries) and records a manifest covering every
// candidate. tokens_used never exceeds the budget; a single oversized
// item is skipped, not truncated.
func (a *Assembler) Assemble(query string, opt Options) (*Result, error) {
	manifest := NewManifest(query, opt.Budget)

	matched, belowThreshold, err := a.scoreEntities(query, opt.MaxEntities)
	if err != nil {
		return nil, err
	}

	expanded, err := a.expandGraph(matched)
	if err != nil {
		return nil, err
	}

	triplets, err := a.relevantTriplets(matched, expanded)
	if err != nil {
		return nil, err
	}

	logs, err := a.logExcerpts(query, opt)
	if err != nil {
		return nil, err
	}

	summaries, err := a.summaryEntries(query)
	if err != nil {
		return nil, err
	}

	var all []candidate
	all = append(all, matched...)
	all = append(all, belowThreshold...)
	all = append(all, expanded...)
	all = append(all, triplets...)
	all = append(all, logs...)
	all = append(all, summaries...)

	var b strings.Builder
	seen := make(map[string]bool)
	for _, c := range all {
		if c.skip != "" {
			manifest.Skipped = append(manifest.Skipped, SkippedItem{ID: c.id, Reason: c.skip})
			continue
		}
		if key := strings.ToLower(strings.TrimSpace(c.text)); seen[key] {
			manifest.Skipped = append(manifest.Skipped, SkippedItem{ID: c.id, Reason: SkipDuplicate})
			continue
		} else {
			seen[key] = true
		}

		tokens := EstimateTokens(c.text)
		if manifest.TokensUsed+tokens > opt.Budget {
			manifest.Skipped = append(manifest.Skipped, SkippedItem{ID: c.id, Reason: SkipBudget})
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(c.text)
		manifest.TokensUsed += tokens
		manifest.Loaded = append(manifest.Loaded, LoadedItem{
			ID: c.id, Kind: c.kind, Score: c.score, Tokens: tokens,
		})
	}
	manifest.finish()

	if err := AppendManifest(a.ws, manifest); err != nil {
		return nil, err
	}
	return &Result{Context: b.String(), Manifest: manifest}, nil
}

// scoreEntities rates every active entity against the query. Matches at
// or above the threshold come back ranked and capped at maxEntities;
// weaker non-zero matches come back pre-skipped so the manifest shows
// they were considered.
func (a *Assembler) scoreEntities(query string, maxEntities int) (matched, belowThreshold []candidate, err error) {
	type scored struct {
		rec   *entity.Record
		score float64
	}
	var hits []scored

	for rec, err := range a.entities.List("") {
		if err != nil {
			return nil, nil, err
		}
		score := BestScore(query, rec.Name, rec.Aliases)
		if score == 0 {
			continue
		}
		if score < matchThreshold {
			belowThreshold = append(belowThreshold, candidate{
				id:    "entity:" + rec.Name,
				kind:  "entity",
				score: score,
				skip:  SkipLowScore,
			})
			continue
		}
		hits = append(hits, scored{rec: rec, score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		li, lj := hits[i].rec.LastReferenced(), hits[j].rec.LastReferenced()
		if li != lj {
			return li > lj
		}
		return hits[i].rec.Name < hits[j].rec.Name
	})

	for i, h := range hits {
		if maxEntities > 0 && i >= maxEntities {
			belowThreshold = append(belowThreshold, candidate{
				id:    "entity:" + h.rec.Name,
				kind:  "entity",
				score: h.score,
				skip:  SkipLowScore,
			})
			continue
		}
		matched = append(matched, candidate{
			id:    "entity:" + h.rec.Name,
			kind:  "entity",
			score: h.score,
			text:  h.rec.Render(),
		})
	}
	return matched, belowThreshold, nil
}

// expandGraph pulls in 1-hop neighbors of matched entities at a score
// penalty. A neighbor without its own entity file contributes nothing
// here; its edge can still surface through relevantTriplets.
func (a *Assembler) expandGraph(matched []candidate) ([]candidate, error) {
	have := make(map[string]bool, len(matched))
	for _, c := range matched {
		have[entityKey(c.id)] = true
	}

	var out []candidate
	for _, parent := range matched {
		neighbors, err := a.graph.Neighbors(strings.TrimPrefix(parent.id, "entity:"))
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			other := n.Triplet.Object
			if n.Direction == graph.Inbound {
				other = n.Triplet.Subject
			}
			key := strings.ToLower(strings.TrimSpace(other))
			if have[key] {
				continue
			}
			have[key] = true

			rec, err := a.entities.Get(other)
			if err != nil {
				continue // edge endpoint without a record
			}
			score := parent.score - expansionPenalty
			if score < expansionFloor {
				score = expansionFloor
			}
			out = append(out, candidate{
				id:    "entity:" + rec.Name,
				kind:  "graph_expansion",
				score: score,
				text:  rec.Render(),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out, nil
}

// relevantTriplets includes edges whose both endpoints made it into the
// entity set.
func (a *Assembler) relevantTriplets(matched, expanded []candidate) ([]candidate, error) {
	included := make(map[string]bool)
	for _, c := range matched {
		included[entityKey(c.id)] = true
	}
	for _, c := range expanded {
		included[entityKey(c.id)] = true
	}
	if len(included) == 0 {
		return nil, nil
	}

	all, err := a.graph.All()
	if err != nil {
		return nil, err
	}
	var out []candidate
	for _, t := range all {
		if !included[strings.ToLower(strings.TrimSpace(t.Subject))] ||
			!included[strings.ToLower(strings.TrimSpace(t.Object))] {
			continue
		}
		out = append(out, candidate{
			id:    "triplet:" + t.Key(),
			kind:  "triplet",
			score: 0.5,
			text:  t.String(),
		})
	}
	return out, nil
}

// logExcerpts returns query-relevant lines from recent daily logs,
// most recent day first.
func (a *Assembler) logExcerpts(query string, opt Options) ([]candidate, error) {
	if opt.RecentDays <= 0 {
		return nil, nil
	}
	words := strings.Fields(foldMatch(query))
	if len(words) == 0 {
		return nil, nil
	}

	var out []candidate
	for _, date := range a.ws.RecentDates(opt.RecentDays, opt.Today) {
		content, err := a.ws.ReadDailyLog(date)
		if err != nil {
			return nil, err
		}
		for i, line := range strings.Split(content, "\n") {
			folded := foldMatch(line)
			if folded == "" || !containsAny(folded, words) {
				continue
			}
			out = append(out, candidate{
				id:    fmt.Sprintf("log:%s:%d", date, i+1),
				kind:  "log_excerpt",
				score: 0.4,
				text:  fmt.Sprintf("[%s] %s", date, strings.TrimSpace(line)),
			})
		}
	}
	return out, nil
}

// summaryEntries returns query-relevant lines from the long-term
// summary.
func (a *Assembler) summaryEntries(query string) ([]candidate, error) {
	data, err := os.ReadFile(a.ws.SummaryFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read long-term memory: %w", err)
	}
	words := strings.Fields(foldMatch(query))
	if len(words) == 0 {
		return nil, nil
	}

	var out []candidate
	for i, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if !containsAny(foldMatch(trimmed), words) {
			continue
		}
		out = append(out, candidate{
			id:    fmt.Sprintf("summary:%d", i+1),
			kind:  "summary",
			score: 0.3,
			text:  trimmed,
		})
	}
	return out, nil
}

func entityKey(id string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(id, "entity:")))
}

func containsAny(haystack string, words []string) bool {
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}
