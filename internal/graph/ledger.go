// Package graph implements the triplet ledger: an append-only jsonl
// file of dated subject–predicate–object edges plus derived lookups.
// Traversal is recomputed from the ledger on every call; there is no
// adjacency cache to drift out of sync.
package graph

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// Triplet is one directed, dated edge. Immutable once written; the only
// rewrites are index rebuild and merge relinking.
type Triplet struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Detail    string `json:"detail,omitempty"`
	Date      string `json:"date"`
	Timestamp string `json:"timestamp,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Key identifies a triplet for dedup: exact tuple including date.
func (t Triplet) Key() string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(t.Subject)),
		strings.ToLower(strings.TrimSpace(t.Predicate)),
		strings.ToLower(strings.TrimSpace(t.Object)),
		t.Date,
	}, "\x00")
}

func (t Triplet) String() string {
	s := fmt.Sprintf("[%s] %s → %s → %s", t.Date, t.Subject, t.Predicate, t.Object)
	if t.Detail != "" {
		s += " (" + t.Detail + ")"
	}
	return s
}

// Ledger reads and appends the graph.jsonl file.
type Ledger struct {
	ws *workspace.Workspace
}

// NewLedger creates a Ledger over a workspace.
func NewLedger(ws *workspace.Workspace) *Ledger {
	return &Ledger{ws: ws}
}

// All returns every triplet in ledger order. Unparsable lines are
// skipped with a log line rather than failing the read.
func (l *Ledger) All() ([]Triplet, error) {
	lines, err := workspace.ReadLines(l.ws.GraphFile)
	if err != nil {
		return nil, err
	}
	var out []Triplet
	for i, line := range lines {
		var t Triplet
		if err := json.Unmarshal([]byte(line), &t); err != nil {
			log.Printf("graph: skipping unparsable line %d: %v", i+1, err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Append adds triplets to the ledger, idempotently: tuples already
// present (exact subject/predicate/object/date match) are skipped.
// Returns the number actually written.
func (l *Ledger) Append(triplets ...Triplet) (int, error) {
	existing, err := l.All()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t.Key()] = true
	}

	added := 0
	for _, t := range triplets {
		if t.Subject == "" || t.Predicate == "" || t.Object == "" {
			continue
		}
		if seen[t.Key()] {
			continue
		}
		seen[t.Key()] = true

		line, err := json.Marshal(t)
		if err != nil {
			return added, fmt.Errorf("marshal triplet: %w", err)
		}
		if err := workspace.AppendLine(l.ws.GraphFile, string(line)); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// Direction of a neighbor edge relative to the queried entity.
type Direction string

const (
	Outbound Direction = "out" // entity is the subject
	Inbound  Direction = "in"  // entity is the object
)

// Neighbor is a triplet touching the queried entity, with its direction.
type Neighbor struct {
	Triplet   Triplet   `json:"triplet"`
	Direction Direction `json:"direction"`
}

// Neighbors returns all 1-hop edges of an entity, both subject- and
// object-position matches. Deeper traversal is deliberately out of
// scope for this version.
func (l *Ledger) Neighbors(name string) ([]Neighbor, error) {
	all, err := l.All()
	if err != nil {
		return nil, err
	}
	var out []Neighbor
	for _, t := range all {
		if entity.SameName(t.Subject, name) {
			out = append(out, Neighbor{Triplet: t, Direction: Outbound})
		} else if entity.SameName(t.Object, name) {
			out = append(out, Neighbor{Triplet: t, Direction: Inbound})
		}
	}
	return out, nil
}

// Search returns triplets whose subject, object, or detail contains the
// query, case-insensitively.
func (l *Ledger) Search(query string) ([]Triplet, error) {
	all, err := l.All()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []Triplet
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Subject), q) ||
			strings.Contains(strings.ToLower(t.Object), q) ||
			strings.Contains(strings.ToLower(t.Detail), q) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Relink rewrites triplets referencing oldName to point at newName.
// This is the graph half of an entity merge.
func (l *Ledger) Relink(oldName, newName string) (int, error) {
	all, err := l.All()
	if err != nil {
		return 0, err
	}

	changed := 0
	var b strings.Builder
	for _, t := range all {
		if entity.SameName(t.Subject, oldName) {
			t.Subject = newName
			changed++
		}
		if entity.SameName(t.Object, oldName) {
			t.Object = newName
			changed++
		}
		line, err := json.Marshal(t)
		if err != nil {
			return 0, fmt.Errorf("marshal triplet: %w", err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	if changed == 0 {
		return 0, nil
	}
	if err := workspace.WriteFileAtomic(l.ws.GraphFile, []byte(b.String())); err != nil {
		return 0, err
	}
	return changed, nil
}

// Count returns the number of triplets in the ledger.
func (l *Ledger) Count() (int, error) {
	all, err := l.All()
	if err != nil {
		return 0, err
	}
	return len(all), nil
}
