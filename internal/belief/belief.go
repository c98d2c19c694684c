// Package belief maintains the agent's explicit model of its
// principal: identity-level claims with confidence, evidence, and a
// lifecycle status, stored as human-editable YAML. Where the surprise
// scorer asks "was this event unexpected?", belief drift asks "does
// this change who we think the principal is?".
package belief

import (
	"fmt"
	"sort"
	"strings"
)

// Belief lifecycle states.
const (
	StatusActive    = "active"
	StatusWeakening = "weakening"
	StatusRevised   = "revised"
	StatusArchived  = "archived"
)

// Belief is a single claim about the principal.
type Belief struct {
	Claim           string   `yaml:"claim" json:"claim"`
	Confidence      float64  `yaml:"confidence" json:"confidence"`
	Category        string   `yaml:"category" json:"category"` // values, goals, preferences, skills, relationships, habits
	EvidenceFor     []string `yaml:"evidence_for,omitempty" json:"evidence_for,omitempty"`
	EvidenceAgainst []string `yaml:"evidence_against,omitempty" json:"evidence_against,omitempty"`
	FirstObserved   string   `yaml:"first_observed,omitempty" json:"first_observed,omitempty"`
	LastUpdated     string   `yaml:"last_updated,omitempty" json:"last_updated,omitempty"`
	Status          string   `yaml:"status" json:"status"`
}

// NetConfidence weights confidence by the evidence balance: a claim
// with mostly counter-evidence is worth less than its raw confidence.
func (b *Belief) NetConfidence() float64 {
	total := len(b.EvidenceFor) + len(b.EvidenceAgainst)
	if total == 0 {
		return b.Confidence
	}
	return b.Confidence * float64(len(b.EvidenceFor)) / float64(total)
}

// Model is the full self-model file.
type Model struct {
	Version     int      `yaml:"version"`
	LastUpdated string   `yaml:"last_updated"`
	Beliefs     []Belief `yaml:"beliefs"`
}

// Active returns the beliefs still held.
func (m *Model) Active() []Belief {
	var out []Belief
	for _, b := range m.Beliefs {
		if b.Status == StatusActive {
			out = append(out, b)
		}
	}
	return out
}

// Weakening returns beliefs under contradiction pressure.
func (m *Model) Weakening() []Belief {
	var out []Belief
	for _, b := range m.Beliefs {
		if b.Status == StatusWeakening {
			out = append(out, b)
		}
	}
	return out
}

// Find returns beliefs whose claim contains the fragment.
func (m *Model) Find(fragment string) []Belief {
	needle := strings.ToLower(fragment)
	var out []Belief
	for _, b := range m.Beliefs {
		if strings.Contains(strings.ToLower(b.Claim), needle) {
			out = append(out, b)
		}
	}
	return out
}

var statusMarkers = map[string]string{
	StatusActive:    "*",
	StatusWeakening: "!",
	StatusRevised:   "~",
	StatusArchived:  "-",
}

// Render formats the model as markdown, active beliefs grouped by
// category with the highest confidence first.
func (m *Model) Render() string {
	if len(m.Beliefs) == 0 {
		return "No beliefs in self-model yet.\n"
	}

	byCategory := map[string][]Belief{}
	for _, b := range m.Active() {
		byCategory[b.Category] = append(byCategory[b.Category], b)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var out strings.Builder
	fmt.Fprintf(&out, "## Self-Model (v%d, updated %s)\n", m.Version, m.LastUpdated)
	for _, cat := range categories {
		beliefs := byCategory[cat]
		sort.SliceStable(beliefs, func(i, j int) bool {
			return beliefs[i].Confidence > beliefs[j].Confidence
		})
		fmt.Fprintf(&out, "\n### %s\n", titleCase(cat))
		for _, b := range beliefs {
			marker := statusMarkers[b.Status]
			if marker == "" {
				marker = "?"
			}
			fmt.Fprintf(&out, "%s [%.0f%%] %s\n", marker, b.Confidence*100, b.Claim)
			if len(b.EvidenceAgainst) > 0 {
				recent := b.EvidenceAgainst
				if len(recent) > 2 {
					recent = recent[len(recent)-2:]
				}
				fmt.Fprintf(&out, "    counter: %s\n", strings.Join(recent, "; "))
			}
		}
	}

	if weak := m.Weakening(); len(weak) > 0 {
		out.WriteString("\n### Weakening\n")
		for _, b := range weak {
			fmt.Fprintf(&out, "! [%.0f%%] %s\n", b.Confidence*100, b.Claim)
		}
	}
	return out.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
