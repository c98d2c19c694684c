// Package entity implements the semantic record store: one markdown
// file per entity with Facts, Timeline, and Relations sections, plus
// the merge, alias, decay, and fix operations over those files.
package entity

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind classifies an entity.
type Kind string

const (
	KindPerson  Kind = "person"
	KindCompany Kind = "company"
	KindProject Kind = "project"
	KindTool    Kind = "tool"
	KindConcept Kind = "concept"
	KindEvent   Kind = "event"
	KindOther   Kind = "other"
)

// ParseKind normalizes a kind string; anything unrecognized maps to other.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPerson, KindCompany, KindProject, KindTool, KindConcept, KindEvent:
		return Kind(strings.ToLower(strings.TrimSpace(s)))
	case "role": // extraction models sometimes emit "role" for people
		return KindPerson
	default:
		return KindOther
	}
}

// TimelineEntry is one dated, append-only history line.
type TimelineEntry struct {
	Date string `json:"date"` // YYYY-MM-DD
	Text string `json:"text"`
}

// Record is the parsed form of one entity file.
type Record struct {
	Name     string   `json:"name"`
	Kind     Kind     `json:"kind"`
	KindNote string   `json:"kind_note,omitempty"` // recorded when extraction reports a conflicting kind
	Aliases  []string `json:"aliases,omitempty"`   // identifiers merged into this record
	Accessed int      `json:"accessed"`            // retrieval counter

	Facts     []string        `json:"facts,omitempty"`
	Timeline  []TimelineEntry `json:"timeline,omitempty"` // ordered by date, then insertion order
	Relations []string        `json:"relations,omitempty"` // entity names, sorted
}

// LastReferenced returns the most recent timeline date, or "".
func (r *Record) LastReferenced() string {
	last := ""
	for _, e := range r.Timeline {
		if e.Date > last {
			last = e.Date
		}
	}
	return last
}

// HasRelation reports whether name is already a relation edge.
func (r *Record) HasRelation(name string) bool {
	for _, rel := range r.Relations {
		if SameName(rel, name) {
			return true
		}
	}
	return false
}

// Sanitize converts an entity name to its file stem: NFC-normalized,
// punctuation stripped, spaces dashed. Mirrors the on-disk naming the
// rest of the workspace tooling expects.
var unsafeRe = regexp.MustCompile(`[^\w\s-]`)

func Sanitize(name string) string {
	n := norm.NFC.String(name)
	n = unsafeRe.ReplaceAllString(n, "")
	n = strings.TrimSpace(n)
	return strings.ReplaceAll(n, " ", "-")
}

// SameName compares two entity identifiers case-insensitively after
// NFC normalization and trimming.
func SameName(a, b string) bool {
	return foldName(a) == foldName(b)
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

var (
	dateHeadingRe = regexp.MustCompile(`^### \[\[(\d{4}-\d{2}-\d{2})\]\]`)
	wikilinkRe    = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	datelinkRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Wikilinks extracts the non-date [[cross-references]] from text, in
// order, deduplicated.
func Wikilinks(text string) []string {
	var links []string
	seen := map[string]bool{}
	for _, m := range wikilinkRe.FindAllStringSubmatch(text, -1) {
		link := m[1]
		key := foldName(link)
		if seen[key] || datelinkRe.MatchString(link) {
			continue
		}
		seen[key] = true
		links = append(links, link)
	}
	return links
}

// ParseRecord parses entity file content. name is the display name the
// file was addressed by; the `# Heading` wins when present.
func ParseRecord(name, content string) *Record {
	r := &Record{Name: name, Kind: KindOther}

	section := ""
	currentDate := ""
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "# ") && !strings.HasPrefix(trimmed, "## "):
			r.Name = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			continue
		case strings.HasPrefix(trimmed, "**Type:**"):
			r.Kind = ParseKind(strings.TrimPrefix(trimmed, "**Type:**"))
			continue
		case strings.HasPrefix(trimmed, "**Type note:**"):
			r.KindNote = strings.TrimSpace(strings.TrimPrefix(trimmed, "**Type note:**"))
			continue
		case strings.HasPrefix(trimmed, "**Also known as:**"):
			for _, a := range strings.Split(strings.TrimPrefix(trimmed, "**Also known as:**"), ",") {
				if a = strings.TrimSpace(a); a != "" {
					r.Aliases = append(r.Aliases, a)
				}
			}
			continue
		case strings.HasPrefix(trimmed, "**Accessed:**"):
			fmt.Sscanf(strings.TrimSpace(strings.TrimPrefix(trimmed, "**Accessed:**")), "%d", &r.Accessed)
			continue
		case strings.HasPrefix(trimmed, "## "):
			section = strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
			currentDate = ""
			continue
		}

		if m := dateHeadingRe.FindStringSubmatch(trimmed); m != nil && section == "Timeline" {
			currentDate = m[1]
			continue
		}

		if !strings.HasPrefix(trimmed, "- ") {
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(trimmed, "- "))
		switch section {
		case "Facts":
			r.Facts = append(r.Facts, item)
		case "Timeline":
			if currentDate != "" {
				r.Timeline = append(r.Timeline, TimelineEntry{Date: currentDate, Text: item})
			}
		case "Relations":
			if m := wikilinkRe.FindStringSubmatch(item); m != nil {
				r.Relations = append(r.Relations, m[1])
			}
		}
	}

	return r
}

// Render serializes the record back to its file format. Timeline
// entries are grouped under dated subsections, dates ascending with
// insertion order preserved within a date.
func (r *Record) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", r.Name)
	fmt.Fprintf(&b, "**Type:** %s\n", r.Kind)
	if r.KindNote != "" {
		fmt.Fprintf(&b, "**Type note:** %s\n", r.KindNote)
	}
	if len(r.Aliases) > 0 {
		fmt.Fprintf(&b, "**Also known as:** %s\n", strings.Join(r.Aliases, ", "))
	}
	if r.Accessed > 0 {
		fmt.Fprintf(&b, "**Accessed:** %d\n", r.Accessed)
	}

	if len(r.Facts) > 0 {
		b.WriteString("\n## Facts\n")
		for _, f := range r.Facts {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	b.WriteString("\n## Timeline\n")
	for _, date := range r.timelineDates() {
		fmt.Fprintf(&b, "\n### [[%s]]\n", date)
		for _, e := range r.Timeline {
			if e.Date == date {
				fmt.Fprintf(&b, "- %s\n", e.Text)
			}
		}
	}

	if len(r.Relations) > 0 {
		b.WriteString("\n## Relations\n")
		rels := append([]string(nil), r.Relations...)
		sort.Strings(rels)
		for _, rel := range rels {
			fmt.Fprintf(&b, "- [[%s]]\n", rel)
		}
	}

	return b.String()
}

func (r *Record) timelineDates() []string {
	var dates []string
	seen := map[string]bool{}
	for _, e := range r.Timeline {
		if !seen[e.Date] {
			seen[e.Date] = true
			dates = append(dates, e.Date)
		}
	}
	sort.Strings(dates)
	return dates
}
