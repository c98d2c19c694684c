package graph

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var mermaidIDRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Mermaid renders triplets as a Mermaid flowchart, one edge per unique
// subject/predicate/object tuple. Output is deterministic: nodes and
// edges come out sorted.
func Mermaid(triplets []Triplet) string {
	type edge struct {
		from, label, to string
	}
	seen := make(map[string]bool)
	var edges []edge
	nodes := make(map[string]string) // id -> display name

	for _, t := range triplets {
		if t.Subject == "" || t.Object == "" {
			continue
		}
		from, to := mermaidID(t.Subject), mermaidID(t.Object)
		nodes[from] = t.Subject
		nodes[to] = t.Object

		key := from + "\x00" + t.Predicate + "\x00" + to
		if seen[key] {
			continue
		}
		seen[key] = true
		edges = append(edges, edge{from: from, label: t.Predicate, to: to})
	}

	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.from != b.from {
			return a.from < b.from
		}
		if a.to != b.to {
			return a.to < b.to
		}
		return a.label < b.label
	})

	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", id, strings.ReplaceAll(nodes[id], `"`, `'`))
	}
	for _, e := range edges {
		label := strings.ReplaceAll(e.label, `"`, `'`)
		fmt.Fprintf(&b, "    %s -->|%s| %s\n", e.from, label, e.to)
	}
	return b.String()
}

func mermaidID(name string) string {
	id := mermaidIDRe.ReplaceAllString(strings.TrimSpace(name), "_")
	if id == "" {
		id = "node"
	}
	return id
}
