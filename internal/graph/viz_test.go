package graph

import (
	"strings"
	"testing"
)

func TestMermaid(t *testing.T) {
	out := Mermaid([]Triplet{
		{Subject: "Marcus", Predicate: "works_at", Object: "Sana Labs", Date: "2026-02-15"},
		{Subject: "Marcus", Predicate: "works_at", Object: "Sana Labs", Date: "2026-02-16"}, // same edge, later date
		{Subject: "Kadoa", Predicate: "contacted", Object: "Marcus", Date: "2026-02-16"},
	})

	if !strings.HasPrefix(out, "graph TD\n") {
		t.Errorf("missing header:\n%s", out)
	}
	if strings.Count(out, "-->") != 2 {
		t.Errorf("want 2 edges:\n%s", out)
	}
	if !strings.Contains(out, `Sana_Labs["Sana Labs"]`) {
		t.Errorf("node declaration missing:\n%s", out)
	}
	if !strings.Contains(out, "Marcus -->|works_at| Sana_Labs") {
		t.Errorf("edge missing:\n%s", out)
	}
}
