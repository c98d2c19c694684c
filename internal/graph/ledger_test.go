package graph

import (
	"testing"

	"github.com/widingmarcus-cyber/mindgardener/internal/config"
	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

func testLedger(t *testing.T) (*Ledger, *workspace.Workspace) {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	ws, err := workspace.New(cfg)
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	return NewLedger(ws), ws
}

func TestAppendIsIdempotent(t *testing.T) {
	l, _ := testLedger(t)

	edge := Triplet{Subject: "Marcus", Predicate: "submitted_pr", Object: "OpenClaw", Date: "2026-02-16"}

	added, err := l.Append(edge, edge)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}

	// Same tuple again, different detail: still a duplicate.
	dup := edge
	dup.Detail = "docs fix"
	added, err = l.Append(dup)
	if err != nil {
		t.Fatal(err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0", added)
	}

	// Same tuple on a different date is a distinct edge.
	later := edge
	later.Date = "2026-02-17"
	added, err = l.Append(later)
	if err != nil {
		t.Fatal(err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}

	n, err := l.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestAppendSkipsIncomplete(t *testing.T) {
	l, _ := testLedger(t)
	added, err := l.Append(Triplet{Subject: "Marcus", Date: "2026-02-16"})
	if err != nil {
		t.Fatal(err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0", added)
	}
}

func TestNeighborsBothDirections(t *testing.T) {
	l, _ := testLedger(t)
	if _, err := l.Append(
		Triplet{Subject: "Marcus", Predicate: "works_at", Object: "Sana Labs", Date: "2026-02-15"},
		Triplet{Subject: "Kadoa", Predicate: "contacted", Object: "Marcus", Date: "2026-02-16"},
		Triplet{Subject: "Kadoa", Predicate: "uses", Object: "OpenClaw", Date: "2026-02-16"},
	); err != nil {
		t.Fatal(err)
	}

	neighbors, err := l.Neighbors("marcus")
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("neighbors = %v", neighbors)
	}
	if neighbors[0].Direction != Outbound || neighbors[1].Direction != Inbound {
		t.Errorf("directions = %v %v", neighbors[0].Direction, neighbors[1].Direction)
	}
}

func TestSearchMatchesDetail(t *testing.T) {
	l, _ := testLedger(t)
	if _, err := l.Append(
		Triplet{Subject: "Marcus", Predicate: "submitted_pr", Object: "OpenClaw", Detail: "fix flaky CI", Date: "2026-02-16"},
	); err != nil {
		t.Fatal(err)
	}

	hits, err := l.Search("flaky")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("hits = %v", hits)
	}
}

func TestRelinkRewritesBothPositions(t *testing.T) {
	l, _ := testLedger(t)
	if _, err := l.Append(
		Triplet{Subject: "openclaw/openclaw", Predicate: "maintained_by", Object: "Marcus", Date: "2026-02-15"},
		Triplet{Subject: "Marcus", Predicate: "renamed", Object: "openclaw/openclaw", Date: "2026-02-16"},
		Triplet{Subject: "Kadoa", Predicate: "uses", Object: "Greptile", Date: "2026-02-16"},
	); err != nil {
		t.Fatal(err)
	}

	changed, err := l.Relink("openclaw/openclaw", "OpenClaw")
	if err != nil {
		t.Fatalf("Relink: %v", err)
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}

	all, err := l.All()
	if err != nil {
		t.Fatal(err)
	}
	for _, tr := range all {
		if entity.SameName(tr.Subject, "openclaw/openclaw") || entity.SameName(tr.Object, "openclaw/openclaw") {
			t.Errorf("stale reference survives: %+v", tr)
		}
	}
}
