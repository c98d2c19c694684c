package graph

import (
	"os"
	"testing"

	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
)

func TestRebuildFromEntities(t *testing.T) {
	l, ws := testLedger(t)
	store := entity.NewStore(ws)

	if _, err := store.Upsert(entity.Upsert{
		Name: "OpenClaw",
		Kind: entity.KindProject,
		Timeline: []entity.TimelineEntry{
			{Date: "2026-02-15", Text: "maintained_by → [[Marcus]]: sole maintainer"},
			{Date: "2026-02-16", Text: "[[Kadoa]] uses → this: production scraping"},
		},
		Relations: []string{"Marcus", "Kadoa", "Greptile"},
	}); err != nil {
		t.Fatal(err)
	}

	stats, err := RebuildFromEntities(store, ws)
	if err != nil {
		t.Fatalf("RebuildFromEntities: %v", err)
	}
	if stats.Entities != 1 {
		t.Errorf("entities = %d", stats.Entities)
	}
	// Two inline edges plus one related_to for Greptile; Marcus and
	// Kadoa already have explicit edges.
	if stats.Triplets != 3 {
		t.Errorf("triplets = %d", stats.Triplets)
	}

	all, err := l.All()
	if err != nil {
		t.Fatal(err)
	}
	for _, tr := range all {
		if tr.Source != "reindex" {
			t.Errorf("source = %q", tr.Source)
		}
		if tr.Timestamp != "" {
			t.Errorf("rebuild emitted a wall-clock timestamp: %+v", tr)
		}
	}

	byKey := map[string]Triplet{}
	for _, tr := range all {
		byKey[tr.Subject+"/"+tr.Predicate+"/"+tr.Object] = tr
	}
	if tr, ok := byKey["OpenClaw/maintained_by/Marcus"]; !ok || tr.Detail != "sole maintainer" || tr.Date != "2026-02-15" {
		t.Errorf("outbound edge = %+v", tr)
	}
	if tr, ok := byKey["Kadoa/uses/OpenClaw"]; !ok || tr.Date != "2026-02-16" {
		t.Errorf("inbound edge = %+v", tr)
	}
	if _, ok := byKey["OpenClaw/related_to/Greptile"]; !ok {
		t.Error("missing related_to fallback edge")
	}
}

func TestRebuildIsDeterministic(t *testing.T) {
	_, ws := testLedger(t)
	store := entity.NewStore(ws)

	for _, u := range []entity.Upsert{
		{Name: "Marcus", Kind: entity.KindPerson, Timeline: []entity.TimelineEntry{
			{Date: "2026-02-16", Text: "submitted_pr → [[OpenClaw]]: docs"},
		}},
		{Name: "Kadoa", Kind: entity.KindCompany, Relations: []string{"OpenClaw"}},
	} {
		if _, err := store.Upsert(u); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := RebuildFromEntities(store, ws); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(ws.GraphFile)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := RebuildFromEntities(store, ws); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(ws.GraphFile)
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Errorf("rebuild output differs between runs:\n%s\nvs\n%s", first, second)
	}

	// The first run's output was backed up by the second.
	if _, err := os.Stat(ws.GraphFile + ".bak"); err != nil {
		t.Errorf("no backup written: %v", err)
	}
}
