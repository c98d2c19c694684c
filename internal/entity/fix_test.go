package entity

import (
	"strings"
	"testing"
)

func TestFixKindClearsNote(t *testing.T) {
	s := testStore(t)
	if _, err := s.Upsert(Upsert{Name: "Greptile", Kind: KindTool}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(Upsert{
		Name:     "Greptile",
		Kind:     KindPerson,
		Timeline: []TimelineEntry{{Date: "2026-02-16", Text: "mentioned"}},
	}); err != nil {
		t.Fatal(err)
	}

	rec, err := s.FixKind("Greptile", KindTool)
	if err != nil {
		t.Fatalf("FixKind: %v", err)
	}
	if rec.Kind != KindTool || rec.KindNote != "" {
		t.Errorf("kind = %s, note = %q", rec.Kind, rec.KindNote)
	}
}

func TestRenameKeepsAlias(t *testing.T) {
	s := testStore(t)
	if _, err := s.Upsert(Upsert{Name: "marcus widing", Kind: KindPerson}); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Rename("marcus widing", "Marcus")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if rec.Name != "Marcus" {
		t.Errorf("name = %s", rec.Name)
	}

	got, err := s.Get("marcus widing")
	if err != nil {
		t.Fatalf("Get by old name: %v", err)
	}
	if got.Name != "Marcus" {
		t.Errorf("old name resolved to %s", got.Name)
	}
}

func TestRenameOntoExistingRefused(t *testing.T) {
	s := testStore(t)
	for _, n := range []string{"Marcus", "Anna"} {
		if _, err := s.Upsert(Upsert{Name: n, Kind: KindPerson}); err != nil {
			t.Fatal(err)
		}
	}

	_, err := s.Rename("Anna", "Marcus")
	if err == nil || !strings.Contains(err.Error(), "merge") {
		t.Errorf("err = %v, want merge hint", err)
	}
}

func TestAddAndRemoveFacts(t *testing.T) {
	s := testStore(t)
	if _, err := s.Upsert(Upsert{Name: "Kadoa", Kind: KindCompany}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.AddFact("Kadoa", "YC-backed scraping startup"); err != nil {
		t.Fatal(err)
	}
	// Duplicate add is a no-op.
	rec, err := s.AddFact("Kadoa", "yc-backed scraping startup")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Facts) != 1 {
		t.Errorf("facts = %v", rec.Facts)
	}

	removed, err := s.RemoveFact("Kadoa", "scraping")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d", removed)
	}
}

func TestDetectDuplicates(t *testing.T) {
	s := testStore(t)
	for _, n := range []string{"Marcus", "Marcus Widing", "Kadoa"} {
		if _, err := s.Upsert(Upsert{Name: n, Kind: KindPerson}); err != nil {
			t.Fatal(err)
		}
	}

	pairs, err := s.DetectDuplicates()
	if err != nil {
		t.Fatalf("DetectDuplicates: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("pairs = %v", pairs)
	}
	p := pairs[0]
	if !(SameName(p.A, "Marcus") && SameName(p.B, "Marcus Widing")) &&
		!(SameName(p.A, "Marcus Widing") && SameName(p.B, "Marcus")) {
		t.Errorf("pair = %+v", p)
	}
}
