package entity

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

func sampleRecord() *Record {
	return &Record{
		Name:     "OpenClaw",
		Kind:     KindProject,
		Aliases:  []string{"openclaw/openclaw"},
		Accessed: 3,
		Facts: []string{
			"Open-source agent framework",
			"195k GitHub stars",
		},
		Timeline: []TimelineEntry{
			{Date: "2026-02-16", Text: "Repo renamed to openclaw/openclaw"},
			{Date: "2026-02-15", Text: "maintained_by → [[Marcus]]: sole maintainer"},
			{Date: "2026-02-16", Text: "[[Marcus]] submitted_pr → this: docs fix"},
		},
		Relations: []string{"Marcus", "Kadoa"},
	}
}

func TestRenderGolden(t *testing.T) {
	g := goldie.New(t)
	g.Assert(t, "record", []byte(sampleRecord().Render()))
}

func TestParseRenderRoundTrip(t *testing.T) {
	want := sampleRecord()
	got := ParseRecord("OpenClaw", want.Render())

	if got.Name != want.Name || got.Kind != want.Kind || got.Accessed != want.Accessed {
		t.Errorf("header fields = %q/%s/%d, want %q/%s/%d",
			got.Name, got.Kind, got.Accessed, want.Name, want.Kind, want.Accessed)
	}
	if len(got.Facts) != len(want.Facts) {
		t.Errorf("facts = %v", got.Facts)
	}
	if len(got.Timeline) != len(want.Timeline) {
		t.Fatalf("timeline = %v", got.Timeline)
	}
	// Render groups by date ascending, so 02-15 comes first after parse.
	if got.Timeline[0].Date != "2026-02-15" {
		t.Errorf("first timeline date = %s", got.Timeline[0].Date)
	}
	if len(got.Relations) != 2 {
		t.Errorf("relations = %v", got.Relations)
	}
	if len(got.Aliases) != 1 || got.Aliases[0] != "openclaw/openclaw" {
		t.Errorf("aliases = %v", got.Aliases)
	}
}

func TestParseRecordKindNote(t *testing.T) {
	content := "# Greptile\n**Type:** tool\n**Type note:** extraction reported \"person\" on 2026-02-16\n"
	rec := ParseRecord("Greptile", content)
	if rec.Kind != KindTool {
		t.Errorf("kind = %s", rec.Kind)
	}
	if rec.KindNote == "" {
		t.Error("kind note lost")
	}
}

func TestSanitize(t *testing.T) {
	for in, want := range map[string]string{
		"Marcus Widing":     "Marcus-Widing",
		"openclaw/openclaw": "openclawopenclaw",
		"  spaced  name ":   "spaced--name",
	} {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSameName(t *testing.T) {
	if !SameName("Marcus", " marcus ") {
		t.Error("case/space fold failed")
	}
	if SameName("Marcus", "Markus") {
		t.Error("distinct names matched")
	}
}

func TestWikilinksSkipsDates(t *testing.T) {
	links := Wikilinks("met [[Marcus]] on [[2026-02-16]] about [[OpenClaw]] and [[marcus]]")
	if len(links) != 2 || links[0] != "Marcus" || links[1] != "OpenClaw" {
		t.Errorf("links = %v", links)
	}
}

func TestParseKind(t *testing.T) {
	if ParseKind("Role") != KindPerson {
		t.Error("role should map to person")
	}
	if ParseKind("banana") != KindOther {
		t.Error("unknown should map to other")
	}
}
