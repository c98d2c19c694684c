package belief

import (
	"os"
	"strings"
	"testing"

	"github.com/widingmarcus-cyber/mindgardener/internal/config"
	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	ws, err := workspace.New(cfg)
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	return NewStore(ws)
}

func TestNetConfidence(t *testing.T) {
	b := Belief{Claim: "Prefers local-first tools", Confidence: 0.8}
	if got := b.NetConfidence(); got != 0.8 {
		t.Errorf("no evidence: net = %.2f", got)
	}

	b.EvidenceFor = []string{"built with zero infra", "runs ollama locally"}
	b.EvidenceAgainst = []string{"moved logs to a hosted service"}
	want := 0.8 * 2.0 / 3.0
	if got := b.NetConfidence(); got < want-1e-9 || got > want+1e-9 {
		t.Errorf("net = %.4f, want %.4f", got, want)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := testStore(t)

	m, err := s.Load()
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if len(m.Beliefs) != 0 || m.Version != 0 {
		t.Fatalf("empty model = %+v", m)
	}

	m.Beliefs = append(m.Beliefs, Belief{
		Claim:      "Prefers startup environments",
		Confidence: 0.6,
		Category:   "preferences",
		Status:     StatusActive,
	})
	if err := s.Save(m, "2026-08-29T10:00:00Z"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if m.Version != 1 {
		t.Errorf("version = %d", m.Version)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Version != 1 || loaded.LastUpdated != "2026-08-29T10:00:00Z" {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.Beliefs) != 1 || loaded.Beliefs[0].Claim != "Prefers startup environments" {
		t.Errorf("beliefs = %+v", loaded.Beliefs)
	}

	if err := s.Save(loaded, "2026-08-30T10:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if loaded.Version != 2 {
		t.Errorf("version after resave = %d", loaded.Version)
	}
}

func TestApplyDrifts(t *testing.T) {
	m := &Model{Beliefs: []Belief{
		{Claim: "Prefers startup environments", Confidence: 0.6, Category: "preferences", Status: StatusActive},
		{Claim: "Works at Sana Labs", Confidence: 0.9, Category: "relationships", Status: StatusActive},
		{Claim: "Reviews every PR personally", Confidence: 0.5, Category: "habits", Status: StatusActive},
	}}

	drifts := []Drift{
		{Claim: "Prefers startup environments", Type: DriftStrengthened, OldConfidence: 0.6, NewConfidence: 0.8, Trigger: "turned down corporate offer", Significance: 0.5},
		{Claim: "Works at Sana Labs", Type: DriftContradicted, OldConfidence: 0.9, NewConfidence: 0.2, Trigger: "announced departure", Significance: 0.9},
		{Claim: "Reviews every PR personally", Type: DriftWeakened, OldConfidence: 0.5, NewConfidence: 0.2, Trigger: "delegated reviews to the team", Significance: 0.4},
		{Claim: "Invests in open source", Type: DriftNew, NewConfidence: 0.6, Trigger: "sponsored two projects", Significance: 0.5},
		{Claim: "Works at Sana Labs", Type: DriftStrengthened, NewConfidence: 0.95, Trigger: "routine standup", Significance: 0.1},
	}

	applied := m.Apply(drifts, 0.3, "2026-08-29T10:00:00Z")
	if applied != 4 {
		t.Fatalf("applied = %d, want 4 (sub-threshold drift skipped)", applied)
	}

	if got := m.Beliefs[0]; got.Confidence != 0.8 || got.Status != StatusActive || len(got.EvidenceFor) != 1 {
		t.Errorf("strengthened = %+v", got)
	}
	if got := m.Beliefs[1]; got.Confidence != 0.2 || got.Status != StatusWeakening || len(got.EvidenceAgainst) != 1 {
		t.Errorf("contradicted = %+v", got)
	}
	if got := m.Beliefs[2]; got.Status != StatusWeakening {
		t.Errorf("weakened below 0.3 should weaken: %+v", got)
	}
	if len(m.Beliefs) != 4 || m.Beliefs[3].Claim != "Invests in open source" || m.Beliefs[3].Status != StatusActive {
		t.Errorf("new belief = %+v", m.Beliefs)
	}
}

func TestApplyEvolvedRewritesClaim(t *testing.T) {
	m := &Model{Beliefs: []Belief{
		{Claim: "Prefers remote work", Confidence: 0.7, Category: "preferences", Status: StatusActive},
	}}

	drifts := []Drift{
		{Claim: "Prefers remote work", Type: DriftEvolved, OldConfidence: 0.7, NewConfidence: 0.75, Trigger: "books office days for design reviews", Significance: 0.7},
	}
	if applied := m.Apply(drifts, 0.3, "2026-08-29T10:00:00Z"); applied != 1 {
		t.Fatalf("applied = %d", applied)
	}
	if m.Beliefs[0].Status != StatusRevised {
		t.Errorf("high-significance evolution should mark revised: %+v", m.Beliefs[0])
	}

	// A weakened drift for a claim we do not hold is dropped.
	ignored := []Drift{{Claim: "Enjoys gardening", Type: DriftWeakened, NewConfidence: 0.1, Significance: 0.9}}
	if applied := m.Apply(ignored, 0.3, "2026-08-29T10:00:00Z"); applied != 0 {
		t.Errorf("applied = %d for unknown claim", applied)
	}
}

func TestRenderGroupsByCategory(t *testing.T) {
	m := &Model{Version: 2, LastUpdated: "2026-08-29T10:00:00Z", Beliefs: []Belief{
		{Claim: "Ships small PRs", Confidence: 0.9, Category: "habits", Status: StatusActive},
		{Claim: "Wants to launch by summer", Confidence: 0.7, Category: "goals", Status: StatusActive},
		{Claim: "Works at Sana Labs", Confidence: 0.2, Category: "relationships", Status: StatusWeakening,
			EvidenceAgainst: []string{"announced departure"}},
	}}

	out := m.Render()
	if !strings.Contains(out, "## Self-Model (v2") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "### Goals") || !strings.Contains(out, "### Habits") {
		t.Errorf("missing category headings:\n%s", out)
	}
	// Weakening beliefs only show in their own section.
	if !strings.Contains(out, "### Weakening\n! [20%] Works at Sana Labs") {
		t.Errorf("missing weakening section:\n%s", out)
	}

	empty := &Model{}
	if got := empty.Render(); !strings.Contains(got, "No beliefs") {
		t.Errorf("empty render = %q", got)
	}
}

func TestLogDrifts(t *testing.T) {
	s := testStore(t)
	drifts := []Drift{
		{Claim: "a", Type: DriftStrengthened, Significance: 0.3},
		{Claim: "b", Type: DriftContradicted, Significance: 0.9},
	}
	if err := s.LogDrifts(drifts, "2026-08-29T10:00:00Z"); err != nil {
		t.Fatalf("LogDrifts: %v", err)
	}

	lines, err := workspace.ReadLines(s.ws.DriftFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	// Highest significance is logged first.
	if !strings.Contains(lines[0], `"claim":"b"`) || !strings.Contains(lines[0], `"timestamp"`) {
		t.Errorf("first line = %s", lines[0])
	}

	if _, err := os.Stat(s.ws.SelfModelFile); !os.IsNotExist(err) {
		t.Errorf("logging drifts must not touch the model file")
	}
}
