package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/widingmarcus-cyber/mindgardener/internal/config"
	"github.com/widingmarcus-cyber/mindgardener/internal/engine"
	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
	"github.com/widingmarcus-cyber/mindgardener/internal/graph"
)

func testServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	eng, err := engine.New(cfg, nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return New(eng, "test"), eng
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v\n%s", err, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)
	w := get(t, s, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body map[string]any
	decode(t, w, &body)
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
	if body["memory"] != true {
		t.Errorf("memory = %v", body["memory"])
	}
}

func TestEntitiesEndpoint(t *testing.T) {
	s, eng := testServer(t)
	for _, n := range []string{"Marcus", "Kadoa"} {
		if _, err := eng.Entities.Upsert(entity.Upsert{Name: n, Kind: entity.KindPerson}); err != nil {
			t.Fatal(err)
		}
	}

	w := get(t, s, "/api/entities")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Count    int      `json:"count"`
		Entities []string `json:"entities"`
	}
	decode(t, w, &body)
	if body.Count != 2 {
		t.Errorf("count = %d", body.Count)
	}
}

func TestEntityDetail(t *testing.T) {
	s, eng := testServer(t)
	if _, err := eng.Entities.Upsert(entity.Upsert{
		Name:  "Marcus",
		Kind:  entity.KindPerson,
		Facts: []string{"CTO of Sana Labs"},
	}); err != nil {
		t.Fatal(err)
	}

	w := get(t, s, "/api/entities/Marcus")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var rec entity.Record
	decode(t, w, &rec)
	if rec.Name != "Marcus" || len(rec.Facts) != 1 {
		t.Errorf("record = %+v", rec)
	}

	if w := get(t, s, "/api/entities/Nobody"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRecallEndpoint(t *testing.T) {
	s, eng := testServer(t)
	if _, err := eng.Entities.Upsert(entity.Upsert{Name: "OpenClaw", Kind: entity.KindProject}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Graph.Append(
		graph.Triplet{Subject: "Marcus", Predicate: "maintains", Object: "OpenClaw", Date: "2026-02-16"},
	); err != nil {
		t.Fatal(err)
	}

	w := get(t, s, "/api/recall?q=OpenClaw")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Entity    *entity.Record   `json:"entity"`
		Neighbors []graph.Neighbor `json:"neighbors"`
	}
	decode(t, w, &body)
	if body.Entity == nil || body.Entity.Name != "OpenClaw" {
		t.Fatalf("entity = %+v", body.Entity)
	}
	if len(body.Neighbors) != 1 {
		t.Errorf("neighbors = %v", body.Neighbors)
	}

	// Recall bumped the access counter.
	rec, err := eng.Entities.Get("OpenClaw")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Accessed != 1 {
		t.Errorf("accessed = %d", rec.Accessed)
	}

	if w := get(t, s, "/api/recall"); w.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d", w.Code)
	}
}

func TestContextEndpoint(t *testing.T) {
	s, eng := testServer(t)
	if _, err := eng.Entities.Upsert(entity.Upsert{
		Name:  "OpenClaw",
		Kind:  entity.KindProject,
		Facts: []string{"Agent framework"},
	}); err != nil {
		t.Fatal(err)
	}

	w := get(t, s, "/api/context?q=OpenClaw&budget=100")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Context  string `json:"context"`
		Manifest struct {
			TokenBudget int `json:"token_budget"`
			TokensUsed  int `json:"tokens_used"`
		} `json:"manifest"`
	}
	decode(t, w, &body)
	if body.Manifest.TokenBudget != 100 {
		t.Errorf("budget = %d", body.Manifest.TokenBudget)
	}
	if body.Manifest.TokensUsed > 100 {
		t.Errorf("tokens_used = %d", body.Manifest.TokensUsed)
	}

	if w := get(t, s, "/api/context?q=x&budget=nope"); w.Code != http.StatusBadRequest {
		t.Errorf("bad budget: status = %d", w.Code)
	}
}

// The recent-log window must follow the request clock, not the time the
// process started, or a long-running server never sees newer logs.
func TestContextEndpointUsesRequestClock(t *testing.T) {
	s, eng := testServer(t)

	day := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return day }

	if err := os.MkdirAll(eng.WS.MemoryDir, 0o755); err != nil {
		t.Fatal(err)
	}
	log := "- Marcus shipped the release candidate\n"
	if err := os.WriteFile(eng.WS.DailyLogPath("2026-03-01"), []byte(log), 0o644); err != nil {
		t.Fatal(err)
	}

	w := get(t, s, "/api/context?q=Marcus")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Context string `json:"context"`
	}
	decode(t, w, &body)
	if !strings.Contains(body.Context, "[2026-03-01]") {
		t.Errorf("context missing log excerpt for the request day:\n%s", body.Context)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s, eng := testServer(t)
	if _, err := eng.Entities.Upsert(entity.Upsert{Name: "Marcus", Kind: entity.KindPerson}); err != nil {
		t.Fatal(err)
	}

	w := get(t, s, "/api/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st engine.Stats
	decode(t, w, &st)
	if st.Entities != 1 {
		t.Errorf("stats = %+v", st)
	}
}
