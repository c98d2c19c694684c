package assemble

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// Skip reasons recorded in the manifest. Every considered item lands in
// exactly one of loaded or skipped; the reason says which gate it hit.
const (
	SkipBudget    = "token_budget_exceeded"
	SkipLowScore  = "below_similarity_threshold"
	SkipDuplicate = "duplicate"
)

// LoadedItem is one item that made it into the assembled context.
type LoadedItem struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Score  float64 `json:"score"`
	Tokens int     `json:"tokens"`
}

// SkippedItem is one considered item that was left out.
type SkippedItem struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Manifest is the audit record of one assembly run.
type Manifest struct {
	ID          string        `json:"id"`
	Query       string        `json:"query"`
	GeneratedAt string        `json:"generated_at"`
	TokenBudget int           `json:"token_budget"`
	TokensUsed  int           `json:"tokens_used"`
	Utilization float64       `json:"utilization"`
	Loaded      []LoadedItem  `json:"loaded"`
	Skipped     []SkippedItem `json:"skipped"`
}

// NewManifest starts an empty manifest for a query.
func NewManifest(query string, budget int) *Manifest {
	return &Manifest{
		ID:          uuid.NewString(),
		Query:       query,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		TokenBudget: budget,
		Loaded:      []LoadedItem{},
		Skipped:     []SkippedItem{},
	}
}

func (m *Manifest) finish() {
	if m.TokenBudget > 0 {
		m.Utilization = float64(m.TokensUsed) / float64(m.TokenBudget)
	}
}

// AppendManifest records a manifest in the workspace's manifest ledger.
func AppendManifest(ws *workspace.Workspace, m *Manifest) error {
	line, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return workspace.AppendLine(ws.ManifestFile, string(line))
}

// ReadManifests returns every recorded manifest, oldest first.
func ReadManifests(ws *workspace.Workspace) ([]Manifest, error) {
	lines, err := workspace.ReadLines(ws.ManifestFile)
	if err != nil {
		return nil, err
	}
	var out []Manifest
	for i, line := range lines {
		var m Manifest
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			log.Printf("manifest: skipping unparsable line %d: %v", i+1, err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
