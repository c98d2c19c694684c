package belief

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// Store persists the self-model YAML and the drift audit ledger.
type Store struct {
	ws *workspace.Workspace
}

// NewStore creates a Store over a workspace.
func NewStore(ws *workspace.Workspace) *Store {
	return &Store{ws: ws}
}

// Load reads the self-model. A missing file is an empty model.
func (s *Store) Load() (*Model, error) {
	data, err := os.ReadFile(s.ws.SelfModelFile)
	if err != nil {
		if os.IsNotExist(err) {
			return &Model{}, nil
		}
		return nil, fmt.Errorf("read self-model: %w", err)
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse self-model: %w", err)
	}
	return &m, nil
}

// Save bumps the version stamp and atomically replaces the YAML file.
func (s *Store) Save(m *Model, now string) error {
	m.Version++
	m.LastUpdated = now
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal self-model: %w", err)
	}
	return workspace.WriteFileAtomic(s.ws.SelfModelFile, data)
}

// LogDrifts appends detected drifts to the audit ledger, most
// significant first.
func (s *Store) LogDrifts(drifts []Drift, now string) error {
	if len(drifts) == 0 {
		return nil
	}
	ordered := append([]Drift(nil), drifts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Significance > ordered[j].Significance
	})
	for _, d := range ordered {
		entry := struct {
			Drift
			Timestamp string `json:"timestamp"`
		}{Drift: d, Timestamp: now}
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal drift: %w", err)
		}
		if err := workspace.AppendLine(s.ws.DriftFile, string(line)); err != nil {
			return err
		}
	}
	return nil
}

// FormatDrifts renders a drift report for terminal output, most
// significant first.
func FormatDrifts(drifts []Drift) string {
	if len(drifts) == 0 {
		return "No identity-level changes detected.\n"
	}
	ordered := append([]Drift(nil), drifts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Significance > ordered[j].Significance
	})

	var b strings.Builder
	b.WriteString("## Belief Drift\n")
	for _, d := range ordered {
		fmt.Fprintf(&b, "\n%s [%.0f%% -> %.0f%%] significance %.0f%%\n",
			strings.ToUpper(d.Type), d.OldConfidence*100, d.NewConfidence*100, d.Significance*100)
		fmt.Fprintf(&b, "  %s\n", d.Claim)
		fmt.Fprintf(&b, "  trigger: %s\n", d.Trigger)
		if d.Reasoning != "" {
			fmt.Fprintf(&b, "  reason: %s\n", d.Reasoning)
		}
	}
	return b.String()
}
