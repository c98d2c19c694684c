package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Extraction.Provider != "google" {
		t.Errorf("provider = %s", cfg.Extraction.Provider)
	}
	if cfg.Consolidation.SurpriseThreshold != 0.5 {
		t.Errorf("threshold = %v", cfg.Consolidation.SurpriseThreshold)
	}
	if cfg.Context.TokenBudget != 4000 {
		t.Errorf("budget = %d", cfg.Context.TokenBudget)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garden.yaml")
	content := `
workspace: /tmp/garden-test
extraction:
  provider: ollama
  model: llama3.2
consolidation:
  surprise_threshold: 0.7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Extraction.Provider != "ollama" || cfg.Extraction.Model != "llama3.2" {
		t.Errorf("extraction = %+v", cfg.Extraction)
	}
	if cfg.Consolidation.SurpriseThreshold != 0.7 {
		t.Errorf("threshold = %v", cfg.Consolidation.SurpriseThreshold)
	}
	// Unset keys keep defaults.
	if cfg.Context.TokenBudget != 4000 {
		t.Errorf("budget = %d", cfg.Context.TokenBudget)
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garden.yaml")
	if err := os.WriteFile(path, []byte("consolidation:\n  surprise_threshold: 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want validation error")
	}
}

func TestWorkspaceEnvOverride(t *testing.T) {
	t.Setenv("GARDEN_WORKSPACE", "/tmp/env-ws")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workspace != "/tmp/env-ws" {
		t.Errorf("workspace = %s", cfg.Workspace)
	}
}

func TestListenAddr(t *testing.T) {
	cfg := Default()
	if got := cfg.ListenAddr(); got != "127.0.0.1:37778" {
		t.Errorf("addr = %s", got)
	}
}
