package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all MindGardener configuration, loaded from garden.yaml.
type Config struct {
	Workspace string `yaml:"workspace"`

	MemoryDir      string `yaml:"memory_dir"`
	EntitiesDir    string `yaml:"entities_dir"`
	GraphFile      string `yaml:"graph_file"`
	LongTermMemory string `yaml:"long_term_memory"`
	SurpriseFile   string `yaml:"surprise_file"`
	ManifestFile   string `yaml:"manifest_file"`

	Extraction    ExtractionConfig    `yaml:"extraction"`
	Consolidation ConsolidationConfig `yaml:"consolidation"`
	Context       ContextConfig       `yaml:"context"`
	Server        ServerConfig        `yaml:"server"`
}

type ExtractionConfig struct {
	Provider    string  `yaml:"provider"` // "google", "openai", "anthropic", "ollama"
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	OllamaURL   string  `yaml:"ollama_url"`
	MaxChunk    int     `yaml:"max_chunk"` // chars per extraction chunk
}

type ConsolidationConfig struct {
	SurpriseThreshold float64 `yaml:"surprise_threshold"`
	DecayDays         int     `yaml:"decay_days"`
	MaxItems          int     `yaml:"max_items"`
}

type ContextConfig struct {
	TokenBudget int `yaml:"token_budget"`
	RecentDays  int `yaml:"recent_days"`
	MaxEntities int `yaml:"max_entities"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// Default returns a Config with sensible defaults, rooted at the
// current directory.
func Default() Config {
	return Config{
		Workspace:      ".",
		MemoryDir:      "memory",
		EntitiesDir:    filepath.Join("memory", "entities"),
		GraphFile:      filepath.Join("memory", "graph.jsonl"),
		LongTermMemory: "MEMORY.md",
		SurpriseFile:   filepath.Join("memory", "surprise-scores.jsonl"),
		ManifestFile:   filepath.Join("memory", "context-manifests.jsonl"),
		Extraction: ExtractionConfig{
			Provider:    "google",
			Model:       "gemini-2.0-flash",
			Temperature: 0.1,
			MaxChunk:    6000,
		},
		Consolidation: ConsolidationConfig{
			SurpriseThreshold: 0.5,
			DecayDays:         30,
			MaxItems:          10,
		},
		Context: ContextConfig{
			TokenBudget: 4000,
			RecentDays:  2,
			MaxEntities: 10,
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// Load reads garden.yaml, applies env overrides, and returns the merged
// config. When path is empty it tries garden.yaml, garden.yml, then
// ~/.garden.yaml; a missing file is not an error, defaults apply.
func Load(path string) (Config, error) {
	// API keys may live in a .env next to the workspace.
	_ = godotenv.Load()

	cfg := Default()

	var candidates []string
	if path != "" {
		candidates = append(candidates, path)
	}
	candidates = append(candidates, "garden.yaml", "garden.yml")
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".garden.yaml"))
	}

	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return cfg, fmt.Errorf("read config %s: %w", p, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", p, err)
		}
		break
	}

	if ws := os.Getenv("GARDEN_WORKSPACE"); ws != "" {
		cfg.Workspace = ws
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Consolidation.SurpriseThreshold < 0 || c.Consolidation.SurpriseThreshold > 1 {
		return fmt.Errorf("config: surprise_threshold %.2f out of range [0,1]", c.Consolidation.SurpriseThreshold)
	}
	if c.Consolidation.DecayDays < 0 {
		return fmt.Errorf("config: decay_days must be >= 0, got %d", c.Consolidation.DecayDays)
	}
	if c.Context.TokenBudget < 0 {
		return fmt.Errorf("config: token_budget must be >= 0, got %d", c.Context.TokenBudget)
	}
	return nil
}
