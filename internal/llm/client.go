// Package llm abstracts the language-model collaborator. The engine
// only ever sees the Client interface; every provider is swappable for
// the deterministic MockClient in tests, and the engine's lexical
// fallbacks keep working with no provider at all.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/widingmarcus-cyber/mindgardener/internal/config"
)

// Client is the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (*Response, error)
}

// Response holds the result of an LLM completion.
type Response struct {
	Content    string
	Provider   string
	TokensUsed int
}

// ErrNoProvider is returned by NewClient when no provider can be
// configured. Callers degrade to lexical fallbacks where the operation
// allows it.
var ErrNoProvider = errors.New("no llm provider configured")

// NewClient creates an LLM client from the extraction config, wrapped
// with bounded retry on transient provider errors.
func NewClient(cfg config.ExtractionConfig) (Client, error) {
	inner, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	return WithRetry(inner, 3), nil
}

func newProvider(cfg config.ExtractionConfig) (Client, error) {
	switch cfg.Provider {
	case "google", "gemini":
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("%w: google provider requires GEMINI_API_KEY", ErrNoProvider)
		}
		model := cfg.Model
		if model == "" {
			model = "gemini-2.0-flash"
		}
		return NewGemini(key, model, cfg.Temperature), nil
	case "anthropic":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("%w: anthropic provider requires ANTHROPIC_API_KEY", ErrNoProvider)
		}
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return NewAnthropic(key, model, cfg.Temperature), nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("%w: openai provider requires OPENAI_API_KEY", ErrNoProvider)
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAI(key, model, cfg.Temperature), nil
	case "ollama":
		url := cfg.OllamaURL
		if url == "" {
			url = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = "llama3.2"
		}
		return NewOllama(url, model, cfg.Temperature), nil
	case "":
		return nil, ErrNoProvider
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
