package engine

import (
	"fmt"
	"time"

	"github.com/widingmarcus-cyber/mindgardener/internal/belief"
	"github.com/widingmarcus-cyber/mindgardener/internal/config"
	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
	"github.com/widingmarcus-cyber/mindgardener/internal/graph"
	"github.com/widingmarcus-cyber/mindgardener/internal/llm"
	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// Engine ties the entity store, the graph ledger and the language model
// together. Every mutating operation routes through here so the on-disk
// memory stays consistent.
type Engine struct {
	WS       *workspace.Workspace
	Entities *entity.Store
	Graph    *graph.Ledger
	Beliefs  *belief.Store
	LLM      llm.Client
	Cfg      config.Config
}

// New builds an engine over the workspace described by cfg. The LLM
// client may be nil; operations that need one return llm.ErrNoProvider
// or fall back to lexical scoring where a fallback exists.
func New(cfg config.Config, client llm.Client) (*Engine, error) {
	ws, err := workspace.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		WS:       ws,
		Entities: entity.NewStore(ws),
		Graph:    graph.NewLedger(ws),
		Beliefs:  belief.NewStore(ws),
		LLM:      client,
		Cfg:      cfg,
	}, nil
}

// MergeEntities folds two duplicate records into one (the store picks
// the survivor) and repoints every graph edge at the absorbed name.
func (e *Engine) MergeEntities(a, b string) (survivor string, err error) {
	ra, err := e.Entities.Get(a)
	if err != nil {
		return "", err
	}
	rb, err := e.Entities.Get(b)
	if err != nil {
		return "", err
	}

	rec, err := e.Entities.Merge(ra.Name, rb.Name)
	if err != nil {
		return "", err
	}
	loser := ra.Name
	if entity.SameName(loser, rec.Name) {
		loser = rb.Name
	}
	if entity.SameName(loser, rec.Name) {
		return rec.Name, nil // same record under two aliases, nothing to relink
	}
	if _, err := e.Graph.Relink(loser, rec.Name); err != nil {
		return rec.Name, fmt.Errorf("merge %q into %q: relink graph: %w", loser, rec.Name, err)
	}
	return rec.Name, nil
}

// Sweep archives entities not referenced within inactiveDays and
// restores archived ones that have been referenced again.
func (e *Engine) Sweep(inactiveDays int, today time.Time) (entity.SweepResult, error) {
	return e.Entities.Sweep(inactiveDays, today)
}
