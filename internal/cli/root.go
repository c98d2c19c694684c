// Package cli wires the garden commands. Each command is a package
// var; root.go assembles them and holds the shared engine loader.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/widingmarcus-cyber/mindgardener/internal/config"
	"github.com/widingmarcus-cyber/mindgardener/internal/engine"
	"github.com/widingmarcus-cyber/mindgardener/internal/llm"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "garden",
	Short: "File-based long-term memory for AI agents",
	Long: "MindGardener tends an agent's memory: it extracts entities and\n" +
		"relationships from daily logs, scores events by how surprising they\n" +
		"were, consolidates the surprising ones into long-term memory, and\n" +
		"assembles token-budgeted context for new sessions. Everything lives\n" +
		"in plain markdown and jsonl files.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to garden.yaml")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(surpriseCmd)
	rootCmd.AddCommand(consolidateCmd)
	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(beliefsCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(vizCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadEngine builds the engine for a command run. A missing LLM
// provider is a warning, not an error: extraction needs one, but
// recall, context, and the lexical surprise fallback do not.
func loadEngine() (*engine.Engine, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(cfg.Extraction)
	if err != nil {
		if !errors.Is(err, llm.ErrNoProvider) {
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "warning: %v; extraction disabled, surprise falls back to lexical scoring\n", err)
		client = nil
	}

	return engine.New(cfg, client)
}
