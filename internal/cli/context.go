package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/widingmarcus-cyber/mindgardener/internal/assemble"
)

var (
	contextBudget       int
	contextDays         int
	contextMaxEntities  int
	contextManifestOnly bool
)

var contextCmd = &cobra.Command{
	Use:   "context <query>",
	Short: "Assemble a token-budgeted context bundle for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runContext,
}

func init() {
	contextCmd.Flags().IntVar(&contextBudget, "budget", -1, "token budget override")
	contextCmd.Flags().IntVar(&contextDays, "days", -1, "recent daily logs to scan")
	contextCmd.Flags().IntVar(&contextMaxEntities, "max-entities", -1, "max directly matched entities")
	contextCmd.Flags().BoolVar(&contextManifestOnly, "manifest-only", false, "print the manifest instead of the context")
}

func runContext(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")

	opt := assemble.Options{
		Budget:      eng.Cfg.Context.TokenBudget,
		RecentDays:  eng.Cfg.Context.RecentDays,
		MaxEntities: eng.Cfg.Context.MaxEntities,
		Today:       time.Now(),
	}
	if contextBudget >= 0 {
		opt.Budget = contextBudget
	}
	if contextDays >= 0 {
		opt.RecentDays = contextDays
	}
	if contextMaxEntities >= 0 {
		opt.MaxEntities = contextMaxEntities
	}

	asm := assemble.New(eng.WS, eng.Entities, eng.Graph)
	result, err := asm.Assemble(query, opt)
	if err != nil {
		return err
	}

	if contextManifestOnly {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Manifest)
	}

	fmt.Print(result.Context)
	if result.Context != "" {
		fmt.Println()
	}
	fmt.Fprintf(os.Stderr, "-- %d/%d tokens (%.0f%%), %d loaded, %d skipped (manifest %s)\n",
		result.Manifest.TokensUsed, result.Manifest.TokenBudget,
		result.Manifest.Utilization*100,
		len(result.Manifest.Loaded), len(result.Manifest.Skipped),
		result.Manifest.ID)
	return nil
}
