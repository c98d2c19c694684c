package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/widingmarcus-cyber/mindgardener/internal/graph"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the graph ledger from entity files",
	Long: "Entity markdown is the source of truth; the graph ledger is a\n" +
		"derivable index. Reindex regenerates it from the inline relation\n" +
		"syntax in entity timelines, backing up the old ledger first.",
	RunE: runReindex,
}

func runReindex(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}

	stats, err := graph.RebuildFromEntities(eng.Entities, eng.WS)
	if err != nil {
		return err
	}
	if stats.BackedUp {
		fmt.Printf("previous ledger saved to %s.bak\n", eng.WS.GraphFile)
	}
	fmt.Printf("rebuilt %d triplets from %d entities\n", stats.Triplets, stats.Entities)
	return nil
}
