package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/widingmarcus-cyber/mindgardener/internal/graph"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a census of the memory workspace",
	RunE:  runStats,
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Render the knowledge graph as Mermaid",
	RunE:  runViz,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "emit JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}

	st, err := eng.Stats(eng.Cfg.Consolidation.SurpriseThreshold)
	if err != nil {
		return err
	}

	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Printf("entities:       %d active, %d archived\n", st.Entities, st.Archived)
	fmt.Printf("triplets:       %d\n", st.Triplets)
	fmt.Printf("daily logs:     %d\n", st.DailyLogs)
	fmt.Printf("scored events:  %d (mean surprise %.2f)\n", st.ScoredEvents, st.MeanSurprise)
	fmt.Printf("consolidated:   %d, pending: %d\n", st.Consolidated, st.Pending)
	return nil
}

func runViz(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}

	triplets, err := eng.Graph.All()
	if err != nil {
		return err
	}
	fmt.Print(graph.Mermaid(triplets))
	return nil
}
