package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
	"github.com/widingmarcus-cyber/mindgardener/internal/graph"
)

var recallCmd = &cobra.Command{
	Use:   "recall <entity>",
	Short: "Show an entity and its graph neighborhood",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRecall,
}

func runRecall(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}
	name := strings.Join(args, " ")

	rec, err := eng.Entities.Get(name)
	if errors.Is(err, entity.ErrNotFound) {
		// No exact record; a graph search may still find mentions.
		triplets, serr := eng.Graph.Search(name)
		if serr != nil {
			return serr
		}
		if len(triplets) == 0 {
			return fmt.Errorf("nothing known about %q", name)
		}
		fmt.Printf("no entity record for %q, but the graph mentions it:\n", name)
		for _, t := range triplets {
			fmt.Println("  " + t.String())
		}
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Print(rec.Render())

	neighbors, err := eng.Graph.Neighbors(rec.Name)
	if err != nil {
		return err
	}
	if len(neighbors) > 0 {
		fmt.Println("\n## Graph")
		for _, n := range neighbors {
			arrow := "→"
			if n.Direction == graph.Inbound {
				arrow = "←"
			}
			fmt.Printf("  %s %s\n", arrow, n.Triplet.String())
		}
	}

	return eng.Entities.Touch(rec.Name)
}
