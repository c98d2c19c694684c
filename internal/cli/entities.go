package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
)

var (
	entitiesJSON     bool
	entitiesArchived bool
	entitiesKind     string
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List entities in the workspace",
	RunE:  runEntities,
}

func init() {
	entitiesCmd.Flags().BoolVar(&entitiesJSON, "json", false, "emit full records as JSON")
	entitiesCmd.Flags().BoolVar(&entitiesArchived, "archived", false, "list archived entities instead")
	entitiesCmd.Flags().StringVar(&entitiesKind, "kind", "", "filter by kind (person, company, ...)")
}

func runEntities(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}

	if entitiesArchived {
		names, err := eng.Entities.ArchivedNames()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}

	kind := entity.ParseKind(entitiesKind)
	if entitiesKind == "" {
		kind = ""
	}

	if entitiesJSON {
		enc := json.NewEncoder(os.Stdout)
		for rec, err := range eng.Entities.List(kind) {
			if err != nil {
				return err
			}
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	}

	for rec, err := range eng.Entities.List(kind) {
		if err != nil {
			return err
		}
		last := rec.LastReferenced()
		if last == "" {
			last = "never"
		}
		fmt.Printf("%-30s %-8s %3d facts  last %s\n", rec.Name, rec.Kind, len(rec.Facts), last)
	}
	return nil
}
