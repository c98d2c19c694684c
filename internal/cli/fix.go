package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
)

// Extraction gets things wrong; fix is the manual override. Each
// subcommand is one targeted correction to a record.
var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Correct extraction mistakes on an entity",
}

var fixTypeCmd = &cobra.Command{
	Use:   "type <entity> <kind>",
	Short: "Set an entity's kind and clear any conflict note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		rec, err := eng.Entities.FixKind(args[0], entity.ParseKind(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", rec.Name, rec.Kind)
		return nil
	},
}

var fixNameCmd = &cobra.Command{
	Use:   "name <old> <new>",
	Short: "Rename an entity, keeping the old name as an alias",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		rec, err := eng.Entities.Rename(args[0], args[1])
		if err != nil {
			return err
		}
		if _, err := eng.Graph.Relink(args[0], rec.Name); err != nil {
			return err
		}
		fmt.Printf("renamed to %s\n", rec.Name)
		return nil
	},
}

var fixAddFactCmd = &cobra.Command{
	Use:   "add-fact <entity> <fact>",
	Short: "Add a fact to an entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		rec, err := eng.Entities.AddFact(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s now has %d facts\n", rec.Name, len(rec.Facts))
		return nil
	},
}

var fixRmFactCmd = &cobra.Command{
	Use:   "rm-fact <entity> <substring>",
	Short: "Remove facts containing a substring",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		removed, err := eng.Entities.RemoveFact(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("removed %d fact(s)\n", removed)
		return nil
	},
}

func init() {
	fixCmd.AddCommand(fixTypeCmd)
	fixCmd.AddCommand(fixNameCmd)
	fixCmd.AddCommand(fixAddFactCmd)
	fixCmd.AddCommand(fixRmFactCmd)
}
