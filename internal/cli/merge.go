package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mergeDetect bool

var mergeCmd = &cobra.Command{
	Use:   "merge [a] [b]",
	Short: "Merge two entities, or detect likely duplicates",
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeDetect, "detect", false, "list likely duplicate pairs instead of merging")
}

func runMerge(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}

	if mergeDetect {
		pairs, err := eng.Entities.DetectDuplicates()
		if err != nil {
			return err
		}
		if len(pairs) == 0 {
			fmt.Println("no likely duplicates found")
			return nil
		}
		for _, p := range pairs {
			fmt.Printf("  [%.2f] %s ~ %s\n", p.Confidence, p.A, p.B)
		}
		fmt.Println("run `garden merge <a> <b>` to merge a pair")
		return nil
	}

	if len(args) != 2 {
		return fmt.Errorf("merge needs exactly two entity names (or --detect)")
	}

	survivor, err := eng.MergeEntities(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("merged into %s\n", survivor)
	return nil
}
