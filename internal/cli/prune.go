package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	pruneDays   int
	pruneDryRun bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Archive stale entities, restore re-referenced ones",
	RunE:  runPrune,
}

func init() {
	pruneCmd.Flags().IntVar(&pruneDays, "days", -1, "inactivity window override")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "report without moving anything")
}

func runPrune(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}

	days := eng.Cfg.Consolidation.DecayDays
	if pruneDays >= 0 {
		days = pruneDays
	}

	if pruneDryRun {
		result, err := eng.Entities.SweepPlan(days, time.Now())
		if err != nil {
			return err
		}
		printSweep("would archive", "would restore", result.Archived, result.Restored)
		return nil
	}

	result, err := eng.Sweep(days, time.Now())
	if err != nil {
		return err
	}
	printSweep("archived", "restored", result.Archived, result.Restored)
	return nil
}

func printSweep(archiveVerb, restoreVerb string, archived, restored []string) {
	if len(archived) == 0 && len(restored) == 0 {
		fmt.Println("nothing to do")
		return
	}
	for _, n := range archived {
		fmt.Printf("%s %s\n", archiveVerb, n)
	}
	for _, n := range restored {
		fmt.Printf("%s %s\n", restoreVerb, n)
	}
}
