package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var consolidateThreshold float64

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Promote surprising events into long-term memory",
	RunE:  runConsolidate,
}

func init() {
	consolidateCmd.Flags().Float64Var(&consolidateThreshold, "threshold", -1, "override surprise threshold [0,1]")
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}

	threshold := eng.Cfg.Consolidation.SurpriseThreshold
	if consolidateThreshold >= 0 {
		threshold = consolidateThreshold
	}

	report, err := eng.Consolidate(threshold, time.Now())
	if err != nil {
		return err
	}

	if report.Promoted == 0 {
		fmt.Printf("nothing above %.2f to consolidate (%d records examined)\n", threshold, report.Examined)
		return nil
	}
	fmt.Printf("consolidated %d of %d records into %s:\n", report.Promoted, report.Examined, eng.WS.SummaryFile)
	for _, e := range report.Entries {
		fmt.Printf("  [%.2f] %s — %s\n", e.Score, e.Date, e.Event)
	}
	return nil
}
