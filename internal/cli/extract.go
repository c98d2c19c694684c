package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/widingmarcus-cyber/mindgardener/internal/engine"
)

var (
	extractDate string
	extractAll  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract entities, triplets, and events from daily logs",
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractDate, "date", "", "date to extract (YYYY-MM-DD), default yesterday")
	extractCmd.Flags().BoolVar(&extractAll, "all", false, "extract every daily log in the workspace")
}

func runExtract(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}

	var dates []string
	switch {
	case extractAll:
		dates, err = eng.WS.DailyDates()
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			return fmt.Errorf("no daily logs found in %s", eng.WS.MemoryDir)
		}
	case extractDate != "":
		dates = []string{extractDate}
	default:
		dates = []string{time.Now().AddDate(0, 0, -1).Format("2006-01-02")}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for _, date := range dates {
		report, err := eng.Ingest(ctx, date)
		if err != nil {
			if extractAll {
				fmt.Fprintf(os.Stderr, "extract %s: %v\n", date, err)
				continue
			}
			return err
		}
		printIngest(report)
	}
	return nil
}

func printIngest(r *engine.IngestReport) {
	fmt.Printf("%s: %d entities, %d new triplets, %d events (%d chunks, %d tokens)\n",
		r.Date, r.Entities, r.Triplets, r.Events, r.Chunks, r.Tokens)
	for _, s := range r.Skipped {
		fmt.Fprintf(os.Stderr, "  skipped %q: %v\n", s.Name, s.Err)
	}
}
