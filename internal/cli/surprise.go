package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var surpriseDate string

var surpriseCmd = &cobra.Command{
	Use:   "surprise",
	Short: "Score a day's events against the world model",
	RunE:  runSurprise,
}

func init() {
	surpriseCmd.Flags().StringVar(&surpriseDate, "date", "", "date to score (YYYY-MM-DD), default yesterday")
}

func runSurprise(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}

	date := surpriseDate
	if date == "" {
		date = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := eng.ScoreDate(ctx, date)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Printf("%s: nothing to score\n", date)
		return nil
	}
	for _, r := range records {
		marker := " "
		if r.Score >= eng.Cfg.Consolidation.SurpriseThreshold {
			marker = "!"
		}
		fmt.Printf("%s [%.2f] %s\n", marker, r.Score, r.Event)
	}
	return nil
}
