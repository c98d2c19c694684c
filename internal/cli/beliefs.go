package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/widingmarcus-cyber/mindgardener/internal/belief"
)

var (
	beliefsBootstrap bool
	beliefsDrift     bool
	beliefsDate      string
	beliefsApply     bool
	beliefsThreshold float64
	beliefsJSON      bool
	beliefsWeak      bool
)

var beliefsCmd = &cobra.Command{
	Use:   "beliefs",
	Short: "View and update the identity-level self-model",
	Long: "The self-model is what the agent believes about its principal: claims\n" +
		"with confidence and evidence, stored in memory/self-model.yaml.\n" +
		"Bootstrap it once from long-term memory, then detect drift against\n" +
		"daily logs and apply the significant changes.",
	RunE: runBeliefs,
}

func init() {
	beliefsCmd.Flags().BoolVar(&beliefsBootstrap, "bootstrap", false, "build the self-model from MEMORY.md and entities")
	beliefsCmd.Flags().BoolVar(&beliefsDrift, "drift", false, "detect belief drift from a daily log")
	beliefsCmd.Flags().StringVar(&beliefsDate, "date", "", "date for --drift (YYYY-MM-DD), default today")
	beliefsCmd.Flags().BoolVar(&beliefsApply, "apply", false, "apply detected drifts to the self-model")
	beliefsCmd.Flags().Float64Var(&beliefsThreshold, "threshold", 0.3, "minimum drift significance to apply")
	beliefsCmd.Flags().BoolVar(&beliefsJSON, "json", false, "print active beliefs as JSON")
	beliefsCmd.Flags().BoolVar(&beliefsWeak, "weak", false, "list only weakening beliefs")
}

func runBeliefs(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case beliefsBootstrap:
		model, err := eng.BootstrapBeliefs(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("created %d beliefs in %s\n\n", len(model.Beliefs), eng.WS.SelfModelFile)
		fmt.Print(model.Render())
		return nil

	case beliefsDrift:
		date := beliefsDate
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}
		drifts, err := eng.DetectDrift(ctx, date)
		if err != nil {
			return err
		}
		fmt.Print(belief.FormatDrifts(drifts))
		if len(drifts) > 0 && beliefsApply {
			_, applied, err := eng.ApplyDrifts(drifts, beliefsThreshold)
			if err != nil {
				return err
			}
			fmt.Printf("\napplied %d drifts to the self-model\n", applied)
		}
		return nil
	}

	model, err := eng.Beliefs.Load()
	if err != nil {
		return err
	}
	if len(model.Beliefs) == 0 {
		fmt.Fprintln(os.Stderr, "no self-model yet, run: garden beliefs --bootstrap")
		return nil
	}

	switch {
	case beliefsJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(model.Active())
	case beliefsWeak:
		weak := model.Weakening()
		if len(weak) == 0 {
			fmt.Println("no weakening beliefs")
			return nil
		}
		for _, b := range weak {
			fmt.Printf("! [%.0f%%] %s\n", b.Confidence*100, b.Claim)
			if len(b.EvidenceAgainst) > 0 {
				fmt.Printf("    counter: %s\n", b.EvidenceAgainst[len(b.EvidenceAgainst)-1])
			}
		}
		return nil
	}

	fmt.Print(model.Render())
	return nil
}
