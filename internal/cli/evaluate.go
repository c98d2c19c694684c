package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	evalText    string
	evalFile    string
	evalWrite   bool
	evalMinConf float64
	evalDryRun  bool
	evalJSON    bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Fact-check agent output against memory",
	Long: "Extracts factual claims from a piece of agent output and checks them\n" +
		"against the entity store. With --write-back, verified new facts are\n" +
		"appended to their entity records, closing the memory loop.",
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalText, "text", "", "output text to evaluate")
	evaluateCmd.Flags().StringVar(&evalFile, "file", "", "read the output text from a file")
	evaluateCmd.Flags().BoolVar(&evalWrite, "write-back", false, "write verified new facts to entity records")
	evaluateCmd.Flags().Float64Var(&evalMinConf, "min-confidence", 0.6, "minimum confidence for write-back")
	evaluateCmd.Flags().BoolVar(&evalDryRun, "dry-run", false, "report write-back actions without writing")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "print the full evaluation as JSON")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	text := evalText
	if evalFile != "" {
		data, err := os.ReadFile(evalFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", evalFile, err)
		}
		text = string(data)
	}
	if text == "" {
		return fmt.Errorf("provide text with --text or --file")
	}

	eng, err := loadEngine()
	if err != nil {
		return err
	}

	ev, err := eng.Evaluate(text)
	if err != nil {
		return err
	}

	if evalJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ev)
	}

	fmt.Print(ev.Summary())

	if evalWrite || evalDryRun {
		actions, err := eng.WriteBack(ev, evalMinConf, evalDryRun)
		if err != nil {
			return err
		}
		if len(actions) > 0 {
			fmt.Println("\n### Write-back")
			for _, a := range actions {
				fmt.Printf("  %s\n", a)
			}
		}
	}
	return nil
}
