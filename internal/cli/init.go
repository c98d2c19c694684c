package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/widingmarcus-cyber/mindgardener/internal/config"
	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a memory workspace",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

const seedSummary = `# Long-Term Memory

Consolidated world model. Surprising events get appended here by
` + "`garden consolidate`" + `; edit freely, it is just markdown.
`

const seedConfig = `# MindGardener configuration. All keys optional; these are the defaults.
extraction:
  provider: google         # google | openai | anthropic | ollama
  model: gemini-2.0-flash
consolidation:
  surprise_threshold: 0.5
  decay_days: 30
context:
  token_budget: 4000
  recent_days: 2
  max_entities: 10
`

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if len(args) == 1 {
		cfg.Workspace = args[0]
	}

	ws, err := workspace.New(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(ws.ArchiveDir, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	created := []string{ws.EntitiesDir, ws.ArchiveDir}
	if _, err := os.Stat(ws.SummaryFile); os.IsNotExist(err) {
		if err := os.WriteFile(ws.SummaryFile, []byte(seedSummary), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", ws.SummaryFile, err)
		}
		created = append(created, ws.SummaryFile)
	}

	cfgFile := filepath.Join(ws.Root, "garden.yaml")
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if err := os.WriteFile(cfgFile, []byte(seedConfig), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", cfgFile, err)
		}
		created = append(created, cfgFile)
	}

	today := ws.DailyLogPath(time.Now().Format("2006-01-02"))
	if _, err := os.Stat(today); os.IsNotExist(err) {
		header := fmt.Sprintf("# %s\n\n", time.Now().Format("2006-01-02"))
		if err := os.WriteFile(today, []byte(header), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", today, err)
		}
		created = append(created, today)
	}

	for _, p := range created {
		fmt.Printf("created %s\n", p)
	}
	fmt.Println("workspace ready. Drop daily logs in memory/YYYY-MM-DD.md and run `garden extract`.")
	return nil
}
