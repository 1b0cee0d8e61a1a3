package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/toolprobe/internal/config"
	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/llm"
)

var costLast bool

var costCmd = &cobra.Command{
	Use:   "cost [run-id]",
	Short: "Estimate the API cost of a smoke run",
	Long: `With a run ID (or --last), prints the cost of a recorded run from its token
usage. Without one, performs a dry run that estimates the tokens of the
configured request and the worst-case cost without making any calls.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCost,
}

func init() {
	costCmd.Flags().BoolVar(&costLast, "last", false, "show the cost of the most recent recorded run")
	rootCmd.AddCommand(costCmd)
}

func runCost(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(args) == 0 && !costLast {
		printDryRunEstimate(cfg)
		return nil
	}

	database, store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	var run *history.Run
	if costLast {
		run, err = store.Latest(cmd.Context())
	} else {
		run, err = store.Get(cmd.Context(), args[0])
	}
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("no matching run recorded")
	}
	if err != nil {
		return err
	}

	fmt.Println("Run Cost")
	fmt.Println("========")
	fmt.Printf("  Run:            %s\n", run.ID)
	fmt.Printf("  Provider:       %s\n", run.Provider)
	fmt.Printf("  Model:          %s\n", run.Model)
	fmt.Printf("  Input tokens:   %d\n", run.InputTokens)
	fmt.Printf("  Output tokens:  %d\n", run.OutputTokens)
	fmt.Printf("  Cost:           $%.6f\n", run.CostUSD)
	if run.CostUSD == 0 && !llm.HasPricing(run.Model) {
		fmt.Println()
		fmt.Printf("  No price entry for %s; cost reported as zero.\n", run.Model)
	}
	return nil
}

// printDryRunEstimate estimates the request's input tokens from its text and
// bounds output by max_tokens.
func printDryRunEstimate(cfg *config.Config) {
	text := cfg.System + cfg.Prompt
	for _, t := range cfg.Tools {
		if spec, err := json.Marshal(llm.FunctionSpecFor(t)); err == nil {
			text += string(spec)
		}
	}

	inputTokens := llm.EstimateTokens(text)
	maxCost := llm.EstimateCost(cfg.Model, inputTokens, cfg.MaxTokens)

	fmt.Println("Cost Estimate")
	fmt.Println("=============")
	fmt.Printf("  Provider:              %s\n", cfg.Provider)
	fmt.Printf("  Model:                 %s\n", cfg.Model)
	fmt.Printf("  Estimated input:       ~%d tokens\n", inputTokens)
	fmt.Printf("  Output limit:          %d tokens\n", cfg.MaxTokens)
	fmt.Printf("  Worst-case cost:       $%.6f\n", maxCost)
	if !llm.HasPricing(cfg.Model) {
		fmt.Println()
		fmt.Printf("  No price entry for %s; cost reported as zero.\n", cfg.Model)
	}
}
