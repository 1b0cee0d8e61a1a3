package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

var (
	historyLimit  int
	historyJSON   bool
	historyStatus string
	pruneOlder    time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded smoke runs",
	Long:  `Lists recorded smoke runs, newest first, with their provider, model, outcome, token usage and estimated cost.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print one recorded run and its response content",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than the given age",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to list (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print runs as JSON")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "only list runs with this outcome (ok, empty, error)")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "print the run as JSON")
	historyPruneCmd.Flags().DurationVar(&pruneOlder, "older-than", 30*24*time.Hour, "delete runs started before now minus this duration")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := store.List(cmd.Context(), history.Filter{
		Status: history.Status(historyStatus),
		Limit:  historyLimit,
	})
	if err != nil {
		return err
	}

	if historyJSON {
		if runs == nil {
			runs = []history.Run{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet. Run `toolprobe run` to record one.")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-8s  %-10s  %-30s  %-6s  %9s  %10s\n",
		"ID", "STARTED", "SOURCE", "PROVIDER", "MODEL", "STATUS", "TOKENS", "COST")
	for _, run := range runs {
		fmt.Printf("%-36s  %-19s  %-8s  %-10s  %-30s  %-6s  %9s  %10s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Source,
			run.Provider,
			truncate(run.Model, 30),
			run.Status,
			fmt.Sprintf("%d/%d", run.InputTokens, run.OutputTokens),
			fmt.Sprintf("$%.6f", run.CostUSD),
		)
	}

	sum, err := store.Summarize(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("%d run(s): %d ok, %d empty, %d error, $%.6f total\n",
		sum.Total, sum.OK, sum.Empty, sum.Errors, sum.TotalCostUSD)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("no run with id %q", args[0])
	}
	if err != nil {
		return err
	}

	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Printf("ID:       %s\n", run.ID)
	fmt.Printf("Started:  %s (%s)\n", run.StartedAt.Local().Format(time.RFC3339), run.Duration.Round(time.Millisecond))
	fmt.Printf("Source:   %s\n", run.Source)
	fmt.Printf("Provider: %s\n", run.Provider)
	fmt.Printf("Model:    %s\n", run.Model)
	if run.ResponseModel != "" && run.ResponseModel != run.Model {
		fmt.Printf("Served:   %s\n", run.ResponseModel)
	}
	fmt.Printf("Prompt:   %s\n", run.Prompt)
	for _, t := range run.Tools {
		fmt.Printf("Tool:     %s (%s)\n", t.Name, t.Type)
	}
	fmt.Printf("Status:   %s\n", run.Status)
	if run.Error != "" {
		fmt.Printf("Error:    %s\n", run.Error)
	}
	if run.FinishReason != "" {
		fmt.Printf("Finish:   %s\n", run.FinishReason)
	}
	fmt.Printf("Tokens:   %d in / %d out\n", run.InputTokens, run.OutputTokens)
	fmt.Printf("Cost:     $%.6f\n", run.CostUSD)
	fmt.Println()
	return smoke.PrintContent(os.Stdout, run.Content, smoke.FormatText)
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := store.DeleteBefore(cmd.Context(), time.Now().Add(-pruneOlder))
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d run(s) older than %s.\n", n, pruneOlder)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
