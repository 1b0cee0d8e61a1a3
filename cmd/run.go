package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/toolprobe/internal/config"
	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/progress"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

var (
	runPrompt    string
	runModel     string
	runProvider  string
	runMaxTokens int
	runJSON      bool
	runNoRecord  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Send one tool-declaring request and print the response content",
	Long: `Builds one client for the configured provider, sends a single chat-completion
request carrying the configured tools and prompt, and prints the response
content blocks to stdout. Exits non-zero if the call fails or the model
returns no content.`,
	Args: cobra.NoArgs,
	RunE: runSmoke,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// addRunFlags registers the run flags; they are shared by the root command
// so that a bare `toolprobe` performs a run.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runPrompt, "prompt", "", "override the user message")
	cmd.Flags().StringVar(&runModel, "model", "", "override the model identifier")
	cmd.Flags().StringVar(&runProvider, "provider", "", "override the provider ("+strings.Join(config.Providers(), ", ")+")")
	cmd.Flags().IntVar(&runMaxTokens, "max-tokens", 0, "override the response token limit")
	cmd.Flags().BoolVar(&runJSON, "json", false, "print content blocks as JSON")
	cmd.Flags().BoolVar(&runNoRecord, "no-record", false, "do not record the run in history")
}

func runSmoke(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyRunOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return err
	}

	var opts []smoke.Option
	if !runNoRecord {
		database, store := openHistoryOrWarn(cfg)
		if database != nil {
			defer database.Close()
			opts = append(opts, smoke.WithRecorder(store))
		}
	}

	opts = append(opts, webhookOptions(cfg)...)
	runner := smoke.NewRunner(provider, cfg, opts...)

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if verbose {
		fmt.Fprintf(stderr, "Provider: %s\n", provider.Name())
		fmt.Fprintf(stderr, "Model:    %s\n", cfg.Model)
		for _, t := range cfg.Tools {
			fmt.Fprintf(stderr, "Tool:     %s (%s)\n", t.Name, t.Type)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter := progress.NewReporter(stderr)
	reporter.Start(fmt.Sprintf("Calling %s (%s)", provider.Name(), cfg.Model))
	res, err := runner.Run(ctx, history.SourceCLI)
	reporter.Finish("")

	if res != nil && res.Response != nil {
		format := smoke.FormatText
		if runJSON {
			format = smoke.FormatJSON
		}
		if perr := smoke.PrintContent(stdout, res.Response.Content, format); perr != nil {
			return fmt.Errorf("printing content: %w", perr)
		}
	}

	if verbose && res != nil {
		run := res.Run
		fmt.Fprintf(stderr, "\nStatus:   %s\n", run.Status)
		fmt.Fprintf(stderr, "Duration: %s\n", run.Duration.Round(time.Millisecond))
		fmt.Fprintf(stderr, "Tokens:   %d in / %d out\n", run.InputTokens, run.OutputTokens)
		fmt.Fprintf(stderr, "Cost:     $%.6f\n", run.CostUSD)
		if run.ID != "" {
			fmt.Fprintf(stderr, "Run ID:   %s\n", run.ID)
		}
	}

	if errors.Is(err, smoke.ErrEmptyResponse) {
		return fmt.Errorf("smoke check failed: %w", err)
	}
	return err
}

// applyRunOverrides copies explicitly set flags onto cfg. Switching provider
// without a model selects that provider's default model.
func applyRunOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider = config.ProviderType(runProvider)
		if !flags.Changed("model") {
			cfg.Model = config.DefaultModel(cfg.Provider)
		}
	}
	if flags.Changed("model") {
		cfg.Model = runModel
	}
	if flags.Changed("prompt") {
		cfg.Prompt = runPrompt
	}
	if flags.Changed("max-tokens") {
		cfg.MaxTokens = runMaxTokens
	}
}
