package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/toolprobe/internal/mcp"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing run_smoke_test, list_runs and get_run to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return err
		}

		var opts []smoke.Option
		database, store := openHistoryOrWarn(cfg)
		if database != nil {
			defer database.Close()
			opts = append(opts, smoke.WithRecorder(store))
		}
		opts = append(opts, webhookOptions(cfg)...)
		runner := smoke.NewRunner(provider, cfg, opts...)

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "toolprobe MCP server started on stdio (provider=%s, model=%s)\n", cfg.Provider, cfg.Model)

		srv := mcpserver.NewServer(runner, store)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
