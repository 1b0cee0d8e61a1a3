package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/toolprobe/internal/config"
)

var (
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "toolprobe",
	Short: "Smoke-test tool use against a hosted model API",
	Long: `toolprobe sends one chat-completion request that declares a tool
(by default Anthropic's server-defined bash tool) to a hosted model and
prints the response content. Runs are recorded so they can be listed,
costed, reported on, served over HTTP or exposed to agents via MCP.

Running toolprobe without a subcommand is the same as "toolprobe run".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnvFile(envFile)
	},
	RunE:         runSmoke,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".toolprobe.yml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with API keys (ignored if missing)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	addRunFlags(rootCmd)
}
