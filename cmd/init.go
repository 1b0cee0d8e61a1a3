package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/toolprobe/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize toolprobe configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to pick a provider, model, prompt and tool, and writes the answers to the config file (default .toolprobe.yml).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
