package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/toolprobe/internal/report"
)

var (
	reportOut   string
	reportLimit int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render recorded runs as an HTML report",
	Long:  `Renders recorded smoke runs as a markdown document (report.md) and converts it to a standalone HTML page (index.html).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		out := cfg.ReportDir
		if reportOut != "" {
			out = reportOut
		}

		path, n, err := report.NewGenerator(out, reportLimit).Generate(cmd.Context(), store)
		if err != nil {
			return fmt.Errorf("generating report: %w", err)
		}
		fmt.Printf("Report with %d run(s) written to %s\n", n, path)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output directory (default: report_dir from config)")
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 100, "maximum number of runs to include (0 for all)")
	rootCmd.AddCommand(reportCmd)
}
