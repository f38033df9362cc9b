package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabstat/internal/report"
)

var (
	anaLoad       loadFlags
	anaReport     reportFlags
	anaOutputPath string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a CSV/TSV/XLSX file and print a statistics report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		format, err := anaReport.outputFormat(cmd.Flags(), c)
		if err != nil {
			return err
		}
		tab, eng, err := anaLoad.loadEngine(cmd.Context(), cmd.Flags(), args[0])
		if err != nil {
			return err
		}
		rep := report.FromTable(tab, eng, anaReport.columns, anaReport.options(cmd.Flags(), c))
		body, err := render(rep, format)
		if err != nil {
			return err
		}
		return writeOutput(cmd, anaOutputPath, body)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaLoad.register(analyzeCmd.Flags())
	anaReport.register(analyzeCmd.Flags())
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
}
