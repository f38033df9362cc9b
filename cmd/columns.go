package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var colLoad loadFlags

var columnsCmd = &cobra.Command{
	Use:   "columns <file>",
	Short: "List columns with their inferred kind and missing cells",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, eng, err := colLoad.loadEngine(cmd.Context(), cmd.Flags(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d rows, %d columns\n", tab.Name, tab.Rows, len(tab.Columns))
		width := 0
		for _, name := range tab.Columns {
			if len(name) > width {
				width = len(name)
			}
		}
		kinds := tab.Kinds()
		for i, name := range tab.Columns {
			line := fmt.Sprintf("  %-*s  %-7s  missing %d", width, name, kinds[i], tab.Missing[name])
			if lv := eng.Levels(name); len(lv) > 0 {
				line += "  ordinal " + strings.Join(lv, " < ")
			}
			fmt.Fprintln(out, line)
		}
		for _, w := range tab.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	colLoad.register(columnsCmd.Flags())
}
