package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabstat/internal/config"
	"github.com/KaramelBytes/tabstat/internal/logging"
)

var (
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tabstat",
	Short: "tabstat: descriptive statistics for CSV/TSV/XLSX datasets",
	Long: `tabstat loads a tabular file into typed columns and reports central tendency,
dispersion, quartiles, histograms, frequency tables and pairwise relations.
Categorical columns can be ranked with ordinal orders so medians and cumulative
frequencies follow the ranking instead of alphabetical order.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
	} else {
		cfg = c
	}
	level := logging.ParseLevel(effectiveConfig().LogLevel)
	if debug {
		level = logging.LevelDebug
	}
	logging.SetLevel(level)
}

// effectiveConfig returns the loaded configuration or the built-in defaults.
func effectiveConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}
