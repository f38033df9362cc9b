package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabstat/internal/config"
	"github.com/KaramelBytes/tabstat/internal/dataset"
	"github.com/KaramelBytes/tabstat/internal/logging"
	"github.com/KaramelBytes/tabstat/internal/stats"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tabstat configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		fmt.Fprintf(out, "decimal_separator: %q\n", c.DecimalSeparator)
		fmt.Fprintf(out, "thousands_separator: %q\n", c.ThousandsSeparator)
		fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		fmt.Fprintf(out, "histogram_bins: %d\n", c.HistogramBins)
		fmt.Fprintf(out, "top_values: %d\n", c.TopValues)
		fmt.Fprintf(out, "coerce_policy: %s\n", c.CoercePolicy)
		fmt.Fprintf(out, "numeric_default: %g\n", c.NumericDefault)
		fmt.Fprintf(out, "output_format: %s\n", c.OutputFormat)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		if len(c.OrdinalOrders) > 0 {
			fmt.Fprintln(out, "ordinal_orders:")
			for _, o := range c.OrdinalOrders {
				fmt.Fprintf(out, "  %s: %s\n", o.Column, strings.Join(o.Levels, " < "))
			}
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk.

Use the key order.<column> with a comma-separated ranking (lowest first) to
define an ordinal column; an empty value removes the ranking.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if col, ok := strings.CutPrefix(key, "order."); ok {
			if col == "" {
				return fmt.Errorf("missing column in key %q (use order.<column>)", key)
			}
			levels := splitLevels(val)
			if len(levels) == 0 {
				removeOrder(cfg, col)
			} else {
				// validate duplicates the same way the engine will
				if _, err := stats.New(nil, stats.Orders{col: levels}); err != nil {
					return err
				}
				cfg.SetOrder(col, levels)
			}
		} else if err := setScalar(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func setScalar(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "delimiter":
		if _, err := parseDelimiter(val); err != nil {
			return err
		}
		c.Delimiter = val
	case "decimal_separator":
		if _, err := parseDecimal(val); err != nil {
			return err
		}
		c.DecimalSeparator = val
	case "thousands_separator":
		if _, err := parseThousands(val); err != nil {
			return err
		}
		c.ThousandsSeparator = val
	case "max_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for max_rows: %v", val)
		}
		c.MaxRows = i
	case "histogram_bins":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for histogram_bins: %v", val)
		}
		c.HistogramBins = i
	case "top_values":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for top_values: %v", val)
		}
		c.TopValues = i
	case "coerce_policy":
		p, err := dataset.ParsePolicy(strings.ToLower(val))
		if err != nil {
			return err
		}
		c.CoercePolicy = p.String()
	case "numeric_default":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for numeric_default: %w", err)
		}
		c.NumericDefault = f
	case "output_format":
		switch strings.ToLower(val) {
		case "md", "markdown", "html", "json":
			c.OutputFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid output_format: %s (use md, html or json)", val)
		}
	case "log_level":
		c.LogLevel = logging.ParseLevel(val).String()
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func removeOrder(c *cfgpkg.Global, column string) {
	kept := c.OrdinalOrders[:0]
	for _, o := range c.OrdinalOrders {
		if o.Column != column {
			kept = append(kept, o)
		}
	}
	c.OrdinalOrders = kept
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
