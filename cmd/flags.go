package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cfgpkg "github.com/KaramelBytes/tabstat/internal/config"
	"github.com/KaramelBytes/tabstat/internal/dataset"
	"github.com/KaramelBytes/tabstat/internal/logging"
	"github.com/KaramelBytes/tabstat/internal/report"
	"github.com/KaramelBytes/tabstat/internal/stats"
	"github.com/KaramelBytes/tabstat/internal/utils"
)

// loadFlags are the ingestion flags shared by every command that reads a file.
type loadFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
	schema     []string
	strict     bool
	orders     []string
}

func (lf *loadFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&lf.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'pipe' (default from config, else by extension)")
	fs.StringVar(&lf.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	fs.StringVar(&lf.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	fs.IntVar(&lf.maxRows, "max-rows", 0, "maximum data rows to read (0 = config value, unlimited by default)")
	fs.StringVar(&lf.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	fs.IntVar(&lf.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fs.StringSliceVar(&lf.schema, "schema", nil, "force column kinds: col=numeric|text|bool (repeatable)")
	fs.BoolVar(&lf.strict, "strict", false, "fail on cells that do not parse instead of substituting defaults")
	fs.StringArrayVar(&lf.orders, "order", nil, "ordinal ranking, lowest first: col=a,b,c (repeatable, overrides config)")
}

// options merges flags over configuration. Only flags the user set win.
func (lf *loadFlags) options(fs *pflag.FlagSet, c *cfgpkg.Global) (dataset.Options, error) {
	opt := dataset.Options{
		MaxRows:        c.MaxRows,
		Sheet:          lf.sheetName,
		SheetIndex:     lf.sheetIndex,
		NumericDefault: c.NumericDefault,
	}
	pick := func(flag, val, fallback string) string {
		if fs.Changed(flag) {
			return val
		}
		return fallback
	}
	var err error
	if opt.Delimiter, err = parseDelimiter(pick("delimiter", lf.delimiter, c.Delimiter)); err != nil {
		return opt, err
	}
	if opt.DecimalSeparator, err = parseDecimal(pick("decimal", lf.decimal, c.DecimalSeparator)); err != nil {
		return opt, err
	}
	if opt.ThousandsSeparator, err = parseThousands(pick("thousands", lf.thousands, c.ThousandsSeparator)); err != nil {
		return opt, err
	}
	if fs.Changed("max-rows") {
		opt.MaxRows = lf.maxRows
	}
	if opt.Policy, err = dataset.ParsePolicy(c.CoercePolicy); err != nil {
		return opt, err
	}
	if lf.strict {
		opt.Policy = dataset.PolicyStrict
	}
	for _, kv := range lf.schema {
		col, kind, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return opt, fmt.Errorf("invalid --schema %q (use col=kind)", kv)
		}
		k, err := stats.ParseKind(kind)
		if err != nil {
			return opt, fmt.Errorf("--schema %s: %w", col, err)
		}
		if opt.Schema == nil {
			opt.Schema = map[string]stats.Kind{}
		}
		opt.Schema[strings.TrimSpace(col)] = k
	}
	return opt, nil
}

// orderTable starts from the configured rankings and applies --order overrides.
func (lf *loadFlags) orderTable(c *cfgpkg.Global) (stats.Orders, error) {
	orders := c.Orders()
	for _, kv := range lf.orders {
		col, levels, ok := strings.Cut(kv, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" || strings.TrimSpace(levels) == "" {
			return nil, fmt.Errorf("invalid --order %q (use col=a,b,c)", kv)
		}
		orders[col] = splitLevels(levels)
	}
	return orders, nil
}

func splitLevels(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadEngine reads path and builds an engine over it with the effective order table.
func (lf *loadFlags) loadEngine(ctx context.Context, fs *pflag.FlagSet, path string) (*dataset.Table, *stats.Engine, error) {
	c := effectiveConfig()
	opt, err := lf.options(fs, c)
	if err != nil {
		return nil, nil, err
	}
	orders, err := lf.orderTable(c)
	if err != nil {
		return nil, nil, err
	}
	tab, err := dataset.Load(ctx, path, opt)
	if err != nil {
		return nil, nil, err
	}
	eng, err := stats.New(tab.Data, orders)
	if err != nil {
		return nil, nil, fmt.Errorf("build engine: %w", err)
	}
	logging.Debugf("loaded %s: %d rows, %d columns", tab.Name, tab.Rows, len(tab.Columns))
	return tab, eng, nil
}

// reportFlags select what a report contains and how it is written.
type reportFlags struct {
	columns      []string
	bins         int
	top          int
	covariance   bool
	correlations bool
	format       string
}

func (rf *reportFlags) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&rf.columns, "columns", nil, "limit the report to these columns (default all)")
	fs.IntVar(&rf.bins, "bins", 0, "histogram bins per numeric column (default from config)")
	fs.IntVar(&rf.top, "top", 0, "frequency rows per categorical column (default from config)")
	fs.BoolVar(&rf.covariance, "covariance", false, "include the covariance matrix of numeric columns")
	fs.BoolVar(&rf.correlations, "correlations", true, "include Pearson correlations among numeric columns")
	fs.StringVar(&rf.format, "format", "", "output format: md|html|json (default from config)")
}

func (rf *reportFlags) options(fs *pflag.FlagSet, c *cfgpkg.Global) report.Options {
	opt := report.Options{
		Bins:         c.HistogramBins,
		Top:          c.TopValues,
		Covariance:   rf.covariance,
		Correlations: rf.correlations,
	}
	if fs.Changed("bins") {
		opt.Bins = rf.bins
	}
	if fs.Changed("top") {
		opt.Top = rf.top
	}
	return opt
}

func (rf *reportFlags) outputFormat(fs *pflag.FlagSet, c *cfgpkg.Global) (string, error) {
	f := c.OutputFormat
	if fs.Changed("format") {
		f = rf.format
	}
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", "md", "markdown":
		return "md", nil
	case "html":
		return "html", nil
	case "json":
		return "json", nil
	}
	return "", fmt.Errorf("unsupported --format: %s (use md|html|json)", f)
}

func render(r *report.Report, format string) ([]byte, error) {
	switch format {
	case "html":
		return r.HTML(), nil
	case "json":
		return r.JSON()
	default:
		return []byte(r.Markdown()), nil
	}
}

func extFor(format string) string {
	switch format {
	case "html":
		return ".html"
	case "json":
		return ".json"
	}
	return ".md"
}

// writeOutput writes body to path when set, otherwise to the command's stdout.
func writeOutput(cmd *cobra.Command, path string, body []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(body), "\n"))
		return err
	}
	if err := utils.SafeWriteFile(path, body); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", path)
	return nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s", s)
}

func parseDecimal(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	case "":
		return 0, nil
	}
	return 0, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", s)
}

func parseThousands(s string) (rune, error) {
	switch strings.ToLower(s) {
	case ",":
		return ',', nil
	case ".":
		return '.', nil
	case "space", " ":
		return ' ', nil
	case "":
		return 0, nil
	}
	return 0, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", s)
}
