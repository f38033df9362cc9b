package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabstat/internal/stats"
	"github.com/KaramelBytes/tabstat/internal/utils"
)

var (
	qLoad loadFlags
	qJSON bool
)

// queryOps maps an operation name to its runner and the extra arguments it takes.
var queryOps = map[string]struct {
	usage string
	args  int // extra positional args after <column>; -1 means 0 or 1
	run   func(eng *stats.Engine, col string, args []string) (any, error)
}{
	"mean":      {"", 0, func(e *stats.Engine, c string, _ []string) (any, error) { return e.Mean(c) }},
	"median":    {"", 0, func(e *stats.Engine, c string, _ []string) (any, error) { return e.Median(c) }},
	"mode":      {"", 0, func(e *stats.Engine, c string, _ []string) (any, error) { return e.Mode(c) }},
	"variance":  {"", 0, func(e *stats.Engine, c string, _ []string) (any, error) { return e.Variance(c) }},
	"stdev":     {"", 0, func(e *stats.Engine, c string, _ []string) (any, error) { return e.Stdev(c) }},
	"quartiles": {"", 0, runQuartiles},
	"percentile": {"<p>", 1, func(e *stats.Engine, c string, a []string) (any, error) {
		p, err := strconv.ParseFloat(a[0], 64)
		if err != nil {
			return nil, &stats.InvalidArgumentError{Arg: "percentile", Reason: fmt.Sprintf("%q is not a number", a[0])}
		}
		return e.Percentile(c, p)
	}},
	"histogram": {"[bins]", -1, runHistogram},
	"range": {"", 0, func(e *stats.Engine, c string, _ []string) (any, error) {
		lo, hi, err := e.Range(c)
		return map[string]float64{"min": lo, "max": hi}, err
	}},
	"itemset": {"", 0, func(e *stats.Engine, c string, _ []string) (any, error) { return e.Itemset(c) }},
	"absfreq": {"", 0, func(e *stats.Engine, c string, _ []string) (any, error) { return e.AbsoluteFrequency(c) }},
	"relfreq": {"", 0, func(e *stats.Engine, c string, _ []string) (any, error) { return e.RelativeFrequency(c) }},
	"cumfreq": {"[absolute|relative]", -1, func(e *stats.Engine, c string, a []string) (any, error) {
		m := stats.Absolute
		if len(a) == 1 {
			var err error
			if m, err = stats.ParseMethod(a[0]); err != nil {
				return nil, err
			}
		}
		return e.CumulativeFrequency(c, m)
	}},
	"covariance":  {"<column2>", 1, func(e *stats.Engine, c string, a []string) (any, error) { return e.Covariance(c, a[0]) }},
	"correlation": {"<column2>", 1, func(e *stats.Engine, c string, a []string) (any, error) { return e.Correlation(c, a[0]) }},
	"condprob":    {"<value1> <value2>", 2, runCondProb},
}

var queryCmd = &cobra.Command{
	Use:   "query <file> <op> <column> [args...]",
	Short: "Run one statistic against a column",
	Long: `Run one statistic against a column of a dataset file.

Operations:
` + queryUsage(),
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, opName, col, extra := args[0], strings.ToLower(args[1]), args[2], args[3:]
		op, ok := queryOps[opName]
		if !ok {
			return fmt.Errorf("unknown operation %q (see tabstat query --help)", args[1])
		}
		switch {
		case op.args >= 0 && len(extra) != op.args:
			return fmt.Errorf("%s expects %s after the column", opName, usageOrNone(op.usage))
		case op.args < 0 && len(extra) > 1:
			return fmt.Errorf("%s takes at most one argument: %s", opName, op.usage)
		}
		_, eng, err := qLoad.loadEngine(cmd.Context(), cmd.Flags(), path)
		if err != nil {
			return err
		}
		res, err := op.run(eng, col, extra)
		if err != nil {
			return describeEngineError(opName, eng, err)
		}
		if qJSON {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func runQuartiles(e *stats.Engine, c string, _ []string) (any, error) {
	q, ok, err := e.Quartiles(c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return fmt.Sprintf("quartiles unavailable: need at least %d values", stats.MinQuartileValues), nil
	}
	return q, nil
}

func runHistogram(e *stats.Engine, c string, a []string) (any, error) {
	bins := effectiveConfig().HistogramBins
	if len(a) == 1 {
		n, err := strconv.Atoi(a[0])
		if err != nil {
			return nil, &stats.InvalidArgumentError{Arg: "bins", Reason: fmt.Sprintf("%q is not an integer", a[0])}
		}
		bins = n
	}
	return e.Histogram(c, bins)
}

// runCondProb parses both values with the column's kind before asking the engine.
func runCondProb(e *stats.Engine, c string, a []string) (any, error) {
	column, err := e.Column(c)
	if err != nil {
		return nil, err
	}
	v1, err := column.Parse(a[0])
	if err != nil {
		return nil, err
	}
	v2, err := column.Parse(a[1])
	if err != nil {
		return nil, err
	}
	return e.ConditionalProbability(c, v1, v2)
}

// describeEngineError labels the engine's error kinds and lists columns when one is unknown.
func describeEngineError(op string, eng *stats.Engine, err error) error {
	switch {
	case errors.Is(err, stats.ErrUnknownColumn):
		return fmt.Errorf("%s: %w (available: %s)", op, err, strings.Join(eng.Columns(), ", "))
	case errors.Is(err, stats.ErrNotNumeric):
		return fmt.Errorf("%s: %w; use a numeric column", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func printResult(w io.Writer, res any) {
	switch v := res.(type) {
	case float64:
		fmt.Fprintln(w, formatFloat(v))
	case stats.Value:
		fmt.Fprintln(w, v.String())
	case []stats.Value:
		for _, x := range v {
			fmt.Fprintln(w, x.String())
		}
	case stats.Quartiles:
		fmt.Fprintf(w, "q1\t%s\nq2\t%s\nq3\t%s\niqr\t%s\n", formatFloat(v.Q1), formatFloat(v.Q2), formatFloat(v.Q3), formatFloat(v.IQR))
	case []stats.Bin:
		for i, b := range v {
			closer := ")"
			if i == len(v)-1 {
				closer = "]"
			}
			fmt.Fprintf(w, "[%s, %s%s\t%d\n", formatFloat(b.Start), formatFloat(b.End), closer, b.Count)
		}
	case []stats.Count:
		for _, c := range v {
			fmt.Fprintf(w, "%s\t%d\n", c.Value, c.N)
		}
	case []stats.Frequency:
		for _, f := range v {
			fmt.Fprintf(w, "%s\t%s\n", f.Value, formatFloat(f.Freq))
		}
	case map[string]float64:
		fmt.Fprintf(w, "min\t%s\nmax\t%s\n", formatFloat(v["min"]), formatFloat(v["max"]))
	default:
		fmt.Fprintln(w, v)
	}
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', 10, 64) }

func queryUsage() string {
	names := make([]string, 0, len(queryOps))
	for name := range queryOps {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		b.WriteString("  " + name)
		if u := queryOps[name].usage; u != "" {
			b.WriteString(" " + u)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func usageOrNone(u string) string {
	if u == "" {
		return "no arguments"
	}
	return u
}

func init() {
	rootCmd.AddCommand(queryCmd)
	qLoad.register(queryCmd.Flags())
	queryCmd.Flags().BoolVar(&qJSON, "json", false, "print the result as JSON")
}
