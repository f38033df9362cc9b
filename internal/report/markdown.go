package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/tabstat/internal/stats"
)

// maxPairs caps the correlation pairs listed in the summary.
const maxPairs = 10

// Markdown renders the report with bracketed section markers.
func (r *Report) Markdown() string {
	return r.render(func(name string) string { return "[" + name + "]" })
}

func (r *Report) render(section func(string) string) string {
	var b strings.Builder
	b.WriteString(section("DATASET SUMMARY") + "\n\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("- File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("- Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("- Columns: %d\n", len(r.Columns)))
	b.WriteString(fmt.Sprintf("- Run: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("- Generated: %s\n", r.Generated.Format(time.RFC3339)))

	b.WriteString("\n" + section("SCHEMA") + "\n\n")
	for _, c := range r.Columns {
		missPct := 0.0
		if total := c.Count; total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, distinct %d)", safeName(c.Name), c.Kind, c.Count-c.Missing, missPct, c.Distinct))
		if len(c.Levels) > 0 {
			b.WriteString(" ordinal " + strings.Join(c.Levels, " < "))
		}
		b.WriteString("\n")
	}

	var numeric, categorical []ColumnSummary
	for _, c := range r.Columns {
		if c.Numeric != nil {
			numeric = append(numeric, c)
		} else {
			categorical = append(categorical, c)
		}
	}

	if len(numeric) > 0 {
		b.WriteString("\n" + section("NUMERIC COLUMNS") + "\n\n")
		b.WriteString("| column | mean | median | mode | variance | stdev | min | max | q1 | q3 | iqr |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|---|---|---|\n")
		for _, c := range numeric {
			n := c.Numeric
			q1, q3, iqr := "n/a", "n/a", "n/a"
			if n.Quartiles != nil {
				q1, q3, iqr = num(n.Quartiles.Q1), num(n.Quartiles.Q3), num(n.Quartiles.IQR)
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				safeVal(c.Name), num(n.Mean), val(c.Median), values(c.Mode), num(n.Variance), num(n.Stdev),
				num(n.Min), num(n.Max), q1, q3, iqr))
		}
		for _, c := range numeric {
			if len(c.Numeric.Histogram) == 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("\n%s\n\n", section("HISTOGRAM "+c.Name)))
			b.WriteString("| bin | count |\n|---|---|\n")
			for i, bin := range c.Numeric.Histogram {
				closer := ")"
				if i == len(c.Numeric.Histogram)-1 {
					closer = "]"
				}
				b.WriteString(fmt.Sprintf("| [%s, %s%s | %d |\n", num(bin.Start), num(bin.End), closer, bin.Count))
			}
		}
	}

	if len(categorical) > 0 {
		b.WriteString("\n" + section("CATEGORICAL COLUMNS") + "\n")
		for _, c := range categorical {
			b.WriteString(fmt.Sprintf("\n- %s: mode %s; median %s\n\n", safeName(c.Name), values(c.Mode), val(c.Median)))
			if len(c.Frequencies) == 0 {
				continue
			}
			b.WriteString("| value | count | relative | cumulative |\n|---|---|---|---|\n")
			for _, f := range c.Frequencies {
				b.WriteString(fmt.Sprintf("| %s | %d | %.3f | %.3f |\n", val(f.Value), f.Count, f.Relative, f.Cumulative))
			}
			if c.Hidden > 0 {
				b.WriteString(fmt.Sprintf("\n(%d more distinct values not shown)\n", c.Hidden))
			}
		}
	}

	if r.Covariance != nil {
		b.WriteString("\n" + section("COVARIANCE") + "\n\n")
		writeMatrix(&b, r.Covariance)
	}
	if r.Correlation != nil && len(r.Correlation.Columns) >= 2 {
		b.WriteString("\n" + section("CORRELATIONS") + "\n\n")
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(r.Correlation.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, pr{A: r.Correlation.Columns[i], B: r.Correlation.Columns[j], R: r.Correlation.Values[i][j]})
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai := math.Abs(pairs[i].R)
			aj := math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		for i := 0; i < len(pairs) && i < maxPairs; i++ {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", pairs[i].A, pairs[i].B, pairs[i].R))
		}
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n" + section("NOTES") + "\n\n")
		for _, w := range r.Notes {
			b.WriteString("- ")
			b.WriteString(safeVal(w))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeMatrix(b *strings.Builder, m *Matrix) {
	b.WriteString("| |")
	for _, c := range m.Columns {
		b.WriteString(" " + safeVal(c) + " |")
	}
	b.WriteString("\n|---|")
	for range m.Columns {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for i, c := range m.Columns {
		b.WriteString("| " + safeVal(c) + " |")
		for j := range m.Columns {
			b.WriteString(" " + num(m.Values[i][j]) + " |")
		}
		b.WriteString("\n")
	}
}

func num(f float64) string { return fmt.Sprintf("%.4g", f) }

func val(v stats.Value) string {
	if f, ok := v.Float(); ok {
		return num(f)
	}
	return safeVal(v.String())
}

func values(vs []stats.Value) string {
	if len(vs) == 0 {
		return "n/a"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = val(v)
	}
	return strings.Join(parts, ", ")
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
