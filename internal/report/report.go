// Package report turns engine queries into a dataset profile and renders it.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/KaramelBytes/tabstat/internal/dataset"
	"github.com/KaramelBytes/tabstat/internal/stats"
	"github.com/google/uuid"
)

// Options controls which statistics are gathered.
type Options struct {
	// Bins is the histogram bin count per numeric column; 0 skips histograms.
	Bins int
	// Top limits the frequency rows shown per categorical column; 0 means all.
	Top int
	// Covariance and Correlations add pairwise matrices over numeric columns.
	Covariance   bool
	Correlations bool
}

// DefaultOptions returns reasonable defaults for a dataset profile.
func DefaultOptions() Options {
	return Options{Bins: 10, Top: 10, Correlations: true}
}

// Report is a format-independent profile of one dataset.
type Report struct {
	RunID       string          `json:"run_id"`
	Generated   time.Time       `json:"generated_at"`
	Name        string          `json:"name"`
	Rows        int             `json:"rows"`
	Columns     []ColumnSummary `json:"columns"`
	Covariance  *Matrix         `json:"covariance,omitempty"`
	Correlation *Matrix         `json:"correlation,omitempty"`
	Notes       []string        `json:"notes,omitempty"`
}

// ColumnSummary holds the statistics gathered for one column.
type ColumnSummary struct {
	Name     string        `json:"name"`
	Kind     string        `json:"kind"`
	Levels   []string      `json:"levels,omitempty"` // ordinal ranking, lowest first
	Count    int           `json:"count"`
	Missing  int           `json:"missing"`
	Distinct int           `json:"distinct"`
	Median   stats.Value   `json:"median"`
	Mode     []stats.Value `json:"mode"`

	Numeric     *NumericSummary `json:"numeric,omitempty"`
	Frequencies []FreqRow       `json:"frequencies,omitempty"`
	// Hidden counts distinct values left out of Frequencies by Options.Top.
	Hidden int `json:"hidden,omitempty"`
}

// NumericSummary holds dispersion and position statistics.
type NumericSummary struct {
	Mean      float64          `json:"mean"`
	Variance  float64          `json:"variance"`
	Stdev     float64          `json:"stdev"`
	Min       float64          `json:"min"`
	Max       float64          `json:"max"`
	Quartiles *stats.Quartiles `json:"quartiles,omitempty"`
	Histogram []stats.Bin      `json:"histogram,omitempty"`
}

// FreqRow is one line of a frequency table.
type FreqRow struct {
	Value      stats.Value `json:"value"`
	Count      int         `json:"count"`
	Relative   float64     `json:"relative"`
	Cumulative float64     `json:"cumulative"`
}

// Matrix is a symmetric pairwise table across numeric columns.
type Matrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major, Values[i][j]
}

// FromTable profiles a loaded table in header order (or just columns, when
// given) and carries over its missing counts and loader warnings.
func FromTable(t *dataset.Table, eng *stats.Engine, columns []string, opt Options) *Report {
	if len(columns) == 0 {
		columns = t.Columns
	}
	r := Build(t.Name, eng, columns, opt)
	for i := range r.Columns {
		r.Columns[i].Missing = t.Missing[r.Columns[i].Name]
	}
	r.Notes = append(append([]string(nil), t.Warnings...), r.Notes...)
	return r
}

// Build queries eng for every listed column (all columns when columns is empty).
// A failing query becomes a note; the rest of the report is still produced.
func Build(name string, eng *stats.Engine, columns []string, opt Options) *Report {
	if len(columns) == 0 {
		columns = eng.Columns()
	}
	r := &Report{
		RunID:     uuid.NewString(),
		Generated: time.Now().UTC(),
		Name:      name,
		Rows:      eng.Rows(),
	}
	var numeric []string
	for _, col := range columns {
		c, err := eng.Column(col)
		if err != nil {
			r.note(col, "lookup", err)
			continue
		}
		cs := ColumnSummary{Name: col, Kind: c.Kind().String(), Count: c.Len(), Levels: eng.Levels(col)}
		if med, err := eng.Median(col); err != nil {
			r.note(col, "median", err)
		} else {
			cs.Median = med
		}
		if mode, err := eng.Mode(col); err != nil {
			r.note(col, "mode", err)
		} else {
			cs.Mode = mode
		}
		if items, err := eng.Itemset(col); err != nil {
			r.note(col, "itemset", err)
		} else {
			cs.Distinct = len(items)
		}
		if eng.IsNumeric(col) && !eng.IsOrdinal(col) {
			cs.Numeric = r.numeric(eng, col, opt)
			numeric = append(numeric, col)
		} else {
			cs.Frequencies, cs.Hidden = r.frequencies(eng, col, opt.Top)
		}
		r.Columns = append(r.Columns, cs)
	}
	if len(numeric) >= 2 {
		if opt.Covariance {
			r.Covariance = r.matrix(numeric, "covariance", eng.Covariance)
		}
		if opt.Correlations {
			r.Correlation = r.matrix(numeric, "correlation", eng.Correlation)
		}
	}
	return r
}

func (r *Report) note(col, op string, err error) {
	r.Notes = append(r.Notes, fmt.Sprintf("%s: %s failed: %v", col, op, err))
}

func (r *Report) numeric(eng *stats.Engine, col string, opt Options) *NumericSummary {
	ns := &NumericSummary{}
	var err error
	if ns.Mean, err = eng.Mean(col); err != nil {
		r.note(col, "mean", err)
	}
	if ns.Variance, err = eng.Variance(col); err != nil {
		r.note(col, "variance", err)
	}
	if ns.Stdev, err = eng.Stdev(col); err != nil {
		r.note(col, "stdev", err)
	}
	if ns.Min, ns.Max, err = eng.Range(col); err != nil {
		r.note(col, "range", err)
	}
	q, ok, err := eng.Quartiles(col)
	switch {
	case err != nil:
		r.note(col, "quartiles", err)
	case ok:
		ns.Quartiles = &q
	}
	if opt.Bins > 0 {
		if ns.Histogram, err = eng.Histogram(col, opt.Bins); err != nil {
			r.note(col, "histogram", err)
		}
	}
	return ns
}

// frequencies lists values in ordinal-aware order. With top > 0 only the top
// most frequent values are kept; cumulative figures still cover every value.
func (r *Report) frequencies(eng *stats.Engine, col string, top int) ([]FreqRow, int) {
	abs, err := eng.AbsoluteFrequency(col)
	if err != nil {
		r.note(col, "absfreq", err)
		return nil, 0
	}
	rel, err := eng.RelativeFrequency(col)
	if err != nil {
		r.note(col, "relfreq", err)
		return nil, 0
	}
	cum, err := eng.CumulativeFrequency(col, stats.Relative)
	if err != nil {
		r.note(col, "cumfreq", err)
		return nil, 0
	}
	counts := make(map[stats.Value]int, len(abs))
	for _, c := range abs {
		counts[c.Value] = c.N
	}
	shares := make(map[stats.Value]float64, len(rel))
	for _, f := range rel {
		shares[f.Value] = f.Freq
	}
	keep := map[stats.Value]bool{}
	hidden := 0
	if top > 0 && len(abs) > top {
		ranked := append([]stats.Count(nil), abs...)
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].N > ranked[j].N })
		for _, c := range ranked[:top] {
			keep[c.Value] = true
		}
		hidden = len(abs) - top
	}
	out := make([]FreqRow, 0, len(cum))
	for _, f := range cum {
		if hidden > 0 && !keep[f.Value] {
			continue
		}
		out = append(out, FreqRow{Value: f.Value, Count: counts[f.Value], Relative: shares[f.Value], Cumulative: f.Freq})
	}
	return out, hidden
}

func (r *Report) matrix(cols []string, op string, fn func(a, b string) (float64, error)) *Matrix {
	m := &Matrix{Columns: cols, Values: make([][]float64, len(cols))}
	for i := range cols {
		m.Values[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			v, err := fn(cols[i], cols[j])
			if err != nil {
				r.note(cols[i]+"~"+cols[j], op, err)
				continue
			}
			m.Values[i][j], m.Values[j][i] = v, v
		}
	}
	return m
}
