package dataset

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabstat/internal/stats"
)

// maxWarnings caps the per-table list of substituted cells.
const maxWarnings = 20

// rowSource yields raw records one at a time. ok is false once input is exhausted.
type rowSource func() (rec []string, ok bool, err error)

// readTable pulls the header and data rows from next and builds a typed table.
func readTable(ctx context.Context, name string, next rowSource, opt Options) (*Table, error) {
	header, ok, err := next()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !ok || len(header) == 0 {
		return &Table{Name: name, Data: stats.Dataset{}, Missing: map[string]int{}}, nil
	}
	names := uniqueHeaders(header)
	ncol := len(names)

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	var cells [][]string
	for len(cells) < maxRows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, ok, err := next()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(cells)+1, err)
		}
		if !ok {
			break
		}
		row := make([]string, ncol)
		copy(row, rec)
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
		cells = append(cells, row)
	}
	return coerce(name, names, cells, opt)
}

// uniqueHeaders names blank headers col_N (1-based) and suffixes repeats with __2, __3.
func uniqueHeaders(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("col_%d", i+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			cand := fmt.Sprintf("%s__%d", h, n)
			for seen[cand] > 0 {
				n++
				cand = fmt.Sprintf("%s__%d", h, n)
			}
			seen[cand]++
			h = cand
		}
		out[i] = h
	}
	return out
}

func coerce(name string, names []string, cells [][]string, opt Options) (*Table, error) {
	t := &Table{
		Name:    name,
		Columns: names,
		Data:    make(stats.Dataset, len(names)),
		Rows:    len(cells),
		Missing: make(map[string]int, len(names)),
	}
	substituted := 0
	for j, col := range names {
		raw := make([]string, len(cells))
		for i := range cells {
			raw[i] = cells[i][j]
		}
		kind, forced := opt.Schema[col]
		if !forced {
			kind = inferKind(raw, opt)
		}
		var (
			c   stats.Column
			bad []int
		)
		switch kind {
		case stats.KindNumeric:
			vals := make([]float64, len(raw))
			for i, s := range raw {
				if s == "" {
					t.Missing[col]++
					vals[i] = opt.NumericDefault
					continue
				}
				x, ok := parseNumeric(s, opt)
				if !ok {
					if opt.Policy == PolicyStrict {
						return nil, &CoerceError{Row: i + 1, Column: col, Kind: kind, Value: s}
					}
					bad = append(bad, i)
					x = opt.NumericDefault
				}
				vals[i] = x
			}
			c = stats.Numbers(vals)
		case stats.KindBool:
			vals := make([]bool, len(raw))
			for i, s := range raw {
				if s == "" {
					t.Missing[col]++
					continue
				}
				b, ok := parseBool(s)
				if !ok {
					if opt.Policy == PolicyStrict {
						return nil, &CoerceError{Row: i + 1, Column: col, Kind: kind, Value: s}
					}
					bad = append(bad, i)
				}
				vals[i] = b
			}
			c = stats.Bools(vals)
		default:
			for _, s := range raw {
				if s == "" {
					t.Missing[col]++
				}
			}
			c = stats.Texts(raw)
		}
		if len(bad) > 0 {
			substituted += len(bad)
			if len(t.Warnings) < maxWarnings {
				t.Warnings = append(t.Warnings, fmt.Sprintf("column %q: %d value(s) not readable as %s replaced with default (first at row %d)", col, len(bad), kind, bad[0]+1))
			}
		}
		t.Data[col] = c
	}
	if substituted > 0 && len(t.Warnings) >= maxWarnings {
		t.Warnings = append(t.Warnings, fmt.Sprintf("%d cell(s) replaced with defaults in total", substituted))
	}
	return t, nil
}

// inferKind picks numeric, then bool, then text. A column with no non-empty
// cells is text.
func inferKind(raw []string, opt Options) stats.Kind {
	seen, numeric, boolean := 0, true, true
	for _, s := range raw {
		if s == "" {
			continue
		}
		seen++
		if numeric {
			if _, ok := parseNumeric(s, opt); !ok {
				numeric = false
			}
		}
		if boolean {
			if _, ok := parseBool(s); !ok {
				boolean = false
			}
		}
		if !numeric && !boolean {
			return stats.KindText
		}
	}
	switch {
	case seen == 0:
		return stats.KindText
	case numeric:
		return stats.KindNumeric
	case boolean:
		return stats.KindBool
	}
	return stats.KindText
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// parseNumeric reads a number written with either decimal convention ("1.000,5",
// "1,000.5", "12%"). NaN and infinities are rejected so every cell stays usable
// as a map key.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(raw, "%")
	// Normalize spaces
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
