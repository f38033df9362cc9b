package stats

import (
	"fmt"
	"sort"
)

// Orders maps a categorical column to the ranking of its levels, lowest first.
type Orders map[string][]string

// DefaultOrders returns the built-in ordinal table: priority low < medium < high.
func DefaultOrders() Orders {
	return Orders{"priority": {"low", "medium", "high"}}
}

func (o Orders) clone() Orders {
	out := make(Orders, len(o))
	for col, levels := range o {
		out[col] = append([]string(nil), levels...)
	}
	return out
}

// compile turns each ranking into a level -> rank lookup.
func (o Orders) compile() (map[string]map[string]int, error) {
	ranks := make(map[string]map[string]int, len(o))
	for col, levels := range o {
		r := make(map[string]int, len(levels))
		for i, lvl := range levels {
			if _, dup := r[lvl]; dup {
				return nil, &InvalidArgumentError{Arg: "orders", Reason: fmt.Sprintf("column %q lists level %q twice", col, lvl)}
			}
			r[lvl] = i
		}
		ranks[col] = r
	}
	return ranks, nil
}

// sortedValues returns vals in ascending order for the given column. Ordinal
// columns order by rank with unranked values last, in input order; every other
// column uses the natural order of its kind. vals is not modified.
func (e *Engine) sortedValues(column string, vals []Value) []Value {
	out := make([]Value, len(vals))
	copy(out, vals)
	rank, ordinal := e.ranks[column]
	if !ordinal {
		sort.SliceStable(out, func(i, j int) bool { return out[i].less(out[j]) })
		return out
	}
	pos := func(v Value) int {
		if r, ok := rank[v.String()]; ok {
			return r
		}
		return len(rank)
	}
	sort.SliceStable(out, func(i, j int) bool { return pos(out[i]) < pos(out[j]) })
	return out
}

// sortedFloats returns an ascending copy of a numeric column.
func sortedFloats(xs []float64) []float64 {
	cp := make([]float64, len(xs))
	copy(cp, xs)
	sort.Float64s(cp)
	return cp
}
