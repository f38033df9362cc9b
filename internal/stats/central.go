package stats

import "gonum.org/v1/gonum/stat"

// Mean returns the arithmetic mean of a numeric column, or 0 for an empty one.
func (e *Engine) Mean(column string) (float64, error) {
	xs, err := e.numbers(column)
	if err != nil || len(xs) == 0 {
		return 0, err
	}
	return stat.Mean(xs, nil), nil
}

// Median returns the middle element in ordinal-aware order. For an even count a
// numeric column averages the two middle values while any other column returns
// the lower of the two, since text and booleans cannot be averaged. An empty
// column yields numeric 0.
func (e *Engine) Median(column string) (Value, error) {
	c, err := e.Column(column)
	if err != nil {
		return Value{}, err
	}
	n := c.Len()
	if n == 0 {
		return Num(0), nil
	}
	if xs, ok := c.Floats(); ok && !e.IsOrdinal(column) {
		sorted := sortedFloats(xs)
		mid := n / 2
		if n%2 == 0 {
			return Num((sorted[mid-1] + sorted[mid]) / 2), nil
		}
		return Num(sorted[mid]), nil
	}
	sorted := e.sortedValues(column, c.Values())
	mid := n / 2
	if n%2 == 0 {
		lo, hi := sorted[mid-1], sorted[mid]
		a, aok := lo.Float()
		b, bok := hi.Float()
		if aok && bok {
			return Num((a + b) / 2), nil
		}
		return lo, nil
	}
	return sorted[mid], nil
}

// Mode returns every value that attains the highest count, in first-seen order.
// Ties are not broken. An empty column yields an empty slice.
func (e *Engine) Mode(column string) ([]Value, error) {
	counts, err := e.AbsoluteFrequency(column)
	if err != nil {
		return nil, err
	}
	best := 0
	for _, c := range counts {
		if c.N > best {
			best = c.N
		}
	}
	out := []Value{}
	for _, c := range counts {
		if c.N == best {
			out = append(out, c.Value)
		}
	}
	return out, nil
}
