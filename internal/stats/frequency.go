package stats

import (
	"fmt"
	"strings"
)

// Count is the absolute frequency of one distinct value.
type Count struct {
	Value Value `json:"value"`
	N     int   `json:"n"`
}

// Frequency is a relative or accumulated frequency of one distinct value.
type Frequency struct {
	Value Value   `json:"value"`
	Freq  float64 `json:"freq"`
}

// Method selects the per-item source for cumulative frequencies.
type Method string

const (
	Absolute Method = "absolute"
	Relative Method = "relative"
)

// ParseMethod maps "absolute"/"relative" (any case) to a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case Absolute, "abs", "":
		return Absolute, nil
	case Relative, "rel":
		return Relative, nil
	}
	return "", &InvalidArgumentError{Arg: "method", Reason: fmt.Sprintf("unknown frequency method %q (use absolute|relative)", s)}
}

// Itemset returns the distinct values of a column in first-seen order.
func (e *Engine) Itemset(column string) ([]Value, error) {
	counts, err := e.AbsoluteFrequency(column)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(counts))
	for i, c := range counts {
		out[i] = c.Value
	}
	return out, nil
}

// AbsoluteFrequency counts each distinct value, in first-seen order.
func (e *Engine) AbsoluteFrequency(column string) ([]Count, error) {
	c, err := e.Column(column)
	if err != nil {
		return nil, err
	}
	idx := map[Value]int{}
	out := []Count{}
	for i := 0; i < c.Len(); i++ {
		v := c.Value(i)
		if j, ok := idx[v]; ok {
			out[j].N++
			continue
		}
		idx[v] = len(out)
		out = append(out, Count{Value: v, N: 1})
	}
	return out, nil
}

// RelativeFrequency divides each absolute count by the row count.
func (e *Engine) RelativeFrequency(column string) ([]Frequency, error) {
	counts, err := e.AbsoluteFrequency(column)
	if err != nil {
		return nil, err
	}
	out := make([]Frequency, len(counts))
	total := float64(e.rows)
	for i, c := range counts {
		out[i] = Frequency{Value: c.Value, Freq: float64(c.N) / total}
	}
	return out, nil
}

// CumulativeFrequency visits distinct values in ordinal-aware ascending order and
// accumulates their absolute or relative frequency. The final entry equals the
// row count (Absolute) or 1 (Relative).
func (e *Engine) CumulativeFrequency(column string, method Method) ([]Frequency, error) {
	var per []Frequency
	switch method {
	case Absolute:
		counts, err := e.AbsoluteFrequency(column)
		if err != nil {
			return nil, err
		}
		per = make([]Frequency, len(counts))
		for i, c := range counts {
			per[i] = Frequency{Value: c.Value, Freq: float64(c.N)}
		}
	case Relative:
		rel, err := e.RelativeFrequency(column)
		if err != nil {
			return nil, err
		}
		per = rel
	default:
		return nil, &InvalidArgumentError{Arg: "method", Reason: fmt.Sprintf("unknown frequency method %q", method)}
	}

	freq := make(map[Value]float64, len(per))
	items := make([]Value, len(per))
	for i, f := range per {
		freq[f.Value] = f.Freq
		items[i] = f.Value
	}
	out := make([]Frequency, 0, len(items))
	var running float64
	for _, v := range e.sortedValues(column, items) {
		running += freq[v]
		out = append(out, Frequency{Value: v, Freq: running})
	}
	return out, nil
}
