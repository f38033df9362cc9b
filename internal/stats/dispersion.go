package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Variance returns the population variance (divisor N) of a numeric column.
func (e *Engine) Variance(column string) (float64, error) {
	xs, err := e.numbers(column)
	if err != nil || len(xs) == 0 {
		return 0, err
	}
	return stat.PopVariance(xs, nil), nil
}

// Stdev returns the population standard deviation.
func (e *Engine) Stdev(column string) (float64, error) {
	v, err := e.Variance(column)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// Quartiles holds the 25th, 50th and 75th percentiles and their spread.
type Quartiles struct {
	Q1  float64 `json:"q1"`
	Q2  float64 `json:"q2"`
	Q3  float64 `json:"q3"`
	IQR float64 `json:"iqr"`
}

// MinQuartileValues is the smallest column length quartiles are reported for.
const MinQuartileValues = 4

// Quartiles computes Q1..Q3 with inclusive linear interpolation. ok is false,
// with a nil error, when the column holds fewer than MinQuartileValues values.
func (e *Engine) Quartiles(column string) (q Quartiles, ok bool, err error) {
	xs, err := e.numbers(column)
	if err != nil {
		return Quartiles{}, false, err
	}
	if len(xs) < MinQuartileValues {
		return Quartiles{}, false, nil
	}
	sorted := sortedFloats(xs)
	q = Quartiles{
		Q1: quantile(sorted, 0.25),
		Q2: quantile(sorted, 0.50),
		Q3: quantile(sorted, 0.75),
	}
	q.IQR = q.Q3 - q.Q1
	return q, true, nil
}

// Percentile returns the p-th percentile (0..100) using rank (N-1)*p/100.
func (e *Engine) Percentile(column string, p float64) (float64, error) {
	if p < 0 || p > 100 || math.IsNaN(p) {
		return 0, &InvalidArgumentError{Arg: "percentile", Reason: fmt.Sprintf("%g is outside [0, 100]", p)}
	}
	xs, err := e.numbers(column)
	if err != nil || len(xs) == 0 {
		return 0, err
	}
	return quantile(sortedFloats(xs), p/100), nil
}

// Range returns the smallest and largest value of a numeric column.
func (e *Engine) Range(column string) (lo, hi float64, err error) {
	xs, err := e.numbers(column)
	if err != nil || len(xs) == 0 {
		return 0, 0, err
	}
	return floats.Min(xs), floats.Max(xs), nil
}

// Bin is one histogram interval [Start, End). The last bin also includes End.
type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Histogram splits [min, max] into bins equal-width intervals and counts the
// values falling in each. When every value is equal all of them land in the
// last bin.
func (e *Engine) Histogram(column string, bins int) ([]Bin, error) {
	if bins <= 0 {
		return nil, &InvalidArgumentError{Arg: "bins", Reason: fmt.Sprintf("must be positive, got %d", bins)}
	}
	xs, err := e.numbers(column)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, &InvalidArgumentError{Arg: "column", Reason: fmt.Sprintf("histogram of empty column %q", column)}
	}
	lo, hi := floats.Min(xs), floats.Max(xs)
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Start = lo + float64(i)*width
		out[i].End = lo + float64(i+1)*width
	}
	out[bins-1].End = hi
	for _, x := range xs {
		idx := bins - 1
		if width > 0 {
			idx = int((x - lo) / width)
			if idx >= bins {
				idx = bins - 1
			}
		}
		out[idx].Count++
	}
	return out, nil
}

// quantile interpolates between order statistics at rank q*(N-1).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo] + w*(sorted[hi]-sorted[lo])
}
