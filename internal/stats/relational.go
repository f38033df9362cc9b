package stats

import (
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

func (e *Engine) numericPair(a, b string) (xs, ys []float64, err error) {
	if xs, err = e.numbers(a); err != nil {
		return nil, nil, err
	}
	if ys, err = e.numbers(b); err != nil {
		return nil, nil, err
	}
	return xs, ys, nil
}

// Covariance returns the population covariance of two numeric columns, pairing
// values by row. Empty columns yield 0.
func (e *Engine) Covariance(a, b string) (float64, error) {
	xs, ys, err := e.numericPair(a, b)
	if err != nil || len(xs) == 0 || len(ys) == 0 {
		return 0, err
	}
	cov, err := mstats.CovariancePopulation(xs, ys)
	if err != nil {
		return 0, fmt.Errorf("covariance %s~%s: %w", a, b, err)
	}
	return cov, nil
}

// Correlation returns Pearson's r for two numeric columns. It is 0 when either
// column is empty or constant.
func (e *Engine) Correlation(a, b string) (float64, error) {
	xs, ys, err := e.numericPair(a, b)
	if err != nil || len(xs) < 2 || len(ys) < 2 {
		return 0, err
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, nil
	}
	return math.Max(-1, math.Min(1, r)), nil
}

// ConditionalProbability estimates P(next == value1 | current == value2) by
// treating the column as a sequence: adjacent (value2, value1) pairs divided by
// occurrences of value2 that have a successor. Returns 0 when value2 never has one.
func (e *Engine) ConditionalProbability(column string, value1, value2 Value) (float64, error) {
	c, err := e.Column(column)
	if err != nil {
		return 0, err
	}
	var given, both int
	for i := 0; i+1 < c.Len(); i++ {
		if c.Value(i) != value2 {
			continue
		}
		given++
		if c.Value(i+1) == value1 {
			both++
		}
	}
	if given == 0 {
		return 0, nil
	}
	return float64(both) / float64(given), nil
}
