package stats

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEngine(t *testing.T) *Engine {
	t.Helper()
	ds := Dataset{
		"popularity": Ints([]int{10, 20, 20, 40, 60, 90}),
		"duration":   Numbers([]float64{3.5, 2.0, 4.0, 3.0, 5.5, 2.0}),
		"genre":      Texts([]string{"rock", "pop", "rock", "jazz", "pop", "rock"}),
		"explicit":   Bools([]bool{true, false, true, true, false, false}),
		"priority":   Texts([]string{"high", "low", "medium", "low", "high", "urgent"}),
	}
	eng, err := New(ds, DefaultOrders())
	require.NoError(t, err)
	return eng
}

func TestNewRejectsUnequalLengths(t *testing.T) {
	_, err := New(Dataset{
		"a": Numbers([]float64{1, 2, 3}),
		"b": Texts([]string{"x", "y"}),
	}, nil)
	require.Error(t, err)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestNewAcceptsEmptyAndSingleColumn(t *testing.T) {
	eng, err := New(Dataset{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, eng.Rows())

	eng, err = New(Dataset{"only": Texts([]string{"a", "b"})}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, eng.Rows())
	assert.Equal(t, []string{"only"}, eng.Columns())
}

func TestNewRejectsDuplicateOrdinalLevel(t *testing.T) {
	_, err := New(Dataset{}, Orders{"size": {"s", "m", "s"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFromMapValidation(t *testing.T) {
	_, err := FromMap([]string{"not", "a", "map"})
	assert.ErrorIs(t, err, ErrSchema)

	_, err = FromMap(map[string]any{"a": 42})
	assert.ErrorIs(t, err, ErrSchema)

	_, err = FromMap(map[string]any{"mixed": []any{"a", 1, "b"}})
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "mixed", se.Column)

	ds, err := FromMap(map[string]any{
		"n":     []any{1, 2.5, int64(3)},
		"s":     []string{"x", "y", "z"},
		"empty": []any{},
	})
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, ds["n"].Kind())
	assert.Equal(t, KindUntyped, ds["empty"].Kind())

	// an empty column next to non-empty ones breaks the rectangle
	_, err = New(ds, nil)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestUnknownColumn(t *testing.T) {
	eng := sampleEngine(t)
	_, err := eng.Mode("missing")
	var uc *UnknownColumnError
	require.True(t, errors.As(err, &uc))
	assert.Equal(t, "missing", uc.Column)

	_, err = eng.Mean("missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestMeanAndNotNumeric(t *testing.T) {
	eng := sampleEngine(t)
	m, err := eng.Mean("popularity")
	require.NoError(t, err)
	assert.InDelta(t, 40.0, m, 1e-12)

	_, err = eng.Mean("genre")
	var nn *NotNumericError
	require.True(t, errors.As(err, &nn))
	assert.Equal(t, KindText, nn.Kind)

	_, err = eng.Variance("explicit")
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestEmptyColumnConventions(t *testing.T) {
	eng, err := New(Dataset{"x": Numbers(nil), "t": Texts(nil)}, nil)
	require.NoError(t, err)

	m, err := eng.Mean("x")
	require.NoError(t, err)
	assert.Equal(t, 0.0, m)

	v, err := eng.Variance("t")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	med, err := eng.Median("t")
	require.NoError(t, err)
	assert.Equal(t, Num(0), med)

	mode, err := eng.Mode("x")
	require.NoError(t, err)
	assert.Empty(t, mode)

	cov, err := eng.Covariance("x", "x")
	require.NoError(t, err)
	assert.Equal(t, 0.0, cov)

	_, ok, err := eng.Quartiles("x")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = eng.Histogram("x", 3)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMedian(t *testing.T) {
	eng := sampleEngine(t)

	// 10 20 20 40 60 90 -> (20+40)/2
	med, err := eng.Median("popularity")
	require.NoError(t, err)
	assert.Equal(t, Num(30), med)

	// jazz pop pop rock rock rock -> lower middle of pop/rock
	med, err = eng.Median("genre")
	require.NoError(t, err)
	assert.Equal(t, Str("pop"), med)

	// false false false true true true -> lower middle
	med, err = eng.Median("explicit")
	require.NoError(t, err)
	assert.Equal(t, Bool(false), med)
}

func TestMedianOrdinal(t *testing.T) {
	eng, err := New(Dataset{"prioridade": Texts([]string{"alta", "baixa", "media"})},
		Orders{"prioridade": {"baixa", "media", "alta"}})
	require.NoError(t, err)
	med, err := eng.Median("prioridade")
	require.NoError(t, err)
	assert.Equal(t, Str("media"), med)

	plain, err := New(Dataset{"prioridade": Texts([]string{"alta", "baixa", "media"})}, nil)
	require.NoError(t, err)
	med, err = plain.Median("prioridade")
	require.NoError(t, err)
	assert.Equal(t, Str("baixa"), med)
}

func TestOrdinalSortPutsUnrankedLastStably(t *testing.T) {
	eng := sampleEngine(t)
	in := []Value{Str("urgent"), Str("high"), Str("zzz"), Str("low"), Str("medium")}
	got := eng.sortedValues("priority", in)
	assert.Equal(t, []Value{Str("low"), Str("medium"), Str("high"), Str("urgent"), Str("zzz")}, got)
	assert.Equal(t, Str("urgent"), in[0], "input must not be reordered")
}

func TestModeTies(t *testing.T) {
	eng, err := New(Dataset{"c": Texts([]string{"a", "a", "b", "b", "c"})}, nil)
	require.NoError(t, err)
	mode, err := eng.Mode("c")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Value{Str("a"), Str("b")}, mode)
}

func TestVarianceStdev(t *testing.T) {
	eng := sampleEngine(t)
	for _, col := range []string{"popularity", "duration"} {
		v, err := eng.Variance(col)
		require.NoError(t, err)
		s, err := eng.Stdev(col)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.InDelta(t, math.Sqrt(v), s, 1e-12, col)
	}
	// population variance of 10 20 20 40 60 90 around 40
	v, err := eng.Variance("popularity")
	require.NoError(t, err)
	assert.InDelta(t, (900+400+400+0+400+2500)/6.0, v, 1e-9)
}

func TestQuartiles(t *testing.T) {
	eng, err := New(Dataset{"lista": Ints([]int{1, 2, 3, 4, 5, 6, 7, 8})}, nil)
	require.NoError(t, err)
	q, ok, err := eng.Quartiles("lista")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 2.75, q.Q1, 1e-12)
	assert.InDelta(t, 4.5, q.Q2, 1e-12)
	assert.InDelta(t, 6.25, q.Q3, 1e-12)
	assert.InDelta(t, 3.5, q.IQR, 1e-12)

	med, err := eng.Median("lista")
	require.NoError(t, err)
	assert.Equal(t, Num(q.Q2), med)
}

func TestQuartilesUnavailableBelowFour(t *testing.T) {
	eng, err := New(Dataset{"x": Numbers([]float64{3, 1, 2}), "t": Texts([]string{"a", "b", "c"})}, nil)
	require.NoError(t, err)
	_, ok, err := eng.Quartiles("x")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = eng.Quartiles("t")
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestPercentile(t *testing.T) {
	eng, err := New(Dataset{"x": Numbers([]float64{8, 1, 4, 2})}, nil)
	require.NoError(t, err)
	cases := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{100, 8},
		{50, 3},
		{25, 1.75},
	}
	for _, c := range cases {
		got, err := eng.Percentile("x", c.p)
		require.NoError(t, err)
		assert.InDelta(t, c.want, got, 1e-12, "p=%v", c.p)
	}
	_, err = eng.Percentile("x", 101)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHistogram(t *testing.T) {
	eng, err := New(Dataset{"data": Ints([]int{0, 1, 2, 3, 4, 5})}, nil)
	require.NoError(t, err)
	bins, err := eng.Histogram("data", 5)
	require.NoError(t, err)
	require.Len(t, bins, 5)
	counts := make([]int, len(bins))
	for i, b := range bins {
		assert.InDelta(t, 1.0, b.End-b.Start, 1e-12)
		counts[i] = b.Count
	}
	assert.Equal(t, []int{1, 1, 1, 1, 2}, counts)
	assert.Equal(t, 0.0, bins[0].Start)
	assert.Equal(t, 5.0, bins[4].End)

	_, err = eng.Histogram("data", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHistogramConstantColumn(t *testing.T) {
	eng, err := New(Dataset{"c": Numbers([]float64{7, 7, 7})}, nil)
	require.NoError(t, err)
	bins, err := eng.Histogram("c", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, bins[0].Count)
	assert.Equal(t, 3, bins[2].Count)
}

func TestRange(t *testing.T) {
	eng := sampleEngine(t)
	lo, hi, err := eng.Range("duration")
	require.NoError(t, err)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 5.5, hi)
}

func TestFrequencies(t *testing.T) {
	eng := sampleEngine(t)

	items, err := eng.Itemset("genre")
	require.NoError(t, err)
	assert.Equal(t, []Value{Str("rock"), Str("pop"), Str("jazz")}, items)

	abs, err := eng.AbsoluteFrequency("genre")
	require.NoError(t, err)
	assert.Equal(t, []Count{{Str("rock"), 3}, {Str("pop"), 2}, {Str("jazz"), 1}}, abs)

	for _, col := range eng.Columns() {
		rel, err := eng.RelativeFrequency(col)
		require.NoError(t, err)
		var sum float64
		for _, f := range rel {
			sum += f.Freq
		}
		assert.InDelta(t, 1.0, sum, 1e-9, col)
	}
}

func TestCumulativeFrequency(t *testing.T) {
	eng := sampleEngine(t)
	for _, col := range eng.Columns() {
		cum, err := eng.CumulativeFrequency(col, Absolute)
		require.NoError(t, err)
		require.NotEmpty(t, cum)
		assert.Equal(t, float64(eng.Rows()), cum[len(cum)-1].Freq, col)
		for i := 1; i < len(cum); i++ {
			assert.GreaterOrEqual(t, cum[i].Freq, cum[i-1].Freq)
		}

		rel, err := eng.CumulativeFrequency(col, Relative)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, rel[len(rel)-1].Freq, 1e-9, col)
	}

	cum, err := eng.CumulativeFrequency("priority", Absolute)
	require.NoError(t, err)
	want := []Frequency{{Str("low"), 2}, {Str("medium"), 3}, {Str("high"), 5}, {Str("urgent"), 6}}
	assert.Equal(t, want, cum)

	_, err = eng.CumulativeFrequency("priority", Method("median"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("Relative")
	require.NoError(t, err)
	assert.Equal(t, Relative, m)
	_, err = ParseMethod("bogus")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCovarianceAndCorrelation(t *testing.T) {
	eng, err := New(Dataset{
		"x": Numbers([]float64{1, 2, 3, 4}),
		"y": Numbers([]float64{2, 4, 6, 8}),
		"k": Numbers([]float64{5, 5, 5, 5}),
		"s": Texts([]string{"a", "b", "c", "d"}),
	}, nil)
	require.NoError(t, err)

	cov, err := eng.Covariance("x", "y")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, cov, 1e-12)

	varX, err := eng.Variance("x")
	require.NoError(t, err)
	self, err := eng.Covariance("x", "x")
	require.NoError(t, err)
	assert.InDelta(t, varX, self, 1e-12)

	r, err := eng.Correlation("x", "y")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-12)

	r, err = eng.Correlation("x", "k")
	require.NoError(t, err)
	assert.Equal(t, 0.0, r)

	_, err = eng.Covariance("x", "s")
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestConditionalProbability(t *testing.T) {
	eng, err := New(Dataset{"explicit": Texts([]string{"TRUE", "TRUE", "FALSE", "TRUE"})}, nil)
	require.NoError(t, err)

	p, err := eng.ConditionalProbability("explicit", Str("TRUE"), Str("TRUE"))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	p, err = eng.ConditionalProbability("explicit", Str("TRUE"), Str("FALSE"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)

	p, err = eng.ConditionalProbability("explicit", Str("TRUE"), Str("MAYBE"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
}

func TestQueriesAreIdempotentAndConcurrent(t *testing.T) {
	eng := sampleEngine(t)
	first, err := eng.CumulativeFrequency("priority", Relative)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := eng.CumulativeFrequency("priority", Relative)
			assert.NoError(t, err)
			assert.Equal(t, first, got)
			med, err := eng.Median("priority")
			assert.NoError(t, err)
			assert.Equal(t, Str("medium"), med)
		}()
	}
	wg.Wait()
}
