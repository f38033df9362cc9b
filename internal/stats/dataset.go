package stats

import (
	"fmt"
	"sort"
)

// Dataset maps column names to columns. All columns share one length.
type Dataset map[string]Column

// FromMap builds a Dataset from untyped input such as decoded JSON. The input must be
// a map keyed by column name whose values are sequences of a single element type.
func FromMap(raw any) (Dataset, error) {
	ds := Dataset{}
	switch m := raw.(type) {
	case Dataset:
		return m, nil
	case map[string]Column:
		return Dataset(m), nil
	case map[string][]any:
		for name, vals := range m {
			c, err := ColumnOf(vals)
			if err != nil {
				return nil, withColumn(err, name)
			}
			ds[name] = c
		}
		return ds, nil
	case map[string]any:
		for name, v := range m {
			c, err := columnFrom(v)
			if err != nil {
				return nil, withColumn(err, name)
			}
			ds[name] = c
		}
		return ds, nil
	}
	return nil, &SchemaError{Reason: fmt.Sprintf("dataset must be a map of column name to values, got %T", raw)}
}

func columnFrom(v any) (Column, error) {
	switch x := v.(type) {
	case Column:
		return x, nil
	case []any:
		return ColumnOf(x)
	case []float64:
		return Numbers(x), nil
	case []int:
		return Ints(x), nil
	case []string:
		return Texts(x), nil
	case []bool:
		return Bools(x), nil
	}
	return Column{}, &SchemaError{Reason: fmt.Sprintf("value is %T, not a sequence", v)}
}

func withColumn(err error, name string) error {
	if se, ok := err.(*SchemaError); ok && se.Column == "" {
		return &SchemaError{Column: name, Reason: se.Reason}
	}
	return err
}

// validate enforces the rectangular shape. Column homogeneity holds by construction.
func (ds Dataset) validate() (rows int, err error) {
	names := ds.names()
	for i, name := range names {
		c := ds[name]
		if c.kind == KindUntyped && c.Len() > 0 {
			return 0, &SchemaError{Column: name, Reason: "column has no element type"}
		}
		if i == 0 {
			rows = c.Len()
			continue
		}
		if c.Len() != rows {
			return 0, &SchemaError{Column: name, Reason: fmt.Sprintf("has %d values, column %q has %d", c.Len(), names[0], rows)}
		}
	}
	return rows, nil
}

func (ds Dataset) names() []string {
	names := make([]string, 0, len(ds))
	for name := range ds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
