// Package stats computes descriptive and relational statistics over an
// immutable, column-oriented dataset.
//
// An Engine is built once from a validated Dataset and an ordinal order table
// and then queried. It holds no mutable state, so any number of goroutines may
// query the same Engine concurrently.
package stats

// Engine answers statistical queries over one dataset.
type Engine struct {
	data   Dataset
	rows   int
	orders Orders
	ranks  map[string]map[string]int
}

// New validates ds and returns an engine over it. The dataset is held by
// reference and must not be modified afterwards. orders may be nil.
func New(ds Dataset, orders Orders) (*Engine, error) {
	if ds == nil {
		ds = Dataset{}
	}
	rows, err := ds.validate()
	if err != nil {
		return nil, err
	}
	ranks, err := orders.compile()
	if err != nil {
		return nil, err
	}
	return &Engine{data: ds, rows: rows, orders: orders.clone(), ranks: ranks}, nil
}

// Rows returns the number of rows shared by every column.
func (e *Engine) Rows() int { return e.rows }

// Columns returns the column names in lexical order.
func (e *Engine) Columns() []string { return e.data.names() }

// Column looks up a column by name.
func (e *Engine) Column(name string) (Column, error) {
	c, ok := e.data[name]
	if !ok {
		return Column{}, &UnknownColumnError{Column: name}
	}
	return c, nil
}

// IsNumeric reports whether the named column exists, is non-empty and numeric.
func (e *Engine) IsNumeric(name string) bool {
	c, ok := e.data[name]
	return ok && c.IsNumeric()
}

// IsOrdinal reports whether the column has a ranking in the order table.
func (e *Engine) IsOrdinal(name string) bool {
	_, ok := e.ranks[name]
	return ok
}

// Levels returns a copy of the ranking configured for an ordinal column.
func (e *Engine) Levels(name string) []string {
	lv, ok := e.orders[name]
	if !ok {
		return nil
	}
	return append([]string(nil), lv...)
}

// numbers resolves a column that numeric operations may use. An empty column of
// any kind yields an empty slice so callers can apply their empty-input result.
func (e *Engine) numbers(name string) ([]float64, error) {
	c, err := e.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, nil
	}
	xs, ok := c.Floats()
	if !ok {
		return nil, &NotNumericError{Column: name, Kind: c.Kind()}
	}
	return xs, nil
}
