// Package dataset reads tabular files into typed stats.Dataset values.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/tabstat/internal/logging"
	"github.com/KaramelBytes/tabstat/internal/stats"
)

// Policy decides what happens to a cell that does not parse as its column's kind.
type Policy int

const (
	// PolicyDefault substitutes Options.NumericDefault (or false) and records a warning.
	PolicyDefault Policy = iota
	// PolicyStrict fails the load with a *CoerceError.
	PolicyStrict
)

// ParsePolicy maps "default" or "strict" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "default":
		return PolicyDefault, nil
	case "strict":
		return PolicyStrict, nil
	}
	return PolicyDefault, fmt.Errorf("unknown coerce policy %q (use default|strict)", s)
}

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "default"
}

// Options controls ingestion.
type Options struct {
	// Delimiter for CSV. If 0, ',' is used, or '\t' for .tsv files.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Sheet selects an XLSX sheet by name; SheetIndex (1-based) is used when Sheet is empty.
	Sheet      string
	SheetIndex int
	// Schema forces the kind of the named columns instead of inferring it.
	Schema map[string]stats.Kind
	Policy Policy
	// NumericDefault replaces missing or unparseable numeric cells under PolicyDefault.
	NumericDefault float64
}

// Table is a loaded file: the typed dataset plus what was learned while reading it.
type Table struct {
	Name     string
	Columns  []string // header order
	Data     stats.Dataset
	Rows     int
	Missing  map[string]int
	Warnings []string
}

// Kinds returns the kind of every column in header order.
func (t *Table) Kinds() []stats.Kind {
	out := make([]stats.Kind, len(t.Columns))
	for i, name := range t.Columns {
		out[i] = t.Data[name].Kind()
	}
	return out
}

// CoerceError reports a cell that could not be converted under PolicyStrict.
type CoerceError struct {
	Row    int // 1-based data row
	Column string
	Kind   stats.Kind
	Value  string
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("row %d, column %q: cannot read %q as %s", e.Row, e.Column, e.Value, e.Kind)
}

// ErrUnsupported indicates a file format no loader handles.
var ErrUnsupported = errors.New("unsupported dataset format")

// Loader reads one file format.
type Loader interface {
	CanLoad(path string) bool
	Load(ctx context.Context, path string, opt Options) (*Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// Load selects a loader by file name and reads the file.
func Load(ctx context.Context, path string, opt Options) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("source not found: %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}
	for _, l := range registry {
		if l.CanLoad(path) {
			logging.Debugf("loading %s with %T", path, l)
			return l.Load(ctx, path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}
