package stats

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrSchema          = errors.New("schema error")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrNotNumeric      = errors.New("not numeric")
	ErrInvalidArgument = errors.New("invalid argument")
)

// SchemaError reports a malformed dataset: wrong shape, a non-sequence value or a
// column mixing element types.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("schema error: %s", e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// UnknownColumnError indicates a column name absent from the dataset.
type UnknownColumnError struct{ Column string }

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Column)
}

func (e *UnknownColumnError) Is(target error) bool { return target == ErrUnknownColumn }

// NotNumericError indicates a numeric operation on a non-numeric column.
type NotNumericError struct {
	Column string
	Kind   Kind
}

func (e *NotNumericError) Error() string {
	return fmt.Sprintf("column %q is %s, not numeric", e.Column, e.Kind)
}

func (e *NotNumericError) Is(target error) bool { return target == ErrNotNumeric }

// InvalidArgumentError indicates a bad operation argument, e.g. a non-positive bin count.
type InvalidArgumentError struct {
	Arg    string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Arg, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }
