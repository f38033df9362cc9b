package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the element type of a column.
type Kind uint8

const (
	// KindUntyped is only valid for a column with no elements.
	KindUntyped Kind = iota
	KindNumeric
	KindText
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return "untyped"
	}
}

// ParseKind maps a user supplied kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric", "number", "num", "float", "int":
		return KindNumeric, nil
	case "text", "string", "str", "categorical":
		return KindText, nil
	case "bool", "boolean":
		return KindBool, nil
	}
	return KindUntyped, &InvalidArgumentError{Arg: "kind", Reason: fmt.Sprintf("unknown column kind %q (use numeric|text|bool)", s)}
}

// Value is a single cell. It is comparable and can be used as a map key.
type Value struct {
	kind Kind
	num  float64
	text string
	flag bool
}

// Num returns a numeric value.
func Num(f float64) Value { return Value{kind: KindNumeric, num: f} }

// Str returns a text value.
func Str(s string) Value { return Value{kind: KindText, text: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

func (v Value) Kind() Kind { return v.kind }

// Float reports the numeric payload; ok is false for non-numeric values.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumeric {
		return 0, false
	}
	return v.num, true
}

func (v Value) String() string {
	switch v.kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// MarshalText lets values serve as JSON object keys.
func (v Value) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// MarshalJSON keeps numbers and booleans typed in JSON output.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumeric:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.flag)
	default:
		return json.Marshal(v.text)
	}
}

// less is the natural ordering within a single kind. Mixed kinds order by kind.
func (v Value) less(o Value) bool {
	if v.kind != o.kind {
		return v.kind < o.kind
	}
	switch v.kind {
	case KindNumeric:
		return v.num < o.num
	case KindText:
		return v.text < o.text
	case KindBool:
		return !v.flag && o.flag
	}
	return false
}

// Column is a homogeneous, ordered sequence of values. Exactly one of the
// backing slices is used, selected by kind.
type Column struct {
	kind  Kind
	nums  []float64
	texts []string
	flags []bool
}

// Numbers builds a numeric column. The slice is held by reference.
func Numbers(vals []float64) Column { return Column{kind: KindNumeric, nums: vals} }

// Ints builds a numeric column from integers.
func Ints(vals []int) Column {
	nums := make([]float64, len(vals))
	for i, v := range vals {
		nums[i] = float64(v)
	}
	return Column{kind: KindNumeric, nums: nums}
}

// Texts builds a text column. The slice is held by reference.
func Texts(vals []string) Column { return Column{kind: KindText, texts: vals} }

// Bools builds a boolean column. The slice is held by reference.
func Bools(vals []bool) Column { return Column{kind: KindBool, flags: vals} }

// ColumnOf inspects untyped values and builds a column. The kind comes from the
// first element; any element of another kind is a schema violation. Integer and
// floating point elements are both numeric.
func ColumnOf(vals []any) (Column, error) {
	if len(vals) == 0 {
		return Column{}, nil
	}
	kind, err := kindOf(vals[0])
	if err != nil {
		return Column{}, &SchemaError{Reason: fmt.Sprintf("element 0: %v", err)}
	}
	c := Column{kind: kind}
	for i, raw := range vals {
		k, err := kindOf(raw)
		if err != nil {
			return Column{}, &SchemaError{Reason: fmt.Sprintf("element %d: %v", i, err)}
		}
		if k != kind {
			return Column{}, &SchemaError{Reason: fmt.Sprintf("element %d is %s, column is %s", i, k, kind)}
		}
		switch kind {
		case KindNumeric:
			c.nums = append(c.nums, toFloat(raw))
		case KindText:
			c.texts = append(c.texts, raw.(string))
		case KindBool:
			c.flags = append(c.flags, raw.(bool))
		}
	}
	return c, nil
}

func kindOf(v any) (Kind, error) {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindNumeric, nil
	case string:
		return KindText, nil
	case bool:
		return KindBool, nil
	case nil:
		return KindUntyped, fmt.Errorf("nil value")
	}
	return KindUntyped, fmt.Errorf("unsupported element type %T", v)
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	}
	return math.NaN()
}

func (c Column) Kind() Kind { return c.kind }

func (c Column) Len() int {
	switch c.kind {
	case KindNumeric:
		return len(c.nums)
	case KindText:
		return len(c.texts)
	case KindBool:
		return len(c.flags)
	}
	return 0
}

// IsNumeric is true for a non-empty numeric column.
func (c Column) IsNumeric() bool { return c.kind == KindNumeric && len(c.nums) > 0 }

// Value returns the i-th element.
func (c Column) Value(i int) Value {
	switch c.kind {
	case KindNumeric:
		return Num(c.nums[i])
	case KindText:
		return Str(c.texts[i])
	case KindBool:
		return Bool(c.flags[i])
	}
	panic(fmt.Sprintf("stats: index %d out of range for empty column", i))
}

// Values returns a fresh slice of all elements.
func (c Column) Values() []Value {
	out := make([]Value, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

// Floats returns the numeric backing slice. Callers must not modify it.
func (c Column) Floats() ([]float64, bool) {
	if c.kind != KindNumeric {
		return nil, false
	}
	return c.nums, true
}

// Parse converts text into a value of the column's kind.
func (c Column) Parse(s string) (Value, error) {
	switch c.kind {
	case KindNumeric:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, &InvalidArgumentError{Arg: "value", Reason: fmt.Sprintf("%q is not a number", s)}
		}
		return Num(f), nil
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return Value{}, &InvalidArgumentError{Arg: "value", Reason: fmt.Sprintf("%q is not a boolean", s)}
	default:
		return Str(s), nil
	}
}
