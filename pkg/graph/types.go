package graph

import (
	"fmt"
)

// =============================================================================
// Column Types
// =============================================================================

// Type is the element type of a column.
type Type int

const (
	String Type = iota + 1
	Double
	Int
	Bool
)

// String returns the display name of the type, as used in validation messages.
func (t Type) String() string {
	switch t {
	case String:
		return "String"
	case Double:
		return "Double"
	case Int:
		return "Integer"
	case Bool:
		return "Boolean"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType parses the display name of a type.
func ParseType(s string) (Type, error) {
	switch s {
	case "String":
		return String, nil
	case "Double":
		return Double, nil
	case "Integer":
		return Int, nil
	case "Boolean":
		return Bool, nil
	}
	return 0, fmt.Errorf("unknown column type %q", s)
}

// ColumnType describes the values a column holds: scalars of Elem, or lists
// of Elem when List is set.
type ColumnType struct {
	Elem Type
	List bool
}

// Scalar column types.
var (
	StringType = ColumnType{Elem: String}
	DoubleType = ColumnType{Elem: Double}
	IntType    = ColumnType{Elem: Int}
	BoolType   = ColumnType{Elem: Bool}
)

// ListOf returns the list column type of elem.
func ListOf(elem Type) ColumnType { return ColumnType{Elem: elem, List: true} }

// String returns "Double" or "List of Integer" style names.
func (c ColumnType) String() string {
	if c.List {
		return "List of " + c.Elem.String()
	}
	return c.Elem.String()
}

// Check reports whether v is a valid non-null value for the column type.
// Scalars are string, float64, int and bool; lists are slices of those.
func (c ColumnType) Check(v any) error {
	ok := false
	switch v.(type) {
	case string:
		ok = !c.List && c.Elem == String
	case float64:
		ok = !c.List && c.Elem == Double
	case int:
		ok = !c.List && c.Elem == Int
	case bool:
		ok = !c.List && c.Elem == Bool
	case []string:
		ok = c.List && c.Elem == String
	case []float64:
		ok = c.List && c.Elem == Double
	case []int:
		ok = c.List && c.Elem == Int
	case []bool:
		ok = c.List && c.Elem == Bool
	}
	if !ok {
		return fmt.Errorf("%w: %T is not %s", ErrTypeMismatch, v, c)
	}
	return nil
}

// TypeOf infers the column type of a value. It returns false for values
// that are not storable in a table.
func TypeOf(v any) (ColumnType, bool) {
	switch v.(type) {
	case string:
		return StringType, true
	case float64:
		return DoubleType, true
	case int:
		return IntType, true
	case bool:
		return BoolType, true
	case []string:
		return ListOf(String), true
	case []float64:
		return ListOf(Double), true
	case []int:
		return ListOf(Int), true
	case []bool:
		return ListOf(Bool), true
	}
	return ColumnType{}, false
}

// cloneValue copies list values so that tables never share backing arrays.
func cloneValue(v any) any {
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...)
	case []float64:
		return append([]float64(nil), x...)
	case []int:
		return append([]int(nil), x...)
	case []bool:
		return append([]bool(nil), x...)
	}
	return v
}
