package mln

import (
	"github.com/timenexus/timenexus/pkg/graph"
)

// Value lists the element types a layer column can hold.
type Value interface {
	string | float64 | int | bool | []string | []float64 | []int | []bool
}

// AnyColumn is a column of any element type. Concrete columns are
// [*Column] values; use [Values] to read them back with their static type.
type AnyColumn interface {
	ColumnName() string
	ColumnType() graph.ColumnType
	Len() int
	At(i int) any
}

// Column is a named, typed sequence of values. Row i of every column of a
// layer describes the same node or edge.
type Column[E Value] struct {
	Name   string
	Values []E
}

// NewColumn creates a column holding a copy of values.
func NewColumn[E Value](name string, values []E) *Column[E] {
	return &Column[E]{Name: name, Values: append([]E(nil), values...)}
}

// ColumnName implements AnyColumn.
func (c *Column[E]) ColumnName() string { return c.Name }

// ColumnType implements AnyColumn.
func (c *Column[E]) ColumnType() graph.ColumnType {
	var zero E
	t, _ := graph.TypeOf(any(zero))
	return t
}

// Len implements AnyColumn. A nil column has length 0.
func (c *Column[E]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Values)
}

// At implements AnyColumn.
func (c *Column[E]) At(i int) any { return c.Values[i] }

// Values returns the typed values of c when its element type is E.
func Values[E Value](c AnyColumn) ([]E, bool) {
	tc, ok := c.(*Column[E])
	if !ok {
		return nil, false
	}
	return tc.Values, true
}
