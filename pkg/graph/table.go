package graph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrColumnExists is returned by [Table.CreateColumn] when a column with
	// the same name is already defined.
	ErrColumnExists = errors.New("column already exists")

	// ErrUnknownColumn is returned by [Table.Set] when the column is not defined.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrTypeMismatch is returned when a value does not match its column type.
	ErrTypeMismatch = errors.New("value does not match column type")
)

// Column is the definition of a named, typed column.
type Column struct {
	Name string
	Type ColumnType
}

// Table is a set of typed columns over rows identified by int64 keys.
// Cells that were never set, or were set to nil, are null.
//
// The zero value is not usable - use NewTable.
// Table is not safe for concurrent use.
type Table struct {
	columns []Column
	index   map[string]int
	rows    []int64
	cells   map[int64]map[string]any
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		index: make(map[string]int),
		cells: make(map[int64]map[string]any),
	}
}

// CreateColumn defines a new column. It returns ErrColumnExists if the name is taken.
func (t *Table) CreateColumn(name string, typ ColumnType) error {
	if _, ok := t.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrColumnExists, name)
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, Column{Name: name, Type: typ})
	return nil
}

// EnsureColumn defines the column unless a column of the same name exists.
// It fails only when the existing column has a different type.
func (t *Table) EnsureColumn(name string, typ ColumnType) error {
	if c, ok := t.Column(name); ok {
		if c.Type != typ {
			return fmt.Errorf("%w: column %s is %s, not %s", ErrTypeMismatch, name, c.Type, typ)
		}
		return nil
	}
	return t.CreateColumn(name, typ)
}

// Column returns the definition of the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Columns returns the column definitions in creation order.
func (t *Table) Columns() []Column { return slices.Clone(t.columns) }

// DeleteColumn removes a column and all its cells. Missing columns are ignored.
func (t *Table) DeleteColumn(name string) {
	i, ok := t.index[name]
	if !ok {
		return
	}
	t.columns = slices.Delete(t.columns, i, i+1)
	delete(t.index, name)
	for j := i; j < len(t.columns); j++ {
		t.index[t.columns[j].Name] = j
	}
	for _, cells := range t.cells {
		delete(cells, name)
	}
}

// AddRow registers a row key. Adding an existing key is a no-op.
func (t *Table) AddRow(row int64) {
	if _, ok := t.cells[row]; ok {
		return
	}
	t.cells[row] = make(map[string]any)
	t.rows = append(t.rows, row)
}

// HasRow reports whether the row key exists.
func (t *Table) HasRow(row int64) bool {
	_, ok := t.cells[row]
	return ok
}

// DeleteRow removes a row and its cells.
func (t *Table) DeleteRow(row int64) {
	if _, ok := t.cells[row]; !ok {
		return
	}
	delete(t.cells, row)
	t.rows = slices.DeleteFunc(t.rows, func(r int64) bool { return r == row })
}

// Rows returns the row keys in insertion order.
func (t *Table) Rows() []int64 { return slices.Clone(t.rows) }

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.rows) }

// Set stores a value in a cell, creating the row if needed.
// A nil value clears the cell. Values are type-checked against the column.
func (t *Table) Set(row int64, col string, v any) error {
	c, ok := t.Column(col)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, col)
	}
	t.AddRow(row)
	if v == nil {
		delete(t.cells[row], col)
		return nil
	}
	if err := c.Type.Check(v); err != nil {
		return fmt.Errorf("column %s: %w", col, err)
	}
	t.cells[row][col] = cloneValue(v)
	return nil
}

// Get returns the raw cell value, or nil when the cell is null.
func (t *Table) Get(row int64, col string) any {
	if cells, ok := t.cells[row]; ok {
		return cells[col]
	}
	return nil
}

// IsNull reports whether the cell holds no value.
func (t *Table) IsNull(row int64, col string) bool { return t.Get(row, col) == nil }

// String returns a string cell.
func (t *Table) String(row int64, col string) (string, bool) {
	v, ok := t.Get(row, col).(string)
	return v, ok
}

// Float returns a double cell.
func (t *Table) Float(row int64, col string) (float64, bool) {
	v, ok := t.Get(row, col).(float64)
	return v, ok
}

// Int returns an integer cell.
func (t *Table) Int(row int64, col string) (int, bool) {
	v, ok := t.Get(row, col).(int)
	return v, ok
}

// Bool returns a boolean cell.
func (t *Table) Bool(row int64, col string) (bool, bool) {
	v, ok := t.Get(row, col).(bool)
	return v, ok
}

// Ints returns a list-of-integer cell.
func (t *Table) Ints(row int64, col string) ([]int, bool) {
	v, ok := t.Get(row, col).([]int)
	return v, ok
}

// Values returns every cell of a column in row order; null cells are nil.
func (t *Table) Values(col string) []any {
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = t.cells[r][col]
	}
	return out
}

// MatchingRows returns the rows whose cell in col equals v.
// List values never match.
func (t *Table) MatchingRows(col string, v any) []int64 {
	if ct, ok := TypeOf(v); !ok || ct.List {
		return nil
	}
	var out []int64
	for _, r := range t.rows {
		if cell, ok := t.cells[r][col]; ok && cell == v {
			out = append(out, r)
		}
	}
	return out
}

// CopyColumns creates on t every column of src that t lacks, skipping the
// names in skip. Columns that exist on both tables are left untouched.
func (t *Table) CopyColumns(src *Table, skip ...string) {
	for _, c := range src.columns {
		if slices.Contains(skip, c.Name) || t.HasColumn(c.Name) {
			continue
		}
		_ = t.CreateColumn(c.Name, c.Type)
	}
}

// CopyRow copies the cells of srcRow in src to dstRow in t, for every
// column defined on both tables with the same type. Names in skip are ignored.
func (t *Table) CopyRow(src *Table, srcRow, dstRow int64, skip ...string) {
	t.AddRow(dstRow)
	cells := src.cells[srcRow]
	for _, c := range src.columns {
		if slices.Contains(skip, c.Name) {
			continue
		}
		dc, ok := t.Column(c.Name)
		if !ok || dc.Type != c.Type {
			continue
		}
		if v, ok := cells[c.Name]; ok {
			t.cells[dstRow][c.Name] = cloneValue(v)
		} else {
			delete(t.cells[dstRow], c.Name)
		}
	}
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := NewTable()
	c.CopyColumns(t)
	for _, r := range t.rows {
		c.CopyRow(t, r, r)
	}
	return c
}
