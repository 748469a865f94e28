package table

import (
	"fmt"
	"slices"

	"github.com/dsa-lake/data-lander/lander_error"
)

// Table is an in-memory record set: an ordered list of named columns and rows of string
// values. Every row has exactly len(Columns) values.
// A Table with columns and no rows is a valid empty table.
type Table struct {
	Columns []string
	Rows    [][]string
}

func New(columns []string) *Table {
	return &Table{
		Columns: slices.Clone(columns),
	}
}

func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnIndex returns the index of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Append adds a row; the row must match the table width
func (t *Table) Append(row []string) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("expected %d columns, got %d", len(t.Columns), len(row))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// SameSchema returns true if both tables have identical column names in identical order
func (t *Table) SameSchema(other *Table) bool {
	return slices.Equal(t.Columns, other.Columns)
}

// Select returns a new table holding the rows for which keep returns true, in order.
// Row slices are shared with the receiver.
func (t *Table) Select(keep func(row []string) bool) *Table {
	res := New(t.Columns)
	for _, row := range t.Rows {
		if keep(row) {
			res.Rows = append(res.Rows, row)
		}
	}
	return res
}

// Clone returns a copy of the table which shares no row slices with the receiver
func (t *Table) Clone() *Table {
	res := New(t.Columns)
	res.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		res.Rows[i] = slices.Clone(row)
	}
	return res
}

// DistinctValues returns the distinct values of column idx in first-seen order
func (t *Table) DistinctValues(idx int) []string {
	seen := make(map[string]struct{})
	var res []string
	for _, row := range t.Rows {
		v := row[idx]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return res
}

// Concat appends the rows of all tables, in argument order, into a new table.
// All tables must have the same schema as the first one.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to concatenate")
	}
	total := 0
	for i, t := range tables {
		if !t.SameSchema(tables[0]) {
			return nil, fmt.Errorf("table %d has columns %v, expected %v: %w", i, t.Columns, tables[0].Columns, lander_error.ErrSchemaMismatch)
		}
		total += len(t.Rows)
	}

	res := New(tables[0].Columns)
	res.Rows = make([][]string, 0, total)
	for _, t := range tables {
		for _, row := range t.Rows {
			res.Rows = append(res.Rows, slices.Clone(row))
		}
	}
	return res, nil
}
