package table

import (
	"errors"
	"fmt"
	"slices"
)

// ErrRowWidth is returned when a row does not have one cell per column.
var ErrRowWidth = errors.New("row width does not match column count")

// Table is the normalized output of every transform.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// New returns an empty table with the given columns.
func New(columns ...Column) *Table {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols, Rows: []Row{}}
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.Columns) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// AddColumn appends a column and returns its index. Existing rows are
// widened with absent cells so the width invariant keeps holding.
func (t *Table) AddColumn(c Column) int {
	t.Columns = append(t.Columns, c)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], Absent())
	}
	return len(t.Columns) - 1
}

// AppendRow adds r after checking it has one cell per column.
func (t *Table) AppendRow(r Row) error {
	if len(r) != len(t.Columns) {
		return fmt.Errorf("%w: got %d cells, want %d", ErrRowWidth, len(r), len(t.Columns))
	}
	t.Rows = append(t.Rows, r)
	return nil
}

// Validate checks the row-width invariant for every row.
func (t *Table) Validate() error {
	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return fmt.Errorf("row %d: %w: got %d cells, want %d", i, ErrRowWidth, len(r), len(t.Columns))
		}
	}
	return nil
}

// Cell returns the value at (row, col), absent when out of range.
func (t *Table) Cell(row, col int) Value {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return Absent()
	}
	return t.Rows[row][col]
}

// SortByColumn stably reorders rows by the value in column col, descending
// when desc is set. Absent cells always sort last, whatever the direction.
// It reports false and leaves the table untouched when col is out of range.
func (t *Table) SortByColumn(col int, desc bool) bool {
	if col < 0 || col >= len(t.Columns) {
		return false
	}

	slices.SortStableFunc(t.Rows, func(a, b Row) int {
		return compareForSort(a[col], b[col], desc)
	})

	for i := range t.Columns {
		t.Columns[i].Sort = false
		t.Columns[i].Desc = false
	}
	t.Columns[col].Sort = true
	t.Columns[col].Desc = desc
	return true
}

func compareForSort(a, b Value, desc bool) int {
	switch {
	case a.IsAbsent() && b.IsAbsent():
		return 0
	case a.IsAbsent():
		return 1
	case b.IsAbsent():
		return -1
	}
	c := a.Compare(b)
	if desc {
		return -c
	}
	return c
}
