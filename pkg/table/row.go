package table

import "fmt"

// Row is an ordered sequence of cells, one per table column.
type Row []Value

// NewRow returns a row of width cells, all absent.
func NewRow(width int) Row {
	return make(Row, width)
}

// Clone returns a copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// RowBuilder accumulates one fixed-width row. Cells never set stay absent.
type RowBuilder struct {
	cells Row
	set   int
}

// NewRowBuilder returns a builder for a row of the given width.
func NewRowBuilder(width int) *RowBuilder {
	return &RowBuilder{cells: NewRow(width)}
}

// Width returns the fixed row width.
func (b *RowBuilder) Width() int { return len(b.cells) }

// Set stores v at column i. Setting an absent value is a no-op apart from
// clearing any earlier value.
func (b *RowBuilder) Set(i int, v Value) error {
	if i < 0 || i >= len(b.cells) {
		return fmt.Errorf("column index %d out of range for row width %d", i, len(b.cells))
	}
	if b.cells[i].IsAbsent() && !v.IsAbsent() {
		b.set++
	} else if !b.cells[i].IsAbsent() && v.IsAbsent() {
		b.set--
	}
	b.cells[i] = v
	return nil
}

// MustSet is Set for indexes known to be in range.
func (b *RowBuilder) MustSet(i int, v Value) *RowBuilder {
	if err := b.Set(i, v); err != nil {
		panic(err)
	}
	return b
}

// Get returns the value at column i, absent when unset or out of range.
func (b *RowBuilder) Get(i int) Value {
	if i < 0 || i >= len(b.cells) {
		return Absent()
	}
	return b.cells[i]
}

// Filled returns how many cells hold a non-absent value.
func (b *RowBuilder) Filled() int { return b.set }

// Row returns a copy of the accumulated row.
func (b *RowBuilder) Row() Row {
	return b.cells.Clone()
}
