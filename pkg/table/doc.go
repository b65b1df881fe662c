// Package table defines the normalized table every transform produces.
//
// This package contains:
//   - Value, the discriminated cell type (absent, null, number, text, bool, list)
//   - Column, the positional column descriptor
//   - Row and RowBuilder, fixed-width cell sequences
//   - Table, with its row-width invariant and stable sort
//
// The package imports only the standard library so that every other
// package can depend on it.
package table
