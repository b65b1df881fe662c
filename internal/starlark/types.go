// Package starlark compiles user-defined aggregation scripts.
//
// A script defines a function `aggregate(values)` that receives the numeric
// values of one series as a list of floats and returns a number, string,
// bool or None. Compiled scripts are registered as aggregate.Func values.
package starlark

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/leaptable/pkg/table"
)

// ValuesToStarlark converts series values to a Starlark list of floats.
func ValuesToStarlark(values []float64) *starlark.List {
	list := make([]starlark.Value, len(values))
	for i, v := range values {
		list[i] = starlark.Float(v)
	}
	return starlark.NewList(list)
}

// ToCell converts an aggregate result into a table cell. None becomes
// Absent; lists and tuples become List values.
func ToCell(v starlark.Value) (table.Value, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return table.Absent(), nil

	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			f, _ := starlark.AsFloat(val)
			return table.Number(f), nil
		}
		return table.Number(float64(i64)), nil

	case starlark.Float:
		return table.Number(float64(val)), nil

	case starlark.String:
		return table.Text(string(val)), nil

	case starlark.Bool:
		return table.Bool(bool(val)), nil

	case starlark.Bytes:
		return table.Text(string(val)), nil

	case starlark.Indexable:
		items := make([]table.Value, val.Len())
		for i := 0; i < val.Len(); i++ {
			cell, err := ToCell(val.Index(i))
			if err != nil {
				return table.Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			if cell.IsAbsent() {
				cell = table.Null()
			}
			items[i] = cell
		}
		return table.List(items...), nil

	default:
		return table.Value{}, fmt.Errorf("unsupported result type %s", v.Type())
	}
}
