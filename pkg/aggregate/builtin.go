package aggregate

import "github.com/leapstack-labs/leaptable/pkg/table"

// Built-in aggregation keys.
const (
	Max     = "max"
	Min     = "min"
	Avg     = "avg"
	Total   = "total"
	Count   = "count"
	First   = "first"
	Current = "current"
	Range   = "range"
	Diff    = "diff"
)

type builtin struct {
	key  string
	text string
	fn   Func
}

// builtins in the order they are offered to editors.
var builtins = []builtin{
	{Avg, "Avg", numeric(avg)},
	{Min, "Min", numeric(minOf)},
	{Max, "Max", numeric(maxOf)},
	{Total, "Total", numeric(total)},
	{Current, "Current", numeric(func(vs []float64) float64 { return vs[len(vs)-1] })},
	{First, "First", numeric(func(vs []float64) float64 { return vs[0] })},
	{Count, "Count", count},
	{Range, "Range", numeric(func(vs []float64) float64 { return maxOf(vs) - minOf(vs) })},
	{Diff, "Diff", numeric(func(vs []float64) float64 { return vs[len(vs)-1] - vs[0] })},
}

// numeric adapts a reducer that needs at least one value. An empty input
// yields Absent.
func numeric(reduce func([]float64) float64) Func {
	return func(values []float64) (table.Value, error) {
		if len(values) == 0 {
			return table.Absent(), nil
		}
		return table.Number(reduce(values)), nil
	}
}

func count(values []float64) (table.Value, error) {
	return table.Number(float64(len(values))), nil
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func total(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum
}

func avg(vs []float64) float64 {
	return total(vs) / float64(len(vs))
}
