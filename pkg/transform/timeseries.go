package transform

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leaptable/pkg/aggregate"
	"github.com/leapstack-labs/leaptable/pkg/source"
	"github.com/leapstack-labs/leaptable/pkg/table"
)

// rowsTransformer writes one row per data point.
type rowsTransformer struct{}

func (rowsTransformer) Description() string { return "Time series to rows" }

func (rowsTransformer) Columns(source.ResultSet, Panel) ([]table.Column, error) {
	return []table.Column{table.TimeCol("Time"), table.Col("Metric"), table.Col("Value")}, nil
}

func (t rowsTransformer) Transform(rs source.ResultSet, panel Panel) (*table.Table, error) {
	series, err := timeSeriesRecords(rs)
	if err != nil {
		return nil, err
	}
	cols, _ := t.Columns(rs, panel)
	out := table.New(cols...)

	for _, s := range series {
		target := table.Text(s.Target)
		for _, p := range s.Datapoints {
			out.Rows = append(out.Rows, table.Row{timestamp(p.Timestamp), target, p.Value})
		}
	}
	return out, nil
}

// columnsTransformer pivots series into columns keyed by timestamp.
type columnsTransformer struct{}

func (columnsTransformer) Description() string { return "Time series to columns" }

func (columnsTransformer) Columns(rs source.ResultSet, _ Panel) ([]table.Column, error) {
	series, err := timeSeriesRecords(rs)
	if err != nil {
		return nil, err
	}
	cols, _ := targetColumns(series)
	return cols, nil
}

// targetColumns returns Time plus one column per distinct target, and the
// column index assigned to each series.
func targetColumns(series []*source.TimeSeries) ([]table.Column, []int) {
	cols := []table.Column{table.TimeCol("Time")}
	seen := make(map[string]int, len(series))
	index := make([]int, len(series))
	for i, s := range series {
		col, ok := seen[s.Target]
		if !ok {
			cols = append(cols, table.Col(s.Target))
			col = len(cols) - 1
			seen[s.Target] = col
		}
		index[i] = col
	}
	return cols, index
}

func (columnsTransformer) Transform(rs source.ResultSet, _ Panel) (*table.Table, error) {
	series, err := timeSeriesRecords(rs)
	if err != nil {
		return nil, err
	}
	cols, index := targetColumns(series)
	out := table.New(cols...)

	points := make(map[int64]*table.RowBuilder)
	for i, s := range series {
		for _, p := range s.Datapoints {
			b, ok := points[p.Timestamp]
			if !ok {
				b = table.NewRowBuilder(len(cols))
				b.MustSet(0, timestamp(p.Timestamp))
				points[p.Timestamp] = b
			}
			// A repeated target only fills cells an earlier series left empty.
			if b.Get(index[i]).IsAbsent() {
				b.MustSet(index[i], p.Value)
			}
		}
	}

	times := make([]int64, 0, len(points))
	for ts := range points {
		times = append(times, ts)
	}
	slices.Sort(times)
	for _, ts := range times {
		out.Rows = append(out.Rows, points[ts].Row())
	}
	return out, nil
}

// aggregationsTransformer reduces every series to one row of aggregates.
type aggregationsTransformer struct {
	registry *aggregate.Registry
}

func (aggregationsTransformer) Description() string { return "Time series aggregations" }

// Columns lists the selectable aggregations rather than output columns, so
// an editor can offer them.
func (t aggregationsTransformer) Columns(source.ResultSet, Panel) ([]table.Column, error) {
	descs := t.registry.Descriptors()
	cols := make([]table.Column, len(descs))
	for i, d := range descs {
		cols[i] = table.Column{Text: d.Text, Key: d.Key}
	}
	return cols, nil
}

func (t aggregationsTransformer) Transform(rs source.ResultSet, panel Panel) (*table.Table, error) {
	series, err := timeSeriesRecords(rs)
	if err != nil {
		return nil, err
	}

	cols := make([]table.Column, 0, len(panel.Columns)+1)
	cols = append(cols, table.Col("Metric"))
	reducers := make([]aggregate.Func, len(panel.Columns))
	for i, spec := range panel.Columns {
		fn, err := t.registry.Lookup(spec.Value)
		if err != nil {
			return nil, err
		}
		reducers[i] = fn
		text := spec.Text
		if text == "" {
			text = aggregate.DefaultText(spec.Value)
		}
		cols = append(cols, table.Col(text))
	}

	out := table.New(cols...)
	for _, s := range series {
		values := s.Numbers()
		row := table.NewRow(len(cols))
		row[0] = table.Text(s.Target)
		for i, fn := range reducers {
			v, err := fn(values)
			if err != nil {
				return nil, fmt.Errorf("aggregation %q on %q: %w", panel.Columns[i].Value, s.Target, err)
			}
			row[i+1] = v
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
