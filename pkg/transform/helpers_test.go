package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/internal/testutil"
	"github.com/leapstack-labs/leaptable/pkg/source"
	"github.com/leapstack-labs/leaptable/pkg/table"
)

const t0 int64 = 1700000000000

// row builds an expected row; table.Value cells pass through unchanged.
func row(t *testing.T, cells ...any) table.Row {
	t.Helper()
	out := make(table.Row, len(cells))
	for i, c := range cells {
		v, err := table.FromGo(c)
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(Config{Logger: testutil.NewTestLogger(t)})
}

func twoSeries() source.ResultSet {
	return source.Of(
		&source.TimeSeries{Target: "series1", Datapoints: []source.Point{source.P(12.12, t0), source.P(14.44, t0+1)}},
		&source.TimeSeries{Target: "series2", Datapoints: []source.Point{source.P(16.12, t0)}},
	)
}

func tableRecord(cols []string, rows ...table.Row) *source.TableRecord {
	rec := &source.TableRecord{Rows: rows}
	for _, c := range cols {
		rec.Columns = append(rec.Columns, table.Col(c))
	}
	return rec
}
