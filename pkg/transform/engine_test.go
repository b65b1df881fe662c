package transform

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/internal/testutil"
	"github.com/leapstack-labs/leaptable/pkg/source"
	"github.com/leapstack-labs/leaptable/pkg/table"
)

func TestParseName(t *testing.T) {
	for _, n := range Names() {
		got, err := ParseName(string(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	_, err := ParseName("timeseries_to_everything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedTransform))

	var unsupported *UnsupportedTransformError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "timeseries_to_everything", unsupported.Name)
	assert.Contains(t, unsupported.Available, "json")
}

func TestTransformUnsupportedName(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Transform(twoSeries(), Panel{Transform: "pivot_all"})
	assert.ErrorIs(t, err, ErrUnsupportedTransform)

	_, err = e.Transform(source.ResultSet{}, Panel{Transform: "pivot_all"})
	assert.ErrorIs(t, err, ErrUnsupportedTransform, "name is checked before the empty shortcut")

	_, err = e.Columns(twoSeries(), Panel{Transform: "pivot_all"})
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
}

func TestTransformEmptyResultSet(t *testing.T) {
	for _, n := range Names() {
		t.Run(string(n), func(t *testing.T) {
			got, err := newTestEngine(t).Transform(source.ResultSet{}, Panel{Transform: n, Sort: &SortSpec{Col: 0}})
			require.NoError(t, err)
			assert.Empty(t, got.Columns)
			assert.Empty(t, got.Rows)
		})
	}
}

func TestTransformSortOutOfRangeIsNoop(t *testing.T) {
	got, err := newTestEngine(t).Transform(twoSeries(), Panel{
		Transform: TimeSeriesToRows,
		Sort:      &SortSpec{Col: 7, Desc: true},
	})
	require.NoError(t, err)
	assert.Equal(t, row(t, float64(t0), "series1", 12.12), got.Rows[0])
	for _, c := range got.Columns {
		assert.False(t, c.Sort)
	}
}

func TestTransformSortStability(t *testing.T) {
	rec := tableRecord([]string{"k", "seq"},
		row(t, 2.0, 0.0),
		row(t, 1.0, 1.0),
		row(t, 2.0, 2.0),
		row(t, table.Absent(), 3.0),
		row(t, 1.0, 4.0),
		row(t, 2.0, 5.0),
	)

	tests := []struct {
		name string
		desc bool
		want []float64
	}{
		{name: "ascending", desc: false, want: []float64{1, 4, 0, 2, 5, 3}},
		{name: "descending", desc: true, want: []float64{0, 2, 5, 1, 4, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestEngine(t).Transform(source.Of(rec), Panel{
				Transform: Table,
				Sort:      &SortSpec{Col: 0, Desc: tt.desc},
			})
			require.NoError(t, err)

			seq := make([]float64, len(got.Rows))
			for i, r := range got.Rows {
				seq[i], _ = r[1].Float()
			}
			assert.Equal(t, tt.want, seq)
		})
	}
}

func TestEveryTransformKeepsRowWidth(t *testing.T) {
	inputs := map[Name]struct {
		rs    source.ResultSet
		panel Panel
	}{
		TimeSeriesToRows:       {rs: twoSeries()},
		TimeSeriesToColumns:    {rs: twoSeries()},
		TimeSeriesAggregations: {rs: twoSeries(), panel: Panel{Columns: []ColumnSpec{{Value: "avg"}, {Value: "range"}}}},
		Table:                  {rs: source.Of(tableRecord([]string{"a", "b"}, row(t, 1.0, 2.0)))},
		MultiQueryTable: {rs: source.Of(
			tableRecord([]string{"Time", "x", "Value"}, row(t, 1.0, "p", 2.0)),
			tableRecord([]string{"Time", "y", "Value"}, row(t, 1.0, "q", 3.0), row(t, 2.0, "q", 4.0)),
		)},
		JSON:        {rs: nestedDocs(t)},
		Annotations: {rs: source.OfAnnotations(source.Annotation{Min: 1, Title: "a"})},
	}
	require.Len(t, inputs, len(Names()))

	for name, in := range inputs {
		t.Run(string(name), func(t *testing.T) {
			panel := in.panel
			panel.Transform = name
			got, err := newTestEngine(t).Transform(in.rs, panel)
			require.NoError(t, err)
			require.NoError(t, got.Validate())
			for i, r := range got.Rows {
				assert.Len(t, r, got.Width(), "row %d", i)
			}
		})
	}
}

func TestTransformDataToTable(t *testing.T) {
	got, err := TransformDataToTable(twoSeries(), Panel{Transform: TimeSeriesToColumns})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Width())
}

func TestDescriptors(t *testing.T) {
	descs := Descriptors()
	require.Len(t, descs, len(Names()))
	for _, d := range descs {
		assert.NotEmpty(t, d.Description, "%s needs a description", d.Name)
	}
	assert.Equal(t, Descriptor{Name: TimeSeriesToRows, Description: "Time series to rows"}, descs[0])
}

func TestConcurrentTransforms(t *testing.T) {
	e := newTestEngine(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.Transform(twoSeries(), Panel{
				Transform: TimeSeriesAggregations,
				Columns:   []ColumnSpec{{Value: "max"}},
				Sort:      &SortSpec{Col: 1, Desc: true},
			})
			assert.NoError(t, err)
			assert.Equal(t, 2, got.Len())
		}()
	}
	wg.Wait()
}

func TestTransformLogsSummary(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	e := New(Config{Logger: logger})

	_, err := e.Transform(twoSeries(), Panel{Transform: TimeSeriesToRows, Sort: &SortSpec{Col: 9}})
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, "sort column out of range")
	assert.Contains(t, out, "transform=timeseries_to_rows")
	assert.Contains(t, out, "rows=3")
	assert.Contains(t, out, "columns=3")
}
