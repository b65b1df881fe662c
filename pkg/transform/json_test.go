package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/pkg/source"
	"github.com/leapstack-labs/leaptable/pkg/table"
)

func nestedDocs(t *testing.T) source.ResultSet {
	t.Helper()
	var doc source.Document
	require.NoError(t, json.Unmarshal([]byte(`{"timestamp": "time", "message": "message", "nested": {"level2": "level2-value"}}`), &doc))
	return source.Of(&source.DocCollection{Datapoints: []*source.Document{&doc}})
}

func TestJSONFlattensNestedFields(t *testing.T) {
	panel := Panel{
		Transform: JSON,
		Columns: []ColumnSpec{
			{Text: "Timestamp", Value: "timestamp"},
			{Text: "Message", Value: "message"},
			{Text: "nested.level2", Value: "nested.level2"},
		},
	}

	got, err := newTestEngine(t).Transform(nestedDocs(t), panel)
	require.NoError(t, err)
	assert.Equal(t, []string{"Timestamp", "Message", "nested.level2"}, table.Texts(got.Columns))
	assert.Equal(t, []table.Row{row(t, "time", "message", "level2-value")}, got.Rows)
}

func TestJSONColumnsEnumerateFirstDocument(t *testing.T) {
	e := newTestEngine(t)
	rs := nestedDocs(t)

	cols, err := e.Columns(rs, Panel{Transform: JSON})
	require.NoError(t, err)
	assert.Equal(t, []string{"timestamp", "message", "nested.level2"}, table.Texts(cols))

	got, err := e.Transform(rs, Panel{Transform: JSON})
	require.NoError(t, err)
	assert.Equal(t, []string{"timestamp", "message", "nested.level2"}, table.Texts(got.Columns))
	assert.Equal(t, row(t, "time", "message", "level2-value"), got.Rows[0])
}

func TestJSONMissingAndObjectPaths(t *testing.T) {
	rs := source.Of(
		&source.DocCollection{Datapoints: []*source.Document{
			source.NewDocument(
				source.F("nested", source.NewDocument(source.F("z", 1.0), source.F("a", "x"))),
				source.F("tags", []any{"a", "b"}),
				source.F("gone", nil),
			),
		}},
		&source.DocCollection{Datapoints: []*source.Document{
			source.NewDocument(source.F("other", true)),
		}},
	)
	panel := Panel{
		Transform: JSON,
		Columns: []ColumnSpec{
			{Value: "nested"},
			{Value: "nested.missing"},
			{Value: "tags"},
			{Value: "gone"},
		},
	}

	got, err := newTestEngine(t).Transform(rs, panel)
	require.NoError(t, err)
	assert.Equal(t, []string{"nested", "nested.missing", "tags", "gone"}, table.Texts(got.Columns), "empty text falls back to the path")
	require.Len(t, got.Rows, 2, "collections are concatenated")

	assert.Equal(t, table.Text(`{"z":1,"a":"x"}`), got.Rows[0][0])
	assert.True(t, got.Rows[0][1].IsAbsent())
	assert.Equal(t, table.Strings("a", "b"), got.Rows[0][2])
	assert.True(t, got.Rows[0][3].IsNull())

	for i, cell := range got.Rows[1] {
		assert.True(t, cell.IsAbsent(), "cell %d of a document without the paths", i)
	}
}

func TestJSONRejectsOtherRecords(t *testing.T) {
	_, err := newTestEngine(t).Transform(twoSeries(), Panel{Transform: JSON})
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrMalformedShape)
}
