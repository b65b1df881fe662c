package source

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/pkg/table"
)

func TestDecodeMixedRecords(t *testing.T) {
	f, err := os.Open("testdata/mixed.json")
	require.NoError(t, err)
	defer f.Close()

	rs, err := Decode(f)
	require.NoError(t, err)
	require.Len(t, rs.Records, 3)
	assert.Nil(t, rs.Annotations)

	series, ok := rs.Records[0].(*TimeSeries)
	require.True(t, ok, "record 0 should be a time series")
	assert.Equal(t, "series1", series.Target)
	require.Len(t, series.Datapoints, 2)
	assert.Equal(t, P(12.12, 1700000000000), series.Datapoints[0])
	assert.True(t, series.Datapoints[1].Value.IsNull())
	assert.Equal(t, []float64{12.12}, series.Numbers())

	tbl, ok := rs.Records[1].(*TableRecord)
	require.True(t, ok, "record 1 should be a table")
	assert.Equal(t, []string{"Time", "Label Key 1", "Value"}, table.Texts(tbl.Columns))
	assert.Equal(t, table.ColumnTypeTime, tbl.Columns[0].Type)
	assert.Equal(t, 1, tbl.ColumnIndex("Label Key 1"))
	assert.Equal(t, -1, tbl.ColumnIndex("nope"))
	require.Len(t, tbl.Rows, 1)
	assert.True(t, table.Text("Label Value 1").Equal(tbl.Rows[0][1]))

	docs, ok := rs.Records[2].(*DocCollection)
	require.True(t, ok, "record 2 should be a doc collection")
	require.Len(t, docs.Datapoints, 1)
	assert.Equal(t, []string{"timestamp", "message", "nested.level2"}, docs.Datapoints[0].LeafPaths())
}

func TestDecodeAnnotations(t *testing.T) {
	data, err := os.ReadFile("testdata/annotations.json")
	require.NoError(t, err)

	rs, err := DecodeBytes(data)
	require.NoError(t, err)
	assert.Empty(t, rs.Records)
	require.NotNil(t, rs.Annotations)
	assert.Equal(t, []Annotation{{
		Min:   1700000000000,
		Title: "deploy",
		Text:  "v1.2.0 rolled out",
		Tags:  []string{"release", "prod"},
	}}, rs.Annotations.Annotations)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantIndex int
		wantText  string
	}{
		{name: "empty", input: "  ", wantIndex: -1, wantText: "empty input"},
		{name: "scalar", input: `42`, wantIndex: -1, wantText: "expected array"},
		{name: "series without target", input: `[{"datapoints": []}]`, wantIndex: 0, wantText: "missing target"},
		{name: "series without datapoints", input: `[{"target": "a"}]`, wantIndex: 0, wantText: "missing datapoints"},
		{name: "short point", input: `[{"target": "a", "datapoints": [[1]]}]`, wantIndex: 0, wantText: "datapoint 0"},
		{name: "fractional timestamp", input: `[{"target": "a", "datapoints": [[1, 1.5]]}]`, wantIndex: 0, wantText: "not an integer"},
		{name: "text value", input: `[{"target": "a", "datapoints": [["x", 1]]}]`, wantIndex: 0, wantText: "value"},
		{name: "table without rows", input: `[{"type": "table", "columns": [{"text": "A"}]}]`, wantIndex: 0, wantText: "missing rows"},
		{name: "ragged table", input: `[{"type": "table", "columns": [{"text": "A"}], "rows": [[1, 2]]}]`, wantIndex: 0, wantText: "row 0 has 2 cells"},
		{name: "docs without datapoints", input: `[{"target": "a", "datapoints": []}, {"type": "docs"}]`, wantIndex: 1, wantText: "missing datapoints"},
		{name: "doc not an object", input: `[{"type": "docs", "datapoints": [[1]]}]`, wantIndex: 0, wantText: "datapoint 0"},
		{name: "object without annotations", input: `{"foo": []}`, wantIndex: -1, wantText: "missing annotations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedShape), "want ErrMalformedShape, got %v", err)

			var shapeErr *MalformedShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, tt.wantIndex, shapeErr.Index)
			assert.Contains(t, shapeErr.Reason, tt.wantText)
		})
	}
}

func TestDecodeFloatSpelledTimestamp(t *testing.T) {
	rs, err := DecodeBytes([]byte(`[{"target": "a", "datapoints": [[1, 1.7e12]]}]`))
	require.NoError(t, err)
	series := rs.Records[0].(*TimeSeries)
	assert.Equal(t, int64(1700000000000), series.Datapoints[0].Timestamp)
}

func TestDecodeTimestampRange(t *testing.T) {
	tests := []struct {
		name    string
		ts      string
		want    int64
		wantErr string
	}{
		{name: "max int64", ts: "9223372036854775807", want: math.MaxInt64},
		{name: "min int64", ts: "-9223372036854775808", want: math.MinInt64},
		{name: "two to the 63", ts: "9223372036854775808", wantErr: "out of range"},
		{name: "float two to the 63", ts: "9.223372036854775808e18", wantErr: "out of range"},
		{name: "below min", ts: "-1e19", wantErr: "out of range"},
		{name: "fraction", ts: "1.5", wantErr: "not an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := DecodeBytes([]byte(`[{"target": "a", "datapoints": [[1, ` + tt.ts + `]]}]`))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedShape)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rs.Records[0].(*TimeSeries).Datapoints[0].Timestamp)
		})
	}
}

func TestResultSetEmpty(t *testing.T) {
	assert.True(t, ResultSet{}.Empty())
	assert.False(t, Of(&TimeSeries{Target: "a"}).Empty())
	assert.False(t, OfAnnotations().Empty())
}

func TestMalformedShapeErrorMessage(t *testing.T) {
	err := Malformed(KindTable, 2, "row %d short", 1)
	assert.Equal(t, "malformed source shape: record 2 (table): row 1 short", err.Error())
	assert.Equal(t, "malformed source shape: oops", Malformed("", -1, "oops").Error())
}
