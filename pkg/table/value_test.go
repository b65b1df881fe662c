package table

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsentIsDistinctFromZeroValues(t *testing.T) {
	absent := Absent()

	assert.True(t, absent.IsAbsent())
	assert.False(t, absent.Equal(Number(0)), "absent must not equal 0")
	assert.False(t, absent.Equal(Text("")), "absent must not equal empty string")
	assert.False(t, absent.Equal(Bool(false)), "absent must not equal false")
	assert.False(t, absent.Equal(Null()), "absent must not equal null")
	assert.True(t, absent.Equal(Value{}), "zero Value is absent")
}

func TestValue_EqualNoCoercion(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same number", Number(42), Number(42), true},
		{"number vs text", Number(1), Text("1"), false},
		{"bool vs number", Bool(true), Number(1), false},
		{"same text", Text("a"), Text("a"), true},
		{"different text", Text("a"), Text("b"), false},
		{"same list", Strings("x", "y"), Strings("x", "y"), true},
		{"list length", Strings("x"), Strings("x", "y"), false},
		{"null vs null", Null(), Null(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestValue_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"numbers ascending", Number(1), Number(2), -1},
		{"numbers equal", Number(2), Number(2), 0},
		{"text lexicographic", Text("b"), Text("a"), 1},
		{"number before text", Number(100), Text("a"), -1},
		{"text before bool", Text("z"), Bool(false), -1},
		{"false before true", Bool(false), Bool(true), -1},
		{"list element-wise", Strings("a", "b"), Strings("a", "c"), -1},
		{"shorter list first", Strings("a"), Strings("a", "b"), -1},
		{"null after list", Null(), Strings("a"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}

func TestFromGo(t *testing.T) {
	v, err := FromGo([]any{"a", 1.5, nil, true})
	require.NoError(t, err)
	require.Equal(t, KindList, v.Kind())

	items, ok := v.Items()
	require.True(t, ok)
	assert.Equal(t, Text("a"), items[0])
	assert.Equal(t, Number(1.5), items[1])
	assert.True(t, items[2].IsNull())
	assert.Equal(t, Bool(true), items[3])

	n, err := FromGo(json.Number("12"))
	require.NoError(t, err)
	f, ok := n.Float()
	require.True(t, ok)
	assert.InDelta(t, 12.0, f, 0)

	_, err = FromGo(struct{}{})
	assert.Error(t, err)
}

func TestValue_JSONRoundTripOfObjectKeepsKeyOrder(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"z": 1, "a": 2}`), &v))

	s, ok := v.Str()
	require.True(t, ok)
	assert.Equal(t, `{"z":1,"a":2}`, s)
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "", Absent().String())
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, "12.12", Number(12.12).String())
	assert.Equal(t, "1000", Number(1000).String())
	assert.Equal(t, "tags, asd", Strings("tags", "asd").String())
}
