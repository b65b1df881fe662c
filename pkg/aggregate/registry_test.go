package aggregate

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/pkg/table"
)

func TestBuiltins(t *testing.T) {
	r := NewRegistry()
	values := []float64{12.12, 14.44, 10}

	tests := []struct {
		key  string
		want float64
	}{
		{Max, 14.44},
		{Min, 10},
		{Total, 36.56},
		{Avg, 36.56 / 3},
		{Count, 3},
		{First, 12.12},
		{Current, 10},
		{Range, 4.44},
		{Diff, 10 - 12.12},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := r.Apply(tt.key, values)
			require.NoError(t, err)
			f, ok := got.Float()
			require.True(t, ok, "%s should produce a number", tt.key)
			assert.InDelta(t, tt.want, f, 1e-9)
		})
	}
}

func TestBuiltinsOnEmptySeries(t *testing.T) {
	r := NewRegistry()
	for _, d := range r.Descriptors() {
		t.Run(d.Key, func(t *testing.T) {
			got, err := r.Apply(d.Key, nil)
			require.NoError(t, err)
			if d.Key == Count {
				assert.True(t, table.Number(0).Equal(got))
				return
			}
			assert.True(t, got.IsAbsent(), "%s over no values should be absent", d.Key)
		})
	}
}

func TestUnknownAggregation(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("median")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAggregation))

	var unknown *UnknownAggregationError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "median", unknown.Key)
	assert.Contains(t, unknown.Available, Max)
	assert.Contains(t, err.Error(), `"median"`)
}

func TestRegisterCustom(t *testing.T) {
	r := NewRegistry()
	r.Register("p50", "", func(values []float64) (table.Value, error) {
		return table.Number(math.Floor(float64(len(values)) / 2)), nil
	})

	assert.True(t, r.Has("p50"))
	descs := r.Descriptors()
	assert.Equal(t, Descriptor{Key: "p50", Text: "P50"}, descs[len(descs)-1])

	r.Register(Max, "Peak", maxFunc(t, r))
	assert.Equal(t, Descriptor{Key: Max, Text: "Peak"}, r.Descriptors()[2], "replacing keeps position")
}

func maxFunc(t *testing.T, r *Registry) Func {
	t.Helper()
	fn, err := r.Lookup(Max)
	require.NoError(t, err)
	return fn
}

func TestApplyWrapsReducerError(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	r.Register("bad", "Bad", func([]float64) (table.Value, error) { return table.Value{}, boom })

	_, err := r.Apply("bad", []float64{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `aggregation "bad"`)
}

func TestDefaultText(t *testing.T) {
	assert.Equal(t, "Max", DefaultText("max"))
	assert.Equal(t, "Current", DefaultText("current"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Apply(Avg, []float64{1, 2, 3})
			_ = r.Keys()
		}()
	}
	wg.Wait()
}
