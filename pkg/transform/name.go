package transform

import (
	"errors"
	"fmt"
	"strings"
)

// Name identifies a transformer. The set is closed; parse external input
// with ParseName.
type Name string

// Transformer names.
const (
	TimeSeriesToRows       Name = "timeseries_to_rows"
	TimeSeriesToColumns    Name = "timeseries_to_columns"
	TimeSeriesAggregations Name = "timeseries_aggregations"
	Table                  Name = "table"
	MultiQueryTable        Name = "multiquery_table"
	JSON                   Name = "json"
	Annotations            Name = "annotations"
)

// names lists every transformer in the order they are presented.
var names = []Name{
	TimeSeriesToRows,
	TimeSeriesToColumns,
	TimeSeriesAggregations,
	Annotations,
	Table,
	MultiQueryTable,
	JSON,
}

// Names returns every known transformer name.
func Names() []Name {
	out := make([]Name, len(names))
	copy(out, names)
	return out
}

// ParseName validates s as a transformer name.
func ParseName(s string) (Name, error) {
	for _, n := range names {
		if string(n) == s {
			return n, nil
		}
	}
	return "", &UnsupportedTransformError{Name: s, Available: nameStrings()}
}

func nameStrings() []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

func (n Name) String() string { return string(n) }

// ErrUnsupportedTransform is the sentinel wrapped by UnsupportedTransformError.
var ErrUnsupportedTransform = errors.New("unsupported transform")

// UnsupportedTransformError is returned for a transform name that has no
// transformer.
type UnsupportedTransformError struct {
	Name      string
	Available []string
}

func (e *UnsupportedTransformError) Error() string {
	return fmt.Sprintf("%s %q\nAvailable transforms: %s", ErrUnsupportedTransform, e.Name, strings.Join(e.Available, ", "))
}

// Is lets errors.Is match ErrUnsupportedTransform.
func (e *UnsupportedTransformError) Is(target error) bool {
	return target == ErrUnsupportedTransform
}
