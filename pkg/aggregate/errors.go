package aggregate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAggregation is the sentinel wrapped by UnknownAggregationError.
var ErrUnknownAggregation = errors.New("unknown aggregation")

// UnknownAggregationError is returned when a key has no registered reducer.
type UnknownAggregationError struct {
	Key       string
	Available []string
}

func (e *UnknownAggregationError) Error() string {
	return fmt.Sprintf("%s %q\nAvailable aggregations: %s", ErrUnknownAggregation, e.Key, strings.Join(e.Available, ", "))
}

// Is lets errors.Is match ErrUnknownAggregation.
func (e *UnknownAggregationError) Is(target error) bool {
	return target == ErrUnknownAggregation
}
