package source

import (
	"errors"
	"fmt"
)

// ErrMalformedShape is the sentinel wrapped by every MalformedShapeError.
var ErrMalformedShape = errors.New("malformed source shape")

// MalformedShapeError reports input whose shape does not match what a
// decoder or transform requires.
type MalformedShapeError struct {
	// Kind is the record kind that was expected or found, if known.
	Kind Kind
	// Index is the position of the offending record, or -1.
	Index  int
	Reason string
}

func (e *MalformedShapeError) Error() string {
	switch {
	case e.Index >= 0 && e.Kind != "":
		return fmt.Sprintf("%s: record %d (%s): %s", ErrMalformedShape, e.Index, e.Kind, e.Reason)
	case e.Index >= 0:
		return fmt.Sprintf("%s: record %d: %s", ErrMalformedShape, e.Index, e.Reason)
	case e.Kind != "":
		return fmt.Sprintf("%s (%s): %s", ErrMalformedShape, e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedShape, e.Reason)
}

// Is lets errors.Is match ErrMalformedShape.
func (e *MalformedShapeError) Is(target error) bool {
	return target == ErrMalformedShape
}

// Malformed builds a MalformedShapeError with a formatted reason.
func Malformed(kind Kind, index int, format string, args ...any) error {
	return &MalformedShapeError{
		Kind:   kind,
		Index:  index,
		Reason: fmt.Sprintf(format, args...),
	}
}
