// Package source defines the raw query results the transforms consume.
//
// Results arrive as explicit tagged variants rather than loosely shaped
// objects: a ResultSet holds either a list of Records (time series, tables,
// document collections) or a single AnnotationSet. Decode validates the wire
// shape and reports violations as MalformedShapeError.
package source

import "github.com/leapstack-labs/leaptable/pkg/table"

// Kind names a record variant.
type Kind string

// Record kinds.
const (
	KindTimeSeries  Kind = "timeseries"
	KindTable       Kind = "table"
	KindDocs        Kind = "docs"
	KindAnnotations Kind = "annotations"
)

// Record is one query result. The set of implementations is closed:
// *TimeSeries, *TableRecord and *DocCollection.
type Record interface {
	Kind() Kind
	isRecord()
}

// Point is a single [value, timestamp] pair. Value is a Number or Null.
type Point struct {
	Value     table.Value
	Timestamp int64 // epoch milliseconds
}

// P builds a Point with a numeric value.
func P(value float64, ts int64) Point {
	return Point{Value: table.Number(value), Timestamp: ts}
}

// TimeSeries is a named list of points.
type TimeSeries struct {
	Target     string
	Datapoints []Point
}

// Kind implements Record.
func (*TimeSeries) Kind() Kind { return KindTimeSeries }
func (*TimeSeries) isRecord()  {}

// Numbers returns the numeric values of the series, skipping null points.
func (s *TimeSeries) Numbers() []float64 {
	out := make([]float64, 0, len(s.Datapoints))
	for _, p := range s.Datapoints {
		if f, ok := p.Value.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// TableRecord is a result that already has table shape.
type TableRecord struct {
	Columns []table.Column
	Rows    []table.Row
}

// Kind implements Record.
func (*TableRecord) Kind() Kind { return KindTable }
func (*TableRecord) isRecord()  {}

// ColumnIndex returns the position of the first column with the given text,
// or -1.
func (t *TableRecord) ColumnIndex(text string) int {
	for i, c := range t.Columns {
		if c.Text == text {
			return i
		}
	}
	return -1
}

// Check verifies every row has one cell per column.
func (t *TableRecord) Check(index int) error {
	if len(t.Columns) == 0 {
		return Malformed(KindTable, index, "no columns")
	}
	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return Malformed(KindTable, index, "row %d has %d cells, want %d", i, len(r), len(t.Columns))
		}
	}
	return nil
}

// DocCollection is a list of nested documents.
type DocCollection struct {
	Datapoints []*Document
}

// Kind implements Record.
func (*DocCollection) Kind() Kind { return KindDocs }
func (*DocCollection) isRecord()  {}

// Annotation is a single annotation event.
type Annotation struct {
	Min   int64 // epoch milliseconds
	Title string
	Text  string
	Tags  []string
}

// AnnotationSet is the single-object input of the annotations transform.
type AnnotationSet struct {
	Annotations []Annotation
}

// ResultSet is everything a transform receives for one call.
type ResultSet struct {
	Records     []Record
	Annotations *AnnotationSet
}

// Of wraps records in a ResultSet.
func Of(records ...Record) ResultSet {
	return ResultSet{Records: records}
}

// OfAnnotations wraps annotations in a ResultSet.
func OfAnnotations(annotations ...Annotation) ResultSet {
	return ResultSet{Annotations: &AnnotationSet{Annotations: annotations}}
}

// Empty reports whether the set carries no records and no annotations.
func (rs ResultSet) Empty() bool {
	return len(rs.Records) == 0 && rs.Annotations == nil
}
