package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/leapstack-labs/leaptable/pkg/table"
)

// Wire discriminators for the "type" field of a record.
const (
	wireTypeTable = "table"
	wireTypeDocs  = "docs"
)

type wireRecord struct {
	Type       string          `json:"type"`
	Target     *string         `json:"target"`
	Columns    json.RawMessage `json:"columns"`
	Rows       json.RawMessage `json:"rows"`
	Datapoints json.RawMessage `json:"datapoints"`
}

type wireAnnotations struct {
	Annotations *[]wireAnnotation `json:"annotations"`
}

type wireAnnotation struct {
	Min   json.Number `json:"min"`
	Title string      `json:"title"`
	Text  string      `json:"text"`
	Tags  []string    `json:"tags"`
}

// Decode reads a result set in its JSON wire form: either an array of
// records or an object carrying an "annotations" list.
func Decode(r io.Reader) (ResultSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ResultSet{}, fmt.Errorf("read results: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (ResultSet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ResultSet{}, Malformed("", -1, "empty input")
	}

	switch trimmed[0] {
	case '[':
		return decodeRecords(trimmed)
	case '{':
		return decodeAnnotations(trimmed)
	default:
		return ResultSet{}, Malformed("", -1, "expected array of records or annotations object")
	}
}

func decodeRecords(data []byte) (ResultSet, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return ResultSet{}, Malformed("", -1, "invalid JSON: %v", err)
	}

	records := make([]Record, 0, len(raws))
	for i, raw := range raws {
		rec, err := decodeRecord(i, raw)
		if err != nil {
			return ResultSet{}, err
		}
		records = append(records, rec)
	}
	return ResultSet{Records: records}, nil
}

func decodeRecord(index int, raw json.RawMessage) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, Malformed("", index, "record is not an object: %v", err)
	}

	switch w.Type {
	case wireTypeTable:
		return decodeTable(index, w)
	case wireTypeDocs:
		return decodeDocs(index, w)
	default:
		return decodeTimeSeries(index, w)
	}
}

func decodeTable(index int, w wireRecord) (*TableRecord, error) {
	if isMissing(w.Columns) {
		return nil, Malformed(KindTable, index, "missing columns")
	}
	if isMissing(w.Rows) {
		return nil, Malformed(KindTable, index, "missing rows")
	}

	t := &TableRecord{}
	if err := json.Unmarshal(w.Columns, &t.Columns); err != nil {
		return nil, Malformed(KindTable, index, "columns: %v", err)
	}
	if err := json.Unmarshal(w.Rows, &t.Rows); err != nil {
		return nil, Malformed(KindTable, index, "rows: %v", err)
	}
	if err := t.Check(index); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeDocs(index int, w wireRecord) (*DocCollection, error) {
	if isMissing(w.Datapoints) {
		return nil, Malformed(KindDocs, index, "missing datapoints")
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(w.Datapoints, &raws); err != nil {
		return nil, Malformed(KindDocs, index, "datapoints: %v", err)
	}

	c := &DocCollection{Datapoints: make([]*Document, 0, len(raws))}
	for i, raw := range raws {
		doc := &Document{}
		if err := doc.UnmarshalJSON(raw); err != nil {
			return nil, Malformed(KindDocs, index, "datapoint %d: %v", i, err)
		}
		c.Datapoints = append(c.Datapoints, doc)
	}
	return c, nil
}

func decodeTimeSeries(index int, w wireRecord) (*TimeSeries, error) {
	if w.Target == nil {
		return nil, Malformed(KindTimeSeries, index, "missing target")
	}
	if isMissing(w.Datapoints) {
		return nil, Malformed(KindTimeSeries, index, "missing datapoints")
	}

	var raws [][]json.RawMessage
	if err := json.Unmarshal(w.Datapoints, &raws); err != nil {
		return nil, Malformed(KindTimeSeries, index, "datapoints: %v", err)
	}

	s := &TimeSeries{Target: *w.Target, Datapoints: make([]Point, 0, len(raws))}
	for i, pair := range raws {
		p, err := decodePoint(pair)
		if err != nil {
			return nil, Malformed(KindTimeSeries, index, "datapoint %d: %v", i, err)
		}
		s.Datapoints = append(s.Datapoints, p)
	}
	return s, nil
}

func decodePoint(pair []json.RawMessage) (Point, error) {
	if len(pair) != 2 {
		return Point{}, fmt.Errorf("want [value, timestamp], got %d elements", len(pair))
	}

	var p Point
	if isMissing(pair[0]) {
		p.Value = table.Null()
	} else {
		var f float64
		if err := json.Unmarshal(pair[0], &f); err != nil {
			return Point{}, fmt.Errorf("value: %w", err)
		}
		p.Value = table.Number(f)
	}

	var ts json.Number
	if err := json.Unmarshal(pair[1], &ts); err != nil {
		return Point{}, fmt.Errorf("timestamp: %w", err)
	}
	ms, err := epochMillis(ts)
	if err != nil {
		return Point{}, err
	}
	p.Timestamp = ms
	return p, nil
}

func decodeAnnotations(data []byte) (ResultSet, error) {
	var w wireAnnotations
	if err := json.Unmarshal(data, &w); err != nil {
		return ResultSet{}, Malformed(KindAnnotations, -1, "invalid JSON: %v", err)
	}
	if w.Annotations == nil {
		return ResultSet{}, Malformed(KindAnnotations, -1, "missing annotations")
	}

	set := &AnnotationSet{Annotations: make([]Annotation, 0, len(*w.Annotations))}
	for i, a := range *w.Annotations {
		ms, err := epochMillis(a.Min)
		if err != nil {
			return ResultSet{}, Malformed(KindAnnotations, i, "min: %v", err)
		}
		set.Annotations = append(set.Annotations, Annotation{
			Min:   ms,
			Title: a.Title,
			Text:  a.Text,
			Tags:  a.Tags,
		})
	}
	return ResultSet{Annotations: set}, nil
}

// epochMillis accepts integral numbers, including float spellings like 1.5e12.
func epochMillis(n json.Number) (int64, error) {
	if n == "" {
		return 0, fmt.Errorf("missing timestamp")
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("timestamp %q is not a number", n.String())
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("timestamp %q is not an integer", n.String())
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("timestamp %q is out of range", n.String())
	}
	return int64(f), nil
}

func isMissing(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
