package transform

import (
	"github.com/leapstack-labs/leaptable/pkg/source"
	"github.com/leapstack-labs/leaptable/pkg/table"
)

func timeSeriesRecords(rs source.ResultSet) ([]*source.TimeSeries, error) {
	out := make([]*source.TimeSeries, 0, len(rs.Records))
	for i, r := range rs.Records {
		s, ok := r.(*source.TimeSeries)
		if !ok {
			return nil, source.Malformed(source.KindTimeSeries, i, "expected time series, got %s", r.Kind())
		}
		out = append(out, s)
	}
	return out, nil
}

func tableRecords(rs source.ResultSet) ([]*source.TableRecord, error) {
	out := make([]*source.TableRecord, 0, len(rs.Records))
	for i, r := range rs.Records {
		t, ok := r.(*source.TableRecord)
		if !ok {
			return nil, source.Malformed(source.KindTable, i, "expected table, got %s", r.Kind())
		}
		if err := t.Check(i); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func docRecords(rs source.ResultSet) ([]*source.Document, error) {
	var out []*source.Document
	for i, r := range rs.Records {
		c, ok := r.(*source.DocCollection)
		if !ok {
			return nil, source.Malformed(source.KindDocs, i, "expected docs, got %s", r.Kind())
		}
		out = append(out, c.Datapoints...)
	}
	return out, nil
}

func timestamp(ms int64) table.Value {
	return table.Number(float64(ms))
}
