package transform

import (
	"github.com/leapstack-labs/leaptable/pkg/source"
	"github.com/leapstack-labs/leaptable/pkg/table"
)

// passthroughTransformer copies a single pre-shaped table.
type passthroughTransformer struct{}

func (passthroughTransformer) Description() string { return "Table" }

func (passthroughTransformer) Columns(rs source.ResultSet, _ Panel) ([]table.Column, error) {
	rec, err := singleTable(rs)
	if err != nil {
		return nil, err
	}
	cols := make([]table.Column, len(rec.Columns))
	copy(cols, rec.Columns)
	return cols, nil
}

func (passthroughTransformer) Transform(rs source.ResultSet, _ Panel) (*table.Table, error) {
	rec, err := singleTable(rs)
	if err != nil {
		return nil, err
	}
	out := table.New(rec.Columns...)
	out.Rows = make([]table.Row, len(rec.Rows))
	for i, r := range rec.Rows {
		out.Rows[i] = r.Clone()
	}
	return out, nil
}

func singleTable(rs source.ResultSet) (*source.TableRecord, error) {
	tables, err := tableRecords(rs)
	if err != nil {
		return nil, err
	}
	if len(tables) != 1 {
		return nil, source.Malformed(source.KindTable, -1, "table transform needs exactly one table, got %d", len(tables))
	}
	return tables[0], nil
}
