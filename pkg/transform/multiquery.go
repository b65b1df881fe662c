package transform

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"

	"github.com/leapstack-labs/leaptable/pkg/source"
	"github.com/leapstack-labs/leaptable/pkg/table"
)

// Column names with a fixed role in multi-query tables.
const (
	timeColumn  = "Time"
	valueColumn = "Value"
)

// multiQueryTransformer outer-joins several tables on time and labels.
type multiQueryTransformer struct{}

func (multiQueryTransformer) Description() string { return "Multi-query table" }

// queryLayout records which source column plays which role in one query.
type queryLayout struct {
	time   int
	value  int
	labels []int // source column index per union label, -1 when undeclared
}

type joinPlan struct {
	columns []table.Column
	queries []queryLayout
}

func (multiQueryTransformer) Columns(rs source.ResultSet, _ Panel) ([]table.Column, error) {
	tables, err := tableRecords(rs)
	if err != nil {
		return nil, err
	}
	plan, err := planJoin(tables)
	if err != nil {
		return nil, err
	}
	return plan.columns, nil
}

func planJoin(tables []*source.TableRecord) (*joinPlan, error) {
	if len(tables) == 0 {
		return nil, source.Malformed(source.KindTable, -1, "multi-query table needs at least one table")
	}

	var (
		timeCol    table.Column
		labelCols  []table.Column
		labelIndex = make(map[string]int)
		valueCols  = make([]table.Column, len(tables))
		queries    = make([]queryLayout, len(tables))
	)

	for q, t := range tables {
		ti := t.ColumnIndex(timeColumn)
		if ti < 0 {
			return nil, source.Malformed(source.KindTable, q, "no %q column", timeColumn)
		}
		vi := t.ColumnIndex(valueColumn)
		if vi < 0 {
			for i := len(t.Columns) - 1; i >= 0; i-- {
				if i != ti {
					vi = i
					break
				}
			}
		}
		if vi < 0 {
			return nil, source.Malformed(source.KindTable, q, "no value column")
		}
		if q == 0 {
			timeCol = t.Columns[ti]
		}

		for i, c := range t.Columns {
			if i == ti || i == vi {
				continue
			}
			if _, ok := labelIndex[c.Text]; !ok {
				labelIndex[c.Text] = len(labelCols)
				labelCols = append(labelCols, c)
			}
		}

		vc := t.Columns[vi]
		vc.Text = valueColumn + " " + querySuffix(q)
		valueCols[q] = vc
		queries[q] = queryLayout{time: ti, value: vi}
	}

	// Label positions are only final once every query has been seen.
	for q, t := range tables {
		labels := make([]int, len(labelCols))
		for l := range labels {
			labels[l] = -1
		}
		for i, c := range t.Columns {
			if i == queries[q].time || i == queries[q].value {
				continue
			}
			if l := labelIndex[c.Text]; labels[l] < 0 {
				labels[l] = i
			}
		}
		queries[q].labels = labels
	}

	cols := make([]table.Column, 0, 1+len(labelCols)+len(valueCols))
	cols = append(cols, timeCol)
	cols = append(cols, labelCols...)
	cols = append(cols, valueCols...)
	return &joinPlan{columns: cols, queries: queries}, nil
}

type joinRow struct {
	cells table.Row
	from  []bool // from[q] is set once query q contributed its value
}

func (multiQueryTransformer) Transform(rs source.ResultSet, _ Panel) (*table.Table, error) {
	tables, err := tableRecords(rs)
	if err != nil {
		return nil, err
	}
	plan, err := planJoin(tables)
	if err != nil {
		return nil, err
	}

	var (
		width    = len(plan.columns)
		nLabels  = width - 1 - len(tables)
		keyWidth = 1 + nLabels
		rows     []*joinRow
		buckets  = make(map[uint64][]*joinRow)
		key      = make([]table.Value, keyWidth)
		buf      []byte
	)

	for q, t := range tables {
		layout := plan.queries[q]
		valueAt := keyWidth + q

		for _, src := range t.Rows {
			key[0] = src[layout.time]
			for l, i := range layout.labels {
				if i < 0 {
					key[1+l] = table.Absent()
				} else {
					key[1+l] = src[i]
				}
			}

			buf = appendKey(buf[:0], key)
			h := xxh3.Hash(buf)

			var target *joinRow
			for _, cand := range buckets[h] {
				if !cand.from[q] && keyEqual(cand.cells[:keyWidth], key) {
					target = cand
					break
				}
			}
			if target == nil {
				target = &joinRow{cells: table.NewRow(width), from: make([]bool, len(tables))}
				copy(target.cells, key)
				buckets[h] = append(buckets[h], target)
				rows = append(rows, target)
			}
			target.cells[valueAt] = src[layout.value]
			target.from[q] = true
		}
	}

	out := table.New(plan.columns...)
	out.Rows = make([]table.Row, len(rows))
	for i, r := range rows {
		out.Rows[i] = r.cells
	}
	return out, nil
}

func keyEqual(a, b []table.Value) bool {
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// appendKey encodes key so that Equal values produce identical bytes.
func appendKey(buf []byte, key []table.Value) []byte {
	for _, v := range key {
		buf = appendValue(buf, v)
	}
	return buf
}

func appendValue(buf []byte, v table.Value) []byte {
	buf = append(buf, byte(v.Kind()))
	switch v.Kind() {
	case table.KindNumber:
		f, _ := v.Float()
		switch {
		case f == 0:
			f = 0
		case math.IsNaN(f):
			f = math.NaN()
		}
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
	case table.KindText:
		s, _ := v.Str()
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s)))
		buf = append(buf, s...)
	case table.KindBool:
		if b, _ := v.Boolean(); b {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case table.KindList:
		items, _ := v.Items()
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(items)))
		for _, item := range items {
			buf = appendValue(buf, item)
		}
	}
	return buf
}

// querySuffix names query i (0-based) in bijective base-26: A..Z, AA, AB...
func querySuffix(i int) string {
	n := i + 1
	var letters []byte
	for n > 0 {
		n--
		letters = append(letters, byte('A'+n%26))
		n /= 26
	}
	for l, r := 0, len(letters)-1; l < r; l, r = l+1, r-1 {
		letters[l], letters[r] = letters[r], letters[l]
	}
	return string(letters)
}
