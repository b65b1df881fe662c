package transform

import (
	"github.com/leapstack-labs/leaptable/pkg/source"
	"github.com/leapstack-labs/leaptable/pkg/table"
)

// jsonTransformer flattens document fields into columns by dot path.
type jsonTransformer struct{}

func (jsonTransformer) Description() string { return "JSON Data" }

// Columns enumerates the leaf fields of the first document.
func (jsonTransformer) Columns(rs source.ResultSet, _ Panel) ([]table.Column, error) {
	docs, err := docRecords(rs)
	if err != nil {
		return nil, err
	}
	return discoverFields(docs), nil
}

func discoverFields(docs []*source.Document) []table.Column {
	if len(docs) == 0 {
		return []table.Column{}
	}
	paths := docs[0].LeafPaths()
	cols := make([]table.Column, len(paths))
	for i, p := range paths {
		cols[i] = table.Column{Text: p, Key: p}
	}
	return cols
}

func (jsonTransformer) Transform(rs source.ResultSet, panel Panel) (*table.Table, error) {
	docs, err := docRecords(rs)
	if err != nil {
		return nil, err
	}

	specs := panel.Columns
	if len(specs) == 0 {
		for _, c := range discoverFields(docs) {
			specs = append(specs, ColumnSpec{Text: c.Text, Value: c.Key})
		}
	}

	cols := make([]table.Column, len(specs))
	paths := make([]source.Path, len(specs))
	for i, s := range specs {
		text := s.Text
		if text == "" {
			text = s.Value
		}
		cols[i] = table.Col(text)
		paths[i] = source.CompilePath(s.Value)
	}

	out := table.New(cols...)
	for d, doc := range docs {
		r := source.NewResolver(doc)
		row := table.NewRow(len(cols))
		for i, p := range paths {
			raw, ok := r.Lookup(p)
			if !ok {
				continue
			}
			v, err := table.FromGo(raw)
			if err != nil {
				return nil, source.Malformed(source.KindDocs, -1, "document %d, path %q: %v", d, p, err)
			}
			row[i] = v
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
