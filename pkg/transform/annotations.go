package transform

import (
	"github.com/leapstack-labs/leaptable/pkg/source"
	"github.com/leapstack-labs/leaptable/pkg/table"
)

// annotationsTransformer lists annotation events.
type annotationsTransformer struct{}

func (annotationsTransformer) Description() string { return "Annotations" }

func (annotationsTransformer) Columns(source.ResultSet, Panel) ([]table.Column, error) {
	return []table.Column{
		table.TimeCol("Time"),
		table.Col("Title"),
		table.Col("Text"),
		table.Col("Tags"),
	}, nil
}

func (t annotationsTransformer) Transform(rs source.ResultSet, panel Panel) (*table.Table, error) {
	if rs.Annotations == nil {
		return nil, source.Malformed(source.KindAnnotations, -1, "expected an annotations object")
	}
	cols, _ := t.Columns(rs, panel)
	out := table.New(cols...)
	for _, a := range rs.Annotations.Annotations {
		out.Rows = append(out.Rows, table.Row{
			timestamp(a.Min),
			table.Text(a.Title),
			table.Text(a.Text),
			table.Strings(a.Tags...),
		})
	}
	return out, nil
}
