package table

// ColumnTypeTime marks a column holding epoch-millisecond timestamps.
const ColumnTypeTime = "time"

// Column describes one output column. Columns are identified by position
// within a Table, not by Text.
type Column struct {
	Text string `json:"text"`
	Unit string `json:"unit,omitempty"`
	Type string `json:"type,omitempty"`

	// Key is the selector a column was chosen by, when it differs from
	// Text: an aggregation key or a document path.
	Key string `json:"key,omitempty"`

	// Sort and Desc are set by the dispatcher on the column it sorted by.
	Sort bool `json:"sort,omitempty"`
	Desc bool `json:"desc,omitempty"`
}

// Col is shorthand for a Column with only Text set.
func Col(text string) Column {
	return Column{Text: text}
}

// TimeCol returns a Column typed as a timestamp column.
func TimeCol(text string) Column {
	return Column{Text: text, Type: ColumnTypeTime}
}

// Texts returns the Text of each column in order.
func Texts(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Text
	}
	return out
}
