package transform

// Panel is the transform configuration of one table panel.
type Panel struct {
	Transform Name         `json:"transform" yaml:"transform"`
	Sort      *SortSpec    `json:"sort,omitempty" yaml:"sort,omitempty"`
	Columns   []ColumnSpec `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// SortSpec orders output rows by the value in column Col.
type SortSpec struct {
	Col  int  `json:"col" yaml:"col"`
	Desc bool `json:"desc" yaml:"desc"`
}

// ColumnSpec selects one output column. Value is an aggregation key for
// timeseries_aggregations and a dot path for json.
type ColumnSpec struct {
	Text  string `json:"text" yaml:"text"`
	Value string `json:"value" yaml:"value"`
}
