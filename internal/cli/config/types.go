// Package config loads leaptable CLI settings from defaults, leaptable.yaml,
// LEAPTABLE_ environment variables and command-line flags.
package config

// Defaults.
const (
	DefaultOutput           = "auto"
	DefaultLogLevel         = "warn"
	DefaultBatchConcurrency = 4
	DefaultTransform        = "timeseries_to_rows"
)

// Config holds all CLI configuration options.
type Config struct {
	Verbose      bool                         `koanf:"verbose"`
	OutputFormat string                       `koanf:"output"`
	Log          LogConfig                    `koanf:"log"`
	Panel        PanelConfig                  `koanf:"panel"`
	Aggregations map[string]AggregationConfig `koanf:"aggregations"`
	Batch        BatchConfig                  `koanf:"batch"`
}

// LogConfig selects log level and the optional Seq sink.
type LogConfig struct {
	Level  string `koanf:"level"`
	SeqURL string `koanf:"seq_url"`
}

// PanelConfig is the default panel used by transform and columns.
type PanelConfig struct {
	Transform string         `koanf:"transform"`
	Sort      SortConfig     `koanf:"sort"`
	Columns   []ColumnConfig `koanf:"columns"`
}

// SortConfig is the panel sort. Col is nil when no sort is configured.
type SortConfig struct {
	Col  *int `koanf:"col"`
	Desc bool `koanf:"desc"`
}

// ColumnConfig selects one column: an aggregation key or a document path.
type ColumnConfig struct {
	Text  string `koanf:"text"`
	Value string `koanf:"value"`
}

// AggregationConfig defines a scripted aggregation. Script holds inline
// Starlark source; File points at a .star file. Exactly one is set.
type AggregationConfig struct {
	Text   string `koanf:"text"`
	Script string `koanf:"script"`
	File   string `koanf:"file"`
}

// BatchConfig tunes the batch command.
type BatchConfig struct {
	Concurrency int `koanf:"concurrency"`
}
