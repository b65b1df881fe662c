// Package transform turns raw query results into a normalized table.
// It selects a transformer by name, runs it, and applies the panel sort.
package transform

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leaptable/pkg/aggregate"
	"github.com/leapstack-labs/leaptable/pkg/source"
	"github.com/leapstack-labs/leaptable/pkg/table"
)

// Transformer converts one result set shape into a table. Implementations
// are stateless.
type Transformer interface {
	Description() string
	Columns(rs source.ResultSet, panel Panel) ([]table.Column, error)
	Transform(rs source.ResultSet, panel Panel) (*table.Table, error)
}

// Descriptor names a transformer for listings.
type Descriptor struct {
	Name        Name
	Description string
}

// Engine dispatches transforms.
type Engine struct {
	// Aggregations available to timeseries_aggregations
	aggregations *aggregate.Registry

	// Structured logger
	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Aggregations is the reducer registry (optional, built-ins if nil)
	Aggregations *aggregate.Registry
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	aggs := cfg.Aggregations
	if aggs == nil {
		aggs = aggregate.NewRegistry()
	}
	return &Engine{aggregations: aggs, logger: logger}
}

var defaultEngine = New(Config{})

// TransformDataToTable runs panel over rs with the default engine.
func TransformDataToTable(rs source.ResultSet, panel Panel) (*table.Table, error) {
	return defaultEngine.Transform(rs, panel)
}

// Aggregations returns the engine's reducer registry.
func (e *Engine) Aggregations() *aggregate.Registry {
	return e.aggregations
}

// Transformer returns the implementation behind name.
func (e *Engine) Transformer(name Name) (Transformer, error) {
	switch name {
	case TimeSeriesToRows:
		return rowsTransformer{}, nil
	case TimeSeriesToColumns:
		return columnsTransformer{}, nil
	case TimeSeriesAggregations:
		return aggregationsTransformer{registry: e.aggregations}, nil
	case Table:
		return passthroughTransformer{}, nil
	case MultiQueryTable:
		return multiQueryTransformer{}, nil
	case JSON:
		return jsonTransformer{}, nil
	case Annotations:
		return annotationsTransformer{}, nil
	}
	return nil, &UnsupportedTransformError{Name: string(name), Available: nameStrings()}
}

// Transform builds the table for rs as configured by panel, then sorts it
// when panel.Sort is set. An empty result set yields an empty table.
func (e *Engine) Transform(rs source.ResultSet, panel Panel) (*table.Table, error) {
	tr, err := e.Transformer(panel.Transform)
	if err != nil {
		return nil, err
	}
	if rs.Empty() {
		e.logger.Debug("empty result set", "transform", panel.Transform)
		return table.New(), nil
	}

	start := time.Now()
	out, err := tr.Transform(rs, panel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", panel.Transform, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", panel.Transform, err)
	}

	if panel.Sort != nil {
		if !out.SortByColumn(panel.Sort.Col, panel.Sort.Desc) {
			e.logger.Debug("sort column out of range, rows left unsorted",
				"transform", panel.Transform, "col", panel.Sort.Col, "columns", out.Width())
		}
	}

	e.logger.Debug("transformed result set",
		"transform", panel.Transform,
		"columns", out.Width(),
		"rows", out.Len(),
		"duration", time.Since(start))
	return out, nil
}

// Columns lists the columns panel's transformer can offer for rs.
func (e *Engine) Columns(rs source.ResultSet, panel Panel) ([]table.Column, error) {
	tr, err := e.Transformer(panel.Transform)
	if err != nil {
		return nil, err
	}
	cols, err := tr.Columns(rs, panel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", panel.Transform, err)
	}
	return cols, nil
}

// Descriptors lists every transformer in presentation order.
func (e *Engine) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(names))
	for _, n := range names {
		tr, err := e.Transformer(n)
		if err != nil {
			continue
		}
		out = append(out, Descriptor{Name: n, Description: tr.Description()})
	}
	return out
}

// Descriptors lists the transformers of the default engine.
func Descriptors() []Descriptor {
	return defaultEngine.Descriptors()
}
