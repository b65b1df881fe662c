package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leaptable/internal/logging"
	"github.com/leapstack-labs/leaptable/pkg/transform"
)

// OutputFormats lists the accepted --output values.
var OutputFormats = []string{"auto", "text", "markdown", "csv", "json"}

// Validate checks option values that can be checked without input data.
func (c *Config) Validate() error {
	if !validOutput(c.OutputFormat) {
		return fmt.Errorf("unknown output format %q\nAvailable formats: %s", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := transform.ParseName(c.Panel.Transform); err != nil {
		return fmt.Errorf("panel.transform: %w\nHint: Check panel.transform in leaptable.yaml or --transform", err)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}

	keys := make([]string, 0, len(c.Aggregations))
	for k := range c.Aggregations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a := c.Aggregations[k]
		if (a.Script == "") == (a.File == "") {
			return fmt.Errorf("aggregations.%s: set exactly one of script or file", k)
		}
	}
	return nil
}

func validOutput(s string) bool {
	for _, f := range OutputFormats {
		if s == f {
			return true
		}
	}
	return false
}

// ParseColumnFlag parses a --column value of the form "text=value". A bare
// "value" uses the value as its own text.
func ParseColumnFlag(s string) (ColumnConfig, error) {
	text, value, found := strings.Cut(s, "=")
	if !found {
		value = text
		text = ""
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ColumnConfig{}, fmt.Errorf("invalid --column %q: want text=value", s)
	}
	return ColumnConfig{Text: strings.TrimSpace(text), Value: value}, nil
}

// TransformPanel converts the panel settings into a transform.Panel.
func (p PanelConfig) TransformPanel() (transform.Panel, error) {
	name, err := transform.ParseName(p.Transform)
	if err != nil {
		return transform.Panel{}, err
	}
	out := transform.Panel{Transform: name}
	if p.Sort.Col != nil {
		out.Sort = &transform.SortSpec{Col: *p.Sort.Col, Desc: p.Sort.Desc}
	}
	for _, c := range p.Columns {
		out.Columns = append(out.Columns, transform.ColumnSpec{Text: c.Text, Value: c.Value})
	}
	return out, nil
}
