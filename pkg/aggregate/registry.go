// Package aggregate holds the numeric reducers used by the
// timeseries_aggregations transform, keyed by name.
package aggregate

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leaptable/pkg/table"
)

// Func reduces the numeric values of one series to a single cell.
// Null points are already removed; values may be empty.
type Func func(values []float64) (table.Value, error)

// Descriptor names one registered aggregation.
type Descriptor struct {
	Key  string
	Text string
}

type entry struct {
	Descriptor
	fn Func
}

// Registry maps aggregation keys to reducers. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string
}

// NewRegistry returns a registry holding the built-in aggregations.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]entry, len(builtins))}
	for _, b := range builtins {
		r.Register(b.key, b.text, b.fn)
	}
	return r
}

// Register adds or replaces the reducer for key. An empty text defaults to
// the title-cased key. Replacing keeps the original position.
func (r *Registry) Register(key, text string, fn Func) {
	if text == "" {
		text = DefaultText(key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	r.entries[key] = entry{Descriptor: Descriptor{Key: key, Text: text}, fn: fn}
}

// Lookup returns the reducer for key.
func (r *Registry) Lookup(key string) (Func, error) {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownAggregationError{Key: key, Available: r.Keys()}
	}
	return e.fn, nil
}

// Apply looks up key and runs it over values.
func (r *Registry) Apply(key string, values []float64) (table.Value, error) {
	fn, err := r.Lookup(key)
	if err != nil {
		return table.Value{}, err
	}
	v, err := fn(values)
	if err != nil {
		return table.Value{}, fmt.Errorf("aggregation %q: %w", key, err)
	}
	return v, nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key]
	return ok
}

// Keys returns all registered keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Descriptors returns every aggregation in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.entries[k].Descriptor)
	}
	return out
}

// DefaultText is the display text used when none is given: "max" → "Max".
func DefaultText(key string) string {
	return cases.Title(language.English).String(key)
}
