package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// PathSeparator joins nested field names in a flattened path.
const PathSeparator = "."

// Field is one key/value pair of a Document.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Document is a nested key/value record that remembers key order.
//
// Values are nil, bool, string, float64, []any or *Document.
type Document struct {
	fields []Field
	index  map[string]int
}

// NewDocument builds a document from fields in order. A repeated key keeps
// its first position and takes the last value.
func NewDocument(fields ...Field) *Document {
	d := &Document{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		d.Set(f.Key, f.Value)
	}
	return d
}

// Set stores value under key, appending the key if it is new.
func (d *Document) Set(key string, value any) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[key]; ok {
		d.fields[i].Value = value
		return
	}
	d.index[key] = len(d.fields)
	d.fields = append(d.fields, Field{Key: key, Value: value})
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.fields[i].Value, true
}

// Len returns the number of top-level keys.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.fields)
}

// Keys returns the top-level keys in order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, len(d.fields))
	for i, f := range d.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns the top-level fields in order.
func (d *Document) Fields() []Field {
	if d == nil {
		return nil
	}
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// LeafPaths lists every leaf field as a dot path, in key order, descending
// into nested documents. Arrays and empty documents are leaves.
func (d *Document) LeafPaths() []string {
	var paths []string
	d.collectPaths("", &paths)
	return paths
}

func (d *Document) collectPaths(prefix string, out *[]string) {
	if d == nil {
		return
	}
	for _, f := range d.fields {
		name := f.Key
		if prefix != "" {
			name = prefix + PathSeparator + f.Key
		}
		if child, ok := f.Value.(*Document); ok && child.Len() > 0 {
			child.collectPaths(name, out)
			continue
		}
		*out = append(*out, name)
	}
}

// ValueForKey implements jp.Keyed.
func (d *Document) ValueForKey(key string) (any, bool) {
	return d.Get(key)
}

// SetValueForKey implements jp.Keyed.
func (d *Document) SetValueForKey(key string, value any) {
	d.Set(key, value)
}

// RemoveValueForKey implements jp.Keyed. Remaining keys keep their order.
func (d *Document) RemoveValueForKey(key string) {
	i, ok := d.index[key]
	if !ok {
		return
	}
	d.fields = append(d.fields[:i], d.fields[i+1:]...)
	delete(d.index, key)
	for j := i; j < len(d.fields); j++ {
		d.index[d.fields[j].Key] = j
	}
}

var _ jp.Keyed = (*Document)(nil)

// Path is a compiled dot path such as "nested.level2".
type Path struct {
	raw  string
	expr jp.Expr
}

// CompilePath splits a dot path into segments and builds the JSONPath
// expression addressing those child keys from the root.
func CompilePath(path string) Path {
	x := jp.R()
	for _, seg := range strings.Split(path, PathSeparator) {
		x = x.C(seg)
	}
	return Path{raw: path, expr: x}
}

// String returns the dot path.
func (p Path) String() string { return p.raw }

// Resolver evaluates paths against one document.
type Resolver struct {
	doc *Document
}

// NewResolver prepares d for repeated path lookups.
func NewResolver(d *Document) *Resolver {
	return &Resolver{doc: d}
}

// Lookup resolves p. The second result is false when the path does not
// exist, including a path that runs through a scalar; an existing JSON null
// returns (nil, true). Objects and arrays are returned in their ordered form
// (*Document, []any).
func (r *Resolver) Lookup(p Path) (any, bool) {
	if r.doc == nil || p.raw == "" {
		return nil, false
	}
	return p.expr.FirstFound(r.doc)
}

// Lookup resolves a dot path against d.
func (d *Document) Lookup(path string) (any, bool) {
	return NewResolver(d).Lookup(CompilePath(path))
}

// MarshalJSON encodes the document with its key order intact.
func (d *Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order at every level.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("document: read first token: %w", err)
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("document: expected object, got %v", tok)
	}
	doc, err := readObject(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("document: trailing data after object")
	}
	*d = *doc
	return nil
}

// readObject reads fields until the closing '}' (the opening '{' has
// already been consumed).
func readObject(dec *json.Decoder) (*Document, error) {
	doc := NewDocument()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("document: read key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("document: object key not a string (got %T)", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("document: read value of %q: %w", key, err)
		}
		val, err := readValue(dec, valTok)
		if err != nil {
			return nil, fmt.Errorf("document: field %q: %w", key, err)
		}
		doc.Set(key, val)
	}
	if end, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("document: read object end: %w", err)
	} else if end != json.Delim('}') {
		return nil, fmt.Errorf("document: expected '}', got %v", end)
	}
	return doc, nil
}

func readValue(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readObject(dec)
		case '[':
			var items []any
			for dec.More() {
				itemTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				item, err := readValue(dec, itemTok)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			if end, err := dec.Token(); err != nil {
				return nil, err
			} else if end != json.Delim(']') {
				return nil, fmt.Errorf("expected ']', got %v", end)
			}
			if items == nil {
				items = []any{}
			}
			return items, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return f, nil
	default:
		// string, bool or nil
		return t, nil
	}
}
