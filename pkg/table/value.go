package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// Value kinds. KindAbsent is the zero value so that a freshly allocated
// Row is entirely absent.
const (
	KindAbsent Kind = iota
	KindNull
	KindNumber
	KindText
	KindBool
	KindList
)

var kindNames = [...]string{
	KindAbsent: "absent",
	KindNull:   "null",
	KindNumber: "number",
	KindText:   "text",
	KindBool:   "bool",
	KindList:   "list",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Value is a single table cell.
//
// Absent means "no data for this cell" and is distinct from every data value,
// including 0, "", false and an explicit Null coming from the source.
type Value struct {
	kind Kind
	num  float64
	str  string
	list []Value
}

// Absent returns the absent marker.
func Absent() Value { return Value{} }

// Null returns an explicit null value.
func Null() Value { return Value{kind: KindNull} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// List returns a list value holding a copy of vs.
func List(vs ...Value) Value {
	out := make([]Value, len(vs))
	copy(out, vs)
	return Value{kind: KindList, list: out}
}

// Strings returns a list of Text values.
func Strings(ss ...string) Value {
	out := make([]Value, len(ss))
	for i, s := range ss {
		out[i] = Text(s)
	}
	return Value{kind: KindList, list: out}
}

// FromGo converts a decoded Go value into a Value.
// Supported: nil, bool, string, all integer and float types, json.Number,
// []string, []any and []Value. A map[string]any or any json.Marshaler
// becomes its compact JSON text. Anything else is an error.
func FromGo(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return Text(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int8:
		return Number(float64(t)), nil
	case int16:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case []string:
		return Strings(t...), nil
	case []Value:
		return List(t...), nil
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return Value{}, fmt.Errorf("encode object: %w", err)
		}
		return Text(string(b)), nil
	case []any:
		out := make([]Value, len(t))
		for i, item := range t {
			iv, err := FromGo(item)
			if err != nil {
				return Value{}, fmt.Errorf("list index %d: %w", i, err)
			}
			out[i] = iv
		}
		return Value{kind: KindList, list: out}, nil
	case json.Marshaler:
		b, err := t.MarshalJSON()
		if err != nil {
			return Value{}, fmt.Errorf("encode %T: %w", v, err)
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return Value{}, fmt.Errorf("encode %T: %w", v, err)
		}
		return Text(buf.String()), nil
	default:
		return Value{}, fmt.Errorf("unsupported cell type %T", v)
	}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the absent marker.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsNull reports whether v is an explicit null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric payload.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Str returns the text payload.
func (v Value) Str() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.str, true
}

// Boolean returns the boolean payload.
func (v Value) Boolean() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.num != 0, true
}

// Items returns a copy of the list payload.
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out, true
}

// Len returns the number of list items, or 0 for non-list values.
func (v Value) Len() int { return len(v.list) }

// Equal reports exact equality: same kind and same payload. No coercion is
// applied, so Number(1) != Text("1") and Absent equals only Absent.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindAbsent, KindNull:
		return true
	case KindNumber:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case KindText:
		return v.str == o.str
	case KindBool:
		return v.num == o.num
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// rank orders kinds for mixed-kind comparison. Absent is handled by the
// sorter so that it lands last in both directions.
func (k Kind) rank() int {
	switch k {
	case KindNumber:
		return 0
	case KindText:
		return 1
	case KindBool:
		return 2
	case KindList:
		return 3
	case KindNull:
		return 4
	default:
		return 5
	}
}

// Compare returns -1, 0 or +1 ordering v against o.
//
// Values of different kinds order by kind rank: Number < Text < Bool < List <
// Null < Absent. Within a kind the natural order applies; NaN sorts before
// every other number.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		return cmpInt(v.kind.rank(), o.kind.rank())
	}
	switch v.kind {
	case KindNumber:
		return cmpFloat(v.num, o.num)
	case KindText:
		return strings.Compare(v.str, o.str)
	case KindBool:
		return cmpFloat(v.num, o.num)
	case KindList:
		n := min(len(v.list), len(o.list))
		for i := 0; i < n; i++ {
			if c := v.list[i].Compare(o.list[i]); c != 0 {
				return c
			}
		}
		return cmpInt(len(v.list), len(o.list))
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String renders v for display. Absent renders as the empty string and Null
// as "null"; renderers that need to tell them apart should switch on Kind.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// Interface returns the payload as a plain Go value: nil for Absent and Null,
// float64, string, bool or []any.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.str
	case KindBool:
		return v.num != 0
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes the payload. Both Absent and Null encode as null;
// callers that must keep them apart omit absent cells instead.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes any JSON scalar or array. JSON null becomes Null.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if _, ok := raw.(map[string]any); ok {
		// Keep the source key order rather than re-encoding the map.
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = Text(buf.String())
		return nil
	}
	out, err := FromGo(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}
