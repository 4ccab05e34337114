package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
)

// Object is a key/value mapping that remembers insertion order.
// Keys are unique; setting an existing key replaces its value in place.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty object with room for capacity keys.
func NewObject(capacity int) *Object {
	return &Object{
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

// FromMap builds an object from a Go map; keys are inserted in ordinal order.
func FromMap(m map[string]any) *Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	o := NewObject(len(keys))
	for _, k := range keys {
		o.Set(k, m[k])
	}
	return o
}

// Set stores v under key.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value for key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Map returns a shallow Go map view of the object. Nested values are shared.
func (o *Object) Map() map[string]any {
	if o == nil {
		return nil
	}
	m := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		m[k] = o.values[k]
	}
	return m
}

// ErrCircular is returned when a value refers back to one of its ancestors.
var ErrCircular = errors.New("converting circular structure to JSON")

// MarshalJSON encodes the object with keys in insertion order. Values that
// contain the object again fail with ErrCircular.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	if err := writeJSON(&buf, o, make(map[uintptr]struct{})); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeJSON keeps the ancestors of v in stack so cycles through nested
// objects, lists and maps are reported instead of recursing.
func writeJSON(buf *bytes.Buffer, v any, stack map[uintptr]struct{}) error {
	switch t := v.(type) {
	case *Object, []any, map[string]any:
	case string:
		buf.WriteString(Quote(t))
		return nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
	if o, ok := v.(*Object); ok && o == nil {
		buf.WriteString("null")
		return nil
	}

	if id, ok := Identity(v); ok {
		if _, seen := stack[id]; seen {
			return ErrCircular
		}
		stack[id] = struct{}{}
		defer delete(stack, id)
	}

	isList := KindOf(v) == KindList
	open, closing := byte('{'), byte('}')
	if isList {
		open, closing = '[', ']'
	}
	buf.WriteByte(open)
	for i, e := range Entries(v) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if !isList {
			buf.WriteString(Quote(e.Key.(string)))
			buf.WriteByte(':')
		}
		if err := writeJSON(buf, e.Value, stack); err != nil {
			return err
		}
	}
	buf.WriteByte(closing)
	return nil
}
