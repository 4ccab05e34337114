// Package value describes the JSON-like values the struct view renders:
// scalars, lists and ordered objects.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"
)

// Kind classifies a value for rendering decisions.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of v. Go maps with string keys count as objects.
func KindOf(v any) Kind {
	switch t := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindList
	case *Object:
		if t == nil {
			return KindNull
		}
		return KindObject
	case map[string]any:
		return KindObject
	}
	return KindOther
}

// Entry is one slot of a list or object. Key is an int for lists and a
// string for objects.
type Entry struct {
	Key   any
	Value any
}

// Entries returns the slots of a list or object in display order.
// Plain Go maps have no insertion order, so their keys come back sorted.
// Scalars have no entries.
func Entries(v any) []Entry {
	switch t := v.(type) {
	case []any:
		out := make([]Entry, len(t))
		for i, item := range t {
			out[i] = Entry{Key: i, Value: item}
		}
		return out
	case *Object:
		if t == nil {
			return nil
		}
		out := make([]Entry, len(t.keys))
		for i, k := range t.keys {
			out[i] = Entry{Key: k, Value: t.values[k]}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Entry, len(keys))
		for i, k := range keys {
			out[i] = Entry{Key: k, Value: t[k]}
		}
		return out
	}
	return nil
}

// Slice returns the entries [start, end) of a list or object without
// building the entries outside the window. Plain Go maps are sorted first.
func Slice(v any, start, end int) []Entry {
	switch t := v.(type) {
	case []any:
		if end > len(t) {
			end = len(t)
		}
		if start >= end {
			return nil
		}
		out := make([]Entry, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, Entry{Key: i, Value: t[i]})
		}
		return out
	case *Object:
		if t == nil {
			return nil
		}
		if end > len(t.keys) {
			end = len(t.keys)
		}
		if start >= end {
			return nil
		}
		out := make([]Entry, 0, end-start)
		for _, k := range t.keys[start:end] {
			out = append(out, Entry{Key: k, Value: t.values[k]})
		}
		return out
	}
	entries := Entries(v)
	if end > len(entries) {
		end = len(entries)
	}
	if start >= end {
		return nil
	}
	return entries[start:end]
}

// Len reports the number of entries of a list or object, 0 otherwise.
func Len(v any) int {
	switch t := v.(type) {
	case []any:
		return len(t)
	case *Object:
		return t.Len()
	case map[string]any:
		return len(t)
	}
	return 0
}

// HasControlChars reports whether s holds a tab, newline, form feed or
// carriage return. Such strings are always expandable.
func HasControlChars(s string) bool {
	return strings.ContainsAny(s, "\r\n\f\t")
}

// IsExpandable reports whether v gets a togglable structural rendering:
// a non-empty list, a non-empty object, or a string that is longer than
// maxStringLength runes or carries control characters.
func IsExpandable(v any, maxStringLength int) bool {
	switch t := v.(type) {
	case []any:
		return len(t) > 0
	case string:
		return utf8.RuneCountInString(t) > maxStringLength || HasControlChars(t)
	case *Object, map[string]any:
		return Len(t) > 0
	}
	return false
}

// Quote returns the JSON string literal for s without HTML escaping.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Sprintf("%q", s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Unquote reverses Quote for the inner part of a JSON string literal
// (the text between the quotes).
func Unquote(inner string) (string, error) {
	var s string
	if err := json.Unmarshal([]byte(`"`+inner+`"`), &s); err != nil {
		return "", fmt.Errorf("unquote string: %w", err)
	}
	return s, nil
}

// Identity returns a comparable handle for reference values (objects, lists,
// maps) so callers can detect shared or circular references. ok is false
// for scalars and empty lists.
func Identity(v any) (uintptr, bool) {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return 0, false
		}
		return reflect.ValueOf(t).Pointer(), true
	case []any:
		if len(t) == 0 {
			return 0, false
		}
		return reflect.ValueOf(t).Pointer(), true
	case map[string]any:
		if t == nil {
			return 0, false
		}
		return reflect.ValueOf(t).Pointer(), true
	}
	return 0, false
}
