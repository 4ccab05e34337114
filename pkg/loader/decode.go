package loader

import (
	"github.com/oakwood-commons/structview/internal/value"
)

const maxDecodeDepth = 20

// TryDecode parses a string that holds serialized JSON, YAML, TOML or
// NDJSON. It reports false unless the result is a list or an object.
func TryDecode(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	parsed, err := LoadRoot(s)
	if err != nil {
		return nil, false
	}
	switch value.KindOf(parsed) {
	case value.KindList, value.KindObject:
		return parsed, true
	}
	return nil, false
}

// RecursiveDecode replaces every string leaf that holds serialized data
// with its parsed structure, recursing into the decoded result. Objects
// are rebuilt, so the input is left untouched.
func RecursiveDecode(v any) any {
	return recursiveDecode(v, 0)
}

func recursiveDecode(v any, depth int) any {
	if depth > maxDecodeDepth {
		return v
	}
	switch t := v.(type) {
	case string:
		if decoded, ok := TryDecode(t); ok {
			return recursiveDecode(decoded, depth+1)
		}
		return t
	case *value.Object:
		out := value.NewObject(t.Len())
		for _, k := range t.Keys() {
			field, _ := t.Get(k)
			out.Set(k, recursiveDecode(field, depth+1))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = recursiveDecode(e, depth+1)
		}
		return out
	case map[string]any:
		return recursiveDecode(toOrdered(t), depth)
	}
	return v
}
