package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/structview/internal/value"
)

// decodeJSON reads one JSON value from dec keeping the key order of every
// object. Integers that fit int64 stay integers.
func decodeJSON(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := value.NewObject(0)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", keyTok)
				}
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			list := []any{}
			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case json.Number:
		return jsonNumber(t)
	default:
		return t, nil
	}
}

func jsonNumber(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, err
	}
	return f, nil
}

// parseJSON decodes exactly one JSON document from input.
func parseJSON(input string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the top-level value")
	}
	return v, nil
}

// fromYAMLNode converts a decoded yaml.v3 node tree, keeping mapping order.
// Aliases resolve to their anchors and merge keys (<<) are flattened.
func fromYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		obj := value.NewObject(len(n.Content) / 2)
		if err := mergeYAMLMapping(obj, n); err != nil {
			return nil, err
		}
		return obj, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return normalizeScalar(v), nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func mergeYAMLMapping(obj *value.Object, n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Tag == "!!merge" {
			if err := mergeYAMLSource(obj, v); err != nil {
				return err
			}
			continue
		}
		key := k.Value
		if k.Kind == yaml.AliasNode {
			key = k.Alias.Value
		}
		converted, err := fromYAMLNode(v)
		if err != nil {
			return err
		}
		obj.Set(key, converted)
	}
	return nil
}

func mergeYAMLSource(obj *value.Object, src *yaml.Node) error {
	if src.Kind == yaml.AliasNode {
		src = src.Alias
	}
	switch src.Kind {
	case yaml.MappingNode:
		return mergeYAMLMapping(obj, src)
	case yaml.SequenceNode:
		for _, c := range src.Content {
			if err := mergeYAMLSource(obj, c); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("line %d: merge value is not a mapping", src.Line)
}

// normalizeScalar maps decoder scalars onto the value model: timestamps
// become strings, and so do values with a String method.
func normalizeScalar(v any) any {
	switch s := v.(type) {
	case nil, bool, string, int64, float64:
		return v
	case int:
		return int64(s)
	case uint64:
		if s <= math.MaxInt64 {
			return int64(s)
		}
		return float64(s)
	case time.Time:
		return s.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return s.String()
	}
	return v
}

// toOrdered converts Go maps decoded without order into objects with
// sorted keys, recursively.
func toOrdered(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := value.NewObject(len(keys))
		for _, k := range keys {
			obj.Set(k, toOrdered(t[k]))
		}
		return obj
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toOrdered(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toOrdered(e)
		}
		return out
	}
	return normalizeScalar(v)
}
