package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/structview/internal/value"
)

// YAMLFormatOptions control YAML rendering.
type YAMLFormatOptions struct {
	Indent              int
	LiteralBlockStrings bool
}

// FormatYAML renders a value to YAML, keeping object key order. Multi-line
// strings can be emitted as literal blocks ("|") to preserve newlines.
func FormatYAML(v any, opts YAMLFormatOptions) (string, error) {
	node, err := toYAMLNode(v, make(map[uintptr]struct{}))
	if err != nil {
		return "", err
	}
	if opts.LiteralBlockStrings {
		applyLiteralStyle(node)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func scalarNode(tag, v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v}
}

func toYAMLNode(v any, stack map[uintptr]struct{}) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return scalarNode("!!null", "null"), nil
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(t)), nil
	case string:
		return scalarNode("!!str", t), nil
	case int:
		return scalarNode("!!int", strconv.Itoa(t)), nil
	case int64:
		return scalarNode("!!int", strconv.FormatInt(t, 10)), nil
	case float64:
		return scalarNode("!!float", strconv.FormatFloat(t, 'g', -1, 64)), nil
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return scalarNode("!!int", t.String()), nil
		}
		return scalarNode("!!float", t.String()), nil
	case []any, *value.Object, map[string]any:
	default:
		node := &yaml.Node{}
		if err := node.Encode(t); err != nil {
			return nil, fmt.Errorf("encode %T: %w", t, err)
		}
		return node, nil
	}

	if id, ok := value.Identity(v); ok {
		if _, seen := stack[id]; seen {
			return nil, ErrCircular
		}
		stack[id] = struct{}{}
		defer delete(stack, id)
	}

	isList := value.KindOf(v) == value.KindList
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if isList {
		node = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	}
	for _, e := range value.Entries(v) {
		child, err := toYAMLNode(e.Value, stack)
		if err != nil {
			return nil, err
		}
		if !isList {
			node.Content = append(node.Content, scalarNode("!!str", e.Key.(string)))
		}
		node.Content = append(node.Content, child)
	}
	return node, nil
}

func applyLiteralStyle(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		applyLiteralStyle(c)
	}
}
