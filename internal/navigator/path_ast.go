package navigator

import (
	"strconv"
	"strings"

	"github.com/oakwood-commons/structview/internal/value"
)

// Node represents a parsed segment of a path input.
// Path example: regions.asia.countries[0].city["postal-code"]
// CEL segments are treated as opaque for now.
type Node interface{}

// Field represents a simple dotted field name.
type Field struct {
	Name string
}

// QuotedKey represents a field accessed via bracket-quoted key: ["key"]
type QuotedKey struct {
	Name string
}

// ArrayIndex represents an array index like [0]
type ArrayIndex struct {
	Index int
}

// CelExpr represents an opaque CEL expression segment
// We keep it simple and detect by presence of '(' for now.
type CelExpr struct {
	Expr string
}

// RootVariable is the CEL variable bound to the viewed value.
const RootVariable = "_"

// ParsePath parses a path string into a slice of nodes.
// It supports dots, bracket indices, and bracket quoted keys. CEL is detected heuristically.
func ParsePath(input string) []Node {
	var nodes []Node
	if input == "" {
		return nodes
	}

	i := 0
	for i < len(input) {
		ch := input[i]
		if ch == '.' {
			i++
			continue
		}
		if ch == '[' {
			end := strings.IndexByte(input[i:], ']')
			if end == -1 {
				// incomplete bracket, treat as pending and stop
				break
			}
			segment := input[i+1 : i+end]
			if strings.HasPrefix(segment, "\"") && strings.HasSuffix(segment, "\"") && len(segment) >= 2 {
				name := segment[1 : len(segment)-1]
				if unquoted, err := value.Unquote(name); err == nil {
					name = unquoted
				}
				nodes = append(nodes, QuotedKey{Name: name})
			} else if n, err := strconv.Atoi(segment); err == nil {
				nodes = append(nodes, ArrayIndex{Index: n})
			} else {
				nodes = append(nodes, Field{Name: segment})
			}
			i += end + 1
			continue
		}
		if strings.IndexByte(input[i:], '(') == 0 {
			nodes = append(nodes, CelExpr{Expr: input[i:]})
			break
		}
		j := i
		for j < len(input) && input[j] != '.' && input[j] != '[' {
			j++
		}
		if name := input[i:j]; name != "" {
			nodes = append(nodes, Field{Name: name})
		}
		i = j
	}
	return nodes
}

// ReconstructPath rebuilds a path string from nodes.
func ReconstructPath(nodes []Node) string {
	var b strings.Builder
	for idx, n := range nodes {
		switch v := n.(type) {
		case Field:
			if idx > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v.Name)
		case QuotedKey:
			b.WriteByte('[')
			b.WriteString(value.Quote(v.Name))
			b.WriteByte(']')
		case ArrayIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v.Index))
			b.WriteByte(']')
		case CelExpr:
			if idx > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v.Expr)
		}
	}
	return b.String()
}

// FromKeys converts a list of slot keys (strings for object keys, ints for
// list indices) into path nodes.
func FromKeys(keys []any) []Node {
	nodes := make([]Node, 0, len(keys))
	for _, k := range keys {
		switch t := k.(type) {
		case int:
			nodes = append(nodes, ArrayIndex{Index: t})
		case string:
			if IsIdentifier(t) {
				nodes = append(nodes, Field{Name: t})
			} else {
				nodes = append(nodes, QuotedKey{Name: t})
			}
		}
	}
	return nodes
}

// FormatPath renders slot keys as a CEL expression rooted at "_", e.g.
// ["x", 0, "y"] becomes _.x[0].y. An empty path yields "".
func FormatPath(keys []any) string {
	if len(keys) == 0 {
		return ""
	}
	nodes := append([]Node{Field{Name: RootVariable}}, FromKeys(keys)...)
	return ReconstructPath(nodes)
}

var celReserved = map[string]bool{
	"true": true, "false": true, "null": true, "in": true,
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"for": true, "function": true, "if": true, "import": true, "let": true,
	"loop": true, "package": true, "namespace": true, "return": true,
	"var": true, "void": true, "while": true,
}

// IsIdentifier reports whether s can be written as a dotted CEL field.
func IsIdentifier(s string) bool {
	if s == "" || celReserved[s] {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		letter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if i == 0 && !letter {
			return false
		}
		if !letter && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
