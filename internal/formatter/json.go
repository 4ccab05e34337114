package formatter

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/oakwood-commons/structview/internal/value"
)

// ErrCircular is returned when a value refers back to one of its ancestors.
var ErrCircular = value.ErrCircular

// MarshalJSON encodes v with object keys in insertion order and without
// HTML escaping. indent > 0 produces one entry per line indented by that
// many spaces; 0 produces compact output.
func MarshalJSON(v any, indent int) (string, error) {
	e := &jsonEncoder{stack: make(map[uintptr]struct{})}
	if indent > 0 {
		e.indent = strings.Repeat(" ", indent)
	}
	if err := e.encode(v, 0); err != nil {
		return "", err
	}
	return e.buf.String(), nil
}

type jsonEncoder struct {
	buf    bytes.Buffer
	indent string
	stack  map[uintptr]struct{}
}

func (e *jsonEncoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		e.buf.WriteString(e.indent)
	}
}

func (e *jsonEncoder) encode(v any, depth int) error {
	switch t := v.(type) {
	case nil:
		e.buf.WriteString("null")
	case bool:
		e.buf.WriteString(strconv.FormatBool(t))
	case string:
		e.buf.WriteString(value.Quote(t))
	case int:
		e.buf.WriteString(strconv.Itoa(t))
	case int64:
		e.buf.WriteString(strconv.FormatInt(t, 10))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			e.buf.WriteString("null")
			return nil
		}
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		e.buf.Write(b)
	case json.Number:
		e.buf.WriteString(t.String())
	case []any, *value.Object, map[string]any:
		return e.encodeContainer(t, depth)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		e.buf.Write(b)
	}
	return nil
}

func (e *jsonEncoder) encodeContainer(v any, depth int) error {
	isList := value.KindOf(v) == value.KindList
	open, closing := byte('{'), byte('}')
	if isList {
		open, closing = '[', ']'
	}

	entries := value.Entries(v)
	if len(entries) == 0 {
		e.buf.WriteByte(open)
		e.buf.WriteByte(closing)
		return nil
	}

	if id, ok := value.Identity(v); ok {
		if _, seen := e.stack[id]; seen {
			return ErrCircular
		}
		e.stack[id] = struct{}{}
		defer delete(e.stack, id)
	}

	e.buf.WriteByte(open)
	for i, entry := range entries {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		if !isList {
			e.buf.WriteString(value.Quote(entry.Key.(string)))
			e.buf.WriteByte(':')
			if e.indent != "" {
				e.buf.WriteByte(' ')
			}
		}
		if err := e.encode(entry.Value, depth+1); err != nil {
			return err
		}
	}
	e.newline(depth)
	e.buf.WriteByte(closing)
	return nil
}
