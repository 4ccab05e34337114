// Package jsoninfo estimates the serialized size of a value without
// producing the JSON text, and reports circular references on the way.
package jsoninfo

import (
	"encoding/json"
	"math"
	"strconv"
	"unicode/utf8"
	"unsafe"

	"github.com/oakwood-commons/structview/internal/value"
)

// Stats is the result of a size walk.
type Stats struct {
	// MinLength is the byte length of the JSON output. Circular branches
	// are not counted.
	MinLength int64
	// Circular lists the paths at which a value refers back to one of its
	// own ancestors.
	Circular [][]any
}

// HasCircular reports whether any circular reference was found.
func (s Stats) HasCircular() bool {
	return len(s.Circular) > 0
}

type stringKey struct {
	data *byte
	n    int
}

type walker struct {
	indent    int
	stack     map[uintptr]struct{}
	path      []any
	stats     Stats
	quotedLen map[stringKey]int64
}

// Info walks v the way JSON.stringify(v, null, indent) would and returns
// the length of the output. indent 0 means compact output.
func Info(v any, indent int) Stats {
	w := &walker{
		indent:    indent,
		stack:     make(map[uintptr]struct{}),
		quotedLen: make(map[stringKey]int64),
	}
	w.walk(v, 0)
	return w.stats
}

func (w *walker) add(n int64) {
	w.stats.MinLength += n
}

func (w *walker) newline(depth int) {
	if w.indent > 0 {
		w.add(1 + int64(w.indent*depth))
	}
}

func (w *walker) walk(v any, depth int) {
	switch t := v.(type) {
	case nil:
		w.add(4)
	case bool:
		if t {
			w.add(4)
		} else {
			w.add(5)
		}
	case string:
		w.add(w.stringLen(t))
	case int:
		w.add(int64(len(strconv.Itoa(t))))
	case int64:
		w.add(int64(len(strconv.FormatInt(t, 10))))
	case float64:
		w.add(floatLen(t))
	case json.Number:
		w.add(int64(len(t)))
	case []any, *value.Object, map[string]any:
		w.walkContainer(t, depth)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			w.add(4)
			return
		}
		w.add(int64(len(b)))
	}
}

func (w *walker) walkContainer(v any, depth int) {
	isList := value.KindOf(v) == value.KindList
	entries := value.Entries(v)
	if len(entries) == 0 {
		w.add(2)
		return
	}

	id, ok := value.Identity(v)
	if ok {
		if _, seen := w.stack[id]; seen {
			w.stats.Circular = append(w.stats.Circular, append([]any(nil), w.path...))
			return
		}
		w.stack[id] = struct{}{}
		defer delete(w.stack, id)
	}

	w.add(1)
	for i, e := range entries {
		if i > 0 {
			w.add(1)
		}
		w.newline(depth + 1)
		if !isList {
			w.add(w.stringLen(e.Key.(string)) + 1)
			if w.indent > 0 {
				w.add(1)
			}
		}
		w.path = append(w.path, e.Key)
		w.walk(e.Value, depth+1)
		w.path = w.path[:len(w.path)-1]
	}
	w.newline(depth)
	w.add(1)
}

// stringLen returns the length of the quoted form of s. Results are cached
// by backing array so a string shared across many slots is scanned once.
func (w *walker) stringLen(s string) int64 {
	key := stringKey{data: unsafe.StringData(s), n: len(s)}
	if n, ok := w.quotedLen[key]; ok {
		return n
	}
	n := quotedLen(s)
	w.quotedLen[key] = n
	return n
}

func quotedLen(s string) int64 {
	n := int64(2)
	for i := 0; i < len(s); {
		b := s[i]
		if b < utf8.RuneSelf {
			switch {
			case b == '"' || b == '\\':
				n += 2
			case b == '\n' || b == '\r' || b == '\t' || b == '\b' || b == '\f':
				n += 2
			case b < 0x20:
				n += 6
			default:
				n++
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			n += 6
		case r == '\u2028' || r == '\u2029':
			n += 6
		default:
			n += int64(size)
		}
		i += size
	}
	return n
}

// floatLen matches the ordered JSON encoder: NaN and infinities are
// written as null, everything else the way encoding/json formats it.
func floatLen(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 4
	}
	b, err := json.Marshal(f)
	if err != nil {
		return 4
	}
	return int64(len(b))
}
