package formatter

import (
	"fmt"
	"strings"
)

// Stringify returns a compact single-line representation of v. Strings are
// returned bare with line breaks escaped; containers become compact JSON.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return escapeLineBreaks(t)
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	}
	if s, err := MarshalJSON(v, 0); err == nil {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// escapeLineBreaks keeps scalar strings on one line. Carriage returns are
// normalized to newlines first.
func escapeLineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}
