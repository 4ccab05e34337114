package formatter

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/structview/internal/value"
)

func TestStringify(t *testing.T) {
	type info struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	ordered := value.NewObject(2)
	ordered.Set("b", "<tag>")
	ordered.Set("a", 1)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", "hello"},
		{"newlines escaped", "line1\nline2\r\nline3", `line1\nline2\nline3`},
		{"nil", nil, ""},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"int64", int64(123), "123"},
		{"float", 3.25, "3.25"},
		{"map sorted", map[string]any{"num": 42, "key": "value"}, `{"key":"value","num":42}`},
		{"object keeps order", ordered, `{"b":"<tag>","a":1}`},
		{"list", []any{1, "x", nil}, `[1,"x",null]`},
		{"struct pointer", &info{ID: 1, Name: "test"}, `{"id":1,"name":"test"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stringify(tt.in); got != tt.want {
				t.Fatalf("Stringify(%#v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStringifyCircularFallsBack(t *testing.T) {
	obj := value.NewObject(1)
	obj.Set("self", obj)
	if got := Stringify(obj); got == "" {
		t.Fatalf("expected a non-empty fallback for circular values")
	}
}

func TestFormatYAMLLiteralBlock(t *testing.T) {
	obj := map[string]any{
		"name":  "demo",
		"notes": "line1\nline2",
	}

	out, err := FormatYAML(obj, YAMLFormatOptions{Indent: 2, LiteralBlockStrings: true})
	if err != nil {
		t.Fatalf("format yaml: %v", err)
	}

	if !strings.Contains(out, "notes: |\n  line1\n  line2") && !strings.Contains(out, "notes: |-\n  line1\n  line2") {
		t.Fatalf("expected literal block for multiline string, got:\n%s", out)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("unmarshal formatted yaml: %v", err)
	}
	if decoded["notes"] != "line1\nline2" {
		t.Fatalf("expected decoded notes to match, got %#v", decoded["notes"])
	}
}

func TestFormatYAMLKeepsKeyOrder(t *testing.T) {
	obj := value.NewObject(2)
	obj.Set("zeta", []any{1, "two", nil})
	obj.Set("alpha", true)

	out, err := FormatYAML(obj, YAMLFormatOptions{})
	if err != nil {
		t.Fatalf("format yaml: %v", err)
	}
	zeta, alpha := strings.Index(out, "zeta:"), strings.Index(out, "alpha: true")
	if zeta < 0 || alpha < zeta {
		t.Fatalf("expected zeta before alpha, got:\n%s", out)
	}
	for _, item := range []string{"- 1", "- two", "- null"} {
		if !strings.Contains(out, item) {
			t.Fatalf("expected %q in output, got:\n%s", item, out)
		}
	}
}

func TestFormatYAMLCircular(t *testing.T) {
	obj := value.NewObject(1)
	obj.Set("self", obj)
	if _, err := FormatYAML(obj, YAMLFormatOptions{}); !errors.Is(err, ErrCircular) {
		t.Fatalf("expected ErrCircular, got %v", err)
	}
}
