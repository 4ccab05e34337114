package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakwood-commons/structview/internal/value"
)

func TestFormatSignature_Scalar(t *testing.T) {
	out := FormatSignature("hello", SignatureOptions{Expanded: 2})
	assert.Equal(t, ".: string\n", out)
}

func TestFormatSignature_ObjectFieldsInOrder(t *testing.T) {
	obj := value.NewObject(3)
	obj.Set("name", "alice")
	obj.Set("tags", []any{"a", 1})
	obj.Set("meta", map[string]any{"x": nil})

	out := FormatSignature(obj, SignatureOptions{Expanded: 2, Path: "_.user"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "_.user: object", lines[0])
	assert.Contains(t, lines[1], "name: string")
	assert.Contains(t, lines[2], "tags: array<string | number>")
	assert.Contains(t, lines[3], "meta: object")
	assert.Contains(t, lines[4], "x: null")
}

func TestFormatSignature_MergesListElements(t *testing.T) {
	data := []any{
		map[string]any{"id": 1, "name": "a"},
		map[string]any{"id": 2},
	}
	out := FormatSignature(data, SignatureOptions{Expanded: 1})
	assert.Contains(t, out, ".: array<object>")
	assert.Contains(t, out, "id: number")
	assert.Contains(t, out, "name?: string")
}

func TestFormatSignature_DepthLimit(t *testing.T) {
	data := map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}
	out := FormatSignature(data, SignatureOptions{Expanded: 1})
	assert.Contains(t, out, "a: object")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "b: object")
}

func TestFormatSignature_Circular(t *testing.T) {
	obj := value.NewObject(1)
	obj.Set("self", obj)
	out := FormatSignature(obj, SignatureOptions{Expanded: 3})
	assert.Contains(t, out, "self: circular")
}
