package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/structview/internal/value"
)

func TestTryDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "empty", input: "", want: false},
		{name: "plain", input: "hello", want: false},
		{name: "number", input: "42", want: false},
		{name: "json object", input: `{"a": 1}`, want: true},
		{name: "json list", input: `[1, 2]`, want: true},
		{name: "yaml mapping", input: "a: 1\nb: 2", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := TryDecode(tt.input)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestRecursiveDecode(t *testing.T) {
	in := value.NewObject(2)
	in.Set("payload", `{"inner": "[1, 2]", "name": "x"}`)
	in.Set("plain", "text")

	out := RecursiveDecode(in)
	require.NotSame(t, in, out)

	payload := field(t, out, "payload")
	assert.Equal(t, []string{"inner", "name"}, keys(t, payload))
	assert.Equal(t, []any{int64(1), int64(2)}, field(t, payload, "inner"))
	assert.Equal(t, "text", field(t, out, "plain"))

	original, _ := in.Get("payload")
	assert.IsType(t, "", original, "input is not modified")
}

func TestRecursiveDecodeGoMaps(t *testing.T) {
	out := RecursiveDecode(map[string]any{"b": "[true]", "a": 1})
	assert.Equal(t, []string{"a", "b"}, keys(t, out))
	assert.Equal(t, []any{true}, field(t, out, "b"))
}

func TestRecursiveDecodeDepthLimit(t *testing.T) {
	var v any = "leaf"
	for i := 0; i < maxDecodeDepth+5; i++ {
		v = []any{v}
	}
	assert.NotPanics(t, func() { RecursiveDecode(v) })
}
