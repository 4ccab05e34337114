package jsoninfo

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/structview/internal/formatter"
	"github.com/oakwood-commons/structview/internal/value"
)

func sample() any {
	inner := value.NewObject(2)
	inner.Set("name", "widget \"x\"\n")
	inner.Set("tags", []any{"a", "b", true, nil})
	root := value.NewObject(3)
	root.Set("id", 42)
	root.Set("ratio", 0.25)
	root.Set("items", []any{inner, []any{}, value.NewObject(0)})
	return root
}

func TestInfoMatchesCompactJSON(t *testing.T) {
	v := sample()
	b, err := json.Marshal(v)
	require.NoError(t, err)

	stats := Info(v, 0)
	require.False(t, stats.HasCircular())
	require.Equal(t, int64(len(b)), stats.MinLength)
}

func TestInfoMatchesIndentedJSON(t *testing.T) {
	v := sample()
	b, err := json.MarshalIndent(v, "", "    ")
	require.NoError(t, err)

	stats := Info(v, 4)
	require.Equal(t, int64(len(b)), stats.MinLength)
}

func TestInfoMatchesEncodedFloats(t *testing.T) {
	obj := value.NewObject(6)
	obj.Set("small", 0.000001)
	obj.Set("tiny", 1e-7)
	obj.Set("big", 1e21)
	obj.Set("nan", math.NaN())
	obj.Set("inf", math.Inf(-1))
	obj.Set("list", []any{1.5, 100.0})

	for _, indent := range []int{0, 2} {
		text, err := formatter.MarshalJSON(obj, indent)
		require.NoError(t, err)
		require.Equal(t, int64(len(text)), Info(obj, indent).MinLength, "indent %d: %s", indent, text)
	}
}

func TestInfoDetectsCircularReference(t *testing.T) {
	root := value.NewObject(2)
	child := value.NewObject(1)
	root.Set("child", child)
	child.Set("back", root)

	stats := Info(root, 0)
	require.True(t, stats.HasCircular())
	require.Equal(t, [][]any{{"child", "back"}}, stats.Circular)
}

func TestInfoSharedReferenceIsNotCircular(t *testing.T) {
	shared := []any{1, 2}
	root := []any{shared, shared}

	stats := Info(root, 0)
	require.False(t, stats.HasCircular())
	require.Equal(t, int64(len("[[1,2],[1,2]]")), stats.MinLength)
}

func TestInfoSharedStringIsCountedPerSlot(t *testing.T) {
	s := strings.Repeat("a", 1<<10)
	list := make([]any, 8)
	for i := range list {
		list[i] = s
	}

	stats := Info(list, 0)
	require.Equal(t, int64(2+8*(len(s)+2)+7), stats.MinLength)
}

func TestQuotedLen(t *testing.T) {
	for _, s := range []string{"", "plain", "tab\there", "\x01", "ü", "quote\"back\\slash"} {
		b, err := json.Marshal(s)
		require.NoError(t, err)
		require.Equal(t, int64(len(b)), quotedLen(s), s)
	}
}
