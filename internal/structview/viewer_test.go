package structview

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/cel"
	"github.com/oakwood-commons/structview/internal/clipboard"
	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/value"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	v    *Viewer
	doc  *dom.Document
	clip *clipboard.Recorder
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	eval, err := cel.NewEvaluator()
	require.NoError(t, err)

	doc := dom.NewDocument()
	clip := &clipboard.Recorder{}
	v, err := New(doc, append([]Option{WithQuerier(eval), WithClipboard(clip)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return &harness{v: v, doc: doc, clip: clip}
}

// mount renders data into a fresh root element of the document body.
func (h *harness) mount(t *testing.T, data any, cfg Config) (*html.Node, *html.Node) {
	t.Helper()
	root := dom.New("div")
	h.doc.Body().AppendChild(root)
	el, err := h.v.Render(root, data, cfg)
	require.NoError(t, err)
	return root, el
}

func object(kv ...any) *value.Object {
	o := value.NewObject(len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

// button returns the direct child control of el with the given action.
func button(el *html.Node, action string) *html.Node {
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if dom.HasClass(c, classActionButton) && dom.Data(c, "action") == action {
			return c
		}
	}
	return nil
}

func entryLines(el *html.Node) []*html.Node {
	var lines []*html.Node
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if dom.HasClass(c, "entry-line") {
			lines = append(lines, c)
		}
	}
	return lines
}

// entryValues returns the value elements of the rendered entries of el.
func entryValues(el *html.Node) []*html.Node {
	var out []*html.Node
	for _, line := range entryLines(el) {
		out = append(out, dom.Find(line, dom.ByClass("value")))
	}
	return out
}

func keysOf(el *html.Node) []string {
	var keys []string
	for _, line := range entryLines(el) {
		keys = append(keys, dom.TextContent(dom.Find(line, dom.ByClass("property"))))
	}
	return keys
}

func TestRenderCollapsedInline(t *testing.T) {
	h := newHarness(t)
	data := object("a", 1, "b", "x", "c", []any{1, 2}, "d", value.NewObject(0), "e", nil, "f", true)
	root, el := h.mount(t, data, Config{})

	assert.Equal(t, `{a: 1, b: "x", c: […], d: {}, …2 more}`, dom.TextContent(el))
	assert.True(t, dom.HasClass(root, "view-struct"))
	assert.True(t, dom.HasClass(root, "struct-expand"))
	assert.True(t, dom.HasClass(el, "struct-expand-value"))
	id, ok := dom.Attr(root, "data-struct-instance")
	require.True(t, ok)
	assert.Equal(t, h.v.ID(), id)
	assert.NotNil(t, button(el, ActionValueActions))
	assert.NotNil(t, button(el, ActionShowSignature))
}

func TestRenderCollapsedLimit(t *testing.T) {
	h := newHarness(t)
	list := make([]any, 10)
	for i := range list {
		list[i] = i
	}

	_, el := h.mount(t, list, Config{})
	assert.Equal(t, "[0, 1, 2, 3, …6 more]", dom.TextContent(el))

	_, el = h.mount(t, list, Config{LimitCollapsed: false})
	assert.Equal(t, "[0, 1, 2, 3, 4, 5, 6, 7, 8, 9]", dom.TextContent(el))

	_, el = h.mount(t, list, Config{LimitCollapsed: 2})
	assert.Equal(t, "[0, 1, …8 more]", dom.TextContent(el))
}

func TestRenderScalarsAreNotExpandable(t *testing.T) {
	h := newHarness(t)
	for _, data := range []any{nil, false, 42, 1.5, "short", []any{}, value.NewObject(0)} {
		root, el := h.mount(t, data, Config{Expanded: 3})
		assert.False(t, dom.HasClass(el, "struct-expand-value"), "%v", data)
		assert.False(t, dom.HasClass(root, "struct-expand"), "%v", data)
		assert.False(t, h.v.Expanded(el))
	}
}

func TestLongStringsAreClipped(t *testing.T) {
	h := newHarness(t)
	long := strings.Repeat("a", 200)

	_, el := h.mount(t, long, Config{})
	assert.Equal(t, `"`+strings.Repeat("a", 150)+`…"`, dom.TextContent(el))
	assert.True(t, dom.HasClass(el, "struct-expand-value"))

	_, el = h.mount(t, []any{long}, Config{})
	assert.Equal(t, `["`+strings.Repeat("a", 50)+`…"]`, dom.TextContent(el))

	_, el = h.mount(t, long, Config{MaxStringLength: 300})
	assert.False(t, dom.HasClass(el, "struct-expand-value"))
}

func TestExpandCollapseRoundTrip(t *testing.T) {
	values := map[string]any{
		"object":    object("b", 1, "a", []any{1, 2, 3}),
		"list":      []any{"x", object("y", nil), 3.5},
		"long":      strings.Repeat("long text ", 30),
		"multiline": "first\nsecond",
		"map":       map[string]any{"z": 1, "a": 2},
	}
	for name, data := range values {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			root, el := h.mount(t, data, Config{})
			collapsed := dom.TextContent(el)

			h.v.Expand(el, 0, false)
			assert.True(t, h.v.Expanded(el))
			assert.NotEqual(t, collapsed, dom.TextContent(el))
			assert.False(t, dom.HasClass(root, "struct-expand"))
			assert.True(t, dom.HasClass(root, "struct-expanded-value"))

			h.v.Collapse(el)
			assert.False(t, h.v.Expanded(el))
			assert.Equal(t, collapsed, dom.TextContent(el))
			assert.True(t, dom.HasClass(root, "struct-expand"))
			assert.False(t, dom.HasClass(root, "struct-expanded-value"))
		})
	}
}

func TestExpandString(t *testing.T) {
	h := newHarness(t)
	_, el := h.mount(t, "a\nb", Config{})

	h.v.Expand(el, 0, false)
	assert.Equal(t, `length: 6 chars "a\nb"`, dom.TextContent(el))
	assert.Empty(t, entryLines(el))

	toggle := button(el, ActionToggleStringMode)
	require.NotNil(t, toggle)
	h.doc.Click(toggle)
	assert.True(t, dom.HasClass(el, "string-value-as-text"))
	assert.Equal(t, "a\nb", dom.TextContent(dom.Find(el, dom.ByClass("string-text"))))

	h.doc.Click(toggle)
	assert.False(t, dom.HasClass(el, "string-value-as-text"))
	assert.Equal(t, `a\nb`, dom.TextContent(dom.Find(el, dom.ByClass("string-text"))))
}

func TestExpandSizes(t *testing.T) {
	h := newHarness(t)

	_, el := h.mount(t, []any{1, 2, 3}, Config{Expanded: 1})
	assert.Equal(t, "3 elements", dom.TextContent(dom.Find(el, dom.ByClass("value-size"))))
	assert.Equal(t, "[3 elements1,2,3]", dom.TextContent(el))

	_, el = h.mount(t, []any{1}, Config{Expanded: 1})
	assert.Empty(t, dom.TextContent(dom.Find(el, dom.ByClass("value-size"))))

	_, el = h.mount(t, object("a", 1, "b", 2), Config{Expanded: 1})
	assert.Equal(t, "2 entries", dom.TextContent(dom.Find(el, dom.ByClass("value-size"))))
}

func TestAutoExpandDepth(t *testing.T) {
	h := newHarness(t)
	data := object("x", []any{object("y", 1)}, "s", strings.Repeat("s", 200))
	_, el := h.mount(t, data, Config{Expanded: 2})

	require.True(t, h.v.Expanded(el))
	children := entryValues(el)
	require.Len(t, children, 2)
	assert.True(t, h.v.Expanded(children[0]))
	assert.True(t, dom.HasClass(children[0].Parent, "struct-expanded-value"))
	assert.False(t, h.v.Expanded(children[1]), "strings are never auto-expanded")

	inner := entryValues(children[0])
	require.Len(t, inner, 1)
	assert.False(t, h.v.Expanded(inner[0]))
	assert.True(t, dom.HasClass(inner[0], "struct-expand-value"))
}

func TestAutoExpandDepthIsCapped(t *testing.T) {
	var data any = 1
	for i := 0; i < MaxAutoExpandDepth+10; i++ {
		data = []any{data}
	}
	h := newHarness(t)
	_, el := h.mount(t, data, Config{Expanded: 1000})

	depth := 0
	for cur := el; h.v.Expanded(cur); cur = entryValues(cur)[0] {
		depth++
	}
	assert.Equal(t, MaxAutoExpandDepth, depth)
}

func TestPaginationShowMore(t *testing.T) {
	const n, limit = 23, 5
	list := make([]any, n)
	for i := range list {
		list[i] = i
	}
	h := newHarness(t)
	_, el := h.mount(t, list, Config{Expanded: 1, Limit: limit})
	require.Len(t, entryLines(el), limit)

	for clicks := 0; ; clicks++ {
		require.Less(t, clicks, n, "pagination did not terminate")
		more := dom.Find(el, dom.ByClass("more-button"))
		if more == nil {
			break
		}
		assert.True(t, strings.HasPrefix(dom.TextContent(more), "Show "))
		h.doc.Click(more)
	}

	lines := entryLines(el)
	require.Len(t, lines, n)
	values := entryValues(el)
	for i, line := range lines {
		want := strconv.Itoa(i)
		assert.Equal(t, want, dom.TextContent(values[i]))
		if i < n-1 {
			want += ","
		}
		assert.Equal(t, want, dom.TextContent(line), "entry %d", i)
		assert.Equal(t, []any{i}, h.v.Path(values[i]))
	}
	assert.Nil(t, dom.Find(el, dom.ByClass("more-buttons")))
}

func TestPaginationShowAll(t *testing.T) {
	list := make([]any, 12)
	for i := range list {
		list[i] = i
	}
	h := newHarness(t)
	_, el := h.mount(t, list, Config{Expanded: 1, Limit: 5})

	buttons := dom.FindAll(el, dom.ByClass("more-button"))
	require.Len(t, buttons, 2)
	assert.Equal(t, "Show 5 more...", dom.TextContent(buttons[0]))
	assert.Equal(t, "Show all the rest 7 items...", dom.TextContent(buttons[1]))

	h.doc.Click(buttons[1])
	require.Len(t, entryLines(el), 12)
	assert.Nil(t, dom.Find(el, dom.ByClass("more-buttons")))
	assert.Equal(t, "]", el.LastChild.Data)
}

func TestPaginationKeepsEntryState(t *testing.T) {
	list := []any{[]any{1, 2}, 1, 2, 3}
	h := newHarness(t)
	_, el := h.mount(t, list, Config{Expanded: 1, Limit: 2})

	first := entryValues(el)[0]
	h.v.Expand(first, 0, false)
	h.doc.Click(dom.Find(el, dom.ByClass("more-button")))

	assert.Len(t, entryLines(el), 4)
	assert.Same(t, first, entryValues(el)[0])
	assert.True(t, h.v.Expanded(first))
}

func TestSortKeys(t *testing.T) {
	h := newHarness(t)

	_, sorted := h.mount(t, object("a", 1, "b", 2, "c", 3), Config{Expanded: 1})
	assert.Nil(t, button(sorted, ActionToggleSortKeys))
	assert.Equal(t, []string{"a", "b", "c"}, keysOf(sorted))

	_, el := h.mount(t, object("b", 1, "a", 2), Config{Expanded: 1})
	assert.Equal(t, []string{"b", "a"}, keysOf(el))

	h.doc.Click(button(el, ActionToggleSortKeys))
	assert.Equal(t, []string{"a", "b"}, keysOf(el))
	assert.Equal(t, "2", dom.TextContent(entryValues(el)[0]))
	assert.True(t, dom.HasClass(el, "sort-keys"))

	h.doc.Click(button(el, ActionToggleSortKeys))
	assert.Equal(t, []string{"b", "a"}, keysOf(el))
	assert.False(t, dom.HasClass(el, "sort-keys"))
}

func TestSortKeysSurvivesCollapse(t *testing.T) {
	h := newHarness(t)
	_, el := h.mount(t, object("b", 1, "a", 2), Config{Expanded: 1})
	h.doc.Click(button(el, ActionToggleSortKeys))

	h.doc.Click(button(el, ActionCollapse))
	require.False(t, h.v.Expanded(el))
	h.doc.Click(el)
	require.True(t, h.v.Expanded(el))
	assert.Equal(t, []string{"a", "b"}, keysOf(el))
}

func TestDuplicateLookingKeysAreNotSorted(t *testing.T) {
	assert.True(t, keysSorted(nil))
	assert.True(t, keysSorted([]value.Entry{{Key: "A"}, {Key: "a"}}))
	assert.False(t, keysSorted([]value.Entry{{Key: "a"}, {Key: "A"}}))
	assert.False(t, keysSorted([]value.Entry{{Key: "a"}, {Key: "a"}}))
}

func TestMatchHighlighting(t *testing.T) {
	h := newHarness(t)
	_, el := h.mount(t, object("banana", 1), Config{Expanded: 1, Match: regexp.MustCompile("na")})

	key := dom.Find(entryLines(el)[0], dom.ByClass("property"))
	matches := dom.FindAll(key, dom.ByClass("match"))
	require.Len(t, matches, 2)
	assert.Equal(t, "banana", dom.TextContent(key))
	assert.Equal(t, "ba", key.FirstChild.Data)
}

func TestPathReconstruction(t *testing.T) {
	h := newHarness(t)
	_, root := h.mount(t, object("x", []any{object("y", 1)}), Config{Expanded: 3})

	list := entryValues(root)[0]
	item := entryValues(list)[0]
	leaf := entryValues(item)[0]

	assert.Empty(t, h.v.Path(root))
	assert.Equal(t, []any{"x"}, h.v.Path(list))
	assert.Equal(t, []any{"x", 0, "y"}, h.v.Path(leaf))
	got, ok := h.v.Value(leaf)
	require.True(t, ok)
	assert.Equal(t, 1, got)

	items := h.v.ValueActions(leaf)
	require.NotEmpty(t, items)
	assert.Equal(t, "Copy path:", items[0].Text)
	assert.Equal(t, "_.x[0].y", items[0].Notes)

	for _, item := range h.v.ValueActions(root) {
		assert.NotEqual(t, "Copy path:", item.Text)
	}
}

func TestRegistryFollowsMountedTree(t *testing.T) {
	h := newHarness(t)
	data := object("a", []any{1, 2, 3}, "b", object("c", 1))
	_, el := h.mount(t, data, Config{})
	require.Equal(t, 1, h.v.Size())

	h.v.Expand(el, 3, false)
	assert.Equal(t, 1+2+3+1, h.v.Size())

	h.v.Collapse(el)
	assert.Equal(t, 1, h.v.Size())
}

func TestClickExpandsViewRoot(t *testing.T) {
	h := newHarness(t)
	root, el := h.mount(t, []any{1, 2}, Config{})

	h.doc.Click(root)
	assert.True(t, h.v.Expanded(el))
	assert.False(t, dom.HasClass(root, "struct-expand"))

	h.doc.Click(button(el, ActionCollapse))
	assert.False(t, h.v.Expanded(el))
	assert.True(t, dom.HasClass(root, "struct-expand"))
}

func TestClickOnNestedCollapsedValue(t *testing.T) {
	h := newHarness(t)
	_, el := h.mount(t, []any{[]any{1, 2}}, Config{Expanded: 1})
	child := entryValues(el)[0]
	require.False(t, h.v.Expanded(child))

	h.doc.Click(dom.Find(child, dom.ByClass("number")))
	assert.True(t, h.v.Expanded(child))
	assert.True(t, h.v.Expanded(el))
}

func TestClickIgnoresForeignAndStaleTargets(t *testing.T) {
	h := newHarness(t)
	_, el := h.mount(t, []any{[]any{1}}, Config{Expanded: 1})
	child := entryValues(el)[0]

	h.v.Collapse(el)
	assert.False(t, h.doc.Click(child), "detached targets are not dispatched")
	assert.False(t, h.v.Expanded(el))

	outside := dom.New("span", classExpandValue)
	h.doc.Body().AppendChild(outside)
	h.doc.Click(outside)
	assert.Equal(t, 1, h.v.Size())
}

func TestViewersDoNotCrossTrigger(t *testing.T) {
	h := newHarness(t)
	other, err := New(h.doc, WithQuerier(h.v.querier))
	require.NoError(t, err)
	t.Cleanup(other.Close)

	root := dom.New("div")
	h.doc.Body().AppendChild(root)
	el, err := other.Render(root, []any{1, 2}, Config{})
	require.NoError(t, err)

	assert.True(t, other.owns(el))
	assert.False(t, h.v.owns(el))

	h.doc.Click(el)
	assert.True(t, other.Expanded(el))
	assert.Equal(t, 0, h.v.Size())
}

func TestCloseRemovesListeners(t *testing.T) {
	doc := dom.NewDocument()
	eval, err := cel.NewEvaluator()
	require.NoError(t, err)
	before := doc.GlobalListenerCount()

	v, err := New(doc, WithQuerier(eval))
	require.NoError(t, err)
	assert.Greater(t, doc.GlobalListenerCount(), before)
	assert.Equal(t, 1, doc.DetachHookCount())

	root := dom.New("div")
	doc.Body().AppendChild(root)
	el, err := v.Render(root, []any{1, 2}, Config{})
	require.NoError(t, err)

	v.Close()
	assert.Equal(t, before, doc.GlobalListenerCount())
	assert.Equal(t, 0, doc.DetachHookCount())
	doc.Click(el)
	assert.True(t, dom.HasClass(el, classExpandValue))

	_, err = v.Render(dom.New("div"), 1, Config{})
	require.ErrorIs(t, err, ErrClosed)
	v.Close()
}
