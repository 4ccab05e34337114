package dom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestClassHelpers(t *testing.T) {
	n := New("span", "value")
	require.True(t, HasClass(n, "value"))

	AddClass(n, "a", "value", "b")
	require.Equal(t, []string{"value", "a", "b"}, Classes(n))

	RemoveClass(n, "a")
	require.Equal(t, []string{"value", "b"}, Classes(n))

	require.False(t, ToggleClass(n, "b"))
	require.True(t, ToggleClass(n, "b"))
	require.True(t, HasClass(n, "b"))

	RemoveClass(n, "value")
	RemoveClass(n, "b")
	_, ok := Attr(n, "class")
	require.False(t, ok)
}

func TestClosestAndFind(t *testing.T) {
	outer := New("div", "outer")
	mid := New("div", "mid")
	leaf := New("span", "leaf")
	outer.AppendChild(mid)
	mid.AppendChild(leaf)

	require.Equal(t, mid, Closest(leaf, ByClass("mid")))
	require.Equal(t, leaf, Closest(leaf, ByClass("leaf")))
	require.Nil(t, Closest(leaf, ByClass("missing")))
	require.Equal(t, leaf, Find(outer, ByClass("leaf")))
	require.Len(t, FindAll(outer, func(*html.Node) bool { return true }), 2)
}

func TestTextContentAndRender(t *testing.T) {
	n := New("div", "x")
	SetData(n, "action", "expand")
	AppendText(n, "a<")
	child := New("b")
	AppendText(child, "c")
	n.AppendChild(child)

	require.Equal(t, "a<c", TextContent(n))
	require.Equal(t, "expand", Data(n, "action"))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, n))
	require.Equal(t, `<div class="x" data-action="expand">a&lt;<b>c</b></div>`, buf.String())
}

func TestDispatchOrderAndStop(t *testing.T) {
	d := NewDocument()
	outer := New("div")
	inner := New("span")
	outer.AppendChild(inner)
	d.Body().AppendChild(outer)

	var order []string
	d.On(inner, "click", func(*Event) { order = append(order, "inner") })
	d.On(outer, "click", func(*Event) { order = append(order, "outer") })
	remove := d.AddGlobalListener("click", func(ev *Event) {
		order = append(order, "global")
		require.Equal(t, inner, ev.Target)
	})

	require.True(t, d.Click(inner))
	require.Equal(t, []string{"inner", "outer", "global"}, order)

	order = nil
	d.On(inner, "click", func(ev *Event) { ev.StopPropagation() })
	d.Click(inner)
	require.Equal(t, []string{"inner"}, order)

	remove()
	require.Equal(t, 0, d.GlobalListenerCount())
}

func TestDispatchIgnoresDetachedTargets(t *testing.T) {
	d := NewDocument()
	called := false
	d.AddGlobalListener("click", func(*Event) { called = true })

	require.False(t, d.Click(New("span")))
	require.False(t, called)
}

func TestReplaceChildrenRunsDetachHooks(t *testing.T) {
	d := NewDocument()
	parent := New("div")
	d.Body().AppendChild(parent)
	old := New("span")
	grand := New("i")
	old.AppendChild(grand)
	parent.AppendChild(old)
	d.On(grand, "click", func(*Event) {})

	var released []*html.Node
	d.OnDetach(func(n *html.Node) { released = append(released, n) })

	fresh := New("b")
	d.ReplaceChildren(parent, fresh)

	require.Equal(t, []*html.Node{old, grand}, released)
	require.Equal(t, fresh, parent.FirstChild)
	require.Nil(t, old.Parent)
	require.False(t, d.IsMounted(grand))
	require.NotContains(t, d.listeners, grand)
}

func TestOnDetachRemove(t *testing.T) {
	d := NewDocument()
	parent := New("div")
	d.Body().AppendChild(parent)

	var first, second int
	removeFirst := d.OnDetach(func(*html.Node) { first++ })
	d.OnDetach(func(*html.Node) { second++ })
	require.Equal(t, 2, d.DetachHookCount())

	d.ReplaceChildren(parent, New("span"))
	d.ReplaceChildren(parent)
	require.Equal(t, 1, first)
	require.Equal(t, 1, second)

	removeFirst()
	removeFirst()
	require.Equal(t, 1, d.DetachHookCount())

	parent.AppendChild(New("i"))
	d.ReplaceChildren(parent)
	require.Equal(t, 1, first)
	require.Equal(t, 2, second)
}

func TestHasListenerIsReleasedOnDetach(t *testing.T) {
	doc := NewDocument()
	btn := New("span")
	doc.Body().AppendChild(btn)
	require.False(t, doc.HasListener(btn, "click"))

	doc.On(btn, "click", func(*Event) {})
	require.True(t, doc.HasListener(btn, "click"))
	require.False(t, doc.HasListener(btn, "hover"))

	doc.Detach(btn)
	require.False(t, doc.HasListener(btn, "click"))
}
