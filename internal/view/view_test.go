package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/limiter"
)

func TestRegistryRenderUnknownView(t *testing.T) {
	r := NewRegistry(dom.NewDocument())
	err := r.Render(context.Background(), dom.New("div"), Config{View: "nope"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `view "nope" is not defined`)
	assert.Equal(t, []string{"menu", "signature"}, r.Names())
}

func TestRegistryDefineWrapsErrors(t *testing.T) {
	r := NewRegistry(dom.NewDocument())
	boom := errors.New("boom")
	r.Define("broken", func(context.Context, *Registry, *html.Node, Config, any) error { return boom })
	err := r.Render(context.Background(), dom.New("div"), Config{View: "broken"}, nil)
	require.ErrorIs(t, err, boom)
}

func TestMenuView(t *testing.T) {
	doc := dom.NewDocument()
	r := NewRegistry(doc)
	el := dom.New("div")
	doc.Body().AppendChild(el)

	var clicked []string
	items := []MenuItem{
		{Text: "Copy path:", Notes: "_.x"},
		{Text: "Copy as JSON", Notes: "(compact)", Error: "too big", Disabled: true},
	}
	err := r.Render(context.Background(), el, Config{
		View:      "menu",
		ClassName: "actions",
		OnClick:   func(item MenuItem) { clicked = append(clicked, item.Text) },
	}, items)
	require.NoError(t, err)

	menu := dom.Find(el, dom.ByClass("view-menu", "actions"))
	require.NotNil(t, menu)
	entries := dom.FindAll(menu, dom.ByClass("view-menu-item"))
	require.Len(t, entries, 2)
	assert.Equal(t, "Copy path:_.x", dom.TextContent(entries[0]))
	assert.True(t, dom.HasClass(entries[1], "disabled"))
	assert.Equal(t, "too big", dom.TextContent(dom.Find(entries[1], dom.ByClass("error"))))

	doc.Click(entries[0])
	doc.Click(entries[1])
	assert.Equal(t, []string{"Copy path:"}, clicked)
}

func TestMenuViewRejectsOtherData(t *testing.T) {
	r := NewRegistry(dom.NewDocument())
	err := r.Render(context.Background(), dom.New("div"), Config{View: "menu"}, "nope")
	require.Error(t, err)
}

func TestSignatureView(t *testing.T) {
	r := NewRegistry(dom.NewDocument())
	el := dom.New("div")
	data := []any{map[string]any{"id": 1}, map[string]any{"id": 2}}
	require.NoError(t, r.Render(context.Background(), el, Config{View: "signature", Expanded: 2, Path: "_.items"}, data))

	sig := dom.Find(el, dom.ByClass("view-signature"))
	require.NotNil(t, sig)
	assert.Equal(t, "homogeneous_array", dom.Data(sig, "shape"))
	assert.Contains(t, dom.TextContent(sig), "_.items: array<object>")
	assert.Contains(t, dom.TextContent(sig), "id: number")
}

func TestMaybeMoreButtons(t *testing.T) {
	doc := dom.NewDocument()
	r := NewRegistry(doc)
	container := dom.New("div")
	closing := dom.New("span", "close")
	container.AppendChild(closing)
	doc.Body().AppendChild(container)

	var calls [][2]int
	buttons := r.MaybeMoreButtons(container, closing, 120, 50, 50, func(offset int, limit limiter.Limit) {
		calls = append(calls, [2]int{offset, int(limit)})
	})
	require.NotNil(t, buttons)
	assert.Same(t, closing, buttons.NextSibling)

	btns := dom.FindAll(buttons, dom.ByClass("more-button"))
	require.Len(t, btns, 2)
	assert.Equal(t, "Show 50 more...", dom.TextContent(btns[0]))
	assert.Equal(t, "Show all the rest 70 items...", dom.TextContent(btns[1]))

	doc.Click(btns[1])
	assert.Equal(t, [][2]int{{50, int(limiter.NoLimit)}}, calls)
	assert.False(t, doc.IsMounted(buttons))
}

func TestMaybeMoreButtonsLastWindow(t *testing.T) {
	doc := dom.NewDocument()
	r := NewRegistry(doc)
	container := dom.New("div")

	buttons := r.MaybeMoreButtons(container, nil, 1030, 1000, 50, func(int, limiter.Limit) {})
	require.NotNil(t, buttons)
	btns := dom.FindAll(buttons, dom.ByClass("more-button"))
	require.Len(t, btns, 1)
	assert.Equal(t, "Show 30 more...", dom.TextContent(btns[0]))

	assert.Nil(t, r.MaybeMoreButtons(container, nil, 10, 10, 50, func(int, limiter.Limit) {}))
	assert.Nil(t, r.MaybeMoreButtons(container, nil, 10, 0, limiter.NoLimit, func(int, limiter.Limit) {}))
}

func TestMaybeMoreButtonsFormatsLargeCounts(t *testing.T) {
	r := NewRegistry(dom.NewDocument())
	buttons := r.MaybeMoreButtons(dom.New("div"), nil, 12345, 0, 1000, func(int, limiter.Limit) {})
	assert.Contains(t, dom.TextContent(buttons), "Show 1,000 more...")
	assert.Contains(t, dom.TextContent(buttons), "Show all the rest 12,345 items...")
}

func TestListLimit(t *testing.T) {
	tests := []struct {
		in   any
		want limiter.Limit
	}{
		{nil, 7},
		{false, limiter.NoLimit},
		{true, 7},
		{0, 7},
		{-3, 7},
		{25, 25},
		{int64(5), 5},
		{float64(9), 9},
		{limiter.NoLimit, limiter.NoLimit},
		{"10", 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ListLimit(tt.in, 7), "%v", tt.in)
	}
}
