package structview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/view"
)

func itemByNotes(items []view.MenuItem, prefix string) (view.MenuItem, bool) {
	for _, item := range items {
		if strings.HasPrefix(item.Notes, prefix) {
			return item, true
		}
	}
	return view.MenuItem{}, false
}

func TestValueActionsForStrings(t *testing.T) {
	h := newHarness(t)
	_, el := h.mount(t, `say "hi"`, Config{})

	items := h.v.ValueActions(el)
	require.Len(t, items, 3)
	assert.Equal(t, "Copy as quoted string", items[0].Text)
	assert.Equal(t, "Copy as unquoted string", items[1].Text)
	assert.Equal(t, "Copy a value (unescaped)", items[2].Text)

	for _, item := range items {
		item.Action()
	}
	assert.Equal(t, []string{`"say \"hi\""`, `say \"hi\"`, `say "hi"`}, h.clip.Texts())
}

func TestValueActionsForObjects(t *testing.T) {
	h := newHarness(t)
	_, root := h.mount(t, object("a", 1), Config{})

	items := h.v.ValueActions(root)
	require.Len(t, items, 2)
	assert.Equal(t, "Copy as JSON", items[0].Text)
	assert.Equal(t, "(formatted, 14 bytes)", items[0].Notes)
	assert.Equal(t, "(compact, 7 bytes)", items[1].Notes)
	assert.False(t, items[0].Disabled)

	items[0].Action()
	items[1].Action()
	assert.Equal(t, []string{"{\n    \"a\": 1\n}", `{"a":1}`}, h.clip.Texts())
}

func TestValueActionsPopupCopiesAndHides(t *testing.T) {
	h := newHarness(t)
	_, el := h.mount(t, object("x", []any{1, 2}), Config{Expanded: 2})
	list := entryValues(el)[0]

	h.doc.Click(button(list, ActionValueActions))
	popup := h.v.ValueActionsPopup()
	require.True(t, popup.Visible())
	require.True(t, h.doc.IsMounted(popup.Element()))

	menuItems := dom.FindAll(popup.Element(), dom.ByClass("view-menu-item"))
	require.Len(t, menuItems, 3)
	assert.Equal(t, "Copy path:_.x", dom.TextContent(menuItems[0]))
	assert.Equal(t, "Copy as JSON(compact, 5 bytes)", dom.TextContent(menuItems[2]))

	h.doc.Click(menuItems[2])
	assert.Equal(t, "[1,2]", h.clip.Last())
	assert.False(t, popup.Visible())
	assert.False(t, h.doc.IsMounted(popup.Element()))
	assert.True(t, h.v.Expanded(list), "menu clicks do not reach the struct view")
}

func TestCycleGuard(t *testing.T) {
	self := object("name", "loop")
	self.Set("self", self)
	list := []any{nil}
	list[0] = list

	for name, data := range map[string]any{"object": self, "list": list} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			_, el := h.mount(t, data, Config{})

			items := h.v.ValueActions(el)
			require.Len(t, items, 2)
			for _, item := range items {
				assert.True(t, item.Disabled)
				assert.Nil(t, item.Action)
				assert.Equal(t, ErrTextCircular, item.Error)
			}

			h.doc.Click(button(el, ActionValueActions))
			popup := h.v.ValueActionsPopup().Element()
			errs := dom.FindAll(popup, dom.ByClass("error"))
			require.Len(t, errs, 2)
			assert.Equal(t, ErrTextCircular, dom.TextContent(errs[0]))

			h.doc.Click(dom.FindAll(popup, dom.ByClass("view-menu-item"))[0])
			assert.Empty(t, h.clip.Texts())
		})
	}
}

func TestSizeGuard(t *testing.T) {
	chunk := strings.Repeat("x", 1<<20)
	huge := make([]any, 1100)
	for i := range huge {
		huge[i] = chunk
	}

	h := newHarness(t)
	_, el := h.mount(t, object("huge", huge, "small", object("a", 1)), Config{Expanded: 1})
	values := entryValues(el)

	items := h.v.ValueActions(values[0])
	require.Len(t, items, 3)
	for _, item := range items[1:] {
		assert.True(t, item.Disabled)
		assert.Equal(t, ErrTextTooLarge, item.Error)
	}
	assert.False(t, items[0].Disabled, "the path can still be copied")

	small := h.v.ValueActions(values[1])
	compact, ok := itemByNotes(small, "(compact")
	require.True(t, ok)
	assert.False(t, compact.Disabled)
	assert.Empty(t, compact.Error)
	assert.NotNil(t, compact.Action)
}

func TestSignaturePopupOnHover(t *testing.T) {
	h := newHarness(t)
	root, el := h.mount(t, object("items", []any{object("id", 1), object("id", 2)}), Config{Expanded: 1})
	list := entryValues(el)[0]
	popup := h.v.SignaturePopup()

	h.doc.Hover(button(list, ActionShowSignature))
	require.True(t, popup.Visible())
	sig := dom.Find(popup.Element(), dom.ByClass("view-signature"))
	require.NotNil(t, sig)
	text := dom.TextContent(sig)
	assert.True(t, strings.HasPrefix(text, "_.items: array<object>"), text)
	assert.Contains(t, text, "id: number")

	h.doc.Hover(sig)
	assert.True(t, popup.Visible(), "the popup stays open while hovered")

	h.doc.Hover(root)
	assert.False(t, popup.Visible())
}

func TestSignaturePopupOnClick(t *testing.T) {
	h := newHarness(t)
	_, el := h.mount(t, "text", Config{})

	h.doc.Click(button(el, ActionShowSignature))
	popup := h.v.SignaturePopup()
	require.True(t, popup.Visible())
	assert.Equal(t, ".: string\n", dom.TextContent(dom.Find(popup.Element(), dom.ByClass("view-signature"))))
}
