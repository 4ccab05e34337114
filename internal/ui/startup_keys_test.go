package ui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/structview"
)

func TestParseTokenSegments(t *testing.T) {
	tests := []struct {
		token string
		want  []tokenSegment
	}{
		{"jj", []tokenSegment{{text: "jj"}}},
		{"<Down>jj", []tokenSegment{{text: "<Down>", isVimKey: true}, {text: "jj"}}},
		{"a<CR>b", []tokenSegment{{text: "a"}, {text: "<CR>", isVimKey: true}, {text: "b"}}},
		{"x<unclosed", []tokenSegment{{text: "x"}, {text: "<unclosed"}}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTokenSegments(tt.token))
		})
	}
}

func TestKeyMsgFromToken(t *testing.T) {
	msg, ok := keyMsgFromToken("<CR>")
	assert.True(t, ok)
	assert.Equal(t, "enter", msg.String())

	msg, ok = keyMsgFromToken("<c-c>")
	assert.True(t, ok)
	assert.Equal(t, "ctrl+c", msg.String())

	msg, ok = keyMsgFromToken("<PageDown>")
	assert.True(t, ok)
	assert.Equal(t, tea.KeyPgDown, msg.Code)

	_, ok = keyMsgFromToken("<nope>")
	assert.False(t, ok)
	_, ok = keyMsgFromToken("CR")
	assert.False(t, ok)
}

func TestApplyStartupKeys(t *testing.T) {
	m, _ := newTestModel(t, object("a", 1, "b", []any{1, 2}), structview.Config{Expanded: 1})

	ApplyStartupKeys(m, []string{"", " j ", "<CR>"})
	assert.Equal(t, "▾ { 2 entries\n  a: 1,\n  b: ▾ [ 2 elements\n    1,\n    2\n  ]\n}\n", RenderText(m, 0))

	ApplyStartupKeys(nil, []string{"j"})
}

func TestApplyStartupKeysLiteralText(t *testing.T) {
	m, _ := newTestModel(t, object("gamma", 1), structview.Config{Expanded: 1})

	ApplyStartupKeys(m, []string{"/", `\<CR>`, "<CR>"})
	require.NotNil(t, m.cfg.Match)
	assert.Equal(t, "<CR>", m.cfg.Match.String(), "the backslash token is typed verbatim")

	ApplyStartupKeys(m, []string{"/", "<BS><BS><BS><BS>mm<CR>"})
	assert.Equal(t, "mm", m.cfg.Match.String())
	assert.Len(t, dom.FindAll(m.Document().Body(), dom.ByClass("match")), 1)
}
