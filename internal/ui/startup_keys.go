package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ApplyStartupKeys feeds Vim-like key tokens ("<CR>", "<Down>", "<C-c>")
// and literal text to m as if typed, settling deferred work after every
// key. A leading backslash makes a token literal.
func ApplyStartupKeys(m *Model, keys []string) {
	if m == nil {
		return
	}
	for _, raw := range keys {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, `\`) {
			m.typeText(strings.TrimPrefix(token, `\`))
			continue
		}
		for _, seg := range parseTokenSegments(token) {
			if !seg.isVimKey {
				m.typeText(seg.text)
				continue
			}
			if msg, ok := keyMsgFromToken(seg.text); ok {
				m.press(msg)
			}
		}
	}
}

func (m *Model) typeText(text string) {
	for _, r := range text {
		m.press(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func (m *Model) press(msg tea.KeyPressMsg) {
	m.Update(msg)
	m.Settle()
}

type tokenSegment struct {
	text     string
	isVimKey bool
}

// parseTokenSegments splits "<Down>jj" into key and literal segments. An
// unclosed "<" starts literal text.
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token
	for len(remaining) > 0 {
		start := strings.Index(remaining, "<")
		if start == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if start > 0 {
			segments = append(segments, tokenSegment{text: remaining[:start]})
		}
		end := strings.Index(remaining[start:], ">")
		if end == -1 {
			segments = append(segments, tokenSegment{text: remaining[start:]})
			break
		}
		segments = append(segments, tokenSegment{text: remaining[start : start+end+1], isVimKey: true})
		remaining = remaining[start+end+1:]
	}
	return segments
}

var namedKeys = map[string]tea.KeyPressMsg{
	"esc":       {Code: tea.KeyEscape},
	"escape":    {Code: tea.KeyEscape},
	"c-[":       {Code: tea.KeyEscape},
	"cr":        {Code: tea.KeyEnter},
	"enter":     {Code: tea.KeyEnter},
	"return":    {Code: tea.KeyEnter},
	"tab":       {Code: tea.KeyTab},
	"space":     {Code: tea.KeySpace, Text: " "},
	"bs":        {Code: tea.KeyBackspace},
	"backspace": {Code: tea.KeyBackspace},
	"up":        {Code: tea.KeyUp},
	"down":      {Code: tea.KeyDown},
	"left":      {Code: tea.KeyLeft},
	"right":     {Code: tea.KeyRight},
	"home":      {Code: tea.KeyHome},
	"end":       {Code: tea.KeyEnd},
	"pageup":    {Code: tea.KeyPgUp},
	"pagedown":  {Code: tea.KeyPgDown},
	"c-c":       {Code: 'c', Mod: tea.ModCtrl},
	"c-d":       {Code: 'd', Mod: tea.ModCtrl},
	"c-u":       {Code: 'u', Mod: tea.ModCtrl},
}

// keyMsgFromToken parses a "<...>" token.
func keyMsgFromToken(token string) (tea.KeyPressMsg, bool) {
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") {
		return tea.KeyPressMsg{}, false
	}
	msg, ok := namedKeys[strings.ToLower(token[1:len(token)-1])]
	return msg, ok
}
