package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/dom"
)

// Glyphs painted for struct controls.
const (
	glyphCollapse   = "▾"
	glyphExpand     = "▸"
	glyphSortKeys   = "⇅"
	glyphStringMode = "¶"
	glyphIcon       = "◆"
	indentUnit      = "  "
)

// Hotspot is a focusable element painted on Line.
type Hotspot struct {
	Node *html.Node
	Line int
}

// Screen is a painted element tree.
type Screen struct {
	Lines    []string
	Hotspots []Hotspot
}

// Text joins the painted lines.
func (s Screen) Text() string {
	if len(s.Lines) == 0 {
		return ""
	}
	return strings.Join(s.Lines, "\n") + "\n"
}

// HotspotAt returns the index of the hotspot for n, or -1.
func (s Screen) HotspotAt(n *html.Node) int {
	for i, h := range s.Hotspots {
		if h.Node == n {
			return i
		}
	}
	return -1
}

type segment struct {
	text  string
	style lipgloss.Style
}

type paintLine struct {
	indent int
	segs   []segment
}

// painter lays out struct view markup as terminal lines: entry lines and
// other blocks start a new line one level deeper, and inline content that
// follows a block continues on a fresh line at the outer level.
type painter struct {
	doc   *dom.Document
	theme Theme
	focus *html.Node
	width int

	lines    []paintLine
	hotspots []Hotspot
	broken   bool
}

// Paint lays out n. Clickable elements become hotspots; the focused one
// is drawn with the focus style. A width > 0 truncates long lines.
func Paint(doc *dom.Document, n *html.Node, theme Theme, focus *html.Node, width int) Screen {
	p := &painter{doc: doc, theme: theme, focus: focus, width: width}
	p.newLine(0)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.paint(c, 0, lipgloss.NewStyle(), false)
	}
	return p.screen()
}

func (p *painter) newLine(indent int) {
	p.lines = append(p.lines, paintLine{indent: indent})
	p.broken = false
}

func (p *painter) cur() *paintLine {
	return &p.lines[len(p.lines)-1]
}

func (p *painter) emit(text string, style lipgloss.Style, indent int) {
	if text == "" {
		return
	}
	if p.broken {
		p.newLine(indent)
	}
	for i, part := range strings.Split(text, "\n") {
		if i > 0 {
			p.newLine(indent)
		}
		if part != "" {
			l := p.cur()
			l.segs = append(l.segs, segment{text: part, style: style})
		}
	}
}

// block starts a line for a block element unless the current one is empty.
func (p *painter) block(indent int) {
	if l := p.cur(); len(l.segs) > 0 || p.broken {
		p.newLine(indent)
		return
	}
	p.cur().indent = indent
}

func (p *painter) hotspot(n *html.Node) {
	p.hotspots = append(p.hotspots, Hotspot{Node: n, Line: len(p.lines) - 1})
}

func (p *painter) paint(n *html.Node, indent int, style lipgloss.Style, focused bool) {
	switch n.Type {
	case html.TextNode:
		p.emit(n.Data, style, indent)
		return
	case html.ElementNode:
	default:
		return
	}

	if n == p.focus {
		focused = true
	}
	if focused {
		style = p.theme.Focus
	} else if s, ok := p.styleFor(n); ok {
		style = s
	}

	if dom.HasClass(n, "struct-action-button") {
		p.paintButton(n, indent, style)
		return
	}

	isBlock := n.Data == "div"
	childIndent := indent
	if isBlock {
		if dom.HasClass(n, "entry-line") || dom.HasClass(n, "more-buttons") {
			childIndent = indent + 1
		}
		p.block(childIndent)
	}
	if p.clickable(n) {
		if p.broken {
			p.newLine(childIndent)
		}
		p.hotspot(n)
	}

	switch {
	case dom.HasClass(n, "struct-expand-value"):
		p.emit(glyphExpand+" ", style, indent)
	case dom.HasClass(n, "value-size") && n.FirstChild != nil:
		p.emit(" ", style, indent)
	case dom.HasClass(n, "more-button"):
		p.emit("[", style, childIndent)
	case dom.HasClass(n, "notes"), dom.HasClass(n, "error"):
		p.emit(" ", lipgloss.NewStyle(), indent)
	case dom.HasClass(n, "value-annotation"):
		p.paintAnnotation(n, indent, style)
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.paint(c, childIndent, style, focused)
		if c.Type == html.ElementNode && c.Data == "div" {
			p.broken = true
		}
	}

	if dom.HasClass(n, "more-button") {
		p.emit("] ", style, childIndent)
	}
}

func (p *painter) paintButton(n *html.Node, indent int, style lipgloss.Style) {
	var glyph string
	switch dom.Data(n, "action") {
	case "collapse":
		glyph = glyphCollapse
	case "toggle-sort-keys":
		glyph = glyphSortKeys
	case "toggle-string-mode":
		glyph = glyphStringMode
	default:
		// Signature and value actions are reached from the keyboard.
		return
	}
	if n != p.focus {
		style = p.theme.Button
	}
	p.hotspot(n)
	// The sort toggle follows the opening brace; the others lead the value.
	if glyph == glyphSortKeys {
		p.emit(" ", lipgloss.NewStyle(), indent)
		p.emit(glyph, style, indent)
		return
	}
	p.emit(glyph, style, indent)
	p.emit(" ", lipgloss.NewStyle(), indent)
}

func (p *painter) paintAnnotation(n *html.Node, indent int, style lipgloss.Style) {
	text := dom.TextContent(n)
	if text == "" {
		if title, ok := dom.Attr(n, "title"); ok && title != "" {
			text = title
		} else {
			text = glyphIcon
		}
	}
	if dom.HasClass(n, "before") {
		p.emit(text, style, indent)
		p.emit(" ", lipgloss.NewStyle(), indent)
		return
	}
	p.emit(" ", lipgloss.NewStyle(), indent)
	p.emit(text, style, indent)
}

// clickable reports whether activating n does something: it has its own
// click listener, it is a collapsed value, or it is an annotation link.
func (p *painter) clickable(n *html.Node) bool {
	if p.doc != nil && p.doc.HasListener(n, "click") {
		return true
	}
	if dom.HasClass(n, "struct-expand-value") {
		return true
	}
	if n.Data == "a" {
		_, ok := dom.Attr(n, "href")
		return ok
	}
	return false
}

func (p *painter) styleFor(n *html.Node) (lipgloss.Style, bool) {
	t := p.theme
	switch {
	case dom.HasClass(n, "match"):
		return t.Match, true
	case dom.HasClass(n, "property"):
		return t.Key, true
	case dom.HasClass(n, "string"):
		return t.String, true
	case dom.HasClass(n, "number"):
		return t.Number, true
	case dom.HasClass(n, "bool"):
		return t.Bool, true
	case dom.HasClass(n, "null"):
		return t.Null, true
	case dom.HasClass(n, "value-annotation"):
		if dom.HasClass(n, "style-badge") {
			return t.Badge, true
		}
		return t.Annotation, true
	case dom.HasClass(n, "more-button"):
		return t.Button, true
	case dom.HasClass(n, "error"):
		return t.Error, true
	case dom.HasClass(n, "more"), dom.HasClass(n, "value-size"),
		dom.HasClass(n, "string-length"), dom.HasClass(n, "notes"):
		return t.Muted, true
	case dom.HasClass(n, "value"):
		return t.Punct, true
	}
	return lipgloss.Style{}, false
}

func (p *painter) screen() Screen {
	s := Screen{Hotspots: p.hotspots}
	for _, l := range p.lines {
		s.Lines = append(s.Lines, p.render(l))
	}
	for len(s.Lines) > 0 && strings.TrimSpace(s.Lines[len(s.Lines)-1]) == "" {
		s.Lines = s.Lines[:len(s.Lines)-1]
	}
	return s
}

func (p *painter) render(l paintLine) string {
	var b strings.Builder
	prefix := strings.Repeat(indentUnit, l.indent)
	b.WriteString(prefix)
	room := -1
	if p.width > 0 {
		room = p.width - runewidth.StringWidth(prefix)
	}
	for _, seg := range l.segs {
		text := seg.text
		if room >= 0 {
			w := runewidth.StringWidth(text)
			if w > room {
				text = runewidth.Truncate(text, room, "…")
				w = runewidth.StringWidth(text)
			}
			room -= w
		}
		b.WriteString(seg.style.Render(text))
		if room == 0 {
			break
		}
	}
	return b.String()
}
