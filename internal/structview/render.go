package structview

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/formatter"
	"github.com/oakwood-commons/structview/internal/limiter"
	"github.com/oakwood-commons/structview/internal/value"
)

const (
	classRoot          = "view-struct"
	classRootExpand    = "struct-expand"
	classExpandValue   = "struct-expand-value"
	classExpandedValue = "struct-expanded-value"
	classActionButton  = "struct-action-button"
	classSortKeys      = "sort-keys"
	classStringAsText  = "string-value-as-text"

	attrInstance = "data-struct-instance"
)

// renderValue renders data into a new value element appended to container.
// Expandable lists and objects are expanded right away while depth > 0.
func (v *Viewer) renderValue(container *html.Node, data any, depth int, opts *Options, ctx *Context) *html.Node {
	el := dom.New("span", "value")
	v.register(el, data, ctx, opts)

	expandable := value.IsExpandable(data, opts.MaxStringLength)
	if expandable && value.KindOf(data) != value.KindString && depth > 0 {
		dom.AddClass(container, classExpandedValue)
		v.expand(el, depth-1, false)
	} else {
		if expandable {
			dom.AddClass(el, classExpandValue)
		}
		v.renderCollapsed(el, data, opts)
	}

	v.annotations.Apply(el, data, opts, ctx)
	container.AppendChild(el)
	return el
}

func (v *Viewer) renderCollapsed(el *html.Node, data any, opts *Options) {
	writeInline(el, data, false, opts)
	appendValueButtons(el)
}

func (v *Viewer) collapse(el *html.Node) {
	rec, ok := v.lookup(el)
	if !ok {
		return
	}
	v.doc.ReplaceChildren(el)
	dom.AddClass(el, classExpandValue)
	v.renderCollapsed(el, rec.value, rec.opts)
}

// expand replaces the content of el with the structural rendering of its
// value. Children are auto-expanded while depth > 0.
func (v *Viewer) expand(el *html.Node, depth int, sortKeys bool) {
	rec, ok := v.lookup(el)
	if !ok {
		return
	}
	dom.RemoveClass(el, classExpandValue)
	v.doc.ReplaceChildren(el)

	switch data := rec.value; value.KindOf(data) {
	case value.KindString:
		v.expandString(el, data.(string))
	case value.KindList:
		v.expandList(el, rec, depth)
	case value.KindObject:
		v.expandObject(el, rec, depth, sortKeys)
	default:
		v.renderCollapsed(el, rec.value, rec.opts)
	}
}

func (v *Viewer) expandString(el *html.Node, s string) {
	quoted := value.Quote(s)

	el.AppendChild(actionButton("collapse"))
	el.AppendChild(actionButton("toggle-string-mode"))
	appendValueButtons(el)

	size := dom.New("span", "string-length")
	dom.AppendText(size, fmt.Sprintf("length: %d chars", utf8.RuneCountInString(quoted)))

	text := dom.New("span", "string-text")
	if dom.HasClass(el, classStringAsText) {
		dom.AppendText(text, s)
	} else {
		dom.AppendText(text, quoted[1:len(quoted)-1])
	}
	body := dom.New("span", "string")
	dom.AppendText(body, `"`)
	body.AppendChild(text)
	dom.AppendText(body, `"`)

	dom.Append(el, size, dom.Text(" "), body)
}

func (v *Viewer) expandList(el *html.Node, rec *record, depth int) {
	entries := value.Entries(rec.value)

	el.AppendChild(actionButton("collapse"))
	dom.AppendText(el, "[")
	appendValueButtons(el)
	appendSize(el, len(entries), "elements")
	closing := dom.AppendText(el, "]")

	v.renderEntries(el, closing, rec.opts, entries, func(e value.Entry, index int) *html.Node {
		line := dom.New("div", "entry-line")
		v.renderValue(line, e.Value, depth, rec.opts, rec.ctx.child(rec.value, e.Key, index))
		return line
	}, 0, rec.opts.Limit)
}

func (v *Viewer) expandObject(el *html.Node, rec *record, depth int, sortKeys bool) {
	entries := value.Entries(rec.value)
	sorted := keysSorted(entries)

	el.AppendChild(actionButton("collapse"))
	dom.AppendText(el, "{")
	appendValueButtons(el)
	if !sorted {
		el.AppendChild(actionButton("toggle-sort-keys"))
	}
	appendSize(el, len(entries), "entries")
	closing := dom.AppendText(el, "}")

	if !sorted && sortKeys {
		entries = append([]value.Entry(nil), entries...)
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Key.(string) < entries[j].Key.(string)
		})
	}

	v.renderEntries(el, closing, rec.opts, entries, func(e value.Entry, index int) *html.Node {
		line := dom.New("div", "entry-line")
		key := dom.New("span", "property")
		appendMatched(key, displayKey(e.Key.(string)), rec.opts.Match)
		line.AppendChild(key)
		dom.AppendText(line, ": ")
		v.renderValue(line, e.Value, depth, rec.opts, rec.ctx.child(rec.value, e.Key, index))
		return line
	}, 0, rec.opts.Limit)
}

// renderEntries inserts the window of entries starting at offset before
// "before" and offers the remainder through "show more" controls. A comma
// follows every entry but the last one of the whole collection.
func (v *Viewer) renderEntries(container, before *html.Node, opts *Options, entries []value.Entry, renderOne func(e value.Entry, index int) *html.Node, offset int, limit limiter.Limit) {
	start, end := limiter.Window(len(entries), offset, limit)
	for i := start; i < end; i++ {
		line := renderOne(entries[i], i)
		if i < len(entries)-1 {
			dom.AppendText(line, ",")
		}
		container.InsertBefore(line, before)
	}

	v.views.MaybeMoreButtons(container, before, len(entries), end, limit, func(next int, nextLimit limiter.Limit) {
		v.renderEntries(container, before, opts, entries, renderOne, next, nextLimit)
		v.annotations.ScheduleRender()
	})
}

// keysSorted reports whether every key is strictly greater than the one
// before it.
func keysSorted(entries []value.Entry) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Key.(string) >= entries[i].Key.(string) {
			return false
		}
	}
	return true
}

func displayKey(key string) string {
	if value.HasControlChars(key) {
		q := value.Quote(key)
		return q[1 : len(q)-1]
	}
	return key
}

// appendMatched appends text to el, wrapping the runs matched by re in
// span.match elements.
func appendMatched(el *html.Node, text string, re *regexp.Regexp) {
	if re == nil {
		dom.AppendText(el, text)
		return
	}
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		if m[0] == m[1] {
			continue
		}
		if m[0] > last {
			dom.AppendText(el, text[last:m[0]])
		}
		match := dom.New("span", "match")
		dom.AppendText(match, text[m[0]:m[1]])
		el.AppendChild(match)
		last = m[1]
	}
	if last < len(text) {
		dom.AppendText(el, text[last:])
	}
}

func appendSize(el *html.Node, n int, unit string) {
	size := dom.New("span", "value-size")
	if n > 1 {
		dom.AppendText(size, fmt.Sprintf("%d %s", n, unit))
	}
	el.AppendChild(size)
}

func actionButton(action string) *html.Node {
	btn := dom.New("span", classActionButton)
	dom.SetData(btn, "action", action)
	return btn
}

// appendValueButtons adds the signature and value-actions triggers every
// value element carries.
func appendValueButtons(el *html.Node) {
	sig := actionButton("show-signature")
	dom.AddClass(sig, "show-signature")
	actions := actionButton("value-actions")
	dom.AddClass(actions, "value-actions")
	dom.Append(el, sig, actions)
}

// writeInline appends the single-line rendering of data to el. Nested
// collections inside a linear rendering are elided.
func writeInline(el *html.Node, data any, linear bool, opts *Options) {
	switch value.KindOf(data) {
	case value.KindNull:
		appendSpan(el, "null", "null")
	case value.KindBool:
		appendSpan(el, "bool", strconv.FormatBool(data.(bool)))
	case value.KindNumber:
		appendSpan(el, "number", formatter.Stringify(data))
	case value.KindString:
		limit := opts.MaxStringLength
		if linear {
			limit = opts.MaxLinearStringLength
		}
		q := value.Quote(data.(string))
		appendSpan(el, "string", `"`+clip(q[1:len(q)-1], limit)+`"`)
	case value.KindList:
		writeInlineCollection(el, data, "[", "]", linear, opts)
	case value.KindObject:
		writeInlineCollection(el, data, "{", "}", linear, opts)
	default:
		appendSpan(el, "unknown", formatter.Stringify(data))
	}
}

func writeInlineCollection(el *html.Node, data any, opening, closing string, linear bool, opts *Options) {
	n := value.Len(data)
	switch {
	case n == 0:
		dom.AppendText(el, opening+closing)
		return
	case linear:
		dom.AppendText(el, opening+"…"+closing)
		return
	}

	isObject := value.KindOf(data) == value.KindObject
	_, end := limiter.Window(n, 0, opts.LimitCollapsed)
	dom.AppendText(el, opening)
	for i, e := range value.Slice(data, 0, end) {
		if i > 0 {
			dom.AppendText(el, ", ")
		}
		if isObject {
			appendSpan(el, "property", displayKey(e.Key.(string)))
			dom.AppendText(el, ": ")
		}
		writeInline(el, e.Value, true, opts)
	}
	if end < n {
		dom.AppendText(el, ", ")
		appendSpan(el, "more", fmt.Sprintf("…%d more", n-end))
	}
	dom.AppendText(el, closing)
}

func appendSpan(el *html.Node, class, text string) {
	span := dom.New("span", class)
	dom.AppendText(span, text)
	el.AppendChild(span)
}

// clip shortens s to limit runes, marking the cut with an ellipsis.
func clip(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	var b strings.Builder
	i := 0
	for _, r := range s {
		if i == limit {
			break
		}
		b.WriteRune(r)
		i++
	}
	b.WriteString("…")
	return b.String()
}
