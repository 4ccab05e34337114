package structview

import (
	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/value"
)

// Click actions, selected by the data-action attribute of the clicked
// control. Elements without one expand.
const (
	ActionExpand           = "expand"
	ActionCollapse         = "collapse"
	ActionToggleSortKeys   = "toggle-sort-keys"
	ActionToggleStringMode = "toggle-string-mode"
	ActionShowSignature    = "show-signature"
	ActionValueActions     = "value-actions"
)

// owns reports whether n lies inside a view root of this viewer. The
// nearest tagged ancestor decides, so nested viewers do not cross-trigger.
func (v *Viewer) owns(n *html.Node) bool {
	root := dom.Closest(n, func(c *html.Node) bool {
		_, ok := dom.Attr(c, attrInstance)
		return ok
	})
	if root == nil {
		return false
	}
	id, _ := dom.Attr(root, attrInstance)
	return id == v.id
}

func isActionable(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	return (dom.HasClass(n, classRoot) && dom.HasClass(n, classRootExpand)) ||
		dom.HasClass(n, classExpandValue) ||
		dom.HasClass(n, classActionButton)
}

func (v *Viewer) handleClick(ev *dom.Event) {
	if v.closed || !v.owns(ev.Target) {
		return
	}
	cursor := dom.Closest(ev.Target, isActionable)
	if cursor == nil {
		return
	}
	action := dom.Data(cursor, "action")
	if action == "" {
		action = ActionExpand
	}
	v.log.V(1).Info("struct action", "action", action)

	switch action {
	case ActionExpand:
		el := cursor
		if _, isRoot := v.roots[cursor]; isRoot {
			el = v.rootValue(cursor)
		}
		if el == nil || !dom.HasClass(el, classExpandValue) {
			return
		}
		v.Expand(el, 0, dom.HasClass(el, classSortKeys))

	case ActionCollapse:
		el := cursor.Parent
		if !v.Expanded(el) {
			return
		}
		v.Collapse(el)

	case ActionToggleSortKeys:
		el := cursor.Parent
		rec, ok := v.lookup(el)
		if !ok || value.KindOf(rec.value) != value.KindObject || !v.Expanded(el) {
			return
		}
		v.expand(el, 0, dom.ToggleClass(el, classSortKeys))
		v.annotations.ScheduleRender()

	case ActionToggleStringMode:
		v.toggleStringMode(cursor.Parent)

	case ActionShowSignature:
		if _, ok := v.lookup(cursor.Parent); ok {
			v.signature.Show(cursor)
		}

	case ActionValueActions:
		if _, ok := v.lookup(cursor.Parent); ok {
			v.valueActions.Show(cursor)
		}
	}
}

// toggleStringMode switches an expanded string between its escaped and
// literal text in place.
func (v *Viewer) toggleStringMode(el *html.Node) {
	rec, ok := v.lookup(el)
	if !ok {
		return
	}
	s, ok := rec.value.(string)
	if !ok {
		return
	}
	textEl := dom.Find(el, dom.ByClass("string-text"))
	if textEl == nil {
		return
	}
	text := s
	if !dom.ToggleClass(el, classStringAsText) {
		q := value.Quote(s)
		text = q[1 : len(q)-1]
	}
	v.doc.ReplaceChildren(textEl, dom.Text(text))
}
