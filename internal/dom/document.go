package dom

import (
	"golang.org/x/net/html"
)

// Event is a gesture dispatched to a Document.
type Event struct {
	Type    string
	Target  *html.Node
	Current *html.Node
	stopped bool
}

// StopPropagation prevents the event from reaching outer listeners.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Listener handles an event.
type Listener func(ev *Event)

type globalListener struct {
	typ string
	fn  Listener
}

// Document owns a mounted element tree, element-level listeners and
// document-wide listeners. It is single-threaded: every method must be
// called from the goroutine that drives the UI.
type Document struct {
	root    *html.Node
	body    *html.Node
	overlay *html.Node

	listeners map[*html.Node]map[string][]Listener
	global    map[int]globalListener
	globalSeq []int
	nextID    int

	detachHooks map[int]func(*html.Node)
	detachSeq   []int
}

// NewDocument creates an empty document with a body and an overlay layer
// for popups.
func NewDocument() *Document {
	d := &Document{
		root:      New("html"),
		body:      New("body"),
		overlay:   New("div", "popups"),
		listeners: make(map[*html.Node]map[string][]Listener),
		global:    make(map[int]globalListener),

		detachHooks: make(map[int]func(*html.Node)),
	}
	d.root.AppendChild(d.body)
	d.root.AppendChild(d.overlay)
	return d
}

// Root returns the <html> element.
func (d *Document) Root() *html.Node { return d.root }

// Body returns the element that holds views.
func (d *Document) Body() *html.Node { return d.body }

// Overlay returns the element that holds popups.
func (d *Document) Overlay() *html.Node { return d.overlay }

// IsMounted reports whether n is attached to the document.
func (d *Document) IsMounted(n *html.Node) bool {
	return n != nil && Contains(d.root, n)
}

// On registers an element-level listener. It is dropped when the element
// is detached through the document.
func (d *Document) On(n *html.Node, typ string, l Listener) {
	byType := d.listeners[n]
	if byType == nil {
		byType = make(map[string][]Listener)
		d.listeners[n] = byType
	}
	byType[typ] = append(byType[typ], l)
}

// HasListener reports whether n itself has a listener for typ.
func (d *Document) HasListener(n *html.Node, typ string) bool {
	return len(d.listeners[n][typ]) > 0
}

// Off removes every element-level listener of n.
func (d *Document) Off(n *html.Node) {
	delete(d.listeners, n)
}

// AddGlobalListener registers a document-wide listener that sees every
// event of type typ after element-level listeners ran. The returned func
// removes it.
func (d *Document) AddGlobalListener(typ string, l Listener) func() {
	d.nextID++
	id := d.nextID
	d.global[id] = globalListener{typ: typ, fn: l}
	d.globalSeq = append(d.globalSeq, id)
	return func() {
		delete(d.global, id)
		d.globalSeq = removeID(d.globalSeq, id)
	}
}

// GlobalListenerCount returns the number of registered document-wide listeners.
func (d *Document) GlobalListenerCount() int {
	return len(d.global)
}

// Dispatch delivers an event of type typ to target: element listeners from
// the target outwards, then document-wide listeners. Events aimed at
// detached nodes are dropped.
func (d *Document) Dispatch(typ string, target *html.Node) bool {
	if !d.IsMounted(target) {
		return false
	}
	ev := &Event{Type: typ, Target: target}
	for cur := target; cur != nil && !ev.stopped; cur = cur.Parent {
		for _, l := range d.listeners[cur][typ] {
			ev.Current = cur
			l(ev)
			if ev.stopped {
				break
			}
		}
	}
	ev.Current = nil
	ids := append([]int(nil), d.globalSeq...)
	for _, id := range ids {
		if ev.stopped {
			break
		}
		gl, ok := d.global[id]
		if !ok || gl.typ != typ {
			continue
		}
		gl.fn(ev)
	}
	return true
}

// Click dispatches a click on target.
func (d *Document) Click(target *html.Node) bool {
	return d.Dispatch("click", target)
}

// Hover dispatches a hover on target.
func (d *Document) Hover(target *html.Node) bool {
	return d.Dispatch("hover", target)
}

// OnDetach registers a hook called for every node of a subtree removed
// with Detach or ReplaceChildren. The returned func removes it.
func (d *Document) OnDetach(hook func(*html.Node)) func() {
	d.nextID++
	id := d.nextID
	d.detachHooks[id] = hook
	d.detachSeq = append(d.detachSeq, id)
	return func() {
		delete(d.detachHooks, id)
		d.detachSeq = removeID(d.detachSeq, id)
	}
}

// DetachHookCount returns the number of registered detach hooks.
func (d *Document) DetachHookCount() int {
	return len(d.detachHooks)
}

func removeID(seq []int, id int) []int {
	for i, have := range seq {
		if have == id {
			return append(seq[:i], seq[i+1:]...)
		}
	}
	return seq
}

// Detach removes n from its parent and releases the listeners and hooks
// of n and its descendants.
func (d *Document) Detach(n *html.Node) {
	if n == nil {
		return
	}
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	d.release(n)
}

// ReplaceChildren detaches every child of n and appends children instead.
func (d *Document) ReplaceChildren(n *html.Node, children ...*html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		d.Detach(c)
		c = next
	}
	Append(n, children...)
}

func (d *Document) release(n *html.Node) {
	Walk(n, func(c *html.Node) bool {
		delete(d.listeners, c)
		for _, id := range d.detachSeq {
			if hook, ok := d.detachHooks[id]; ok {
				hook(c)
			}
		}
		return true
	})
}
