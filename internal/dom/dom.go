// Package dom holds small helpers for building and querying element trees
// made of golang.org/x/net/html nodes.
package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// New creates a detached element with the given tag and classes.
func New(tag string, classes ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if len(classes) > 0 {
		SetAttr(n, "class", strings.Join(classes, " "))
	}
	return n
}

// Text creates a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// AppendText appends a text node to n and returns it.
func AppendText(n *html.Node, s string) *html.Node {
	t := Text(s)
	n.AppendChild(t)
	return t
}

// Append appends children to n.
func Append(n *html.Node, children ...*html.Node) {
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
}

// Attr returns the value of attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key to val, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Data returns the data-* attribute named key.
func Data(n *html.Node, key string) string {
	v, _ := Attr(n, "data-"+key)
	return v
}

// SetData sets the data-* attribute named key.
func SetData(n *html.Node, key, val string) {
	SetAttr(n, "data-"+key, val)
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries class c.
func HasClass(n *html.Node, c string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return containsString(Classes(n), c)
}

func containsString(list []string, s string) bool {
	for _, have := range list {
		if have == s {
			return true
		}
	}
	return false
}

// AddClass adds classes to n, skipping those already present.
func AddClass(n *html.Node, classes ...string) {
	list := Classes(n)
	changed := false
	for _, c := range classes {
		if c == "" || containsString(list, c) {
			continue
		}
		list = append(list, c)
		changed = true
	}
	if changed {
		SetAttr(n, "class", strings.Join(list, " "))
	}
}

// RemoveClass removes class c from n.
func RemoveClass(n *html.Node, c string) {
	list := Classes(n)
	out := list[:0]
	for _, have := range list {
		if have != c {
			out = append(out, have)
		}
	}
	if len(out) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(out, " "))
}

// ToggleClass flips class c on n and reports whether it is now present.
func ToggleClass(n *html.Node, c string) bool {
	if HasClass(n, c) {
		RemoveClass(n, c)
		return false
	}
	AddClass(n, c)
	return true
}

// Matcher selects elements.
type Matcher func(n *html.Node) bool

// ByClass matches elements that carry all of the given classes.
func ByClass(classes ...string) Matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, c := range classes {
			if !HasClass(n, c) {
				return false
			}
		}
		return true
	}
}

// Closest walks from n up through its ancestors and returns the first
// node accepted by match.
func Closest(n *html.Node, match Matcher) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if match(cur) {
			return cur
		}
	}
	return nil
}

// Find returns the first descendant of n (depth-first, n excluded)
// accepted by match.
func Find(n *html.Node, match Matcher) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := Find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant of n accepted by match in document order.
func FindAll(n *html.Node, match Matcher) []*html.Node {
	var out []*html.Node
	Walk(n, func(c *html.Node) bool {
		if c != n && match(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the visited node.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// Children returns the direct children of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// LastElementChild returns the last child of n that is an element.
func LastElementChild(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// TextContent concatenates all text nodes under n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// Contains reports whether n is root or one of its descendants.
func Contains(root, n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors of n.
func Depth(n *html.Node) int {
	d := 0
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		d++
	}
	return d
}

// Render writes n as HTML.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}
