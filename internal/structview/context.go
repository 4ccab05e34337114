package structview

import (
	"regexp"

	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/limiter"
	"github.com/oakwood-commons/structview/internal/value"
)

// Context is the position of a rendered value: the container it came from
// and its slot there. Contexts link backwards only and are never mutated.
type Context struct {
	Parent *Context
	Host   any
	Key    any
	Index  int
}

func rootContext(data any) *Context {
	host := value.NewObject(1)
	host.Set("", data)
	return &Context{Host: host, Key: ""}
}

func (c *Context) child(host any, key any, index int) *Context {
	return &Context{Parent: c, Host: host, Key: key, Index: index}
}

// Path returns the slot keys from the viewed root down to c. The synthetic
// root contributes nothing.
func (c *Context) Path() []any {
	var path []any
	for cur := c; cur != nil && cur.Parent != nil; cur = cur.Parent {
		path = append(path, cur.Key)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Depth is the nesting depth below the viewed root.
func (c *Context) Depth() int {
	depth := 0
	for cur := c; cur != nil && cur.Parent != nil; cur = cur.Parent {
		depth++
	}
	return depth
}

// queryVars is the ctx variable handed to annotation queries.
func (c *Context) queryVars() map[string]any {
	path := c.Path()
	if path == nil {
		path = []any{}
	}
	return map[string]any{
		"key":   c.Key,
		"index": c.Index,
		"host":  c.Host,
		"path":  path,
		"depth": c.Depth(),
	}
}

// Options is the display configuration effective for a rendered value.
type Options struct {
	Limit          limiter.Limit
	LimitCollapsed limiter.Limit
	Annotations    []AnnotationRule

	MaxStringLength       int
	MaxLinearStringLength int

	// Match highlights matching runs of object keys.
	Match *regexp.Regexp
}

type record struct {
	value any
	ctx   *Context
	opts  *Options
}

// lookup returns the record of a rendered value element.
func (v *Viewer) lookup(el *html.Node) (*record, bool) {
	rec, ok := v.records[el]
	return rec, ok
}

func (v *Viewer) register(el *html.Node, data any, ctx *Context, opts *Options) {
	v.records[el] = &record{value: data, ctx: ctx, opts: opts}
}

func (v *Viewer) release(n *html.Node) {
	delete(v.records, n)
	delete(v.roots, n)
}

// Path returns the slot keys of a rendered value element, or nil when el
// is not a value of this viewer.
func (v *Viewer) Path(el *html.Node) []any {
	rec, ok := v.lookup(el)
	if !ok {
		return nil
	}
	return rec.ctx.Path()
}

// Value returns the value behind a rendered value element.
func (v *Viewer) Value(el *html.Node) (any, bool) {
	rec, ok := v.lookup(el)
	if !ok {
		return nil, false
	}
	return rec.value, true
}

// Size returns the number of registered value elements.
func (v *Viewer) Size() int {
	return len(v.records)
}
