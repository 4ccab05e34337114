// Package view renders small declarative views into a dom.Document: the
// menu used by popups, the type signature summary and the "show more"
// controls used by paginated collections.
package view

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/limiter"
)

// Config selects a view and carries its options.
type Config struct {
	View      string
	ClassName string

	// Expanded is the number of levels a signature describes.
	Expanded int
	// Path labels the value a signature describes.
	Path string

	// OnClick is called with the activated menu item.
	OnClick func(item MenuItem)
}

// Renderer renders data into el as described by cfg.
type Renderer interface {
	Render(ctx context.Context, el *html.Node, cfg Config, data any) error
}

// Func renders one kind of view.
type Func func(ctx context.Context, r *Registry, el *html.Node, cfg Config, data any) error

// Registry maps view names to their renderers.
type Registry struct {
	doc   *dom.Document
	views map[string]Func
}

var _ Renderer = (*Registry)(nil)

// NewRegistry returns a registry with the built-in views defined.
func NewRegistry(doc *dom.Document) *Registry {
	r := &Registry{doc: doc, views: make(map[string]Func)}
	r.Define("menu", renderMenu)
	r.Define("signature", renderSignature)
	return r
}

// Document returns the document views are rendered into.
func (r *Registry) Document() *dom.Document {
	return r.doc
}

// Define registers fn under name, replacing an existing definition.
func (r *Registry) Define(name string, fn Func) {
	r.views[name] = fn
}

// Names returns the defined view names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.views))
	for name := range r.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render appends the view named by cfg.View to el.
func (r *Registry) Render(ctx context.Context, el *html.Node, cfg Config, data any) error {
	fn, ok := r.views[cfg.View]
	if !ok {
		return fmt.Errorf("view %q is not defined", cfg.View)
	}
	if err := fn(ctx, r, el, cfg, data); err != nil {
		return fmt.Errorf("render %s view: %w", cfg.View, err)
	}
	return nil
}

// ListLimit resolves a configured item limit: false disables the limit, a
// positive number is used as is, anything else falls back to def.
func ListLimit(v any, def limiter.Limit) limiter.Limit {
	switch t := v.(type) {
	case bool:
		if !t {
			return limiter.NoLimit
		}
	case int:
		if t > 0 {
			return limiter.Limit(t)
		}
	case int64:
		if t > 0 {
			return limiter.Limit(t)
		}
	case float64:
		if t > 0 {
			return limiter.Limit(int(t))
		}
	case limiter.Limit:
		if t > 0 || t.Unbounded() {
			return t
		}
	}
	return def
}
