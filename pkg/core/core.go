// Package core is the embeddable API of structview: load a document,
// select a value with a CEL expression and render it as struct view markup
// without a terminal.
package core

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/structview/internal/cel"
	"github.com/oakwood-commons/structview/internal/clipboard"
	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/formatter"
	"github.com/oakwood-commons/structview/internal/navigator"
	"github.com/oakwood-commons/structview/internal/structview"
	"github.com/oakwood-commons/structview/pkg/loader"
)

// ViewConfig and AnnotationRule re-export the viewer settings for callers
// outside this module.
type (
	ViewConfig     = structview.Config
	AnnotationRule = structview.AnnotationRule
)

// Evaluator evaluates expressions against a root value.
type Evaluator interface {
	Evaluate(expr string, root any) (any, error)
}

// Engine bundles the evaluator and viewer settings shared by renders.
type Engine struct {
	Evaluator Evaluator
	Logger    logr.Logger
	Viewer    []structview.Option
}

// Option configures the Engine.
type Option func(*Engine)

// WithEvaluator sets a custom evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(c *Engine) {
		c.Evaluator = e
	}
}

// WithAnnotations adds annotation rules to every render.
func WithAnnotations(rules ...AnnotationRule) Option {
	return WithViewerOptions(structview.WithAnnotations(rules...))
}

// WithLogger sets the logger handed to viewers.
func WithLogger(l logr.Logger) Option {
	return func(c *Engine) {
		c.Logger = l
	}
}

// WithViewerOptions adds options applied to every viewer the engine creates.
func WithViewerOptions(opts ...structview.Option) Option {
	return func(c *Engine) {
		c.Viewer = append(c.Viewer, opts...)
	}
}

// New creates an Engine with a CEL evaluator unless one is given.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{Logger: logr.Discard()}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.Evaluator == nil {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		engine.Evaluator = eval
	}
	return engine, nil
}

// LoadRoot parses input into a single root value; multi-doc inputs return a slice.
func LoadRoot(input string) (any, error) {
	return loader.LoadRoot(input)
}

// LoadReader reads r to the end and parses it like LoadRoot.
func LoadReader(r io.Reader) (any, error) {
	return loader.LoadReader(r)
}

// LoadFile reads a file and parses it into a single root value.
func LoadFile(path string) (any, error) {
	return loader.LoadFile(path)
}

// Evaluate runs the evaluator against the provided root value.
func (e *Engine) Evaluate(expr string, root any) (any, error) {
	if e == nil || e.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is not configured")
	}
	return e.Evaluator.Evaluate(expr, root)
}

// NodeAtPath resolves a dotted path, falling back to the evaluator for
// full expressions.
func (e *Engine) NodeAtPath(root any, path string) (any, error) {
	return navigator.NodeAtPath(root, path, e.Evaluate)
}

// Stringify formats a scalar the way the struct view shows it.
func (e *Engine) Stringify(node any) string {
	return formatter.Stringify(node)
}

// RenderHTML renders data into a detached document, runs every annotation
// turn and returns the markup of the view root.
func (e *Engine) RenderHTML(data any, cfg ViewConfig) (string, error) {
	doc := dom.NewDocument()
	opts := append([]structview.Option{
		structview.WithLogger(e.Logger),
		structview.WithClipboard(&clipboard.Recorder{}),
	}, e.Viewer...)
	v, err := structview.New(doc, opts...)
	if err != nil {
		return "", err
	}
	defer v.Close()

	root := dom.New("div")
	doc.Body().AppendChild(root)
	if _, err := v.Render(root, data, cfg); err != nil {
		return "", err
	}
	v.Loop().Drain(0)

	var buf bytes.Buffer
	if err := dom.Render(&buf, root); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
