// Package structview renders JSON-like values into a dom.Document as
// expandable trees. Large collections are paginated, values are decorated
// by annotation rules on later loop turns, and a single click listener per
// viewer drives expand, collapse, key sorting and the value popups.
package structview

import (
	"errors"
	"regexp"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/cel"
	"github.com/oakwood-commons/structview/internal/clipboard"
	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/limiter"
	"github.com/oakwood-commons/structview/internal/loop"
	"github.com/oakwood-commons/structview/internal/value"
	"github.com/oakwood-commons/structview/internal/view"
)

// Defaults applied when a Config leaves a setting unset.
const (
	DefaultLimit                 limiter.Limit = 50
	DefaultLimitCollapsed        limiter.Limit = 4
	DefaultMaxStringLength                     = 150
	DefaultMaxLinearStringLength               = 50

	// MaxAutoExpandDepth caps the number of levels expanded on render.
	MaxAutoExpandDepth = 32
)

// ErrClosed is returned when rendering with a closed viewer.
var ErrClosed = errors.New("struct viewer is closed")

// Querier evaluates annotation queries and formats value paths.
type Querier interface {
	Query(expr string, data any, ctx map[string]any) (any, error)
	PathToQuery(path []any) string
}

// Config configures one rendered value tree.
type Config struct {
	// Expanded is the number of levels expanded right away.
	Expanded int
	// Limit and LimitCollapsed accept anything view.ListLimit does:
	// false for no limit, a positive number, or nil for the default.
	Limit          any
	LimitCollapsed any

	MaxStringLength       int
	MaxLinearStringLength int

	// Annotations are added to the viewer-wide rules.
	Annotations []AnnotationRule
	Match       *regexp.Regexp
}

// Viewer owns the struct views rendered into one document.
type Viewer struct {
	id      string
	doc     *dom.Document
	views   *view.Registry
	querier Querier
	copier  clipboard.Copier
	log     logr.Logger
	loop    *loop.Loop
	now     func() time.Time
	budget  time.Duration
	batch   int
	rules   []AnnotationRule

	records     map[*html.Node]*record
	roots       map[*html.Node]struct{}
	annotations *annotationScheduler

	valueActions *view.Popup
	signature    *view.Popup
	removeClick  func()
	removeDetach func()
	closed       bool
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithQuerier sets the evaluator for annotation queries and paths.
func WithQuerier(q Querier) Option {
	return func(v *Viewer) {
		v.querier = q
	}
}

// WithClipboard sets where copy actions write to.
func WithClipboard(c clipboard.Copier) Option {
	return func(v *Viewer) {
		v.copier = c
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(v *Viewer) {
		v.log = l
	}
}

// WithLoop sets the loop annotation turns are deferred to.
func WithLoop(l *loop.Loop) Option {
	return func(v *Viewer) {
		v.loop = l
	}
}

// WithClock sets the clock used to time-slice annotation turns.
func WithClock(now func() time.Time) Option {
	return func(v *Viewer) {
		v.now = now
	}
}

// WithTimeSlice sets the per-turn annotation budget and how many tasks run
// between clock checks.
func WithTimeSlice(budget time.Duration, batch int) Option {
	return func(v *Viewer) {
		if budget > 0 {
			v.budget = budget
		}
		if batch > 0 {
			v.batch = batch
		}
	}
}

// WithAnnotations adds rules applied to every view of the viewer.
func WithAnnotations(rules ...AnnotationRule) Option {
	return func(v *Viewer) {
		v.rules = append(v.rules, rules...)
	}
}

// WithViews sets the registry popups render their content with.
func WithViews(r *view.Registry) Option {
	return func(v *Viewer) {
		v.views = r
	}
}

// New creates a viewer for doc and installs its click listener. Without
// WithQuerier a CEL evaluator is used.
func New(doc *dom.Document, opts ...Option) (*Viewer, error) {
	v := &Viewer{
		id:      uuid.NewString(),
		doc:     doc,
		copier:  clipboard.System{},
		log:     logr.Discard(),
		now:     time.Now,
		budget:  DefaultTimeBudget,
		batch:   DefaultBatchSize,
		records: make(map[*html.Node]*record),
		roots:   make(map[*html.Node]struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.querier == nil {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		v.querier = eval
	}
	if v.loop == nil {
		v.loop = loop.New()
	}
	if v.views == nil {
		v.views = view.NewRegistry(doc)
	}

	v.annotations = &annotationScheduler{
		doc:    doc,
		loop:   v.loop,
		query:  v.querier,
		log:    v.log.WithName("annotations"),
		now:    v.now,
		budget: v.budget,
		batch:  v.batch,
	}
	v.valueActions = v.newValueActionsPopup()
	v.signature = v.newSignaturePopup()
	v.removeDetach = doc.OnDetach(v.release)
	v.removeClick = doc.AddGlobalListener("click", v.handleClick)
	return v, nil
}

// ID returns the instance identifier carried by the viewer's roots.
func (v *Viewer) ID() string {
	return v.id
}

// Loop returns the loop annotation turns run on.
func (v *Viewer) Loop() *loop.Loop {
	return v.loop
}

// PendingAnnotations returns the number of annotations not yet inserted.
func (v *Viewer) PendingAnnotations() int {
	return v.annotations.Pending()
}

func (cfg Config) options(global []AnnotationRule) *Options {
	opts := &Options{
		Limit:                 view.ListLimit(cfg.Limit, DefaultLimit),
		LimitCollapsed:        view.ListLimit(cfg.LimitCollapsed, DefaultLimitCollapsed),
		MaxStringLength:       cfg.MaxStringLength,
		MaxLinearStringLength: cfg.MaxLinearStringLength,
		Match:                 cfg.Match,
	}
	if opts.MaxStringLength <= 0 {
		opts.MaxStringLength = DefaultMaxStringLength
	}
	if opts.MaxLinearStringLength <= 0 {
		opts.MaxLinearStringLength = DefaultMaxLinearStringLength
	}
	opts.Annotations = append(append([]AnnotationRule(nil), global...), cfg.Annotations...)
	return opts
}

func clampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > MaxAutoExpandDepth {
		return MaxAutoExpandDepth
	}
	return depth
}

// Render appends the rendering of data to el and makes el a view root.
// It returns the value element.
func (v *Viewer) Render(el *html.Node, data any, cfg Config) (*html.Node, error) {
	if v.closed {
		return nil, ErrClosed
	}
	opts := cfg.options(v.rules)

	dom.AddClass(el, classRoot)
	dom.SetAttr(el, attrInstance, v.id)
	v.roots[el] = struct{}{}

	valueEl := v.renderValue(el, data, clampDepth(cfg.Expanded), opts, rootContext(data))
	v.annotations.ScheduleRender()
	if dom.HasClass(valueEl, classExpandValue) {
		dom.AddClass(el, classRootExpand)
	}
	return valueEl, nil
}

// Expand switches a value element to its structural rendering and expands
// expandable children autoExpandDepth levels deep.
func (v *Viewer) Expand(el *html.Node, autoExpandDepth int, sortKeys bool) {
	rec, ok := v.lookup(el)
	if !ok || !value.IsExpandable(rec.value, rec.opts.MaxStringLength) {
		return
	}
	v.expand(el, clampDepth(autoExpandDepth), sortKeys)
	v.syncContainer(el, true)
	v.annotations.ScheduleRender()
}

// Collapse switches an expanded value element back to its inline rendering.
func (v *Viewer) Collapse(el *html.Node) {
	rec, ok := v.lookup(el)
	if !ok || !value.IsExpandable(rec.value, rec.opts.MaxStringLength) {
		return
	}
	v.collapse(el)
	v.syncContainer(el, false)
	v.annotations.ScheduleRender()
}

// Expanded reports whether a value element shows its structural rendering.
func (v *Viewer) Expanded(el *html.Node) bool {
	rec, ok := v.lookup(el)
	return ok && value.IsExpandable(rec.value, rec.opts.MaxStringLength) && !dom.HasClass(el, classExpandValue)
}

// syncContainer mirrors the expand state of el on its container and, for
// the outermost value, on the view root.
func (v *Viewer) syncContainer(el *html.Node, expanded bool) {
	parent := el.Parent
	if parent == nil {
		return
	}
	_, isRoot := v.roots[parent]
	if expanded {
		dom.AddClass(parent, classExpandedValue)
		if isRoot {
			dom.RemoveClass(parent, classRootExpand)
		}
		return
	}
	dom.RemoveClass(parent, classExpandedValue)
	if isRoot {
		dom.AddClass(parent, classRootExpand)
	}
}

// rootValue returns the value element rendered directly into a view root.
func (v *Viewer) rootValue(root *html.Node) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if rec, ok := v.lookup(c); ok && rec.ctx.Parent == nil {
			return c
		}
	}
	return nil
}

// Close removes the viewer's listeners and popups and drops queued
// annotations. Rendered trees stay in the document but no longer react.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.valueActions.Close()
	v.signature.Close()
	if v.removeClick != nil {
		v.removeClick()
		v.removeClick = nil
	}
	if v.removeDetach != nil {
		v.removeDetach()
		v.removeDetach = nil
	}
	v.annotations.queue = nil
	v.records = make(map[*html.Node]*record)
	v.roots = make(map[*html.Node]struct{})
	v.closed = true
}
