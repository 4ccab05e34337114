package structview

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/formatter"
	"github.com/oakwood-commons/structview/internal/loop"
	"github.com/oakwood-commons/structview/internal/value"
)

// Annotation placements.
const (
	PlaceBefore = "before"
	PlaceAfter  = "after"
)

// Annotation styles.
const (
	StyleNone    = "none"
	StyleDefault = "default"
	StyleBadge   = "badge"
)

const (
	// DefaultTimeBudget bounds the time one scheduler turn spends decorating.
	DefaultTimeBudget = 10 * time.Millisecond
	// DefaultBatchSize is how many tasks run between two clock checks.
	DefaultBatchSize = 20
)

var iconName = regexp.MustCompile(`(?i)^[a-z_$][a-z0-9_$-]*$`)

// AnnotationRule is a query evaluated against every rendered value. A
// truthy result decorates the value.
type AnnotationRule struct {
	Query string `json:"query" yaml:"query"`
	Place string `json:"place,omitempty" yaml:"place,omitempty"`
	Debug bool   `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// Annotation describes one decoration element.
type Annotation struct {
	Place     string
	Text      string
	Title     string
	Icon      string
	Href      string
	External  bool
	ClassName string
	Style     string
}

type annotationTask struct {
	target     *html.Node
	annotation Annotation
}

// annotationScheduler evaluates annotation rules as values are rendered and
// decorates them on later loop turns, a time-boxed slice per turn.
type annotationScheduler struct {
	doc    *dom.Document
	loop   loop.Deferrer
	query  Querier
	log    logr.Logger
	now    func() time.Time
	budget time.Duration
	batch  int

	queue []annotationTask
	armed bool
}

// Apply evaluates every rule of opts against data and queues the truthy
// results for el.
func (s *annotationScheduler) Apply(el *html.Node, data any, opts *Options, ctx *Context) {
	if len(opts.Annotations) == 0 {
		return
	}
	vars := ctx.queryVars()
	queued := false
	for _, rule := range opts.Annotations {
		result, err := s.query.Query(rule.Query, data, vars)
		if err != nil {
			s.log.Error(err, "annotation query failed", "query", rule.Query, "path", ctx.Path())
			continue
		}
		if rule.Debug {
			s.log.Info("annotation", "query", rule.Query, "value", data, "context", vars, "result", result)
		}
		if !truthy(result) {
			continue
		}
		s.queue = append(s.queue, annotationTask{target: el, annotation: describe(result, rule)})
		queued = true
	}
	if queued {
		s.ScheduleRender()
	}
}

// ScheduleRender arms one deferred turn while tasks are queued. Calling it
// again before the turn runs is a no-op.
func (s *annotationScheduler) ScheduleRender() {
	if s.armed || len(s.queue) == 0 {
		return
	}
	s.armed = true
	s.loop.Defer(func() {
		s.armed = false
		s.render()
		s.ScheduleRender()
	})
}

// Pending returns the number of queued tasks.
func (s *annotationScheduler) Pending() int {
	return len(s.queue)
}

func (s *annotationScheduler) render() {
	start := s.now()
	i := 0
	for ; i < len(s.queue); i++ {
		if i%s.batch == 0 && s.now().Sub(start) > s.budget {
			break
		}
		s.decorate(s.queue[i])
	}
	clear(s.queue[:i])
	s.queue = s.queue[i:]
}

// decorate inserts the annotation element next to its target. Targets that
// were detached in the meantime are skipped.
func (s *annotationScheduler) decorate(t annotationTask) {
	target := t.target
	if target.Parent == nil || !s.doc.IsMounted(target) {
		return
	}
	a := t.annotation

	tag := "span"
	if a.Href != "" {
		tag = "a"
	}
	el := dom.New(tag, "value-annotation", "style-"+a.Style, a.Place)
	if a.Text != "" {
		dom.AddClass(el, "has-text")
		dom.AppendText(el, a.Text)
	}
	if a.ClassName != "" {
		dom.AddClass(el, strings.Fields(a.ClassName)...)
	}
	if a.Title != "" {
		dom.SetAttr(el, "title", a.Title)
	}
	if a.Href != "" {
		dom.SetAttr(el, "href", a.Href)
		if a.External {
			dom.SetAttr(el, "target", "_blank")
		}
	}
	if a.Icon != "" {
		if iconName.MatchString(a.Icon) {
			dom.AddClass(el, "icon", "icon-"+a.Icon)
		} else {
			dom.SetAttr(el, "style", `--annotation-image: url("`+a.Icon+`")`)
		}
	}

	if a.Place == PlaceBefore {
		target.Parent.InsertBefore(el, target)
	} else {
		target.Parent.AppendChild(el)
	}
}

// describe turns a query result into an annotation. Objects carry the
// descriptor fields; any other result becomes the annotation text.
func describe(result any, rule AnnotationRule) Annotation {
	a := Annotation{Place: rule.Place}
	if value.KindOf(result) == value.KindObject {
		fields := map[string]any{}
		for _, e := range value.Entries(result) {
			fields[e.Key.(string)] = e.Value
		}
		str := func(key string) string {
			if v, ok := fields[key]; ok && v != nil {
				return formatter.Stringify(v)
			}
			return ""
		}
		if place := str("place"); place != "" {
			a.Place = place
		}
		a.Text = str("text")
		a.Title = str("title")
		a.Icon = str("icon")
		a.Href = str("href")
		a.ClassName = str("className")
		a.Style = str("style")
		a.External = truthy(fields["external"])
	} else {
		a.Text = formatter.Stringify(result)
	}

	if a.Place != PlaceBefore {
		a.Place = PlaceAfter
	}
	switch a.Style {
	case StyleNone, StyleDefault, StyleBadge:
	default:
		if a.Place == PlaceBefore {
			a.Style = StyleNone
		} else {
			a.Style = StyleDefault
		}
	}
	return a
}

// truthy reports whether v counts as a match: everything except null,
// false, zero, NaN and the empty string.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	}
	return true
}
