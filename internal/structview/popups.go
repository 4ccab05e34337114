package structview

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/formatter"
	"github.com/oakwood-commons/structview/internal/jsoninfo"
	"github.com/oakwood-commons/structview/internal/value"
	"github.com/oakwood-commons/structview/internal/view"
)

// MaxCopySize is the largest JSON text, in bytes, the copy actions produce.
const MaxCopySize = 1 << 30

// Copy errors shown on disabled actions.
const (
	ErrTextCircular = "Can't be copied: Converting circular structure to JSON"
	ErrTextTooLarge = "Can't be copied: Resulting JSON is over 1 Gb"
)

// jsonIndent is the indent of the formatted JSON copy.
const jsonIndent = 4

func (v *Viewer) newValueActionsPopup() *view.Popup {
	return view.NewPopup(v.doc, view.PopupOptions{
		ClassName: "view-struct-actions-popup",
		Render: func(popupEl, trigger *html.Node, hide func()) {
			rec, ok := v.lookup(trigger.Parent)
			if !ok {
				return
			}
			err := v.views.Render(context.Background(), popupEl, view.Config{
				View: "menu",
				OnClick: func(item view.MenuItem) {
					hide()
					if item.Action != nil {
						item.Action()
					}
				},
			}, v.valueActionItems(rec))
			if err != nil {
				v.log.Error(err, "render value actions")
			}
		},
	})
}

func (v *Viewer) newSignaturePopup() *view.Popup {
	return view.NewPopup(v.doc, view.PopupOptions{
		ClassName: "view-struct-signature-popup",
		HoverPin:  true,
		HoverTriggers: func(n *html.Node) bool {
			return dom.ByClass(classActionButton, "show-signature")(n) && v.owns(n)
		},
		Render: func(popupEl, trigger *html.Node, _ func()) {
			rec, ok := v.lookup(trigger.Parent)
			if !ok {
				return
			}
			err := v.views.Render(context.Background(), popupEl, view.Config{
				View:     "signature",
				Expanded: 2,
				Path:     v.querier.PathToQuery(rec.ctx.Path()),
			}, rec.value)
			if err != nil {
				v.log.Error(err, "render signature")
			}
		},
	})
}

// ValueActions returns the actions offered for a rendered value element.
func (v *Viewer) ValueActions(el *html.Node) []view.MenuItem {
	rec, ok := v.lookup(el)
	if !ok {
		return nil
	}
	return v.valueActionItems(rec)
}

// ValueActionsPopup returns the popup value-actions clicks open.
func (v *Viewer) ValueActionsPopup() *view.Popup {
	return v.valueActions
}

// SignaturePopup returns the popup show-signature hovers and clicks open.
func (v *Viewer) SignaturePopup() *view.Popup {
	return v.signature
}

func (v *Viewer) valueActionItems(rec *record) []view.MenuItem {
	if s, ok := rec.value.(string); ok {
		quoted := value.Quote(s)
		return []view.MenuItem{
			{Text: "Copy as quoted string", Action: v.copyText(quoted)},
			{Text: "Copy as unquoted string", Action: v.copyText(quoted[1 : len(quoted)-1])},
			{Text: "Copy a value (unescaped)", Action: v.copyText(s)},
		}
	}

	var items []view.MenuItem
	if path := rec.ctx.Path(); len(path) > 0 {
		query := v.querier.PathToQuery(path)
		items = append(items, view.MenuItem{Text: "Copy path:", Notes: query, Action: v.copyText(query)})
	}

	formatted := view.MenuItem{Text: "Copy as JSON"}
	compact := view.MenuItem{Text: "Copy as JSON"}
	disable := func(item *view.MenuItem, reason string) {
		item.Disabled = true
		item.Error = reason
	}

	compactInfo := jsoninfo.Info(rec.value, 0)
	switch {
	case compactInfo.HasCircular():
		disable(&formatted, ErrTextCircular)
		disable(&compact, ErrTextCircular)
	case compactInfo.MinLength > MaxCopySize:
		disable(&formatted, ErrTextTooLarge)
		disable(&compact, ErrTextTooLarge)
	default:
		compact.Notes = fmt.Sprintf("(compact, %s bytes)", humanize.Comma(compactInfo.MinLength))
		compact.Action = v.copyJSON(rec.value, 0)

		formattedInfo := jsoninfo.Info(rec.value, jsonIndent)
		if formattedInfo.MinLength > MaxCopySize {
			disable(&formatted, ErrTextTooLarge)
		} else {
			formatted.Notes = fmt.Sprintf("(formatted, %s bytes)", humanize.Comma(formattedInfo.MinLength))
			formatted.Action = v.copyJSON(rec.value, jsonIndent)
		}
	}
	return append(items, formatted, compact)
}

func (v *Viewer) copyText(text string) func() {
	return func() {
		if err := v.copier.Copy(text); err != nil {
			v.log.Error(err, "copy failed")
		}
	}
}

func (v *Viewer) copyJSON(data any, indent int) func() {
	return func() {
		text, err := formatter.MarshalJSON(data, indent)
		if err != nil {
			v.log.Error(err, "serialize value")
			return
		}
		v.copyText(text)()
	}
}
