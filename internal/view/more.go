package view

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/limiter"
)

// MaybeMoreButtons adds "show more" controls for the count-offset entries
// that are not rendered yet. The controls are inserted before "before" (or
// appended to container when before is nil). Activating one removes the
// controls and calls more with the next window. It returns the controls
// element, or nil when nothing remains.
func (r *Registry) MaybeMoreButtons(container, before *html.Node, count, offset int, limit limiter.Limit, more func(offset int, limit limiter.Limit)) *html.Node {
	remaining := count - offset
	if remaining <= 0 || limit.Unbounded() {
		return nil
	}

	buttons := dom.New("div", "more-buttons")
	add := func(text string, next limiter.Limit) {
		btn := dom.New("span", "more-button")
		dom.AppendText(btn, text)
		r.doc.On(btn, "click", func(ev *dom.Event) {
			ev.StopPropagation()
			r.doc.Detach(buttons)
			more(offset, next)
		})
		buttons.AppendChild(btn)
	}

	step := int(limit)
	if step > remaining {
		step = remaining
	}
	add(fmt.Sprintf("Show %s more...", humanize.Comma(int64(step))), limit)
	if remaining > int(limit) {
		add(fmt.Sprintf("Show all the rest %s items...", humanize.Comma(int64(remaining))), limiter.NoLimit)
	}

	if before != nil && before.Parent == container {
		container.InsertBefore(buttons, before)
	} else {
		container.AppendChild(buttons)
	}
	return buttons
}
