package view

import (
	"context"
	"fmt"

	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/dom"
)

// MenuItem is one entry of a menu view.
type MenuItem struct {
	Text     string
	Notes    string
	Error    string
	Disabled bool
	Action   func()
}

func renderMenu(_ context.Context, r *Registry, el *html.Node, cfg Config, data any) error {
	items, ok := data.([]MenuItem)
	if !ok {
		return fmt.Errorf("menu expects []MenuItem, got %T", data)
	}

	menu := dom.New("div", "view-menu")
	if cfg.ClassName != "" {
		dom.AddClass(menu, cfg.ClassName)
	}
	for _, item := range items {
		menu.AppendChild(r.menuItem(item, cfg.OnClick))
	}
	el.AppendChild(menu)
	return nil
}

func (r *Registry) menuItem(item MenuItem, onClick func(MenuItem)) *html.Node {
	itemEl := dom.New("div", "view-menu-item")
	dom.AppendText(itemEl, item.Text)
	if item.Notes != "" {
		notes := dom.New("span", "notes")
		dom.AppendText(notes, item.Notes)
		itemEl.AppendChild(notes)
	}
	if item.Error != "" {
		errEl := dom.New("span", "error")
		dom.AppendText(errEl, item.Error)
		itemEl.AppendChild(errEl)
	}
	if item.Disabled {
		dom.AddClass(itemEl, "disabled")
		return itemEl
	}

	r.doc.On(itemEl, "click", func(ev *dom.Event) {
		ev.StopPropagation()
		if onClick != nil {
			onClick(item)
		} else if item.Action != nil {
			item.Action()
		}
	})
	return itemEl
}
