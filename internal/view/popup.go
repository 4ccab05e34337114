package view

import (
	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/dom"
)

// PopupOptions configures a Popup.
type PopupOptions struct {
	ClassName string
	// HoverPin keeps the popup open while the pointer is over it.
	HoverPin bool
	// HoverTriggers selects elements that open the popup when hovered.
	// When nil the popup only opens through Show or Toggle.
	HoverTriggers dom.Matcher
	// Render fills the popup for trigger. hide closes the popup.
	Render func(popupEl, trigger *html.Node, hide func())
}

// Popup is a panel in the document overlay anchored to a trigger element.
type Popup struct {
	doc     *dom.Document
	opts    PopupOptions
	el      *html.Node
	trigger *html.Node

	removeHover func()
}

// NewPopup creates a hidden popup. When opts.HoverTriggers is set the popup
// listens to hover events on doc until Close is called.
func NewPopup(doc *dom.Document, opts PopupOptions) *Popup {
	p := &Popup{
		doc:  doc,
		opts: opts,
		el:   dom.New("div", "view-popup"),
	}
	if opts.ClassName != "" {
		dom.AddClass(p.el, opts.ClassName)
	}
	if opts.HoverTriggers != nil {
		p.removeHover = doc.AddGlobalListener("hover", func(ev *dom.Event) {
			p.Hover(ev.Target)
		})
	}
	return p
}

// Element returns the popup element.
func (p *Popup) Element() *html.Node {
	return p.el
}

// Trigger returns the element the popup is anchored to, or nil when hidden.
func (p *Popup) Trigger() *html.Node {
	return p.trigger
}

// Visible reports whether the popup is shown.
func (p *Popup) Visible() bool {
	return p.trigger != nil
}

// Show renders the popup for anchor, replacing any previous content.
func (p *Popup) Show(anchor *html.Node) {
	if p.Visible() {
		p.Hide()
	}
	p.trigger = anchor
	p.doc.Overlay().AppendChild(p.el)
	if p.opts.Render != nil {
		p.opts.Render(p.el, anchor, p.Hide)
	}
}

// Hide closes the popup and releases its content.
func (p *Popup) Hide() {
	if !p.Visible() {
		return
	}
	p.trigger = nil
	p.doc.ReplaceChildren(p.el)
	if p.el.Parent != nil {
		p.el.Parent.RemoveChild(p.el)
	}
}

// Toggle hides the popup when it is shown for anchor and shows it otherwise.
func (p *Popup) Toggle(anchor *html.Node) {
	if p.trigger == anchor {
		p.Hide()
		return
	}
	p.Show(anchor)
}

// Hover updates a hover-triggered popup for the element under the pointer.
func (p *Popup) Hover(target *html.Node) {
	if p.opts.HoverTriggers == nil || target == nil {
		return
	}
	if p.opts.HoverPin && p.Visible() && dom.Contains(p.el, target) {
		return
	}
	trigger := dom.Closest(target, p.opts.HoverTriggers)
	switch {
	case trigger == nil:
		p.Hide()
	case trigger != p.trigger:
		p.Show(trigger)
	}
}

// Close hides the popup and removes its hover listener.
func (p *Popup) Close() {
	p.Hide()
	if p.removeHover != nil {
		p.removeHover()
		p.removeHover = nil
	}
}
