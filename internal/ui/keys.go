package ui

import (
	"charm.land/bubbles/v2/key"
)

// KeyMap lists the bindings of the viewer.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Activate  key.Binding
	Actions   key.Binding
	Signature key.Binding
	Search    key.Binding
	Close     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns vim-flavoured bindings with arrow-key aliases.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Activate:  key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("enter", "toggle")),
		Actions:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "actions")),
		Signature: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "signature")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "highlight keys")),
		Close:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Activate, k.Actions, k.Signature, k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Activate, k.Actions, k.Signature, k.Close},
		{k.Search, k.Help, k.Quit},
	}
}
