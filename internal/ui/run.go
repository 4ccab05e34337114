package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Default frame size when the terminal size cannot be read.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// TerminalSize returns the size of stdout, or the defaults.
func TerminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		return w, h
	}
	return DefaultWidth, DefaultHeight
}

// Run replays the start keys and hands m to a bubbletea program until the
// user quits.
func Run(m *Model, startKeys []string, opts ...tea.ProgramOption) error {
	if m.width > 0 && m.height > 0 {
		opts = append(opts, tea.WithWindowSize(m.width, m.height))
	}
	ApplyStartupKeys(m, startKeys)
	defer m.Close()
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
