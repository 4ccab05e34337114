package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/structview/internal/config"
)

// Theme holds the styles the painter and the frame use.
type Theme struct {
	Key        lipgloss.Style
	String     lipgloss.Style
	Number     lipgloss.Style
	Bool       lipgloss.Style
	Null       lipgloss.Style
	Punct      lipgloss.Style
	Button     lipgloss.Style
	Focus      lipgloss.Style
	Annotation lipgloss.Style
	Badge      lipgloss.Style
	Error      lipgloss.Style
	Muted      lipgloss.Style
	Match      lipgloss.Style
	Popup      lipgloss.Style
	Status     lipgloss.Style
}

func colorOf(c config.ColorValue) color.Color {
	if c == "" {
		return nil
	}
	return lipgloss.Color(string(c))
}

func fg(c config.ColorValue) lipgloss.Style {
	s := lipgloss.NewStyle()
	if col := colorOf(c); col != nil {
		s = s.Foreground(col)
	}
	return s
}

func withBG(s lipgloss.Style, c config.ColorValue) lipgloss.Style {
	if col := colorOf(c); col != nil {
		return s.Background(col)
	}
	return s
}

// ThemeFromConfig builds the styles of a configured palette.
func ThemeFromConfig(tc config.ThemeConfig) Theme {
	focus := withBG(fg(tc.FocusFG), tc.FocusBG)
	if tc.FocusBG == "" {
		focus = focus.Reverse(true)
	}
	popup := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if col := colorOf(tc.PopupBorder); col != nil {
		popup = popup.BorderForeground(col)
	}
	return Theme{
		Key:        fg(tc.KeyColor),
		String:     fg(tc.StringColor),
		Number:     fg(tc.NumberColor),
		Bool:       fg(tc.BoolColor),
		Null:       fg(tc.NullColor),
		Punct:      fg(tc.PunctColor),
		Button:     fg(tc.ButtonColor).Bold(true),
		Focus:      focus,
		Annotation: fg(tc.AnnotationColor).Italic(true),
		Badge:      withBG(fg(tc.AnnotationColor), tc.BadgeBG),
		Error:      fg(tc.ErrorColor),
		Muted:      fg(tc.MutedColor).Faint(true),
		Match:      withBG(fg(tc.MatchFG), tc.MatchBG).Underline(tc.MatchBG == ""),
		Popup:      popup,
		Status:     fg(tc.StatusColor),
	}
}

// PlainTheme renders without any escape sequences.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Key: plain, String: plain, Number: plain, Bool: plain, Null: plain,
		Punct: plain, Button: plain, Focus: plain, Annotation: plain, Badge: plain,
		Error: plain, Muted: plain, Match: plain, Status: plain,
		Popup: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
	}
}
