// Package config holds the structview application configuration: struct
// view defaults, annotation rules, scheduler tuning and terminal themes.
package config

import (
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/structview/internal/structview"
)

// Config is the merged application configuration.
type Config struct {
	Struct    StructConfig    `yaml:"struct"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	UI        UIConfig        `yaml:"ui"`
}

// StructConfig mirrors structview.Config. Limit and LimitCollapsed take a
// positive number or false for no limit.
type StructConfig struct {
	Expanded              int                         `yaml:"expanded"`
	Limit                 any                         `yaml:"limit"`
	LimitCollapsed        any                         `yaml:"limit_collapsed"`
	MaxStringLength       int                         `yaml:"max_string_length"`
	MaxLinearStringLength int                         `yaml:"max_linear_string_length"`
	Annotations           []structview.AnnotationRule `yaml:"annotations"`
	Match                 string                      `yaml:"match,omitempty"`
}

// SchedulerConfig tunes the annotation time slices.
type SchedulerConfig struct {
	Budget time.Duration `yaml:"budget"`
	Batch  int           `yaml:"batch"`
}

// UIConfig configures the terminal host.
type UIConfig struct {
	Theme  string                 `yaml:"theme"`
	Width  int                    `yaml:"width"`
	Height int                    `yaml:"height"`
	Themes map[string]ThemeConfig `yaml:"themes"`
}

// ThemeConfig is a terminal palette. Unset colors fall back to the
// terminal default.
type ThemeConfig struct {
	KeyColor        ColorValue `yaml:"key_color,omitempty"`
	StringColor     ColorValue `yaml:"string_color,omitempty"`
	NumberColor     ColorValue `yaml:"number_color,omitempty"`
	BoolColor       ColorValue `yaml:"bool_color,omitempty"`
	NullColor       ColorValue `yaml:"null_color,omitempty"`
	PunctColor      ColorValue `yaml:"punct_color,omitempty"`
	ButtonColor     ColorValue `yaml:"button_color,omitempty"`
	FocusFG         ColorValue `yaml:"focus_fg,omitempty"`
	FocusBG         ColorValue `yaml:"focus_bg,omitempty"`
	AnnotationColor ColorValue `yaml:"annotation_color,omitempty"`
	BadgeBG         ColorValue `yaml:"badge_bg,omitempty"`
	ErrorColor      ColorValue `yaml:"error_color,omitempty"`
	MutedColor      ColorValue `yaml:"muted_color,omitempty"`
	MatchFG         ColorValue `yaml:"match_fg,omitempty"`
	MatchBG         ColorValue `yaml:"match_bg,omitempty"`
	PopupBorder     ColorValue `yaml:"popup_border,omitempty"`
	StatusColor     ColorValue `yaml:"status_color,omitempty"`
}

// ColorValue stores a color token, an ANSI number or a hex string.
// Numbers are written back as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (any, error) {
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(n *yaml.Node) error {
	*c = ColorValue(n.Value)
	return nil
}
