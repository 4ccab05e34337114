package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/structview/internal/structview"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// DefaultConfigYAML returns a copy of the embedded defaults.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), defaultConfigYAML...)
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := decodeInto(cfg, defaultConfigYAML); err != nil {
		return nil, fmt.Errorf("decode embedded default config: %w", err)
	}
	return cfg, nil
}

// Load returns the defaults with the file at path merged over them. An
// empty path loads the defaults only. Settings present in the file replace
// the defaults; a theme replaces the default theme of the same name.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := decodeInto(cfg, data); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func decodeInto(cfg *Config, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Validate reports settings that cannot be applied.
func (c *Config) Validate() error {
	var errs []error
	if c.Struct.Expanded < 0 {
		errs = append(errs, errors.New("struct.expanded must not be negative"))
	}
	for name, v := range map[string]any{"struct.limit": c.Struct.Limit, "struct.limit_collapsed": c.Struct.LimitCollapsed} {
		if err := validateLimit(name, v); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Struct.MaxStringLength < 0 || c.Struct.MaxLinearStringLength < 0 {
		errs = append(errs, errors.New("struct string lengths must not be negative"))
	}
	for i, rule := range c.Struct.Annotations {
		if strings.TrimSpace(rule.Query) == "" {
			errs = append(errs, fmt.Errorf("struct.annotations[%d]: query is required", i))
		}
		switch rule.Place {
		case "", structview.PlaceBefore, structview.PlaceAfter:
		default:
			errs = append(errs, fmt.Errorf("struct.annotations[%d]: unknown place %q", i, rule.Place))
		}
	}
	if c.Struct.Match != "" {
		if _, err := regexp.Compile(c.Struct.Match); err != nil {
			errs = append(errs, fmt.Errorf("struct.match: %w", err))
		}
	}
	if c.Scheduler.Budget < 0 || c.Scheduler.Batch < 0 {
		errs = append(errs, errors.New("scheduler budget and batch must not be negative"))
	}
	if _, ok := c.UI.Themes[c.UI.Theme]; !ok && c.UI.Theme != "" {
		errs = append(errs, fmt.Errorf("unknown theme %q (available: %s)", c.UI.Theme, strings.Join(c.ThemeNames(), ", ")))
	}
	return errors.Join(errs...)
}

func validateLimit(name string, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		if t {
			return fmt.Errorf("%s: true is not a limit, use a number or false", name)
		}
		return nil
	case int:
		if t < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
		return nil
	}
	return fmt.Errorf("%s: unsupported value %v", name, v)
}

// ThemeNames lists the configured themes in name order.
func (c *Config) ThemeNames() []string {
	names := make([]string, 0, len(c.UI.Themes))
	for name := range c.UI.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectedTheme returns the palette named by ui.theme.
func (c *Config) SelectedTheme() ThemeConfig {
	return c.UI.Themes[c.UI.Theme]
}

// ViewConfig converts the struct section into a render configuration.
// Annotation rules are left out; they are registered on the viewer.
func (c *Config) ViewConfig() structview.Config {
	cfg := structview.Config{
		Expanded:              c.Struct.Expanded,
		Limit:                 c.Struct.Limit,
		LimitCollapsed:        c.Struct.LimitCollapsed,
		MaxStringLength:       c.Struct.MaxStringLength,
		MaxLinearStringLength: c.Struct.MaxLinearStringLength,
	}
	if c.Struct.Match != "" {
		cfg.Match = regexp.MustCompile(c.Struct.Match)
	}
	return cfg
}

// ViewerOptions returns the viewer options the config implies.
func (c *Config) ViewerOptions() []structview.Option {
	opts := []structview.Option{structview.WithTimeSlice(c.Scheduler.Budget, c.Scheduler.Batch)}
	if len(c.Struct.Annotations) > 0 {
		opts = append(opts, structview.WithAnnotations(c.Struct.Annotations...))
	}
	return opts
}
