package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/structview/internal/config"
	"github.com/oakwood-commons/structview/internal/structview"
	"github.com/oakwood-commons/structview/pkg/settings"
)

// annotationBeforePrefix marks an --annotation rule placed before its value.
const annotationBeforePrefix = "before:"

// resolveConfigPath returns the explicit path if set, otherwise
// $XDG_CONFIG_HOME/structview/config.yaml or ~/.config/structview/config.yaml
// when present.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// applyFlagOverrides copies the flags changed on the command line over the
// loaded config. A limit of 0 disables the limit.
func applyFlagOverrides(cfg *config.Config, opts *rootOptions, changed func(string) bool) {
	if changed("expanded") {
		cfg.Struct.Expanded = opts.expanded
	}
	if changed("limit") {
		cfg.Struct.Limit = limitValue(opts.limit)
	}
	if changed("limit-collapsed") {
		cfg.Struct.LimitCollapsed = limitValue(opts.limitCollapsed)
	}
	if changed("match") {
		cfg.Struct.Match = opts.match
	}
	for _, raw := range opts.annotations {
		cfg.Struct.Annotations = append(cfg.Struct.Annotations, parseAnnotationFlag(raw))
	}
	if changed("theme") {
		cfg.UI.Theme = opts.theme
	}
	if changed("width") {
		cfg.UI.Width = opts.width
	}
	if changed("height") {
		cfg.UI.Height = opts.height
	}
}

func limitValue(n int) any {
	if n <= 0 {
		return false
	}
	return n
}

// parseAnnotationFlag turns "before:QUERY" or "QUERY" into a rule.
func parseAnnotationFlag(raw string) structview.AnnotationRule {
	raw = strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(raw, annotationBeforePrefix); ok {
		return structview.AnnotationRule{Query: strings.TrimSpace(rest), Place: structview.PlaceBefore}
	}
	return structview.AnnotationRule{Query: raw}
}

func writeConfig(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
